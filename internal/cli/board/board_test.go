package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/testutil"
	testcli "github.com/thenoetrevino/groupboard/internal/testutil/cli"
)

func TestShowBoard(t *testing.T) {
	_, c := testcli.SetupCLITest(t)

	out, err := testcli.ExecuteCLICommand(t, c, BoardCmd(), []string{"show", "--project", "p1"})
	require.NoError(t, err)
	for _, want := range []string{"Capstone", "Todo", "Done", "Draft outline", "Book room", "[0/2]"} {
		assert.Contains(t, out, want)
	}
}

func TestShowBoard_JSON(t *testing.T) {
	_, c := testcli.SetupCLITest(t)

	out, err := testcli.ExecuteCLICommand(t, c, BoardCmd(), []string{"show", "--project", "p1", "--json"})
	require.NoError(t, err)

	result := testutil.ParseJSON(t, out)
	data, ok := result["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Capstone", data["name"])
	lists, ok := data["lists"].([]any)
	require.True(t, ok)
	assert.Len(t, lists, 2)
}

func TestShowBoard_UnknownProject(t *testing.T) {
	_, c := testcli.SetupCLITest(t)

	out, err := testcli.ExecuteCLICommand(t, c, BoardCmd(), []string{"show", "--project", "nope", "--json"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))

	errData, ok := testutil.ParseJSON(t, out)["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", errData["code"])
}

func TestShowBoard_PositionalProject(t *testing.T) {
	_, c := testcli.SetupCLITest(t)

	out, err := testcli.ExecuteCLICommand(t, c, BoardCmd(), []string{"show", "p1", "--quiet"})
	require.NoError(t, err)
	assert.Equal(t, "p1\n", out)
}
