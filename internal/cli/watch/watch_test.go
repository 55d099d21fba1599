package watch

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/testutil"
	testcli "github.com/thenoetrevino/groupboard/internal/testutil/cli"
)

func TestWatch_RequiresProject(t *testing.T) {
	t.Setenv(cli.ProjectEnv, "")
	_, c := testcli.SetupCLITest(t)

	_, err := testcli.ExecuteCLICommand(t, c, WatchCmd(), []string{})
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
}

func TestWrite_JSONFrame(t *testing.T) {
	var buf bytes.Buffer
	board := testutil.SampleBoard()

	require.NoError(t, write(&buf, true, frame{Sequence: 3, Board: board}))
	require.NoError(t, write(&buf, true, frame{Sequence: 4}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var got frame
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, int64(3), got.Sequence)
	assert.Equal(t, board.Name, got.Board.Name)
	assert.Contains(t, lines[1], `"board":null`)
}

func TestWrite_TextSkipsEmptyBoard(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, write(&buf, false, frame{Sequence: 1}))
	assert.Empty(t, buf.String())

	require.NoError(t, write(&buf, false, frame{Sequence: 2, Board: testutil.SampleBoard()}))
	assert.Contains(t, buf.String(), "seq 2")
}
