package checklist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/testutil"
	testcli "github.com/thenoetrevino/groupboard/internal/testutil/cli"
	"github.com/thenoetrevino/groupboard/internal/types"
)

func cardOf(t *testing.T, backend *testutil.FakeBackend, id types.CardID) *models.Card {
	t.Helper()
	loc, ok := board.FindCard(backend.Board(testutil.ProjectID), id)
	require.True(t, ok)
	return loc.Card
}

func TestAddChecklist(t *testing.T) {
	backend, c := testcli.SetupCLITest(t)

	out, err := testcli.ExecuteCLICommand(t, c, ChecklistCmd(), []string{"add", "c2", "--project", "p1", "--title", "Sources", "--quiet"})
	require.NoError(t, err)

	id := types.ChecklistID(strings.TrimSpace(out))
	card := cardOf(t, backend, testutil.CardB)
	cl := card.Checklist(id)
	require.NotNil(t, cl)
	assert.Equal(t, "Sources", cl.Title)
	assert.Empty(t, cl.Items)
}

func TestAddChecklist_UnknownCard(t *testing.T) {
	backend, c := testcli.SetupCLITest(t)

	_, err := testcli.ExecuteCLICommand(t, c, ChecklistCmd(), []string{"add", "c9", "--project", "p1", "--title", "Sources"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
	assert.Zero(t, backend.CallCount("CreateChecklist"))
}

func TestRenameChecklist(t *testing.T) {
	backend, c := testcli.SetupCLITest(t)

	out, err := testcli.ExecuteCLICommand(t, c, ChecklistCmd(), []string{"rename", "k1", "--project", "p1", "--title", "Plan"})
	require.NoError(t, err)
	assert.Contains(t, out, "renamed to 'Plan'")
	assert.Equal(t, "Plan", cardOf(t, backend, testutil.CardA).Checklist(testutil.ChecklistID).Title)
}

func TestDeleteChecklist(t *testing.T) {
	backend, c := testcli.SetupCLITest(t)

	out, err := testcli.ExecuteCLICommand(t, c, ChecklistCmd(), []string{"delete", "k1", "--project", "p1"})
	require.NoError(t, err)
	assert.Contains(t, out, "deleted with 2 items")
	assert.Empty(t, cardOf(t, backend, testutil.CardA).Checklists)
}

func TestDeleteChecklist_NotFound(t *testing.T) {
	_, c := testcli.SetupCLITest(t)

	_, err := testcli.ExecuteCLICommand(t, c, ChecklistCmd(), []string{"delete", "k9", "--project", "p1"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
}
