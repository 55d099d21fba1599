package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/auth"
	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/config"
	"github.com/thenoetrevino/groupboard/internal/testutil"
	testcli "github.com/thenoetrevino/groupboard/internal/testutil/cli"
)

const secret = "test-secret"

func newCLI(t *testing.T, jwtSecret string) *cli.CLI {
	t.Helper()
	cfg := config.Default()
	cfg.Daemon.JWTSecret = jwtSecret
	return testcli.NewTestCLI(t, cfg, testutil.NewFakeBackend())
}

func TestIssue_Quiet(t *testing.T) {
	c := newCLI(t, secret)

	out, err := testcli.ExecuteCLICommand(t, c, TokenCmd(), []string{"issue", "--user", "u1", "--name", "Ana", "--quiet"})
	require.NoError(t, err)

	claims, err := auth.NewIssuer(secret, time.Hour).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u1", string(claims.UserID))
	assert.Equal(t, "Ana", claims.Name)
}

func TestIssue_HumanOutput(t *testing.T) {
	c := newCLI(t, secret)

	out, err := testcli.ExecuteCLICommand(t, c, TokenCmd(), []string{"issue", "--user", "u2"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "export GROUPBOARD_TOKEN="), "got %q", out)

	signed := strings.TrimSpace(strings.TrimPrefix(out, "export GROUPBOARD_TOKEN="))
	claims, err := auth.NewIssuer(secret, 0).Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u2", claims.Name, "name defaults to the user id")
}

func TestIssue_JSON(t *testing.T) {
	c := newCLI(t, secret)

	out, err := testcli.ExecuteCLICommand(t, c, TokenCmd(), []string{"issue", "--user", "u1", "--ttl", "2h", "--json"})
	require.NoError(t, err)

	data, ok := testutil.ParseJSON(t, out)["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", data["user_id"])
	assert.NotEmpty(t, data["token"])

	expires, err := time.Parse(time.RFC3339, data["expires_at"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expires, time.Minute)
}

func TestIssue_Errors(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		args   []string
	}{
		{name: "no secret", args: []string{"issue", "--user", "u1"}},
		{name: "no user", secret: secret, args: []string{"issue"}},
		{name: "bad ttl", secret: secret, args: []string{"issue", "--user", "u1", "--ttl=-1h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t, tt.secret)

			_, err := testcli.ExecuteCLICommand(t, c, TokenCmd(), tt.args)
			require.Error(t, err)
			assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
		})
	}
}
