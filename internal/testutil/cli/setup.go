// Package cli holds helpers for running groupboard commands in tests.
package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/app"
	groupcli "github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/config"
	"github.com/thenoetrevino/groupboard/internal/logging"
	"github.com/thenoetrevino/groupboard/internal/testutil"
)

// SetupCLITest returns a fake server holding the sample board and a CLI
// wired to it.
func SetupCLITest(t *testing.T) (*testutil.FakeBackend, *groupcli.CLI) {
	t.Helper()
	backend := testutil.NewFakeBackend(testutil.SampleBoard())
	return backend, NewTestCLI(t, config.Default(), backend)
}

// NewTestCLI builds a CLI on cfg that talks to remote instead of a server.
func NewTestCLI(t *testing.T, cfg *config.Config, remote app.Remote) *groupcli.CLI {
	t.Helper()
	c := groupcli.New(app.New(cfg, app.WithRemote(remote), app.WithLogger(logging.Discard())))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Output is what a command wrote.
type Output struct {
	Stdout string
	Stderr string
}

// ExecuteCLICommand runs cmd with args against c and returns its stdout.
func ExecuteCLICommand(t *testing.T, c *groupcli.CLI, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	out, err := ExecuteCLICommandFull(t, context.Background(), c, cmd, args)
	return out.Stdout, err
}

// ExecuteCLICommandFull runs cmd with a specific context and captures both streams.
func ExecuteCLICommandFull(t *testing.T, ctx context.Context, c *groupcli.CLI, cmd *cobra.Command, args []string) (Output, error) {
	t.Helper()
	if c == nil {
		t.Fatal("CLI cannot be nil - SetupCLITest must be called first")
	}

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	testutil.SetupCobraCommand(cmd, args)

	err := cmd.ExecuteContext(groupcli.WithCLI(ctx, c))
	return Output{Stdout: stdout.String(), Stderr: stderr.String()}, err
}
