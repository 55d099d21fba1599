// Package handler provides command execution abstraction to reduce boilerplate
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thenoetrevino/groupboard/internal/app"
	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// Handler defines the interface for command execution
type Handler interface {
	// Execute runs the command with parsed arguments
	Execute(ctx context.Context, args *Arguments) (any, error)
}

// Func adapts a plain function to Handler.
type Func func(ctx context.Context, args *Arguments) (any, error)

func (f Func) Execute(ctx context.Context, args *Arguments) (any, error) { return f(ctx, args) }

// Arguments captures parsed CLI arguments and flags
type Arguments struct {
	Flags map[string]any
	Args  []string
	CLI   *cli.CLI
	cmd   *cobra.Command
}

// GetCmd returns the cobra command for access to flag parsing utilities
func (a *Arguments) GetCmd() *cobra.Command {
	return a.cmd
}

// Command wraps common command execution logic
// Returns a cobra RunE compatible function
func Command(handler Handler, parseFlags func(*cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		formatter := cli.Formatter(cmd)

		// Parse flags
		if err := parseFlags(cmd); err != nil {
			return report(formatter, cli.Usage(err))
		}

		c, release, err := cli.GetCLIFromContext(ctx)
		if err != nil {
			return report(formatter, err)
		}
		defer release()

		// Build arguments map from all flags
		arguments := &Arguments{
			Flags: parseFlagsToMap(cmd),
			Args:  args,
			CLI:   c,
			cmd:   cmd,
		}

		// Execute handler
		result, err := handler.Execute(ctx, arguments)
		if err != nil {
			return report(formatter, err)
		}

		// Common output formatting
		return formatter.Success(result)
	}
}

// SimpleCommand wraps command execution with minimal setup
// Use this for commands that don't need complex flag parsing
func SimpleCommand(handler Handler) func(*cobra.Command, []string) error {
	return Command(handler, func(cmd *cobra.Command) error {
		return nil
	})
}

// Require returns a flag check failing when any of the named flags is
// missing or blank.
func Require(names ...string) func(*cobra.Command) error {
	return func(cmd *cobra.Command) error {
		for _, name := range names {
			f := cmd.Flags().Lookup(name)
			if f == nil || !f.Changed || strings.TrimSpace(f.Value.String()) == "" {
				return fmt.Errorf("--%s is required", name)
			}
		}
		return nil
	}
}

// BoardCommand runs fn against the project's board session, opened live
// when --live is set. The named flags are required.
func BoardCommand(fn func(ctx context.Context, args *Arguments, s *Session) (any, error), required ...string) func(*cobra.Command, []string) error {
	return Command(Func(func(ctx context.Context, args *Arguments) (any, error) {
		projectID, err := cli.GetProjectID(args.cmd)
		if err != nil {
			return nil, err
		}
		board, closeFn, err := args.CLI.Session(ctx, projectID, cli.IsLive(args.cmd))
		if err != nil {
			return nil, err
		}
		defer closeFn()
		return fn(ctx, args, &Session{Board: board, ProjectID: projectID})
	}), Require(required...))
}

func report(f *cli.OutputFormatter, err error) error {
	if fmtErr := f.Report(err); fmtErr != nil {
		slog.Error("error formatting error message", "error", fmtErr)
		return err
	}
	return cli.Reported(err)
}

// parseFlagsToMap converts cobra command flags to a map
func parseFlagsToMap(cmd *cobra.Command) map[string]any {
	flags := make(map[string]any)

	// Visit all flags that were explicitly set
	cmd.Flags().Visit(func(f *pflag.Flag) {
		// Get the value based on flag type
		switch f.Value.Type() {
		case "string":
			if v, err := cmd.Flags().GetString(f.Name); err == nil {
				flags[f.Name] = v
			}
		case "int":
			if v, err := cmd.Flags().GetInt(f.Name); err == nil {
				flags[f.Name] = v
			}
		case "bool":
			if v, err := cmd.Flags().GetBool(f.Name); err == nil {
				flags[f.Name] = v
			}
		case "float64":
			if v, err := cmd.Flags().GetFloat64(f.Name); err == nil {
				flags[f.Name] = v
			}
		case "stringSlice":
			if v, err := cmd.Flags().GetStringSlice(f.Name); err == nil {
				flags[f.Name] = v
			}
		default:
			slog.Debug("unsupported flag type", "flag", f.Name, "type", f.Value.Type())
		}
	})

	return flags
}

// Has reports whether the flag was set on the command line.
func (a *Arguments) Has(name string) bool {
	_, ok := a.Flags[name]
	return ok
}

// GetString retrieves a string flag with default
func (a *Arguments) GetString(name string, defaultVal string) string {
	v, ok := a.Flags[name]
	if !ok {
		return defaultVal
	}
	val, ok := v.(string)
	if !ok {
		return defaultVal
	}
	return val
}

// GetInt retrieves an int flag with default
func (a *Arguments) GetInt(name string, defaultVal int) int {
	v, ok := a.Flags[name]
	if !ok {
		return defaultVal
	}
	val, ok := v.(int)
	if !ok {
		return defaultVal
	}
	return val
}

// GetBool retrieves a bool flag
func (a *Arguments) GetBool(name string) bool {
	v, ok := a.Flags[name]
	if !ok {
		return false
	}
	val, ok := v.(bool)
	if !ok {
		return false
	}
	return val
}

// GetStringSlice retrieves a string slice flag with default
func (a *Arguments) GetStringSlice(name string, defaultVal []string) []string {
	v, ok := a.Flags[name]
	if !ok {
		return defaultVal
	}
	val, ok := v.([]string)
	if !ok {
		return defaultVal
	}
	return val
}

// Arg returns the i-th positional argument, or "".
func (a *Arguments) Arg(i int) string {
	if i < len(a.Args) {
		return a.Args[i]
	}
	return ""
}

// Session is an open board handed to board commands.
type Session struct {
	Board     app.Board
	ProjectID types.ProjectID
}
