package handler

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ============================================================================
// Test Helpers
// ============================================================================

// createTestCommand creates a mock cobra.Command with specified flags
func createTestCommand() *cobra.Command {
	return &cobra.Command{
		Use: "test",
		Run: func(cmd *cobra.Command, args []string) {},
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

// ============================================================================
// ParseProjectID Tests
// ============================================================================

func TestParseProjectID(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		env     string
		want    types.ProjectID
		wantErr bool
	}{
		{name: "flag wins over env", flag: "p1", env: "p2", want: "p1"},
		{name: "env fallback", env: "p2", want: "p2"},
		{name: "flag is trimmed", flag: "  p3  ", want: "p3"},
		{name: "nothing set", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(cli.ProjectEnv, tt.env)

			cmd := createTestCommand()
			cli.AddSessionFlags(cmd)
			var args []string
			if tt.flag != "" {
				args = []string{"--project", tt.flag}
			}
			if err := cmd.ParseFlags(args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}

			got, err := NewFlagParser(cmd).ParseProjectID()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if code := cli.ExitCode(err); code != cli.ExitUsage {
					t.Errorf("expected exit code %d, got %d", cli.ExitUsage, code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ============================================================================
// ParseID Tests
// ============================================================================

func TestParseID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		flag    string
		want    string
		wantErr bool
	}{
		{name: "positional argument", args: []string{"c1"}, want: "c1"},
		{name: "positional wins over flag", args: []string{"c1"}, flag: "c2", want: "c1"},
		{name: "flag fallback", flag: "c2", want: "c2"},
		{name: "blank positional falls back to flag", args: []string{"  "}, flag: "c2", want: "c2"},
		{name: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := createTestCommand()
			cmd.Flags().String("id", tt.flag, "card id")

			got, err := NewFlagParser(cmd).ParseID(tt.args, "id")
			if tt.wantErr {
				if err == nil || !contains(err.Error(), "id is required") {
					t.Errorf("expected 'id is required' error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ============================================================================
// ParseString Tests
// ============================================================================

func TestParseString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		flagValue string
		want      string
		wantErr   bool
	}{
		{name: "valid string", flagValue: "Design review", want: "Design review"},
		{name: "string with whitespace is trimmed", flagValue: "  Todo  ", want: "Todo"},
		{name: "empty string", flagValue: "", wantErr: true},
		{name: "whitespace only", flagValue: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := createTestCommand()
			cmd.Flags().String("title", tt.flagValue, "title")

			result, err := NewFlagParser(cmd).ParseString("title")

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if !contains(err.Error(), "is required") {
					t.Errorf("expected error containing 'is required', got '%s'", err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if result != tt.want {
				t.Errorf("expected '%s', got '%s'", tt.want, result)
			}
		})
	}
}

func TestParseString_NonExistentFlag(t *testing.T) {
	t.Parallel()

	_, err := NewFlagParser(createTestCommand()).ParseString("missing")
	if err == nil || !contains(err.Error(), "failed to parse missing flag") {
		t.Errorf("expected parse error, got %v", err)
	}
}

// ============================================================================
// ParseIndex Tests
// ============================================================================

func TestParseIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		set     string
		want    int
		wantOK  bool
		wantErr bool
	}{
		{name: "not given", wantOK: false},
		{name: "zero", set: "0", want: 0, wantOK: true},
		{name: "positive", set: "3", want: 3, wantOK: true},
		{name: "negative", set: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := createTestCommand()
			cmd.Flags().Int("index", 0, "index")
			if tt.set != "" {
				if err := cmd.Flags().Set("index", tt.set); err != nil {
					t.Fatalf("set flag: %v", err)
				}
			}

			got, ok, err := NewFlagParser(cmd).ParseIndex("index")
			if tt.wantErr {
				if err == nil || !contains(err.Error(), "cannot be negative") {
					t.Errorf("expected negative index error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

// ============================================================================
// OutputFormats Tests
// ============================================================================

func TestOutputFormats(t *testing.T) {
	t.Parallel()

	cmd := createTestCommand()
	cli.AddSessionFlags(cmd)
	if err := cmd.ParseFlags([]string{"--json"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	jsonOutput, quietMode, err := NewFlagParser(cmd).OutputFormats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !jsonOutput || quietMode {
		t.Errorf("expected json=true quiet=false, got json=%v quiet=%v", jsonOutput, quietMode)
	}
}

func TestOutputFormats_MissingFlags(t *testing.T) {
	t.Parallel()

	_, _, err := NewFlagParser(createTestCommand()).OutputFormats()
	if err == nil || !contains(err.Error(), "failed to parse json flag") {
		t.Errorf("expected json flag error, got %v", err)
	}
}
