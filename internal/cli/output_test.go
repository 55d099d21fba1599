package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFormatter(jsonOutput, quiet bool) (*OutputFormatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &OutputFormatter{JSON: jsonOutput, Quiet: quiet, Out: &out, Err: &errOut}, &out, &errOut
}

// ============================================================================
// Success
// ============================================================================

func TestSuccess_Modes(t *testing.T) {
	t.Parallel()

	res := Result{ID: "c1", Message: "✓ done", Data: map[string]string{"id": "c1"}}
	tests := []struct {
		name  string
		json  bool
		quiet bool
		want  string
	}{
		{name: "human", want: "✓ done\n"},
		{name: "quiet", quiet: true, want: "c1\n"},
		{name: "json", json: true, want: `{"data":{"id":"c1"},"success":true}` + "\n"},
		{name: "quiet wins over json", json: true, quiet: true, want: "c1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, out, _ := newFormatter(tt.json, tt.quiet)
			require.NoError(t, f.Success(res))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestSuccess_QuietWithoutID(t *testing.T) {
	t.Parallel()

	f, out, _ := newFormatter(false, true)
	require.NoError(t, f.Success(Result{Message: "Cancelled"}))
	assert.Empty(t, out.String())
}

func TestSuccess_Nil(t *testing.T) {
	t.Parallel()

	f, out, _ := newFormatter(true, false)
	require.NoError(t, f.Success(nil))
	assert.Empty(t, out.String())
}

// ============================================================================
// Errors
// ============================================================================

func TestReport_Human(t *testing.T) {
	t.Parallel()

	f, out, errOut := newFormatter(false, false)
	require.NoError(t, f.Report(Usage(ErrNoProject)))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "❌ Error: no project specified")
	assert.Contains(t, errOut.String(), "💡 Suggestion: Set a project")
}

func TestReport_JSON(t *testing.T) {
	t.Parallel()

	f, out, errOut := newFormatter(true, false)
	require.NoError(t, f.Report(errors.New("boom")))
	assert.Empty(t, errOut.String())

	var payload struct {
		Success bool `json:"success"`
		Error   struct {
			Code       string `json:"code"`
			Message    string `json:"message"`
			Suggestion string `json:"suggestion"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.False(t, payload.Success)
	assert.Equal(t, "ERROR", payload.Error.Code)
	assert.Equal(t, "boom", payload.Error.Message)
	assert.Empty(t, payload.Error.Suggestion)
}
