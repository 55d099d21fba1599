package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Result is what a command reports on success: the id printed by --quiet,
// the line shown to humans and the payload encoded by --json.
type Result struct {
	ID      string
	Message string
	Data    any
}

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool

	// Out and Err default to os.Stdout and os.Stderr.
	Out io.Writer
	Err io.Writer
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out != nil {
		return f.Out
	}
	return os.Stdout
}

func (f *OutputFormatter) err() io.Writer {
	if f.Err != nil {
		return f.Err
	}
	return os.Stderr
}

// Success outputs successful operation result
func (f *OutputFormatter) Success(data any) error {
	if data == nil {
		return nil
	}
	res, isResult := data.(Result)
	if rp, ok := data.(*Result); ok && rp != nil {
		res, isResult = *rp, true
	}

	if f.Quiet {
		switch {
		case isResult && res.ID != "":
			_, err := fmt.Fprintln(f.out(), res.ID)
			return err
		case isResult:
			return nil
		}
		if idGetter, ok := data.(interface{ GetID() string }); ok {
			_, err := fmt.Fprintln(f.out(), idGetter.GetID())
			return err
		}
	}

	if f.JSON {
		payload := data
		if isResult {
			payload = res.Data
		}
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": true,
			"data":    payload,
		})
	}

	// Human-readable format
	if isResult {
		if res.Message == "" {
			return nil
		}
		_, err := fmt.Fprintln(f.out(), res.Message)
		return err
	}
	return f.prettyPrint(data)
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	// Human-readable error
	fmt.Fprintf(f.err(), "❌ Error: %s\n", message)
	if suggestion != "" {
		fmt.Fprintf(f.err(), "💡 Suggestion: %s\n", suggestion)
	}
	return nil
}

// Report writes err in the current mode with a suggestion matching its kind.
func (f *OutputFormatter) Report(err error) error {
	return f.ErrorWithSuggestion(ErrorCode(err), err.Error(), Suggestion(err))
}

// Suggestion returns a hint for recovering from err, or "".
func Suggestion(err error) string {
	switch ExitCode(err) {
	case ExitUsage:
		return "Set a project with: eval $(groupboard use project <project-id>)"
	case ExitNotFound:
		return "Run 'groupboard board show' to see current ids"
	case ExitAuth:
		return "Issue a token with 'groupboard token issue' and set GROUPBOARD_TOKEN"
	}
	return ""
}

// prettyPrint formats data for human-readable output
func (f *OutputFormatter) prettyPrint(data any) error {
	if s, ok := data.(fmt.Stringer); ok {
		_, err := fmt.Fprintln(f.out(), s.String())
		return err
	}
	_, err := fmt.Fprintf(f.out(), "%+v\n", data)
	return err
}
