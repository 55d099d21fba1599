package user

import (
	"errors"
	"os/user"
	"testing"
)

func withLookup(t *testing.T, fn func() (*user.User, error)) {
	t.Helper()
	orig := lookup
	lookup = fn
	t.Cleanup(func() { lookup = orig })
}

func TestCurrentName(t *testing.T) {
	withLookup(t, func() (*user.User, error) { return &user.User{Username: "ana"}, nil })

	if got := CurrentName(); got != "ana" {
		t.Errorf("CurrentName() = %q, want ana", got)
	}
	if got := CurrentID(); got != "ana" {
		t.Errorf("CurrentID() = %q, want ana", got)
	}
}

func TestCurrentName_Fallbacks(t *testing.T) {
	withLookup(t, func() (*user.User, error) { return nil, errors.New("no passwd") })

	t.Setenv("USER", "ben")
	if got := CurrentName(); got != "ben" {
		t.Errorf("CurrentName() = %q, want ben from $USER", got)
	}

	t.Setenv("USER", "")
	if got := CurrentName(); got != Fallback {
		t.Errorf("CurrentName() = %q, want %q", got, Fallback)
	}
}
