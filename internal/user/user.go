// Package user resolves the local account, used as the default display
// name when minting tokens and seeding projects.
package user

import (
	"os"
	"os/user"
	"strings"

	"github.com/thenoetrevino/groupboard/internal/types"
)

// Fallback is returned when no name can be found.
const Fallback = "unknown"

// lookup is replaced in tests.
var lookup = user.Current

// CurrentName returns the login name of the local account.
func CurrentName() string {
	if u, err := lookup(); err == nil && strings.TrimSpace(u.Username) != "" {
		return u.Username
	}
	if name := strings.TrimSpace(os.Getenv("USER")); name != "" {
		return name
	}
	return Fallback
}

// CurrentID returns CurrentName as a user id.
func CurrentID() types.UserID {
	return types.UserID(CurrentName())
}
