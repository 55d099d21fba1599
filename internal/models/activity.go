package models

import (
	"time"

	"github.com/thenoetrevino/groupboard/internal/types"
)

// ActivityType distinguishes user comments from system actions
type ActivityType string

const (
	ActivityComment ActivityType = "comment"
	ActivityAction  ActivityType = "action"
)

// GuestName is shown for activity whose author has no profile.
const GuestName = "Guest"

// Activity is an entry in a card's history, newest first
type Activity struct {
	ID        types.ActivityID `json:"id"`
	UserID    types.UserID     `json:"user_id"`
	Type      ActivityType     `json:"type"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"created_at"`
	Username  string           `json:"user_username"`
	AvatarURL string           `json:"user_avatar_url"`
}
