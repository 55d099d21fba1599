package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency of a card
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is shown for cards that never had a priority assigned.
const DefaultPriority = PriorityMedium

// ParsePriority accepts low, medium or high in any letter case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// UnmarshalJSON lowercases the stored value so "Medium" and "medium" compare equal.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = Priority(strings.ToLower(s))
	return nil
}

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// Date is a civil calendar date (no time zone), e.g. "2025-03-14".
type Date string

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp, keeping only the date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date(t.Format(DateLayout)), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date(t.Format(DateLayout)), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Valid reports whether d is a well formed date.
func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// UnmarshalJSON normalizes timestamps down to their date part.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		// keep the raw value; Validate reports it
		*d = Date(s)
		return nil
	}
	*d = parsed
	return nil
}
