package models

import "errors"

// Validation errors shared by the client engine and the persistence server
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrEmptyName       = errors.New("project name cannot be empty")
	ErrEmptyText       = errors.New("checklist item text cannot be empty")
	ErrEmptyContent    = errors.New("comment cannot be empty")
	ErrInvalidPriority = errors.New("priority must be low, medium or high")
	ErrInvalidDate     = errors.New("due date must be formatted YYYY-MM-DD")
	ErrEmptyPatch      = errors.New("no valid fields to update")
	ErrTitleTooLong    = errors.New("title cannot exceed 255 characters")
)

// MaxTitleLength bounds list, card and checklist titles.
const MaxTitleLength = 255
