package app

import (
	"log/slog"

	"github.com/thenoetrevino/groupboard/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	remote      Remote
	logger      *slog.Logger
	roomOptions []events.Option
}

// WithRemote replaces the HTTP persistence client, e.g. with a fake in tests.
func WithRemote(r Remote) Option {
	return func(cfg *appConfig) {
		cfg.remote = r
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithRoomOptions passes extra options to every room client.
func WithRoomOptions(opts ...events.Option) Option {
	return func(cfg *appConfig) {
		cfg.roomOptions = append(cfg.roomOptions, opts...)
	}
}
