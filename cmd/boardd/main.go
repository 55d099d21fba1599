package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/groupboard/internal/api"
	"github.com/thenoetrevino/groupboard/internal/auth"
	"github.com/thenoetrevino/groupboard/internal/config"
	"github.com/thenoetrevino/groupboard/internal/daemon"
	"github.com/thenoetrevino/groupboard/internal/database"
	"github.com/thenoetrevino/groupboard/internal/logging"
	"github.com/thenoetrevino/groupboard/internal/types"
	"github.com/thenoetrevino/groupboard/internal/user"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("boardd failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boardd",
		Short: "Serve groupboard's REST API and live rooms",
		Long: `boardd stores projects in SQLite, serves them over REST and relays live
board edits between collaborators over websockets.

Configuration comes from ~/.config/groupboard/config.yaml and GROUPBOARD_*
environment variables.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create a sample project for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, _ := cmd.Flags().GetString("user")
			name, _ := cmd.Flags().GetString("name")
			return runSeed(cmd.Context(), cmd, types.UserID(user), name)
		},
	}
	seed.Flags().String("user", string(user.CurrentID()), "Owner user ID")
	seed.Flags().String("name", user.CurrentName(), "Owner display name")
	cmd.AddCommand(seed)

	return cmd
}

func setup(ctx context.Context) (*config.Config, *database.Repository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	// The daemon logs to stderr so the service manager captures it.
	logCfg := cfg.Log
	logCfg.File = ""
	if _, err := logging.Init(logCfg); err != nil {
		return nil, nil, nil, err
	}

	db, err := database.Open(ctx, cfg.Daemon.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Warn("failed to close database", "error", err)
		}
	}
	return cfg, database.NewRepository(db), closeDB, nil
}

func serve(ctx context.Context) error {
	cfg, repo, closeDB, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	if cfg.Daemon.JWTSecret == "" {
		return errors.New("daemon.jwt_secret (or GROUPBOARD_JWT_SECRET) must be set")
	}
	issuer := auth.NewIssuer(cfg.Daemon.JWTSecret, auth.DefaultTTL)
	logger := logging.Logger

	var store daemon.RoomStore
	if cfg.Daemon.RedisURL != "" {
		redisStore, err := daemon.NewRedisRoomStore(cfg.Daemon.RedisURL, 0)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		store = redisStore
		logger.Info("room snapshots stored in redis")
	}

	rooms := daemon.NewServer(issuer, repo, store, daemon.Config{
		ClientBuffer:     cfg.Daemon.ClientBuffer,
		SnapshotInterval: cfg.Daemon.SnapshotInterval,
		AllowedOrigins:   cfg.Daemon.CORSOrigins,
	}, logger)
	rest := api.NewServer(repo, issuer, logger)

	router := mux.NewRouter()
	rooms.Register(router)
	rest.Register(router)

	httpServer := &http.Server{
		Addr:              cfg.Daemon.Addr,
		Handler:           api.WithCORS(router, cfg.Daemon.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("boardd listening", "addr", cfg.Daemon.Addr, "pid", os.Getpid())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return rooms.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("boardd shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runSeed(ctx context.Context, cmd *cobra.Command, owner types.UserID, name string) error {
	_, repo, closeDB, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	project, err := database.Seed(ctx, repo, owner, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded project '%s' (ID: %s) for %s\n", project.Name, project.ID, owner)
	return nil
}
