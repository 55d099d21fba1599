// Package watch follows a project's live room from the terminal
//
// e.g., groupboard watch p1
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/cli/styles"
	"github.com/thenoetrevino/groupboard/internal/models"
)

// ErrRoomClosed is returned when the room stops before the user does.
var ErrRoomClosed = errors.New("room connection closed")

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [project-id]",
		Short: "Follow a board live",
		Long: `Join the project's room and print the board every time a collaborator
changes it. Stop with Ctrl+C.

With --json every change is printed as one JSON object per line.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: cli.ProjectArg,
		RunE:    handler.SimpleCommand(handler.Func(runWatch)),
	}
	cli.AddSessionFlags(cmd)

	return cmd
}

type frame struct {
	Sequence int64           `json:"sequence"`
	Board    *models.Project `json:"board"`
}

func runWatch(ctx context.Context, args *handler.Arguments) (any, error) {
	cmd := args.GetCmd()
	projectID, err := cli.GetProjectID(cmd)
	if err != nil {
		return nil, err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	room, err := args.CLI.App.JoinRoom(ctx, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = room.Close() }()

	out := cmd.OutOrStdout()
	render := func() error {
		return write(out, jsonOutput, frame{Sequence: room.Sequence(), Board: room.Board()})
	}

	if err := render(); err != nil {
		return nil, err
	}
	for {
		select {
		case <-ctx.Done():
			return nil, nil
		case <-room.Done():
			return nil, ErrRoomClosed
		case <-room.Changes():
			if err := render(); err != nil {
				return nil, err
			}
		}
	}
}

func write(w io.Writer, jsonOutput bool, f frame) error {
	if jsonOutput {
		return json.NewEncoder(w).Encode(f)
	}
	if f.Board == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n\n",
		styles.SubtitleStyle.Render(fmt.Sprintf("── seq %d · %s", f.Sequence, time.Now().Format("15:04:05"))),
		styles.RenderBoard(f.Board),
	)
	return err
}
