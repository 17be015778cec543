package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/psbattle/engine/internal/battle"
	"github.com/psbattle/engine/internal/config"
	"github.com/psbattle/engine/internal/transport"
)

var serverURL string

// watchCmd spectates a live battle room
var watchCmd = &cobra.Command{
	Use:   "watch <room>",
	Short: "Spectate a live battle room",
	Long: `Connects to the configured server, joins the battle room and narrates
it as it happens. The battle log is recorded to the configured storage.`,
	Example: "  psbattle watch battle-gen9ou-2001234567",
	Args:    cobra.ExactArgs(1),
	RunE:    runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&serverURL, "server", "", "websocket url, overrides server.url")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	room := args[0]
	currentRoom.Store(room)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := config.GetServerConfig()
	if serverURL != "" {
		srv.URL = serverURL
	}

	var observer *battle.Observer
	client := transport.New(transport.Options{
		URL:       srv.URL,
		Reconnect: srv.Reconnect,
		Backoff:   srv.Backoff,
		Logger:    logger.Logger,
		OnNetworkError: func(err error) {
			if observer != nil {
				observer.NetworkError(err)
			}
		},
	})
	defer client.Close()

	p, err := newPipeline(ctx, logger.Logger, pipelineOptions{
		Pacing:  config.PacingConfig(),
		Sender:  client,
		Out:     cmd.OutOrStdout(),
		Console: consoleOptions(),
	})
	if err != nil {
		return err
	}
	defer p.close()
	observer = p.observer

	if err := client.Dial(ctx); err != nil {
		return err
	}
	if err := client.JoinRoom(room); err != nil {
		return err
	}
	logger.Info().Str("room", room).Str("url", srv.URL).Msg("Watching battle")

	err = client.Run(ctx, p.observer.HandleBatch)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
