package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/psbattle/engine/internal/config"
	"github.com/psbattle/engine/internal/replay"
)

var (
	archiveURL string
	fastReplay bool
)

// replayCmd plays an archived battle back
var replayCmd = &cobra.Command{
	Use:   "replay <file|id|url>",
	Short: "Play back an archived battle",
	Long: `Loads a replay document from a file, or downloads it from the replay
archive by id or url, and narrates it turn by turn.`,
	Example: `  psbattle replay gen9ou-2001234567
  psbattle replay ./saved/gen9ou-2001234567.json --fast`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&archiveURL, "archive", replay.DefaultBaseURL, "replay archive base url")
	replayCmd.Flags().BoolVar(&fastReplay, "fast", false, "play without delays")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rp, err := replay.New(archiveURL).Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	currentRoom.Store(rp.ID)
	logger.Info().Str("id", rp.ID).Str("format", rp.Format).Str("p1", rp.P1).Str("p2", rp.P2).Msg("Replay loaded")

	pacing := config.PacingConfig()
	pacing.LoopToLastTurn = false
	if fastReplay {
		pacing.Minor, pacing.Major = 0, 0
	}

	p, err := newPipeline(ctx, logger.Logger, pipelineOptions{
		Pacing:  pacing,
		Out:     cmd.OutOrStdout(),
		Console: consoleOptions(),
	})
	if err != nil {
		return err
	}
	defer p.close()

	for _, batch := range rp.Batches() {
		p.observer.HandleBatch(batch)
	}

	err = p.drain(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
