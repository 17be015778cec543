package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psbattle/engine/internal/config"
	"github.com/psbattle/engine/internal/console"
	"github.com/psbattle/engine/internal/logging"
)

var (
	configDir string
	logLevel  string
	showToast bool
	showReq   bool
	showHTML  bool

	sessionStart = time.Now()
	logger       *logging.Logger
	logFile      *os.File
	currentRoom  atomic.Value // string
)

var rootCmd = &cobra.Command{
	Use:   "psbattle",
	Short: "Follow Pokemon Showdown battles from the terminal",
	Long: `psbattle decodes the battle protocol of a Pokemon Showdown server,
narrates every event and records the battle log to JSON, sqlite or postgres.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { teardown() },
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", ".", "directory holding "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&showToast, "toasts", false, "print damage and heal toasts")
	rootCmd.PersistentFlags().BoolVar(&showReq, "requests", false, "print the choices of every request")
	rootCmd.PersistentFlags().BoolVar(&showHTML, "html", false, "print raw html blocks")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.Load(configDir); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return err
		}
		config.LoadDefaults()
	}
	if logLevel != "" {
		viper.Set("logLevel", logLevel)
	}

	f, err := logging.OpenLogFile(config.GetString("logsDir"), "psbattle", sessionStart)
	if err != nil {
		return err
	}
	logFile = f

	opts := logging.Options{
		Level:   config.GetString("logLevel"),
		Console: os.Stderr,
		File:    f,
		Context: func() map[string]any {
			if room, _ := currentRoom.Load().(string); room != "" {
				return map[string]any{"room": room}
			}
			return nil
		},
	}
	if gl := config.GetGraylogConfig(); gl.Enabled {
		opts.Graylog = gl.Address
	}

	l, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("error setting up logging: %w", err)
	}
	logger = l
	return nil
}

func teardown() {
	if logger != nil {
		_ = logger.Close()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
}

func consoleOptions() console.Options {
	return console.Options{Toasts: showToast, Requests: showReq, HTML: showHTML}
}

func execute(out io.Writer) error {
	rootCmd.SetOut(out)
	return rootCmd.Execute()
}
