package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"lumina/internal/config"
	"lumina/internal/services/notes"
	"lumina/internal/storage"

	"github.com/spf13/cobra"
)

var (
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lumina",
	Short: "Offline tools for a Lumina note collection",
	Long: `lumina reads and writes the collection configured by STORAGE_DRIVER and
friends, the same settings the server uses. Stop the server before writing
to a file or sqlite store; it only reads the collection at startup.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// openCollection loads the configured store into a note service. The
// returned func releases the store.
func openCollection(ctx context.Context) (*notes.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	backend, err := storage.Open(ctx, cfg, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("open %s storage: %w", cfg.StorageDriver, err)
	}

	svc := notes.NewService(backend, nil, slog.Default())
	svc.Open(ctx)
	return svc, func() { _ = backend.Close(context.Background()) }, nil
}
