package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marginalia-reader/marginalia/internal/annotator"
	"github.com/marginalia-reader/marginalia/internal/chunker"
	"github.com/marginalia-reader/marginalia/internal/config"
	"github.com/marginalia-reader/marginalia/internal/gutenberg"
	"github.com/marginalia-reader/marginalia/internal/library"
	"github.com/marginalia-reader/marginalia/internal/server"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the annotation backend",
	Long: `Starts the marginalia annotation server: document ingestion, chunk
listing, and one streaming annotation channel per chunk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if serveAllowAll {
			cfg.Server.AllowAll = true
		}

		apiKey := os.Getenv(config.APIKeyEnvVar)
		if apiKey == "" {
			return fmt.Errorf("%s not found in environment", config.APIKeyEnvVar)
		}

		splitter, err := chunker.New(chunker.Config{
			MaxTokens: cfg.Chunking.MaxTokens,
			Overlap:   cfg.Chunking.Overlap,
		})
		if err != nil {
			return fmt.Errorf("creating splitter: %w", err)
		}

		lib := library.New()
		ann := annotator.New(annotator.NewOpenAIProvider(apiKey), lib, cfg.Model, cfg.MaxTokens)

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			Goal:     cfg.Goal,
			AllowAll: cfg.Server.AllowAll,
		}, lib, gutenberg.NewFetcher(), splitter, ann)

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan os.Signal, 1)
		signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-done
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8191, "port to listen on")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
