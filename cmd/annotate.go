package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/marginalia-reader/marginalia/internal/config"
	"github.com/marginalia-reader/marginalia/internal/export"
	"github.com/marginalia-reader/marginalia/internal/stream"
	"github.com/marginalia-reader/marginalia/internal/viewer"
)

var (
	annotateGoal      string
	annotateServer    string
	annotateOut       string
	annotateMaxTokens int
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <url>",
	Short: "Ingest and annotate a document against a running server",
	Long: `Ingests the document at the given URL into a running marginalia server,
opens one annotation channel per chunk, and waits for the annotations to
stream in. The result is printed as text, or written as a two-pane HTML
page with --out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if annotateServer != "" {
			cfg.Client.ServerURL = annotateServer
		}
		goal := cfg.Goal
		if annotateGoal != "" {
			goal = annotateGoal
		}

		measurer := viewer.NewTextMeasurer(80, 1)
		session := viewer.NewSession(measurer, nil)
		manager := stream.NewManager(stream.NewClient(cfg.Client.ServerURL), session, goal, cfg.Client.MaxChannels)
		defer manager.Close()
		if annotateMaxTokens > 0 {
			manager.SetMaxTokens(annotateMaxTokens)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		if err := manager.Load(ctx, args[0]); err != nil {
			return err
		}

		chunks := session.Chunks()
		for _, c := range chunks {
			measurer.SetParagraph(c.ID, c.Text)
		}
		session.Resize()
		fmt.Fprintf(os.Stderr, "Ingested %d chunks, streaming annotations...\n", len(chunks))

		bar := progressbar.NewOptions(len(chunks),
			progressbar.OptionSetDescription("Annotating"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		// Poll until every channel has been released; some chunks may end up
		// unannotated if their channel failed.
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for manager.OpenCount() > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("annotation timed out: %w", ctx.Err())
			case <-ticker.C:
				_ = bar.Set(len(chunks) - len(session.Unannotated()))
			}
		}
		_ = bar.Set(len(chunks) - len(session.Unannotated()))
		_ = bar.Finish()

		// Feed annotation text back into the measurer so the exported layout
		// reflects the final content.
		for _, c := range chunks {
			if ann, ok := session.Annotation(c.ID); ok {
				measurer.SetAnnotation(c.ID, ann.Summary)
			}
		}
		session.Resize()

		if missing := session.Unannotated(); len(missing) > 0 {
			fmt.Fprintf(os.Stderr, "Warning: %d chunks have no annotation\n", len(missing))
		}

		if annotateOut != "" {
			f, err := os.Create(annotateOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", annotateOut, err)
			}
			defer f.Close()
			if err := export.WriteHTML(f, args[0], session); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", annotateOut)
			return nil
		}

		for _, c := range chunks {
			ann, ok := session.Annotation(c.ID)
			if !ok {
				continue
			}
			fmt.Printf("--- chunk %d ---\n%s\n", c.ID, ann.Summary)
			for _, v := range ann.Vocabs {
				fmt.Printf("  %s: %s\n", v.Word, v.Definition)
			}
		}
		fmt.Printf("\n%d words in the vocabulary dictionary\n", len(session.Dictionary()))
		return nil
	},
}

func init() {
	annotateCmd.Flags().StringVar(&annotateGoal, "goal", "", "annotation goal (default from config)")
	annotateCmd.Flags().StringVar(&annotateServer, "server", "", "server URL (default from config)")
	annotateCmd.Flags().StringVarP(&annotateOut, "out", "o", "", "write a two-pane HTML page to this file")
	annotateCmd.Flags().IntVar(&annotateMaxTokens, "max-tokens", 0, "per-annotation completion cap (default from server config)")
	rootCmd.AddCommand(annotateCmd)
}
