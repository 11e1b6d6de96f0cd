package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "marginalia",
	Short: "Annotated side-by-side reading for long documents",
	Long: `Marginalia splits a long document into chunks, annotates each chunk with
an LLM (summary plus vocabulary glosses) streamed over one channel per
chunk, and keeps a two-pane source/annotation view in strict visual
correspondence.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".marginalia.yml", "config file path")
}
