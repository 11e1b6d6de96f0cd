package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marginalia-reader/marginalia/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize marginalia configuration with an interactive wizard",
	Long:  `Runs an interactive wizard and generates a .marginalia.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
