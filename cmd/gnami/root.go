package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gnami",
	Short: "Gnami personal assistant gateway",
	Long: `Gnami receives messages from paired channels, forwards them to a
language model and executes the bounded actions the model requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGateway()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default <data dir>/config.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pairingsCmd)
	rootCmd.AddCommand(skillsCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(config.DefaultDataDir(), "config.yaml")
	}
	return config.Load(path)
}
