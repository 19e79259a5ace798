package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/logging"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Inspect installed skills",
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Disable()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sk, err := skills.NewStore(filepath.Join(cfg.DataDir, "skills"))
		if err != nil {
			return err
		}

		list := sk.List()
		if len(list) == 0 {
			fmt.Println("No skills installed.")
			return nil
		}
		for _, s := range list {
			fmt.Printf("%-32s %s\n", s.Name, s.Description)
		}
		return nil
	},
}

func init() {
	skillsCmd.AddCommand(skillsListCmd)
}
