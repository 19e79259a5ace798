package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/db"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/logging"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/store"
)

var pairingsCmd = &cobra.Command{
	Use:   "pairings",
	Short: "Inspect and approve channel pairings",
}

var pairingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known pairings",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeDB, err := openStore()
		if err != nil {
			return err
		}
		defer closeDB()

		pairings, err := st.ListPairings()
		if err != nil {
			return err
		}
		if len(pairings) == 0 {
			fmt.Println("No pairings yet.")
			return nil
		}
		for _, p := range pairings {
			status := "pending"
			if p.Approved {
				status = "approved"
			}
			fmt.Printf("%-10s %-24s %-8s code=%s\n", p.Channel, p.SenderID, status, p.Code)
		}
		return nil
	},
}

var pairingsApproveCmd = &cobra.Command{
	Use:   "approve <channel> <sender-id>",
	Short: "Approve a pending pairing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeDB, err := openStore()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := st.ApprovePairing(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Approved %s/%s\n", args[0], args[1])
		return nil
	},
}

func init() {
	pairingsCmd.AddCommand(pairingsListCmd)
	pairingsCmd.AddCommand(pairingsApproveCmd)
}

func openStore() (*store.Store, func(), error) {
	logging.Disable()
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Open(filepath.Join(cfg.DataDir, "gnami.db"))
	if err != nil {
		return nil, nil, err
	}
	return store.New(database), func() { database.Close() }, nil
}
