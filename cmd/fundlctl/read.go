package main

import (
	"encoding/json"
	"errors"

	"github.com/PohSayKeong/fundl/internal/database"
	"github.com/PohSayKeong/fundl/internal/logic"
	"github.com/PohSayKeong/fundl/internal/repository"
	"github.com/spf13/cobra"
)

var ProjectCmd = &cobra.Command{
	Use:   "project <project-id>",
	Short: "Print a reconciled project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProjectId(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		s, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer s.Close()

		db, err := database.Init(s.cfg.Database)
		if err != nil {
			return err
		}
		projects := logic.NewProjectLogic(s.chain.Reader(), repository.NewProjectRepository(db), s.cfg.Chain.ListConcurrency)
		project, symbol, err := projects.GetProject(ctx, id)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(map[string]interface{}{
			"project":     project,
			"tokenSymbol": symbol,
		}, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	},
}

var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample project metadata for a local network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Chain.Network != "anvil" {
			return errors.New("seed is only allowed on the anvil network")
		}

		db, err := database.Init(cfg.Database)
		if err != nil {
			return err
		}
		n, err := database.Seed(db)
		if err != nil {
			return err
		}
		cmd.Printf("seeded %d projects\n", n)
		return nil
	},
}
