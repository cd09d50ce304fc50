package main

import (
	"fmt"
	"github.com/ribgsilva/note-sync/client/v1/store"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push local changes and pull the server state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := open(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		if !s.connect(ctx) {
			return fmt.Errorf("server %s is unreachable", s.cfg.ServerURL)
		}
		if err := s.engine.Sync(ctx); err != nil {
			return err
		}

		left, err := s.local.QueryByStatus(ctx, store.Pending, store.Failed)
		if err != nil {
			return err
		}
		notes, err := s.model.Fetch(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d notes, %d waiting for the server\n", len(notes), len(left))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
