package main

import (
	"context"
	"fmt"
	"github.com/ribgsilva/note-sync/client/v1/store"
	"github.com/spf13/cobra"
	"os/signal"
	"syscall"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep syncing and print the notes every time they change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := open(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		s.model.OnUpdate(func(notes []store.Note) {
			fmt.Println("---")
			printNotes(notes)
		})

		go s.engine.Monitor(ctx, s.cfg.ProbeInterval, func(ctx context.Context) error {
			pctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
			defer cancel()
			return s.remote.Ping(pctx)
		})

		if _, err := s.model.Fetch(ctx); err != nil {
			return err
		}
		printNotes(s.model.Notes())

		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
