package main

import (
	"errors"
	"github.com/ribgsilva/note-sync/client/v1/store"
	"github.com/spf13/cobra"
)

var addImages []string

var addCmd = &cobra.Command{
	Use:   "add [title] [content]",
	Short: "Add a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := open(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		s.connect(ctx)
		n, err := s.model.Create(ctx, args[0], args[1], addImages)
		if err != nil {
			return err
		}
		s.settle(ctx)

		// once pushed, the note lives under its server id
		if _, err := s.local.Get(ctx, n.Id); errors.Is(err, store.ErrNotFound) {
			for _, cur := range s.model.Notes() {
				if cur.Title == n.Title && cur.Content == n.Content {
					n = cur
					break
				}
			}
		}
		printNote(n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringSliceVar(&addImages, "image", nil, "Image reference, repeatable")
}
