package main

import (
	"errors"
	"fmt"
	"github.com/ribgsilva/note-sync/client/v1/engine"
	"github.com/spf13/cobra"
	"strconv"
)

var (
	updateTitle   string
	updateContent string
	updateImages  []string
)

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change the title, content or images of a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		var p engine.Patch
		if cmd.Flags().Changed("title") {
			p.Title = &updateTitle
		}
		if cmd.Flags().Changed("content") {
			p.Content = &updateContent
		}
		if cmd.Flags().Changed("image") {
			p.Images = &updateImages
		}
		if p.Title == nil && p.Content == nil && p.Images == nil {
			return errors.New("nothing to update")
		}

		ctx := cmd.Context()
		s, err := open(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		s.connect(ctx)
		n, err := s.model.Update(ctx, id, p)
		if err != nil {
			return err
		}
		s.settle(ctx)
		if cur, err := s.local.Get(ctx, n.Id); err == nil {
			n = cur
		}
		printNote(n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&updateContent, "content", "", "New content")
	updateCmd.Flags().StringSliceVar(&updateImages, "image", nil, "Replace the images, repeatable")
}
