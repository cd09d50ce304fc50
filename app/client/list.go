package main

import (
	"encoding/json"
	"github.com/spf13/cobra"
	"os"
)

var (
	listJSON    bool
	listOffline bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := open(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		if !listOffline && s.connect(ctx) {
			s.settle(ctx)
		}
		notes, err := s.model.Fetch(ctx)
		if err != nil {
			return err
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(notes)
		}
		printNotes(notes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listOffline, "offline", false, "Only read the local database")
}
