package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riverfjs/devnotes-go/internal/notes"
)

func newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Work with sidecar .devnotes files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "holistic [root]",
		Short: "Aggregate every .devnotes and .mmd file under root into root/.devnotes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			d, err := notes.Discover(root)
			if err != nil {
				return err
			}
			doc, err := notes.Aggregate(d)
			if err != nil {
				return err
			}
			path, err := notes.WriteTopLevel(root, doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d notes, %d diagrams)\n", path, len(d.NotesPaths), len(d.DiagramPaths))
			return nil
		},
	})
	return cmd
}
