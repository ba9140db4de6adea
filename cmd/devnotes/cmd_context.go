package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/riverfjs/devnotes-go/internal/session"
)

func newContextCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage the tagged context sent instead of a single file",
	}
	cmd.AddCommand(newContextAddCmd(g), newContextRemoveCmd(g), newContextListCmd(g), newContextClearCmd(g))
	return cmd
}

// lineRange 1-based 闭区间转为编辑器选区，结束位置取整行
func lineRange(start, end int) *session.Range {
	return &session.Range{
		Start: session.Position{Line: start - 1},
		End:   session.Position{Line: end - 1, Character: math.MaxInt32},
	}
}

func newContextAddCmd(g *globalFlags) *cobra.Command {
	var lines, label string
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Tag a file or a line range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := session.Entry{Path: args[0], Label: label}
			if lines != "" {
				start, end, err := parseLines(lines)
				if err != nil {
					return err
				}
				entry.Range = lineRange(start, end)
			}

			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.close()

			if !ws.sess.Add(entry) {
				fmt.Fprintf(cmd.OutOrStdout(), "Already tagged: %s\n", entry.Describe())
				return nil
			}
			if err := ws.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tagged: %s\n", entry.Describe())
			return nil
		},
	}
	cmd.Flags().StringVar(&lines, "lines", "", "tag only lines start:end")
	cmd.Flags().StringVar(&label, "label", "", "label shown in the prompt")
	return cmd
}

func newContextRemoveCmd(g *globalFlags) *cobra.Command {
	var line int
	cmd := &cobra.Command{
		Use:   "remove <path>",
		Short: "Untag a file, or only the range starting at --line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r *session.Range
			if line > 0 {
				r = lineRange(line, line)
			}

			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.close()

			n := ws.sess.Remove(args[0], r)
			if err := ws.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&line, "line", 0, "start line (1-based) of the tagged range to remove")
	return cmd
}

func newContextListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tagged entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.close()

			entries := ws.sess.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tagged context")
				return nil
			}
			for i, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, e.Describe())
			}
			return nil
		},
	}
}

func newContextClearCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all tagged entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.close()

			ws.sess.Clear()
			if err := ws.save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared tagged context")
			return nil
		},
	}
}
