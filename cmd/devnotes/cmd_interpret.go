package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	devnotes "github.com/riverfjs/devnotes-go"
	"github.com/riverfjs/devnotes-go/internal/render"
	"github.com/riverfjs/devnotes-go/internal/session"
)

func newInterpretCmd() *cobra.Command {
	var (
		status int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "interpret <body-file|->",
		Short: "Interpret a saved analysis response body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			res := devnotes.Interpret(body, status)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
				return res.Err()
			}
			if res.Failed() {
				return res.Err()
			}

			view := session.Analysis{Annotations: res.Annotations, CodeInsights: res.CodeInsights}
			for _, d := range res.Diagrams {
				view.Diagrams = append(view.Diagrams, devnotes.DiagramArtifact{Source: d, Kind: devnotes.Classify(d)})
			}
			return render.Terminal(out, view, isTerminal(out))
		},
	}
	cmd.Flags().IntVar(&status, "status", 200, "HTTP status code the body was received with")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed result as JSON")
	return cmd
}

func readBody(stdin io.Reader, arg string) (string, error) {
	var (
		data []byte
		err  error
	)
	if arg == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}
