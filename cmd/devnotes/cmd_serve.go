package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	devnotes "github.com/riverfjs/devnotes-go"
	"github.com/riverfjs/devnotes-go/internal/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the last analysis as a page with clickable code links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.close()

			srv := server.New(ws.sess, server.Config{Gatherer: prometheus.NewRegistry(), Logger: devnotes.Logger})
			fmt.Fprintf(cmd.ErrOrStderr(), "Serving results on http://%s (Ctrl+C to stop)\n", addr)
			return srv.Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7777", "listen address")
	return cmd
}
