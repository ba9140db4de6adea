// devnotes 命令行：分析源码、解释响应、管理标记上下文
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	devnotes "github.com/riverfjs/devnotes-go"
)

// globalFlags 所有子命令共享的参数
type globalFlags struct {
	configPath string
	storePath  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "devnotes",
		Short:         "Annotate source code with model-generated notes and Mermaid diagrams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if g.verbose {
				level = slog.LevelDebug
			}
			devnotes.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ~/.devnotes/devnotes.yaml)")
	root.PersistentFlags().StringVar(&g.storePath, "store", "", "session store directory (default ~/.devnotes/store)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAnalyzeCmd(g),
		newInterpretCmd(),
		newContextCmd(g),
		newNotesCmd(),
		newServeCmd(g),
		newConfigCmd(g),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
