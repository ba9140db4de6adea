package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	devnotes "github.com/riverfjs/devnotes-go"
	"github.com/riverfjs/devnotes-go/internal/metrics"
	"github.com/riverfjs/devnotes-go/internal/render"
	"github.com/riverfjs/devnotes-go/internal/server"
	"github.com/riverfjs/devnotes-go/internal/transport"
)

type analyzeFlags struct {
	lines     string
	mock      bool
	json      bool
	imagesDir string
	exportDir string
	serveAddr string
}

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze files (or the tagged context) and show annotations, diagrams and code links",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, g, f, args)
		},
	}
	cmd.Flags().StringVar(&f.lines, "lines", "", "analyze only lines start:end of a single file")
	cmd.Flags().BoolVar(&f.mock, "mock", false, "use the built-in mock response")
	cmd.Flags().BoolVar(&f.json, "json", false, "print results as JSON")
	cmd.Flags().StringVar(&f.imagesDir, "images", "", "render diagrams through mermaid.ink into this directory")
	cmd.Flags().StringVar(&f.exportDir, "export", "", "write annotations and .mmd diagram files into this directory")
	cmd.Flags().StringVar(&f.serveAddr, "serve", "", "serve the results page on this address after analyzing")
	return cmd
}

func runAnalyze(cmd *cobra.Command, g *globalFlags, f *analyzeFlags, files []string) error {
	ctx := cmd.Context()

	ws, err := openWorkspace(g)
	if err != nil {
		return err
	}
	defer ws.close()

	reqs, err := buildRequests(ws, f, files)
	if err != nil {
		return err
	}
	mock := f.mock || ws.cfg.UseMockResponse
	for i := range reqs {
		reqs[i].Mock = mock
	}

	if !mock && ws.cfg.APIKey == "" && !transport.IsLocalhostURL(ws.cfg.APIURL) && isTerminal(os.Stdin) {
		key, err := promptAPIKey()
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		ws.cfg.APIKey = key
	}

	reg := prometheus.NewRegistry()
	analyzer, err := devnotes.NewAnalyzer(ws.cfg, devnotes.WithMetrics(metrics.New(reg)))
	if err != nil {
		return err
	}

	results, err := analyzeAll(ctx, analyzer, reqs, ws.cfg.Concurrency)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printAnalyses(out, results, f.json); err != nil {
		return err
	}

	results[len(results)-1].Record(ws.sess)
	if err := ws.save(); err != nil {
		return err
	}

	if f.exportDir != "" || f.imagesDir != "" {
		if err := export(ctx, cmd.ErrOrStderr(), results, f); err != nil {
			return err
		}
	}

	if f.serveAddr != "" {
		srv := server.New(ws.sess, server.Config{Gatherer: reg, Logger: devnotes.Logger})
		fmt.Fprintf(cmd.ErrOrStderr(), "Serving results on http://%s (Ctrl+C to stop)\n", f.serveAddr)
		return srv.Run(ctx, f.serveAddr)
	}
	return nil
}

// buildRequests 文件参数优先，其次使用标记的上下文
func buildRequests(ws *workspace, f *analyzeFlags, files []string) ([]devnotes.Request, error) {
	start, end := 0, 0
	if f.lines != "" {
		if len(files) != 1 {
			return nil, errors.New("--lines requires exactly one file")
		}
		var err error
		if start, end, err = parseLines(f.lines); err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		if ws.sess.Len() == 0 {
			return nil, fmt.Errorf("%w: pass files or tag context with 'devnotes context add'", devnotes.ErrEmptySource)
		}
		root, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		return []devnotes.Request{{Snapshots: ws.sess.Snapshots(root)}}, nil
	}

	reqs := make([]devnotes.Request, 0, len(files))
	for _, file := range files {
		req, err := devnotes.FileRequest(file, start, end)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// analyzeAll 并发分析，结果按输入顺序返回
func analyzeAll(ctx context.Context, a *devnotes.Analyzer, reqs []devnotes.Request, limit int) ([]*devnotes.Analysis, error) {
	results := make([]*devnotes.Analysis, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			res, err := a.Analyze(gctx, req)
			if err != nil {
				if req.SourceFilePath != "" {
					return fmt.Errorf("%s: %w", req.SourceFilePath, err)
				}
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printAnalyses(w io.Writer, results []*devnotes.Analysis, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}

	styled := isTerminal(w)
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := render.Terminal(w, res.Snapshot(), styled); err != nil {
			return err
		}
	}
	return nil
}

func export(ctx context.Context, log io.Writer, results []*devnotes.Analysis, f *analyzeFlags) error {
	for _, res := range results {
		contents := devnotes.Contents(ctx, res, f.imagesDir != "", nil)

		var files, images []devnotes.Content
		for _, c := range contents {
			if c.Type == devnotes.ContentTypePhoto {
				images = append(images, c)
			} else {
				files = append(files, c)
			}
		}

		for _, batch := range []struct {
			dir      string
			contents []devnotes.Content
		}{{f.exportDir, files}, {f.imagesDir, images}} {
			if batch.dir == "" || len(batch.contents) == 0 {
				continue
			}
			paths, err := devnotes.WriteContents(batch.dir, batch.contents)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(log, "Wrote", p)
			}
		}
	}
	return nil
}

func promptAPIKey() (string, error) {
	var key string
	err := huh.NewInput().
		Title("Enter Devnotes API key").
		Description("Or set api_key in devnotes.yaml / " + devnotes.EnvAPIKey).
		Placeholder("sk-...").
		EchoMode(huh.EchoModePassword).
		Value(&key).
		Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(key), nil
}
