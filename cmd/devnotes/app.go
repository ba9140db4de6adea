package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	devnotes "github.com/riverfjs/devnotes-go"
	"github.com/riverfjs/devnotes-go/internal/session"
)

// workspace 已加载的配置与持久化会话
type workspace struct {
	cfg   *devnotes.Config
	sess  *session.Session
	store session.Store
}

func openWorkspace(g *globalFlags) (*workspace, error) {
	cfg, err := devnotes.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	path := g.storePath
	if path == "" {
		path, err = cfg.ResolvedStorePath()
		if err != nil {
			return nil, err
		}
	}
	store, err := session.OpenStore(session.StoreConfig{Path: path, Logger: devnotes.Logger})
	if err != nil {
		return nil, err
	}

	sess := session.New()
	if err := store.Load(sess); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &workspace{cfg: cfg, sess: sess, store: store}, nil
}

// save 持久化会话
func (w *workspace) save() error {
	if err := w.store.Save(w.sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (w *workspace) close() {
	if err := w.store.Close(); err != nil {
		devnotes.Logger.Warn("Close session store failed", "error", err)
	}
}

// parseLines 解析 "a:b"（1-based 闭区间）；单个数字表示单行
func parseLines(s string) (int, int, error) {
	a, b, found := strings.Cut(s, ":")
	start, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --lines %q: %w", s, err)
	}
	end := start
	if found {
		end, err = strconv.Atoi(strings.TrimSpace(b))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --lines %q: %w", s, err)
		}
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("invalid --lines %q: want start:end with 1 <= start <= end", s)
	}
	return start, end, nil
}

// isTerminal 判断 w 是否为交互式终端
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
