// Package server 提供结果视图与代码跳转接口
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riverfjs/devnotes-go/internal/navigate"
	"github.com/riverfjs/devnotes-go/internal/render"
	"github.com/riverfjs/devnotes-go/internal/session"
	"github.com/riverfjs/devnotes-go/internal/types"
)

const emptyPage = `<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>DevNotes</title></head>
<body><p>(No analysis yet)</p></body></html>
`

// Config 服务配置
type Config struct {
	// Root 相对路径的解析基准
	Root string
	// Gatherer 为 nil 时 /metrics 使用默认注册表
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server serves the last analysis held by a Session.
type Server struct {
	sess   *session.Session
	cfg    Config
	engine *gin.Engine
}

// OpenRequest 跳转请求
type OpenRequest struct {
	FilePath      string `json:"filePath"`
	CodeStartLine int    `json:"codeStartLine"`
	CodeEndLine   int    `json:"codeEndLine"`
}

// OpenResponse 0-based 跳转目标与对应代码
type OpenResponse struct {
	FilePath  string `json:"filePath"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Clamped   bool   `json:"clamped"`
	Snippet   string `json:"snippet"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// New 创建服务并注册路由
func New(sess *session.Session, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{sess: sess, cfg: cfg, engine: gin.New()}
	s.engine.Use(gin.Recovery())
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/api/analysis", s.handleAnalysis)
	s.engine.POST("/api/open", s.handleOpen)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	return s
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 监听 addr 直到 ctx 取消
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("Results server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	a, ok := s.sess.LastAnalysis()
	if !ok {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(emptyPage))
		return
	}
	body, err := render.HTML(a)
	if err != nil {
		s.cfg.Logger.Error("Render results page failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

func (s *Server) handleAnalysis(c *gin.Context) {
	a, ok := s.sess.LastAnalysis()
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no analysis yet"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleOpen(c *gin.Context) {
	logger := s.cfg.Logger.With("handler", "open")

	if c.ContentType() != gin.MIMEJSON {
		c.JSON(http.StatusUnsupportedMediaType, ErrorResponse{Error: "content type must be application/json"})
		return
	}

	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	path := req.FilePath
	if path == "" {
		if a, ok := s.sess.LastAnalysis(); ok {
			path = a.SourceFilePath
		}
	}
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no source file"})
		return
	}
	path = s.resolve(path)
	if !s.allowed(path) {
		logger.Warn("Refused path outside the analysis", "path", path)
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "file not part of the analysis"})
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Source file unreadable", "path", path, "error", err)
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "could not read file"})
		return
	}

	source := string(data)
	insight := types.CodeInsight{CodeStartLine: req.CodeStartLine, CodeEndLine: req.CodeEndLine}
	target, err := navigate.Resolve(insight, navigate.LineCount(source))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	logger.Debug("Resolved code link", "path", path, "start", target.StartLine, "end", target.EndLine)
	c.JSON(http.StatusOK, OpenResponse{
		FilePath:  path,
		StartLine: target.StartLine,
		EndLine:   target.EndLine,
		Clamped:   target.Clamped,
		Snippet:   navigate.Snippet(source, target),
	})
}

// resolve 以 Root 为基准得到清理后的路径
func (s *Server) resolve(path string) string {
	if !filepath.IsAbs(path) && s.cfg.Root != "" {
		path = filepath.Join(s.cfg.Root, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// allowed 只放行上次分析的源文件与已标记的条目
func (s *Server) allowed(path string) bool {
	if a, ok := s.sess.LastAnalysis(); ok && a.SourceFilePath != "" && s.resolve(a.SourceFilePath) == path {
		return true
	}
	for _, e := range s.sess.Entries() {
		if s.resolve(e.Path) == path {
			return true
		}
	}
	return false
}
