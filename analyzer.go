package devnotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riverfjs/devnotes-go/internal/diagram"
	"github.com/riverfjs/devnotes-go/internal/metrics"
	"github.com/riverfjs/devnotes-go/internal/notes"
	"github.com/riverfjs/devnotes-go/internal/response"
	"github.com/riverfjs/devnotes-go/internal/session"
	"github.com/riverfjs/devnotes-go/internal/transport"
	"github.com/riverfjs/devnotes-go/internal/util"
)

var (
	// ErrEmptySource is returned when there is nothing to analyze.
	ErrEmptySource = errors.New("devnotes: active file (or selection) required")
	// ErrMissingAPIKey is returned for a remote endpoint without an API key.
	ErrMissingAPIKey = errors.New("devnotes: API key required for non-local endpoint")
)

const (
	snapshotSeparator = "\n\n---\n\n"
	notesHeading      = "\n\n---\n\n## Custom context (.devnotes)\n\n"
)

// Request 一次分析的输入
type Request struct {
	// Source 待分析的文件内容或选区
	Source string
	// SourceFilePath 用于导航与 sidecar 注释，可为空
	SourceFilePath string
	// Notes sidecar .devnotes 内容
	Notes string
	// Snapshots 非空时代替 Source
	Snapshots []session.Snapshot
	// Mock 使用内置响应，不发请求
	Mock bool
}

// Analysis is the outcome of a successful analysis.
type Analysis struct {
	RequestID      string            `json:"requestId"`
	Annotations    string            `json:"annotations"`
	Diagrams       []string          `json:"diagramBlocks"`
	CodeInsights   []CodeInsight     `json:"code_insights"`
	Artifacts      []DiagramArtifact `json:"artifacts"`
	SourceFilePath string            `json:"sourceFilePath,omitempty"`
	Shape          Shape             `json:"-"`
	Mock           bool              `json:"mock,omitempty"`
}

// Snapshot 转为会话中保存的形式
func (a *Analysis) Snapshot() session.Analysis {
	return session.Analysis{
		RequestID:      a.RequestID,
		Annotations:    a.Annotations,
		Diagrams:       a.Artifacts,
		CodeInsights:   a.CodeInsights,
		SourceFilePath: a.SourceFilePath,
	}
}

// Record 保存为最近一次分析；有图表时同时记录第一个图表
func (a *Analysis) Record(s *session.Session) {
	s.SetLastAnalysis(a.Snapshot())
	if len(a.Diagrams) > 0 {
		s.SetLastDiagram(session.LastDiagram{
			Diagram:        a.Diagrams[0],
			CodeInsights:   a.CodeInsights,
			SourceFilePath: a.SourceFilePath,
		})
	}
}

// Analyzer sends source code to a chat endpoint and interprets the reply.
type Analyzer struct {
	cfg         *Config
	client      *transport.Client
	interpreter *response.Interpreter
	recorder    *metrics.Recorder
}

// NewAnalyzer 创建分析器；cfg 为 nil 时使用默认配置
func NewAnalyzer(cfg *Config, opts ...Option) (*Analyzer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := applyOptions(opts...)
	clientOpts := []transport.ClientOption{transport.WithRequestsPerMinute(cfg.RequestsPerMinute)}
	if options.httpClient != nil {
		clientOpts = append(clientOpts, transport.WithHTTPClient(options.httpClient))
	} else {
		clientOpts = append(clientOpts, transport.WithTimeout(cfg.Timeout))
	}

	return &Analyzer{
		cfg:         cfg,
		client:      transport.NewClient(clientOpts...),
		interpreter: options.interpreter,
		recorder:    options.recorder,
	}, nil
}

// Config 返回分析器使用的配置
func (a *Analyzer) Config() *Config {
	return a.cfg
}

// BuildPrompt 组装用户消息
//
// 有标记片段时只使用标记片段；否则使用源码，并在 notes 非空时追加 sidecar 注释。
func BuildPrompt(req Request) (string, error) {
	if len(req.Snapshots) > 0 {
		parts := make([]string, 0, len(req.Snapshots))
		for _, s := range req.Snapshots {
			parts = append(parts, "## "+s.Label+"\n\n"+s.Content)
		}
		return strings.Join(parts, snapshotSeparator), nil
	}

	if strings.TrimSpace(req.Source) == "" {
		return "", ErrEmptySource
	}
	prompt := req.Source
	if strings.TrimSpace(req.Notes) != "" {
		prompt += notesHeading + req.Notes
	}
	return prompt, nil
}

// Analyze 执行一次分析
//
// 解释失败时返回 *InterpretationError；网络错误原样包装返回，不重试。
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := Logger.With("request_id", id)
	if req.SourceFilePath != "" {
		logger = logger.With("file", req.SourceFilePath, "language", util.LanguageForPath(req.SourceFilePath))
	}

	mock := req.Mock || a.cfg.UseMockResponse
	var res ParsedResult
	if mock {
		logger.Debug("Using mock analysis response")
		res = a.interpreter.Interpret(MockResponse, 200)
	} else {
		res, err = a.request(ctx, prompt, logger.With("model", a.cfg.Model))
		if err != nil {
			return nil, err
		}
	}

	a.recorder.ObserveResult(res)
	if res.Failed() {
		logger.Warn("Analysis failed", "shape", res.Shape.String(), "error", res.Message)
		return nil, res.Err()
	}

	artifacts := make([]DiagramArtifact, 0, len(res.Diagrams))
	for _, d := range res.Diagrams {
		kind := diagram.Classify(d)
		a.recorder.ObserveDiagram(kind)
		artifacts = append(artifacts, DiagramArtifact{Source: d, Kind: kind})
	}

	logger.Info("Analysis complete",
		"shape", res.Shape.String(),
		"diagrams", len(artifacts),
		"code_insights", len(res.CodeInsights))

	return &Analysis{
		RequestID:      id,
		Annotations:    res.Annotations,
		Diagrams:       res.Diagrams,
		CodeInsights:   res.CodeInsights,
		Artifacts:      artifacts,
		SourceFilePath: req.SourceFilePath,
		Shape:          res.Shape,
		Mock:           mock,
	}, nil
}

func (a *Analyzer) request(ctx context.Context, prompt string, logger *slog.Logger) (ParsedResult, error) {
	if a.cfg.APIKey == "" && !transport.IsLocalhostURL(a.cfg.APIURL) {
		return ParsedResult{}, ErrMissingAPIKey
	}

	body := transport.ChatRequest(a.cfg.Model, SystemPrompt, prompt, a.cfg.MaxTokens, a.cfg.Temperature)
	start := time.Now()
	out, err := a.client.Post(ctx, a.cfg.APIURL, body, transport.AuthHeaders(a.cfg.APIKey))
	elapsed := time.Since(start)
	a.recorder.ObserveRequest(elapsed)
	if err != nil {
		return ParsedResult{}, fmt.Errorf("analysis request: %w", err)
	}

	logger.Debug("Analysis response received", "status", out.StatusCode, "bytes", len(out.Body), "elapsed", elapsed)
	return a.interpreter.Interpret(out.Body, out.StatusCode), nil
}

// FileRequest 读取文件（可选 1-based 闭区间行号）及其 sidecar 注释
//
// startLine 为 0 时读取整个文件。
func FileRequest(path string, startLine, endLine int) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("read source: %w", err)
	}
	source := string(data)
	if startLine > 0 {
		source, err = selectLines(source, startLine, endLine)
		if err != nil {
			return Request{}, err
		}
	}

	sidecar, err := notes.Read(path)
	if err != nil {
		return Request{}, fmt.Errorf("read notes: %w", err)
	}
	return Request{Source: source, SourceFilePath: path, Notes: sidecar}, nil
}

func selectLines(source string, start, end int) (string, error) {
	lines := strings.SplitAfter(source, "\n")
	if end < start || start > len(lines) {
		return "", fmt.Errorf("invalid line range %d:%d", start, end)
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], ""), nil
}
