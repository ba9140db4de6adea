package devnotes

import (
	"net/http"

	"github.com/riverfjs/devnotes-go/internal/metrics"
	"github.com/riverfjs/devnotes-go/internal/response"
)

// analyzerOptions holds optional collaborators of an Analyzer.
type analyzerOptions struct {
	httpClient  *http.Client
	recorder    *metrics.Recorder
	interpreter *response.Interpreter
}

// Option configures an Analyzer.
type Option func(*analyzerOptions)

// WithHTTPClient sets the HTTP client used for the chat endpoint.
func WithHTTPClient(hc *http.Client) Option {
	return func(opts *analyzerOptions) {
		opts.httpClient = hc
	}
}

// WithMetrics records interpretations, diagrams and request latency.
func WithMetrics(r *metrics.Recorder) Option {
	return func(opts *analyzerOptions) {
		opts.recorder = r
	}
}

// WithFields replaces the field names accepted in the structured shape.
func WithFields(fields Fields) Option {
	return func(opts *analyzerOptions) {
		opts.interpreter = response.New(fields)
	}
}

// WithInterpreter sets a fully custom interpreter.
func WithInterpreter(in *response.Interpreter) Option {
	return func(opts *analyzerOptions) {
		opts.interpreter = in
	}
}

// applyOptions applies the given options to the defaults.
func applyOptions(opts ...Option) *analyzerOptions {
	options := &analyzerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.interpreter == nil {
		options.interpreter = response.New(response.DefaultFields())
	}
	return options
}
