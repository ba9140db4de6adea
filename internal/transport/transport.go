// Package transport 负责与分析端点的一次请求/响应交换
//
// 这里只搬运字节：返回状态码与完整响应体，不解释内容，也不重试。
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// PostResult 一次交换的结果
type PostResult struct {
	StatusCode int
	Body       string
}

// Client POSTs JSON payloads.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRequestsPerMinute limits outgoing requests. Zero or negative disables limiting.
func WithRequestsPerMinute(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
		}
	}
}

// NewClient 创建客户端，默认 60 秒超时
func NewClient(opts ...ClientOption) *Client {
	c := &Client{http: &http.Client{Timeout: 60 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post 以 JSON 发送 body，返回状态码与响应体
//
// 非 2xx 状态不是错误，原样返回给调用方解释；只有网络/编码失败返回 error。
func (c *Client) Post(ctx context.Context, apiURL string, body any, headers map[string]string) (PostResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return PostResult{}, fmt.Errorf("encode request: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return PostResult{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return PostResult{}, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return PostResult{}, fmt.Errorf("post %s: %w", apiURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return PostResult{}, fmt.Errorf("read response: %w", err)
	}
	return PostResult{StatusCode: resp.StatusCode, Body: string(data)}, nil
}

// ChatRequest 构造 OpenAI 兼容的聊天补全请求
func ChatRequest(model, system, user string, maxTokens int, temperature float32) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// AuthHeaders 返回带 Bearer 认证（若有 key）的请求头
func AuthHeaders(apiKey string) map[string]string {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return headers
}

// IsLocalhostURL 本地端点（演示用）不需要 API key
func IsLocalhostURL(apiURL string) bool {
	u, err := url.Parse(apiURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Hostname()) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
