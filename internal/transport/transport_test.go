package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPost 测试请求体、请求头与非 2xx 透传
func TestPost(t *testing.T) {
	var got openai.ChatCompletionRequest
	var auth, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit"}}`))
	}))
	defer srv.Close()

	c := NewClient()
	req := ChatRequest("gpt-4o-mini", "sys", "code", 4096, 0.2)
	res, err := c.Post(context.Background(), srv.URL, req, AuthHeaders("sk-test"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, `{"error":{"message":"Rate limit"}}`, res.Body)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "code", got.Messages[1].Content)
	assert.Equal(t, 4096, got.MaxTokens)
}

// TestPostNetworkError 网络失败返回 error
func TestPostNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(WithHTTPClient(&http.Client{Timeout: time.Second})).Post(context.Background(), url, map[string]string{}, nil)
	assert.Error(t, err)
}

// TestPostRateLimitCanceled 限流等待受 context 控制
func TestPostRateLimitCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewClient(WithRequestsPerMinute(1))
	_, err := c.Post(context.Background(), srv.URL, struct{}{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Post(ctx, srv.URL, struct{}{}, nil)
	assert.Error(t, err)
}

// TestIsLocalhostURL 测试本地地址识别
func TestIsLocalhostURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:8000/generate-mermaid-diagram", true},
		{"http://LOCALHOST/", true},
		{"http://127.0.0.1:9000", true},
		{"http://[::1]:8080/x", true},
		{"https://api.openai.com/v1/chat/completions", false},
		{"::not a url", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLocalhostURL(tt.url))
		})
	}
}

// TestAuthHeaders 无 key 时不设置 Authorization
func TestAuthHeaders(t *testing.T) {
	assert.Empty(t, AuthHeaders(""))
	assert.Equal(t, map[string]string{"Authorization": "Bearer k"}, AuthHeaders("k"))
}

func TestClientOptions(t *testing.T) {
	c := NewClient()
	assert.Equal(t, 60*time.Second, c.http.Timeout)
	assert.Nil(t, c.limiter)

	c = NewClient(WithTimeout(5*time.Second), WithRequestsPerMinute(30))
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.NotNil(t, c.limiter)

	hc := &http.Client{}
	c = NewClient(WithHTTPClient(hc), WithRequestsPerMinute(0))
	assert.Same(t, hc, c.http)
	assert.Nil(t, c.limiter)
}
