package devnotes

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig 默认值与副本语义
func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", c.APIURL)
	assert.Equal(t, "gpt-4o-mini", c.Model)
	assert.Equal(t, 60*time.Second, c.Timeout)
	assert.Equal(t, 4096, c.MaxTokens)
	assert.InDelta(t, 0.2, c.Temperature, 1e-6)
	require.NoError(t, c.Validate())

	c.Model = "changed"
	assert.Equal(t, "gpt-4o-mini", DefaultConfig().Model)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devnotes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://localhost:8000/v1/chat\nmodel: llama3\ntimeout: 5s\nconcurrency: 2\n"), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/v1/chat", c.APIURL)
	assert.Equal(t, "llama3", c.Model)
	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.Equal(t, 2, c.Concurrency)
	// 未写出的字段保留默认值
	assert.Equal(t, 4096, c.MaxTokens)
}

func TestLoadConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devnotes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: from-file\n"), 0o644))
	t.Setenv(EnvModel, "from-env")
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvAPIURL, "http://127.0.0.1:9000/chat")

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Model)
	assert.Equal(t, "sk-env", c.APIKey)
	assert.Equal(t, "http://127.0.0.1:9000/chat", c.APIURL)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("api_url: [\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("api_url: not a url\ntemperature: 5\n"), 0o644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "invalid config")
}

// TestWriteDefaultConfig 写入后可以读回，且不会覆盖
func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "devnotes.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Model, c.Model)
	assert.Equal(t, DefaultConfig().Timeout, c.Timeout)

	assert.Error(t, WriteDefaultConfig(path))
}

func TestResolvedStorePath(t *testing.T) {
	c := DefaultConfig()
	c.StorePath = "/tmp/store"
	p, err := c.ResolvedStorePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/store", p)
}
