package devnotes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// 环境变量覆盖配置文件
const (
	EnvAPIURL = "DEVNOTES_API_URL"
	EnvAPIKey = "DEVNOTES_API_KEY"
	EnvModel  = "DEVNOTES_MODEL"
)

// Config holds the analyzer settings loaded from devnotes.yaml.
type Config struct {
	APIURL            string        `yaml:"api_url" validate:"required,url"`
	APIKey            string        `yaml:"api_key,omitempty"`
	Model             string        `yaml:"model" validate:"required"`
	UseMockResponse   bool          `yaml:"use_mock_response"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxTokens         int           `yaml:"max_tokens" validate:"gt=0"`
	Temperature       float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"gte=0"`
	Concurrency       int           `yaml:"concurrency" validate:"gte=1,lte=32"`
	// StorePath 为空时使用 ~/.devnotes/store
	StorePath string `yaml:"store_path,omitempty"`
}

var (
	defaultConfig     *Config
	defaultConfigOnce sync.Once

	configValidate = validator.New()
)

// DefaultConfig returns a copy of the default configuration.
func DefaultConfig() *Config {
	defaultConfigOnce.Do(func() {
		defaultConfig = &Config{
			APIURL:      "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-4o-mini",
			Timeout:     60 * time.Second,
			MaxTokens:   4096,
			Temperature: 0.2,
			Concurrency: 4,
		}
	})
	c := *defaultConfig
	return &c
}

// Validate 校验配置字段
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ResolvedStorePath 返回会话存储目录
func (c *Config) ResolvedStorePath() (string, error) {
	if c.StorePath != "" {
		return c.StorePath, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "store"), nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".devnotes"), nil
}

// DefaultConfigPath ~/.devnotes/devnotes.yaml
func DefaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "devnotes.yaml"), nil
}

// LoadConfig 读取配置文件并应用环境变量
//
// path 为空时使用默认路径；默认路径下的文件不存在时先写入默认配置。
// 显式指定但不存在的文件返回错误。
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		Logger.Info("First run detected, creating the config", "path", path)
		if err := WriteDefaultConfig(path); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefaultConfig 写入默认配置，已存在的文件不会被覆盖
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func applyEnv(c *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Model = v
	}
}
