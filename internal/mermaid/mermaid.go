// Package mermaid 生成 mermaid.live / mermaid.ink 链接并下载渲染后的图片
//
// 渲染由外部服务完成，这里只负责编码与下载。
package mermaid

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"time"

	_ "golang.org/x/image/webp"
)

const (
	liveBase = "https://mermaid.live/edit/#"
	inkBase  = "https://mermaid.ink/img/"

	// maxImageBytes 防止异常响应占满内存
	maxImageBytes = 10 << 20
)

// Config Mermaid 渲染配置
type Config struct {
	Theme string  `json:"theme"`
	Width int     `json:"-"`
	Scale float64 `json:"-"`
	Type  string  `json:"-"`
}

// DefaultConfig 返回默认 Mermaid 配置
func DefaultConfig() *Config {
	return &Config{
		Theme: "default",
		Width: 800,
		Scale: 2,
		Type:  "webp",
	}
}

// compressToDeflate 使用 DEFLATE 算法压缩数据
func compressToDeflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GeneratePako 生成图表的 pako 编码（mermaid.live 与 mermaid.ink 通用）
func GeneratePako(diagram string, config *Config) (string, error) {
	if config == nil {
		config = DefaultConfig()
	}

	jsonBytes, err := json.Marshal(map[string]any{
		"code":    diagram,
		"mermaid": config,
	})
	if err != nil {
		return "", err
	}

	compressed, err := compressToDeflate(jsonBytes)
	if err != nil {
		return "", err
	}
	return "pako:" + base64.URLEncoding.EncodeToString(compressed), nil
}

// LiveURL 在浏览器中编辑图表的链接
func LiveURL(diagram string) (string, error) {
	pako, err := GeneratePako(diagram, nil)
	if err != nil {
		return "", err
	}
	return liveBase + pako, nil
}

// InkURL 渲染图片的链接
func InkURL(diagram string, config *Config) (string, error) {
	if config == nil {
		config = DefaultConfig()
	}
	pako, err := GeneratePako(diagram, config)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("theme", config.Theme)
	if config.Width > 0 {
		q.Set("width", fmt.Sprint(config.Width))
	}
	if config.Scale > 0 {
		q.Set("scale", fmt.Sprint(config.Scale))
	}
	if config.Type != "" {
		q.Set("type", config.Type)
	}
	return inkBase + pako + "?" + q.Encode(), nil
}

// DownloadImage 下载图片
func DownloadImage(ctx context.Context, imageURL string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "devnotes-go")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image data: %w", err)
	}
	return data, nil
}

// IsImage 检查数据头是否为可解码的 PNG/JPEG/GIF/WebP
func IsImage(data []byte) (string, bool) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	return format, true
}

// Image 渲染结果
type Image struct {
	Data    []byte
	Format  string
	LiveURL string
}

// RenderImage 通过 mermaid.ink 渲染图表，返回图片与编辑链接
func RenderImage(ctx context.Context, diagram string, client *http.Client) (*Image, error) {
	return renderFrom(ctx, inkBase, diagram, client)
}

func renderFrom(ctx context.Context, base, diagram string, client *http.Client) (*Image, error) {
	inkURL, err := InkURL(diagram, nil)
	if err != nil {
		return nil, err
	}
	live, err := LiveURL(diagram)
	if err != nil {
		return nil, err
	}

	data, err := DownloadImage(ctx, base+inkURL[len(inkBase):], client)
	if err != nil {
		return nil, err
	}
	format, ok := IsImage(data)
	if !ok {
		return nil, fmt.Errorf("downloaded data is not a valid image")
	}
	return &Image{Data: data, Format: format, LiveURL: live}, nil
}
