package devnotes

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/riverfjs/devnotes-go/internal/mermaid"
	"github.com/riverfjs/devnotes-go/internal/util"
)

// ContentType represents the type of exported content.
type ContentType int

const (
	// ContentTypeText represents the annotations document.
	ContentTypeText ContentType = iota
	// ContentTypeFile represents a diagram source file.
	ContentTypeFile
	// ContentTypePhoto represents a rendered diagram image.
	ContentTypePhoto
)

// String returns the string representation of ContentType.
func (ct ContentType) String() string {
	switch ct {
	case ContentTypeText:
		return "text"
	case ContentTypeFile:
		return "file"
	case ContentTypePhoto:
		return "photo"
	default:
		return "unknown"
	}
}

// Content is one exported piece of an analysis.
type Content struct {
	Type     ContentType
	FileName string
	Data     []byte
	// Kind 与 LiveURL 仅对图表有意义
	Kind    DiagramKind
	LiveURL string
}

var renderImage = mermaid.RenderImage

// Contents 将分析结果拆成可写入磁盘的内容列表
//
// 顺序：注释文本，然后每个图表的 .mmd 源文件（images 为 true 时紧跟渲染图片）。
// 渲染失败只记录日志，源文件仍然保留。
func Contents(ctx context.Context, a *Analysis, images bool, client *http.Client) []Content {
	result := make([]Content, 0, 1+2*len(a.Artifacts))

	if a.Annotations != "" {
		result = append(result, Content{
			Type:     ContentTypeText,
			FileName: util.SafeName(stemOf(a.SourceFilePath)) + ".annotations.md",
			Data:     []byte(a.Annotations + "\n"),
		})
	}

	for i, art := range a.Artifacts {
		live, _ := mermaid.LiveURL(art.Source)
		result = append(result, Content{
			Type:     ContentTypeFile,
			FileName: util.DiagramFilename(a.SourceFilePath, i+1, art.Kind),
			Data:     []byte(art.Source + "\n"),
			Kind:     art.Kind,
			LiveURL:  live,
		})
		if !images {
			continue
		}

		img, err := renderImage(ctx, art.Source, client)
		if err != nil {
			Logger.Warn("Mermaid rendering failed", "index", i+1, "kind", art.Kind.String(), "error", err)
			continue
		}
		result = append(result, Content{
			Type:     ContentTypePhoto,
			FileName: util.ImageFilename(a.SourceFilePath, i+1, img.Format),
			Data:     img.Data,
			Kind:     art.Kind,
			LiveURL:  img.LiveURL,
		})
	}
	return result
}

// WriteContents 写入 dir，返回写入的路径
func WriteContents(dir string, contents []Content) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	paths := make([]string, 0, len(contents))
	for _, c := range contents {
		p := filepath.Join(dir, c.FileName)
		if err := os.WriteFile(p, c.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", c.FileName, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func stemOf(path string) string {
	if path == "" {
		return "analysis"
	}
	return filepath.Base(path)
}
