package util

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/riverfjs/devnotes-go/internal/types"
)

// ExtToLanguage maps file extensions to language names.
var ExtToLanguage = map[string]string{
	"py":         "python",
	"js":         "javascript",
	"mjs":        "javascript",
	"ts":         "typescript",
	"java":       "java",
	"cpp":        "c++",
	"cc":         "c++",
	"c":          "c",
	"h":          "c",
	"html":       "html",
	"css":        "css",
	"sh":         "bash",
	"php":        "php",
	"md":         "markdown",
	"json":       "json",
	"yaml":       "yaml",
	"yml":        "yaml",
	"xml":        "xml",
	"dockerfile": "dockerfile",
	"txt":        "plaintext",
	"toml":       "toml",
	"go":         "go",
	"rb":         "ruby",
	"rs":         "rust",
	"pl":         "perl",
	"swift":      "swift",
	"kt":         "kotlin",
	"sql":        "sql",
	"jsx":        "jsx",
	"tsx":        "tsx",
	"graphql":    "graphql",
	"r":          "r",
	"dart":       "dart",
	"scala":      "scala",
	"groovy":     "groovy",
	"cs":         "csharp",
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]+`)

// LanguageForPath returns the language of a source file, or "plaintext".
func LanguageForPath(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if base == "dockerfile" {
		return "dockerfile"
	}
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if lang, ok := ExtToLanguage[ext]; ok {
		return lang
	}
	return "plaintext"
}

// SafeName 将任意文本转换为可用作文件名的形式
func SafeName(s string) string {
	s = unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return "untitled"
	}
	return s
}

// DiagramFilename 导出图表的文件名，例如 users.py.diagram-1.sequenceDiagram.mmd
//
// index 从 1 开始；source 为空时以 "analysis" 代替。
func DiagramFilename(source string, index int, kind types.DiagramKind) string {
	return fmt.Sprintf("%s.diagram-%d.%s.mmd", stem(source), index, kind)
}

// ImageFilename 渲染图片的文件名
func ImageFilename(source string, index int, format string) string {
	if format == "" {
		format = "png"
	}
	return fmt.Sprintf("%s.diagram-%d.%s", stem(source), index, format)
}

func stem(source string) string {
	if source == "" {
		return "analysis"
	}
	return SafeName(filepath.Base(source))
}
