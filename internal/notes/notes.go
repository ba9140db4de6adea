// Package notes 管理源码旁的 .devnotes 文件，以及工作区级的汇总文档
package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileName 每个目录下的笔记文件名
const FileName = ".devnotes"

// DiagramExt 导出图表文件的扩展名
const DiagramExt = ".mmd"

// PathFor 返回 file 同目录下的 .devnotes 路径
func PathFor(file string) string {
	return filepath.Join(filepath.Dir(file), FileName)
}

// Read 读取 file 对应的笔记；文件不存在时返回空串
func Read(file string) (string, error) {
	data, err := os.ReadFile(PathFor(file))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read notes for %s: %w", file, err)
	}
	return string(data), nil
}

// Write 覆盖写入 file 对应的笔记
func Write(file, content string) error {
	if err := os.WriteFile(PathFor(file), []byte(content), 0644); err != nil {
		return fmt.Errorf("write notes for %s: %w", file, err)
	}
	return nil
}

// Discovery 工作区扫描结果（路径均为相对 Root 的路径，已排序）
type Discovery struct {
	Root         string
	NotesPaths   []string
	DiagramPaths []string
}

// Empty reports whether nothing was found.
func (d *Discovery) Empty() bool {
	return len(d.NotesPaths) == 0 && len(d.DiagramPaths) == 0
}

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Discover 遍历 root，收集子目录中的 .devnotes 与 *.mmd 文件
// 根目录自己的 .devnotes 是汇总输出，不计入
func Discover(root string) (*Discovery, error) {
	d := &Discovery{Root: root}
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && skipDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		switch {
		case entry.Name() == FileName && rel != FileName:
			d.NotesPaths = append(d.NotesPaths, rel)
		case strings.EqualFold(filepath.Ext(path), DiagramExt):
			d.DiagramPaths = append(d.DiagramPaths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover notes in %s: %w", root, err)
	}
	sort.Strings(d.NotesPaths)
	sort.Strings(d.DiagramPaths)
	return d, nil
}

const (
	holisticTitle = "# Holistic .devnotes"
	nothingYet    = "Nothing to aggregate yet. Add .devnotes files or run analysis to generate diagrams."
)

// Aggregate 生成汇总文档：每个目录的笔记一节，随后是所有图表
func Aggregate(d *Discovery) (string, error) {
	var sb strings.Builder
	sb.WriteString(holisticTitle + "\n\n")
	if d.Empty() {
		sb.WriteString(nothingYet)
		return sb.String(), nil
	}

	for _, rel := range d.NotesPaths {
		data, err := os.ReadFile(filepath.Join(d.Root, rel))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", rel, err)
		}
		dir := filepath.ToSlash(filepath.Dir(rel))
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", dir, strings.TrimSpace(string(data)))
	}

	if len(d.DiagramPaths) > 0 {
		sb.WriteString("## Diagrams\n\n")
		for _, rel := range d.DiagramPaths {
			data, err := os.ReadFile(filepath.Join(d.Root, rel))
			if err != nil {
				return "", fmt.Errorf("read %s: %w", rel, err)
			}
			fmt.Fprintf(&sb, "### %s\n\n```mermaid\n%s\n```\n\n", filepath.ToSlash(rel), strings.TrimSpace(string(data)))
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

// WriteTopLevel 写入 root/.devnotes
func WriteTopLevel(root, content string) (string, error) {
	path := filepath.Join(root, FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
