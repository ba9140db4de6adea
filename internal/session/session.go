// Package session 保存用户标记的上下文片段与最近一次分析结果
//
// Session 由调用方持有并显式传递，不使用进程级可变全局状态。
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/riverfjs/devnotes-go/internal/types"
)

// ErrNotFound is returned by Store.Load for keys that were never saved.
var ErrNotFound = errors.New("session: not found")

// Position 编辑器坐标（0-based）
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range 编辑器选区
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Entry 一个标记的文件或选区
type Entry struct {
	Path  string `json:"path"`
	Range *Range `json:"range,omitempty"`
	Label string `json:"label,omitempty"`
}

// Snapshot 标记条目在某一时刻的内容
type Snapshot struct {
	Label   string
	Content string
}

// LastDiagram 最近一次分析的第一个图表及其行映射
type LastDiagram struct {
	Diagram        string              `json:"mermaid_diagram"`
	CodeInsights   []types.CodeInsight `json:"code_insights"`
	SourceFilePath string              `json:"sourceFilePath"`
}

// Analysis 最近一次分析的完整结果，供结果视图读取
type Analysis struct {
	RequestID      string                  `json:"requestId"`
	Annotations    string                  `json:"annotations"`
	Diagrams       []types.DiagramArtifact `json:"diagrams"`
	CodeInsights   []types.CodeInsight     `json:"codeInsights"`
	SourceFilePath string                  `json:"sourceFilePath"`
}

const unreadable = "(could not read file)"

// Session holds tagged entries and the last analysis. It is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	entries  []Entry
	diagram  *LastDiagram
	analysis *Analysis
}

// New 创建空会话
func New() *Session {
	return &Session{}
}

// Add 添加条目；同一路径的整文件条目、同一起始行的选区条目不重复添加
func (s *Session) Add(e Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.entries {
		if cur.Path != e.Path {
			continue
		}
		if cur.Range == nil && e.Range == nil {
			return false
		}
		if cur.Range != nil && e.Range != nil && cur.Range.Start.Line == e.Range.Start.Line {
			return false
		}
	}
	s.entries = append(s.entries, e)
	return true
}

// Remove 带 r 时删除该路径下起始行相同的选区条目，否则删除该路径的全部条目
func (s *Session) Remove(path string, r *Range) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		drop := e.Path == path
		if r != nil {
			drop = drop && e.Range != nil && e.Range.Start.Line == r.Start.Line
		}
		if drop {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed
}

// Clear 清空所有条目
func (s *Session) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

// Entries returns a copy of the tagged entries.
func (s *Session) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of tagged entries.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SetEntries replaces all entries (used when loading from a Store).
func (s *Session) SetEntries(entries []Entry) {
	s.mu.Lock()
	s.entries = append([]Entry(nil), entries...)
	s.mu.Unlock()
}

// Snapshots 读取每个条目的当前内容；相对路径基于 root
func (s *Session) Snapshots(root string) []Snapshot {
	entries := s.Entries()
	out := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		p := e.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			label := e.Label
			if label == "" {
				label = e.Path
			}
			out = append(out, Snapshot{Label: label, Content: unreadable})
			continue
		}
		content := string(data)
		if e.Range != nil {
			content = sliceRange(content, *e.Range)
		}
		label := e.Label
		if label == "" {
			label = filepath.Base(e.Path)
		}
		out = append(out, Snapshot{Label: label, Content: content})
	}
	return out
}

// SetLastDiagram 记录最近一次图表
func (s *Session) SetLastDiagram(d LastDiagram) {
	s.mu.Lock()
	s.diagram = &d
	s.mu.Unlock()
}

// LastDiagram returns the last diagram, if any.
func (s *Session) LastDiagram() (LastDiagram, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.diagram == nil {
		return LastDiagram{}, false
	}
	return *s.diagram, true
}

// SetLastAnalysis 记录最近一次分析
func (s *Session) SetLastAnalysis(a Analysis) {
	s.mu.Lock()
	s.analysis = &a
	s.mu.Unlock()
}

// LastAnalysis returns the last analysis, if any.
func (s *Session) LastAnalysis() (Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.analysis == nil {
		return Analysis{}, false
	}
	return *s.analysis, true
}

// sliceRange 按编辑器坐标截取文本，越界坐标收敛到文本边界
func sliceRange(content string, r Range) string {
	start := offset(content, r.Start)
	end := offset(content, r.End)
	if end < start {
		return ""
	}
	return content[start:end]
}

func offset(content string, p Position) int {
	if p.Line < 0 {
		return 0
	}
	pos := 0
	for line := 0; line < p.Line; line++ {
		i := strings.IndexByte(content[pos:], '\n')
		if i < 0 {
			return len(content)
		}
		pos += i + 1
	}
	lineEnd := len(content)
	if i := strings.IndexByte(content[pos:], '\n'); i >= 0 {
		lineEnd = pos + i
	}
	col := p.Character
	if col < 0 {
		col = 0
	}
	if pos+col > lineEnd {
		return lineEnd
	}
	return pos + col
}

// Describe 用于列表展示
func (e Entry) Describe() string {
	label := e.Label
	if label == "" {
		label = e.Path
	}
	if e.Range == nil {
		return label
	}
	return fmt.Sprintf("%s [%d-%d]", label, e.Range.Start.Line+1, e.Range.End.Line+1)
}
