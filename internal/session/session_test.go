package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverfjs/devnotes-go/internal/types"
)

func lines(a, b int) *Range {
	return &Range{Start: Position{Line: a}, End: Position{Line: b}}
}

// TestAddDedupe 测试添加去重规则
func TestAddDedupe(t *testing.T) {
	s := New()
	assert.True(t, s.Add(Entry{Path: "a.py"}))
	assert.False(t, s.Add(Entry{Path: "a.py"}), "whole file twice")
	assert.True(t, s.Add(Entry{Path: "a.py", Range: lines(3, 5)}))
	assert.False(t, s.Add(Entry{Path: "a.py", Range: lines(3, 9)}), "same start line")
	assert.True(t, s.Add(Entry{Path: "a.py", Range: lines(4, 9)}))
	assert.True(t, s.Add(Entry{Path: "b.py", Range: lines(3, 5)}))
	assert.Equal(t, 4, s.Len())
}

// TestRemove 测试按路径/选区删除
func TestRemove(t *testing.T) {
	s := New()
	s.Add(Entry{Path: "a.py"})
	s.Add(Entry{Path: "a.py", Range: lines(1, 2)})
	s.Add(Entry{Path: "a.py", Range: lines(7, 8)})
	s.Add(Entry{Path: "b.py"})

	assert.Equal(t, 1, s.Remove("a.py", lines(7, 0)))
	assert.Equal(t, 3, s.Len())

	assert.Equal(t, 2, s.Remove("a.py", nil))
	require.Len(t, s.Entries(), 1)
	assert.Equal(t, "b.py", s.Entries()[0].Path)

	assert.Equal(t, 0, s.Remove("missing", nil))
	s.Clear()
	assert.Zero(t, s.Len())
}

// TestEntriesIsCopy 返回的切片不与会话共享
func TestEntriesIsCopy(t *testing.T) {
	s := New()
	s.Add(Entry{Path: "a.py"})
	got := s.Entries()
	got[0].Path = "changed"
	assert.Equal(t, "a.py", s.Entries()[0].Path)
}

// TestSnapshots 测试读取整文件、选区与不可读文件
func TestSnapshots(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "dev.py"), []byte("line0\nline1\nline2\nline3\n"), 0644))

	s := New()
	s.Add(Entry{Path: "dev.py"})
	s.Add(Entry{Path: "dev.py", Label: "dev.py (selection)", Range: &Range{
		Start: Position{Line: 1, Character: 0},
		End:   Position{Line: 2, Character: 5},
	}})
	s.Add(Entry{Path: "gone.py"})
	s.Add(Entry{Path: "other.py", Label: "Other"})

	snaps := s.Snapshots(root)
	require.Len(t, snaps, 4)
	assert.Equal(t, Snapshot{Label: "dev.py", Content: "line0\nline1\nline2\nline3\n"}, snaps[0])
	assert.Equal(t, Snapshot{Label: "dev.py (selection)", Content: "line1\nline2"}, snaps[1])
	assert.Equal(t, Snapshot{Label: "gone.py", Content: unreadable}, snaps[2])
	assert.Equal(t, Snapshot{Label: "Other", Content: unreadable}, snaps[3])
}

// TestSliceRange 测试越界坐标
func TestSliceRange(t *testing.T) {
	content := "ab\ncd\nef"
	assert.Equal(t, "b\ncd\ne", sliceRange(content, Range{Start: Position{0, 1}, End: Position{2, 1}}))
	assert.Equal(t, "cd", sliceRange(content, Range{Start: Position{1, 0}, End: Position{1, 99}}))
	assert.Equal(t, "ef", sliceRange(content, Range{Start: Position{2, 0}, End: Position{50, 0}}))
	assert.Equal(t, "", sliceRange(content, Range{Start: Position{2, 0}, End: Position{1, 0}}))
}

// TestBadgerStoreRoundTrip 测试会话持久化
func TestBadgerStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(StoreConfig{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	empty := New()
	require.NoError(t, store.Load(empty))
	assert.Zero(t, empty.Len())
	_, ok := empty.LastAnalysis()
	assert.False(t, ok)

	s := New()
	s.Add(Entry{Path: "a.py", Range: lines(1, 3), Label: "a.py (selection)"})
	s.SetLastDiagram(LastDiagram{Diagram: "classDiagram", CodeInsights: []types.CodeInsight{{DiagramStartLine: 1, CodeStartLine: 2, CodeEndLine: 3}}, SourceFilePath: "/x/a.py"})
	s.SetLastAnalysis(Analysis{
		RequestID: "id-1",
		Diagrams:  []types.DiagramArtifact{{Source: "erDiagram", Kind: types.EntityRelationshipDiagram}},
	})
	require.NoError(t, store.Save(s))

	loaded := New()
	require.NoError(t, store.Load(loaded))
	assert.Equal(t, s.Entries(), loaded.Entries())

	d, ok := loaded.LastDiagram()
	require.True(t, ok)
	assert.Equal(t, "/x/a.py", d.SourceFilePath)

	a, ok := loaded.LastAnalysis()
	require.True(t, ok)
	assert.Equal(t, types.EntityRelationshipDiagram, a.Diagrams[0].Kind)
}

// TestOpenStoreRequiresPath 持久化模式必须提供路径
func TestOpenStoreRequiresPath(t *testing.T) {
	_, err := OpenStore(StoreConfig{})
	assert.Error(t, err)
}

// TestDescribe 测试条目展示
func TestDescribe(t *testing.T) {
	assert.Equal(t, "a.py", Entry{Path: "a.py"}.Describe())
	assert.Equal(t, "sel [2-4]", Entry{Path: "a.py", Label: "sel", Range: lines(1, 3)}.Describe())
}
