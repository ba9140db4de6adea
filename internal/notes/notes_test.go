package notes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// TestReadWrite 测试旁路笔记读写
func TestReadWrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "developers.py")

	got, err := Read(src)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, Write(src, "uses PynamoDB"))
	got, err = Read(src)
	require.NoError(t, err)
	assert.Equal(t, "uses PynamoDB", got)
	assert.Equal(t, filepath.Join(dir, ".devnotes"), PathFor(src))
}

// TestDiscoverAndAggregate 测试汇总
func TestDiscoverAndAggregate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".devnotes"), "old summary")
	writeFile(t, filepath.Join(root, "api", ".devnotes"), "  REST layer \n")
	writeFile(t, filepath.Join(root, "db", ".devnotes"), "Dynamo models")
	writeFile(t, filepath.Join(root, "api", "diagram-1-sequenceDiagram.mmd"), "sequenceDiagram\nA->>B: hi\n")
	writeFile(t, filepath.Join(root, "node_modules", "x", ".devnotes"), "ignored")
	writeFile(t, filepath.Join(root, ".git", "y.mmd"), "ignored")

	d, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("api", ".devnotes"), filepath.Join("db", ".devnotes")}, d.NotesPaths)
	assert.Equal(t, []string{filepath.Join("api", "diagram-1-sequenceDiagram.mmd")}, d.DiagramPaths)

	doc, err := Aggregate(d)
	require.NoError(t, err)
	want := "# Holistic .devnotes\n\n" +
		"## api\n\nREST layer\n\n" +
		"## db\n\nDynamo models\n\n" +
		"## Diagrams\n\n### api/diagram-1-sequenceDiagram.mmd\n\n```mermaid\nsequenceDiagram\nA->>B: hi\n```\n"
	assert.Equal(t, want, doc)

	path, err := WriteTopLevel(root, doc)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

// TestAggregateEmpty 没有可汇总内容时
func TestAggregateEmpty(t *testing.T) {
	d, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.True(t, d.Empty())

	doc, err := Aggregate(d)
	require.NoError(t, err)
	assert.Equal(t, "# Holistic .devnotes\n\nNothing to aggregate yet. Add .devnotes files or run analysis to generate diagrams.", doc)
}
