package devnotes

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverfjs/devnotes-go/internal/mermaid"
)

func sampleAnalysis() *Analysis {
	return &Analysis{
		Annotations: "Summary",
		Diagrams:    []string{"classDiagram\n  A <|-- B", "flowchart TD\n  A --> B"},
		Artifacts: []DiagramArtifact{
			{Source: "classDiagram\n  A <|-- B", Kind: ClassDiagram},
			{Source: "flowchart TD\n  A --> B", Kind: Unknown},
		},
		SourceFilePath: "app/users.py",
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text", ContentTypeText.String())
	assert.Equal(t, "file", ContentTypeFile.String())
	assert.Equal(t, "photo", ContentTypePhoto.String())
	assert.Equal(t, "unknown", ContentType(9).String())
}

// TestContents 不渲染图片
func TestContents(t *testing.T) {
	got := Contents(context.Background(), sampleAnalysis(), false, nil)
	require.Len(t, got, 3)

	assert.Equal(t, ContentTypeText, got[0].Type)
	assert.Equal(t, "users.py.annotations.md", got[0].FileName)
	assert.Equal(t, "Summary\n", string(got[0].Data))

	assert.Equal(t, ContentTypeFile, got[1].Type)
	assert.Equal(t, "users.py.diagram-1.classDiagram.mmd", got[1].FileName)
	assert.Contains(t, got[1].LiveURL, "mermaid.live")
	assert.Equal(t, "users.py.diagram-2.unknown.mmd", got[2].FileName)
}

// TestContentsImages 渲染失败时保留源文件
func TestContentsImages(t *testing.T) {
	orig := renderImage
	defer func() { renderImage = orig }()
	renderImage = func(_ context.Context, diagram string, _ *http.Client) (*mermaid.Image, error) {
		if diagram == "flowchart TD\n  A --> B" {
			return nil, errors.New("syntax error")
		}
		return &mermaid.Image{Data: []byte("img"), Format: "webp", LiveURL: "https://mermaid.live/edit/#pako:x"}, nil
	}

	got := Contents(context.Background(), sampleAnalysis(), true, nil)
	require.Len(t, got, 4)
	assert.Equal(t, ContentTypePhoto, got[2].Type)
	assert.Equal(t, "users.py.diagram-1.webp", got[2].FileName)
	assert.Equal(t, ContentTypeFile, got[3].Type)
}

func TestWriteContents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteContents(dir, Contents(context.Background(), sampleAnalysis(), false, nil))
	require.NoError(t, err)
	require.Len(t, paths, 3)

	data, err := os.ReadFile(filepath.Join(dir, "users.py.diagram-1.classDiagram.mmd"))
	require.NoError(t, err)
	assert.Equal(t, "classDiagram\n  A <|-- B\n", string(data))
}
