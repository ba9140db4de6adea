package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverfjs/devnotes-go/internal/types"
)

const fence = "```"

// TestExtract 测试围栏块提取
func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []types.DiagramArtifact
	}{
		{
			name:    "single block",
			content: "text\n\n" + fence + "mermaid\nclassDiagram\nA --> B\n" + fence + "\nmore",
			want:    []types.DiagramArtifact{{Source: "classDiagram\nA --> B", Kind: types.ClassDiagram}},
		},
		{
			name: "multiple blocks",
			content: fence + "mermaid\nsequenceDiagram\nA->>B: hi\n" + fence + "\n\n" +
				fence + "mermaid\nerDiagram\nE1 ||--o{ E2\n" + fence,
			want: []types.DiagramArtifact{
				{Source: "sequenceDiagram\nA->>B: hi", Kind: types.SequenceDiagram},
				{Source: "erDiagram\nE1 ||--o{ E2", Kind: types.EntityRelationshipDiagram},
			},
		},
		{
			name:    "no blocks",
			content: "just text",
			want:    []types.DiagramArtifact{},
		},
		{
			name:    "mixed content",
			content: "intro\n" + fence + "mermaid\nclassDiagram\nX\n" + fence + "\noutro",
			want:    []types.DiagramArtifact{{Source: "classDiagram\nX", Kind: types.ClassDiagram}},
		},
		{
			name:    "empty block dropped",
			content: fence + "mermaid\n   \n\n" + fence + "\n" + fence + "mermaid\ngraph TD\nA-->B\n" + fence,
			want:    []types.DiagramArtifact{{Source: "graph TD\nA-->B", Kind: types.Unknown}},
		},
		{
			name:    "tag is case-insensitive with trailing whitespace",
			content: "````MerMaid  \r\nclassDiagram\r\n````\r\n",
			want:    []types.DiagramArtifact{{Source: "classDiagram", Kind: types.ClassDiagram}},
		},
		{
			name:    "indented fences",
			content: "1. item\n   " + fence + "mermaid\n   erDiagram\n   A ||--|| B\n   " + fence + "\n",
			want:    []types.DiagramArtifact{{Source: "erDiagram\n   A ||--|| B", Kind: types.EntityRelationshipDiagram}},
		},
		{
			name:    "other languages ignored",
			content: fence + "python\nprint(1)\n" + fence + "\n" + fence + "mermaid\nclassDiagram\n" + fence,
			want:    []types.DiagramArtifact{{Source: "classDiagram", Kind: types.ClassDiagram}},
		},
		{
			name:    "text after tag is not a fence",
			content: fence + "mermaid classDiagram\nA\n" + fence,
			want:    []types.DiagramArtifact{},
		},
		{
			name:    "unterminated fence yields nothing",
			content: "intro\n" + fence + "mermaid\nclassDiagram\nA --> B\n",
			want:    []types.DiagramArtifact{},
		},
		{
			name: "unterminated fence does not hide later blocks",
			content: fence + "mermaid\nclassDiagram\nbroken\n" +
				fence + "mermaid\nsequenceDiagram\nA->>B: ok\n" + fence + "\n",
			want: []types.DiagramArtifact{{Source: "sequenceDiagram\nA->>B: ok", Kind: types.SequenceDiagram}},
		},
		{
			name:    "closing fence must be bare",
			content: fence + "mermaid\nclassDiagram\n" + fence + " trailing\nA\n" + fence,
			want:    []types.DiagramArtifact{{Source: "classDiagram\n" + fence + " trailing\nA", Kind: types.ClassDiagram}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.content)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestExtractCount 测试 n 个非空块与任意文本交错时恰好返回 n 个结果
func TestExtractCount(t *testing.T) {
	var sb strings.Builder
	kinds := []string{"classDiagram", "erDiagram", "sequenceDiagram", "flowchart LR"}
	for i := 0; i < 200; i++ {
		sb.WriteString("paragraph with `inline` code and ``` in prose\n")
		sb.WriteString(fence + "mermaid\n" + kinds[i%len(kinds)] + "\n  A --> B\n" + fence + "\n")
	}
	got := Extract(sb.String())
	require.Len(t, got, 200)
	for i, a := range got {
		assert.True(t, strings.HasPrefix(a.Source, kinds[i%len(kinds)]), "artifact %d out of order", i)
	}
}

// TestClassify 测试类型判定
func TestClassify(t *testing.T) {
	tests := []struct {
		source string
		want   types.DiagramKind
	}{
		{"classDiagram\nA", types.ClassDiagram},
		{"  CLASSDIAGRAM", types.ClassDiagram},
		{"erdiagram", types.EntityRelationshipDiagram},
		{"\n\nsequenceDiagram\n", types.SequenceDiagram},
		{"classDiagram-v2", types.ClassDiagram},
		{"flowchart TD", types.Unknown},
		{"graph LR\nclassDiagram", types.Unknown},
		{"", types.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.want.String()+"/"+tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.source))
		})
	}
}

// TestScanAndStrip 测试删除完整围栏区间（包括空块）
func TestScanAndStrip(t *testing.T) {
	text := "Summary.\n\n" + fence + "mermaid\nclassDiagram\nA --> B\n" + fence + "\nMiddle.\n" + fence + "mermaid\n\n" + fence + "\nEnd."
	blocks := Scan(text)
	require.Len(t, blocks, 2)
	assert.False(t, blocks[0].Empty())
	assert.True(t, blocks[1].Empty())
	assert.Equal(t, fence+"mermaid", text[blocks[0].Start:blocks[0].Start+len(fence)+7])

	stripped := Strip(text, blocks)
	assert.Equal(t, "Summary.\n\n\nMiddle.\n\nEnd.", stripped)
	assert.NotContains(t, stripped, fence)
	assert.Equal(t, text, Strip(text, nil))
}

// TestInlineClosingFence 与内容同行的收尾围栏不算闭合，文本留在注释中
func TestInlineClosingFence(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      []types.DiagramArtifact
		remaining string
	}{
		{
			name:      "only block",
			text:      fence + "mermaid\nsequenceDiagram" + fence,
			want:      []types.DiagramArtifact{},
			remaining: fence + "mermaid\nsequenceDiagram" + fence,
		},
		{
			name:      "after a closed block",
			text:      "x\n" + fence + "mermaid\nA\n" + fence + "\n\n" + fence + "mermaid\nsequenceDiagram" + fence,
			want:      []types.DiagramArtifact{{Source: "A", Kind: types.Unknown}},
			remaining: "x\n\n\n" + fence + "mermaid\nsequenceDiagram" + fence,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
			assert.Equal(t, tt.remaining, Strip(tt.text, Scan(tt.text)))
		})
	}
}

// TestExtractIdempotent 测试重复调用结果一致
func TestExtractIdempotent(t *testing.T) {
	text := fence + "mermaid\nclassDiagram\nA\n" + fence + "\n" + fence + "mermaid\nerDiagram\n" + fence
	assert.Equal(t, Extract(text), Extract(text))
}

// BenchmarkExtract 基准测试大输入
func BenchmarkExtract(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		sb.WriteString("some prose line\n" + fence + "mermaid\nclassDiagram\nA --> B\n" + fence + "\n")
	}
	// 大量未闭合围栏也应保持线性
	for i := 0; i < 1000; i++ {
		sb.WriteString(fence + "mermaid\n")
	}
	text := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Extract(text)
	}
}
