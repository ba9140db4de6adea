package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// StandardOptions goldmark 扩展配置
var StandardOptions = []goldmark.Option{
	goldmark.WithExtensions(
		extension.GFM,            // GitHub Flavored Markdown (tables, strikethrough, tasklists)
		extension.DefinitionList, // 定义列表
		extension.Footnote,       // 脚注
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // 自动生成标题 ID
	),
}

var markdown = goldmark.New(StandardOptions...)

// BlockKind 注释文本中的块类型
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	ListItem
	Quote
	Code
	Rule
)

// Block 一个扁平化的块，供终端渲染
type Block struct {
	Kind     BlockKind
	Level    int // 标题级别或列表嵌套深度
	Text     string
	Language string
}

// ParseAST 仅解析为 AST，不遍历
func ParseAST(source []byte) ast.Node {
	return markdown.Parser().Parse(text.NewReader(source))
}

// Blocks 解析 Markdown 并按文档顺序返回扁平块列表
func Blocks(md string) []Block {
	source := []byte(md)
	doc := ParseAST(source)

	var out []Block
	listDepth := 0
	quoteDepth := 0
	itemStarted := false

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.List:
			if entering {
				listDepth++
			} else {
				listDepth--
			}
		case *ast.ListItem:
			itemStarted = entering
		case *ast.Blockquote:
			if entering {
				quoteDepth++
			} else {
				quoteDepth--
			}
		case *ast.Heading:
			if entering {
				out = append(out, Block{Kind: Heading, Level: node.Level, Text: inlineText(node, source)})
				return ast.WalkSkipChildren, nil
			}
		case *ast.Paragraph, *ast.TextBlock:
			if !entering {
				return ast.WalkContinue, nil
			}
			b := Block{Kind: Paragraph, Text: inlineText(node, source)}
			switch {
			case quoteDepth > 0:
				b.Kind = Quote
			case listDepth > 0 && itemStarted:
				b.Kind = ListItem
				b.Level = listDepth
				itemStarted = false
			}
			out = append(out, b)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			if entering {
				out = append(out, Block{Kind: Code, Text: codeText(node, source), Language: string(node.Language(source))})
				return ast.WalkSkipChildren, nil
			}
		case *ast.CodeBlock:
			if entering {
				out = append(out, Block{Kind: Code, Text: codeText(node, source)})
				return ast.WalkSkipChildren, nil
			}
		case *ast.ThematicBreak:
			if entering {
				out = append(out, Block{Kind: Rule})
			}
		}
		return ast.WalkContinue, nil
	})
	return out
}

// HTML 将注释渲染为 HTML；原始 HTML 不会输出
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// inlineText 收集节点下所有行内文本
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.AutoLink:
			sb.Write(t.Label(source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func codeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}
