package response

import (
	"math"
	"strings"

	"github.com/riverfjs/devnotes-go/internal/types"
)

// Fields 结构化形态的字段名；每项按顺序尝试，第一个存在的字段生效
type Fields struct {
	Diagram          []string
	Insights         []string
	DiagramStartLine []string
	CodeStartLine    []string
	CodeEndLine      []string
}

// DefaultFields 同时接受 snake_case 与 camelCase 两种写法
func DefaultFields() Fields {
	return Fields{
		Diagram:          []string{"mermaid_diagram", "mermaidDiagram"},
		Insights:         []string{"code_insights", "codeInsights"},
		DiagramStartLine: []string{"mermaidStartLine", "mermaid_start_line", "diagramStartLine", "start"},
		CodeStartLine:    []string{"codeStartLine", "code_start_line", "codeStart"},
		CodeEndLine:      []string{"codeEndLine", "code_end_line", "codeEnd"},
	}
}

// Structured 结构化形态：一个已确定的图表 + 显式的行映射
type Structured struct {
	Fields Fields
}

// Shape implements Matcher.
func (*Structured) Shape() types.Shape { return types.ShapeStructured }

// Match 仅当文档是对象且图表字段为字符串时匹配；匹配即为终态
func (s *Structured) Match(p *Payload) (types.ParsedResult, bool) {
	if p.DecodeErr != nil {
		return types.ParsedResult{}, false
	}
	doc, ok := p.Doc.(map[string]any)
	if !ok {
		return types.ParsedResult{}, false
	}

	var source string
	found := false
	for _, name := range s.Fields.Diagram {
		if v, ok := doc[name].(string); ok {
			source, found = v, true
			break
		}
	}
	if !found {
		return types.ParsedResult{}, false
	}

	insights := []types.CodeInsight{}
	for _, name := range s.Fields.Insights {
		raw, present := doc[name]
		if !present {
			continue
		}
		if items, ok := raw.([]any); ok {
			insights = s.insights(items)
		}
		break
	}

	return types.Success(types.ShapeStructured, "", []string{NormalizeNewlines(source)}, insights), true
}

func (s *Structured) insights(items []any) []types.CodeInsight {
	out := make([]types.CodeInsight, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, types.CodeInsight{
			DiagramStartLine: intField(rec, s.Fields.DiagramStartLine),
			CodeStartLine:    intField(rec, s.Fields.CodeStartLine),
			CodeEndLine:      intField(rec, s.Fields.CodeEndLine),
		})
	}
	return out
}

// intField 取第一个存在的数字字段，缺失、非数字或超出 int 范围时为 0（范围内不校验，原样透传）
func intField(rec map[string]any, names []string) int {
	for _, name := range names {
		v, ok := rec[name].(float64)
		if !ok {
			continue
		}
		if v = math.Trunc(v); math.IsNaN(v) || v >= float64(math.MaxInt) || v < float64(math.MinInt) {
			return 0
		}
		return int(v)
	}
	return 0
}

// NormalizeNewlines 将字面量 `\n`（反斜杠 + n）替换为真正的换行
func NormalizeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
