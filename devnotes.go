// Package devnotes 将模型对源码的分析回复转换为注释、Mermaid 图表与代码行映射
//
// 核心功能：
//   - 从任意文本中按顺序提取 ```mermaid 代码块
//   - 解释分析端点的回复（结构化形状或聊天补全形状）
//   - 按首行关键字对图表分类
//   - 组装提示词、请求端点并返回分类后的分析结果
//
// 主要 API：
//   - Extract(): 提取图表
//   - Interpret(): 解释原始响应体与状态码
//   - Analyzer.Analyze(): 完整的一次分析
//
// 示例：
//
//	res := devnotes.Interpret(body, status)
//	if res.Failed() {
//	    return res.Err()
//	}
//	for _, d := range res.Diagrams {
//	    fmt.Println(devnotes.Classify(d), d)
//	}
package devnotes

import (
	"github.com/riverfjs/devnotes-go/internal/diagram"
	"github.com/riverfjs/devnotes-go/internal/response"
	"github.com/riverfjs/devnotes-go/internal/types"
)

// 导出类型别名
type (
	DiagramKind     = types.DiagramKind
	DiagramArtifact = types.DiagramArtifact
	CodeInsight     = types.CodeInsight
	ParsedResult    = types.ParsedResult
	Outcome         = types.Outcome
	Shape           = types.Shape
	Fields          = response.Fields
	// InterpretationError is the error returned for a failed interpretation.
	InterpretationError = types.Error
)

const (
	Unknown                   = types.Unknown
	ClassDiagram              = types.ClassDiagram
	EntityRelationshipDiagram = types.EntityRelationshipDiagram
	SequenceDiagram           = types.SequenceDiagram

	OutcomeSuccess = types.OutcomeSuccess
	OutcomeError   = types.OutcomeError

	ShapeNone           = types.ShapeNone
	ShapeStructured     = types.ShapeStructured
	ShapeChatCompletion = types.ShapeChatCompletion
)

// ErrInterpretation matches every InterpretationError via errors.Is.
var ErrInterpretation = types.ErrInterpretation

// Extract 按出现顺序返回文本中所有非空 mermaid 图表
func Extract(text string) []DiagramArtifact {
	return diagram.Extract(text)
}

// Interpret 将原始响应体与 HTTP 状态码转换为 ParsedResult，永不 panic
func Interpret(rawBody string, statusCode int) ParsedResult {
	return response.Interpret(rawBody, statusCode)
}

// Classify 按图表首行关键字分类
func Classify(source string) DiagramKind {
	return diagram.Classify(source)
}

// DefaultFields 结构化形状默认接受的字段名
func DefaultFields() Fields {
	return response.DefaultFields()
}
