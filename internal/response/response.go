// Package response 将模型端点返回的原始响应解释为结构化结果
//
// 按固定优先级依次尝试响应形态：
//  1. 结构化形态：{ mermaid_diagram: string, code_insights?: [...] }
//  2. 聊天补全形态：{ choices: [{ message: { content } }], error?: { message } }
//
// 第一个匹配的形态胜出。解释过程纯函数、无 I/O，可并发调用。
package response

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/riverfjs/devnotes-go/internal/diagram"
	"github.com/riverfjs/devnotes-go/internal/types"
)

// PreviewLimit 错误信息中原始响应的最大字符数
const PreviewLimit = 200

// Error is the Go error form of an interpretation failure.
type Error = types.Error

// Payload 一次解释调用的输入，JSON 只解码一次，由各 Matcher 共享
type Payload struct {
	Raw       string
	Doc       any
	DecodeErr error
}

// Matcher 尝试按某种形态解释响应；不匹配时返回 false
type Matcher interface {
	Shape() types.Shape
	Match(p *Payload) (types.ParsedResult, bool)
}

// Interpreter 按顺序尝试 Matchers
type Interpreter struct {
	matchers []Matcher
}

// New creates an Interpreter that tries the structured shape with the given
// field names first and falls back to the chat-completion shape.
func New(fields Fields) *Interpreter {
	return &Interpreter{
		matchers: []Matcher{
			&Structured{Fields: fields},
			&ChatCompletion{},
		},
	}
}

// NewWithMatchers creates an Interpreter with a custom matcher order.
func NewWithMatchers(matchers ...Matcher) *Interpreter {
	return &Interpreter{matchers: matchers}
}

var defaultInterpreter = New(DefaultFields())

// Interpret 使用默认字段名解释响应
func Interpret(rawBody string, statusCode int) types.ParsedResult {
	return defaultInterpreter.Interpret(rawBody, statusCode)
}

// Interpret 解释一次响应交换，永远返回结果，不返回 error
func (in *Interpreter) Interpret(rawBody string, statusCode int) types.ParsedResult {
	if statusCode < 200 || statusCode > 299 {
		return types.Failure(types.ShapeNone, fmt.Sprintf("API error %d: %s", statusCode, Preview(rawBody)))
	}

	p := &Payload{Raw: rawBody}
	p.DecodeErr = json.Unmarshal([]byte(rawBody), &p.Doc)

	for _, m := range in.matchers {
		if res, ok := m.Match(p); ok {
			return res
		}
	}
	return types.Failure(types.ShapeNone, "Unrecognized response: "+Preview(rawBody))
}

// Preview 返回 s 的前 PreviewLimit 个字符
func Preview(s string) string {
	n := 0
	for i := range s {
		if n == PreviewLimit {
			return s[:i]
		}
		n++
	}
	return s
}

// ChatCompletion 聊天补全形态（OpenAI 兼容）
type ChatCompletion struct{}

// Shape implements Matcher.
func (*ChatCompletion) Shape() types.Shape { return types.ShapeChatCompletion }

// Match 总是匹配：JSON 无效时返回错误结果
func (*ChatCompletion) Match(p *Payload) (types.ParsedResult, bool) {
	if p.DecodeErr != nil {
		return types.Failure(types.ShapeChatCompletion, "Invalid JSON: "+Preview(p.Raw)), true
	}
	doc, _ := p.Doc.(map[string]any)

	// 端点自报的错误优先于任何内容解释
	if errObj, ok := doc["error"].(map[string]any); ok {
		if msg, ok := errObj["message"].(string); ok && msg != "" {
			return types.Failure(types.ShapeChatCompletion, msg), true
		}
	}

	content := strings.TrimSpace(messageContent(doc))
	blocks := diagram.Scan(content)
	artifacts := diagram.Artifacts(blocks)

	diagrams := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		diagrams = append(diagrams, a.Source)
	}
	annotations := strings.TrimSpace(diagram.Strip(content, blocks))
	return types.Success(types.ShapeChatCompletion, annotations, diagrams, nil), true
}

// messageContent 读取 choices[0].message.content；任意一层缺失都返回空串
func messageContent(doc map[string]any) string {
	choices, _ := doc["choices"].([]any)
	if len(choices) == 0 {
		return ""
	}
	choice, _ := choices[0].(map[string]any)
	msg, _ := choice["message"].(map[string]any)
	content, _ := msg["content"].(string)
	return content
}
