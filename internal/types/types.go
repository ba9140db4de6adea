package types

import "errors"

// DiagramKind 图表类型（按首行关键字判定）
type DiagramKind int

const (
	// Unknown 无法识别的图表类型
	Unknown DiagramKind = iota
	// ClassDiagram 对应 classDiagram
	ClassDiagram
	// EntityRelationshipDiagram 对应 erDiagram
	EntityRelationshipDiagram
	// SequenceDiagram 对应 sequenceDiagram
	SequenceDiagram
)

// String returns the mermaid keyword for the kind, or "unknown".
func (k DiagramKind) String() string {
	switch k {
	case ClassDiagram:
		return "classDiagram"
	case EntityRelationshipDiagram:
		return "erDiagram"
	case SequenceDiagram:
		return "sequenceDiagram"
	default:
		return "unknown"
	}
}

// MarshalText 以关键字形式序列化
func (k DiagramKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText 反序列化关键字，无法识别的值视为 Unknown
func (k *DiagramKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "classDiagram":
		*k = ClassDiagram
	case "erDiagram":
		*k = EntityRelationshipDiagram
	case "sequenceDiagram":
		*k = SequenceDiagram
	default:
		*k = Unknown
	}
	return nil
}

// DiagramArtifact 一个提取出的图表
type DiagramArtifact struct {
	Source string      `json:"source"`
	Kind   DiagramKind `json:"kind"`
}

// CodeInsight 图表行 → 代码行范围的映射（均为 1-based，闭区间）
//
// 解释器不校验 CodeStartLine <= CodeEndLine，原样透传；由导航方负责防御。
type CodeInsight struct {
	DiagramStartLine int `json:"mermaidStartLine"`
	CodeStartLine    int `json:"codeStartLine"`
	CodeEndLine      int `json:"codeEndLine"`
}

// Outcome distinguishes the two ParsedResult variants.
type Outcome int

const (
	// OutcomeSuccess carries annotations, diagrams and insights.
	OutcomeSuccess Outcome = iota
	// OutcomeError carries only a message.
	OutcomeError
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Shape 记录是哪种响应形态产生了结果
type Shape int

const (
	// ShapeNone 未解析（例如状态码拦截）
	ShapeNone Shape = iota
	// ShapeStructured 结构化形态：单图 + 行映射
	ShapeStructured
	// ShapeChatCompletion 聊天补全形态：从自由文本中挖掘图表
	ShapeChatCompletion
)

// String returns the string representation of Shape.
func (s Shape) String() string {
	switch s {
	case ShapeStructured:
		return "structured"
	case ShapeChatCompletion:
		return "chat_completion"
	default:
		return "none"
	}
}

// ParsedResult 解释器的唯一输出
//
// Outcome 为 OutcomeError 时只有 Message 有意义；否则 Message 为空。
// Diagrams 与 CodeInsights 永远非 nil。
type ParsedResult struct {
	Outcome      Outcome       `json:"-"`
	Shape        Shape         `json:"-"`
	Message      string        `json:"error,omitempty"`
	Annotations  string        `json:"annotations"`
	Diagrams     []string      `json:"diagramBlocks"`
	CodeInsights []CodeInsight `json:"code_insights"`
}

// Success 构造成功结果
func Success(shape Shape, annotations string, diagrams []string, insights []CodeInsight) ParsedResult {
	if diagrams == nil {
		diagrams = []string{}
	}
	if insights == nil {
		insights = []CodeInsight{}
	}
	return ParsedResult{
		Outcome:      OutcomeSuccess,
		Shape:        shape,
		Annotations:  annotations,
		Diagrams:     diagrams,
		CodeInsights: insights,
	}
}

// Failure 构造错误结果
func Failure(shape Shape, message string) ParsedResult {
	return ParsedResult{
		Outcome:      OutcomeError,
		Shape:        shape,
		Message:      message,
		Diagrams:     []string{},
		CodeInsights: []CodeInsight{},
	}
}

// Failed reports whether the result is the error variant.
func (r ParsedResult) Failed() bool {
	return r.Outcome == OutcomeError
}

// ErrInterpretation is matched by every error returned from ParsedResult.Err.
var ErrInterpretation = errors.New("response could not be interpreted")

// Error is the Go error form of an error ParsedResult.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is lets errors.Is(err, ErrInterpretation) match.
func (e *Error) Is(target error) bool { return target == ErrInterpretation }

// Err returns nil for a success result and *Error otherwise.
func (r ParsedResult) Err() error {
	if !r.Failed() {
		return nil
	}
	return &Error{Message: r.Message}
}
