// Package navigate 将 CodeInsight 的 1-based 闭区间转换为编辑器使用的 0-based 行号
//
// 解释器原样透传上游的行映射，这里是唯一的校验点：
//   - 非正数行号、起始行大于结束行：拒绝（ErrInvalidRange）
//   - 起始行超出文件：拒绝（ErrOutOfBounds）
//   - 结束行超出文件：收敛到最后一行
package navigate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riverfjs/devnotes-go/internal/types"
)

var (
	// ErrInvalidRange 行号非正或倒置
	ErrInvalidRange = errors.New("navigate: invalid line range")
	// ErrOutOfBounds 起始行超出文件
	ErrOutOfBounds = errors.New("navigate: line range outside file")
)

// Target 0-based 闭区间
type Target struct {
	StartLine int  `json:"startLine"`
	EndLine   int  `json:"endLine"`
	Clamped   bool `json:"clamped"`
}

// Resolve 校验并转换行映射；lineCount 为目标文件的行数
func Resolve(insight types.CodeInsight, lineCount int) (Target, error) {
	start, end := insight.CodeStartLine, insight.CodeEndLine
	if start < 1 || end < 1 || start > end {
		return Target{}, fmt.Errorf("%w: %d-%d", ErrInvalidRange, start, end)
	}
	if start > lineCount {
		return Target{}, fmt.Errorf("%w: line %d of %d", ErrOutOfBounds, start, lineCount)
	}
	t := Target{StartLine: start - 1, EndLine: end - 1}
	if end > lineCount {
		t.EndLine = lineCount - 1
		t.Clamped = true
	}
	return t, nil
}

// LineCount 计算文本行数（末尾换行不产生额外的空行）
func LineCount(source string) int {
	if source == "" {
		return 0
	}
	n := strings.Count(source, "\n")
	if !strings.HasSuffix(source, "\n") {
		n++
	}
	return n
}

// Snippet 返回目标区间内的行
func Snippet(source string, t Target) string {
	lines := strings.SplitAfter(source, "\n")
	if t.StartLine < 0 || t.StartLine >= len(lines) {
		return ""
	}
	end := t.EndLine + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.TrimSuffix(strings.Join(lines[t.StartLine:end], ""), "\n")
}

// Label 结果列表中链接的文字
func Label(insight types.CodeInsight) string {
	return fmt.Sprintf("Diagram line %d → Code lines %d-%d", insight.DiagramStartLine, insight.CodeStartLine, insight.CodeEndLine)
}
