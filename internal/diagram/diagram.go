// Package diagram 从自由文本中提取 ```mermaid 围栏图表并按类型分类
//
// 扫描按行进行：找到起始围栏，再找下一个裸 ``` 结束围栏，截取两者之间的内容。
// 整个过程对输入长度线性，不依赖正则引擎。
package diagram

import (
	"strings"

	"github.com/riverfjs/devnotes-go/internal/types"
)

const fenceTag = "mermaid"

// Block 记录一个围栏图表块在原文中的位置
type Block struct {
	Start int    // 起始围栏第一个反引号的字节偏移
	End   int    // 结束围栏最后一个反引号之后的字节偏移
	Inner string // 两条围栏行之间的原始内容（未修剪）
}

// Empty reports whether the block has no content once trimmed.
func (b Block) Empty() bool {
	return strings.TrimSpace(b.Inner) == ""
}

// Scan 返回 text 中全部闭合的 mermaid 围栏块（包括内容为空的块），按出现顺序
//
// 未闭合的起始围栏不产生结果；在块内再次遇到起始围栏时，放弃前一个未闭合的块，
// 从新的围栏重新开始，保证后续格式正确的块仍能被找到。
func Scan(text string) []Block {
	var blocks []Block
	open := -1
	innerStart := 0

	for pos := 0; pos < len(text); {
		lineEnd := len(text)
		next := len(text)
		if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
			lineEnd = pos + i
			next = lineEnd + 1
		}
		line := text[pos:lineEnd]

		if at, ok := openingFence(line); ok {
			open = pos + at
			innerStart = next
		} else if open >= 0 {
			if at, n, ok := closingFence(line); ok {
				blocks = append(blocks, Block{
					Start: open,
					End:   pos + at + n,
					Inner: text[innerStart:pos],
				})
				open = -1
			}
		}
		pos = next
	}
	return blocks
}

// Extract 提取 text 中所有非空图表，保持出现顺序
func Extract(text string) []types.DiagramArtifact {
	return Artifacts(Scan(text))
}

// Artifacts 将扫描结果转换为图表，丢弃修剪后为空的块
func Artifacts(blocks []Block) []types.DiagramArtifact {
	out := make([]types.DiagramArtifact, 0, len(blocks))
	for _, b := range blocks {
		source := strings.TrimSpace(b.Inner)
		if source == "" {
			continue
		}
		out = append(out, types.DiagramArtifact{Source: source, Kind: Classify(source)})
	}
	return out
}

// Strip 从 text 中删除所有块的完整围栏区间
func Strip(text string, blocks []Block) string {
	if len(blocks) == 0 {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	cursor := 0
	for _, b := range blocks {
		sb.WriteString(text[cursor:b.Start])
		cursor = b.End
	}
	sb.WriteString(text[cursor:])
	return sb.String()
}

var keywords = []struct {
	prefix string
	kind   types.DiagramKind
}{
	{"classdiagram", types.ClassDiagram},
	{"erdiagram", types.EntityRelationshipDiagram},
	{"sequencediagram", types.SequenceDiagram},
}

// Classify 按修剪后首行的关键字（不区分大小写，前缀匹配）判定图表类型
func Classify(source string) types.DiagramKind {
	first := strings.TrimSpace(source)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = strings.TrimSpace(first[:i])
	}
	first = strings.ToLower(first)
	for _, k := range keywords {
		if strings.HasPrefix(first, k.prefix) {
			return k.kind
		}
	}
	return types.Unknown
}

// openingFence 判断是否为起始围栏行：可选缩进 + 至少三个反引号 + mermaid + 可选空白
// 返回第一个反引号在行内的偏移
func openingFence(line string) (int, bool) {
	at, n := backticks(line)
	if n < 3 {
		return 0, false
	}
	rest := line[at+n:]
	if len(rest) < len(fenceTag) || !strings.EqualFold(rest[:len(fenceTag)], fenceTag) {
		return 0, false
	}
	if strings.TrimSpace(rest[len(fenceTag):]) != "" {
		return 0, false
	}
	return at, true
}

// closingFence 判断是否为裸结束围栏行，返回反引号的偏移与数量
func closingFence(line string) (int, int, bool) {
	at, n := backticks(line)
	if n < 3 {
		return 0, 0, false
	}
	if strings.TrimSpace(line[at+n:]) != "" {
		return 0, 0, false
	}
	return at, n, true
}

// backticks 跳过行首空格/制表符，返回反引号起始偏移与连续个数
func backticks(line string) (int, int) {
	at := 0
	for at < len(line) && (line[at] == ' ' || line[at] == '\t') {
		at++
	}
	n := 0
	for at+n < len(line) && line[at+n] == '`' {
		n++
	}
	return at, n
}
