// Package render 将分析结果输出到终端或 HTML 页面
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/riverfjs/devnotes-go/internal/mermaid"
	"github.com/riverfjs/devnotes-go/internal/navigate"
	"github.com/riverfjs/devnotes-go/internal/parser"
	"github.com/riverfjs/devnotes-go/internal/session"
)

const noAnnotations = "(No annotations)"

var (
	colorTeal  = lipgloss.Color("#20B9B4")
	colorSlate = lipgloss.Color("#2C4A54")
	colorGold  = lipgloss.Color("#F4D03F")
)

// theme 一组着色函数；plain 模式下全部为原样输出
type theme struct {
	title   func(string) string
	heading func(string) string
	muted   func(string) string
	code    func(string) string
	link    func(string) string
}

func identity(s string) string { return s }

func plainTheme() theme {
	return theme{title: identity, heading: identity, muted: identity, code: identity, link: identity}
}

func styledTheme() theme {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	heading := lipgloss.NewStyle().Bold(true)
	muted := lipgloss.NewStyle().Foreground(colorSlate)
	code := lipgloss.NewStyle().Foreground(colorGold)
	link := lipgloss.NewStyle().Underline(true).Foreground(colorTeal)
	return theme{
		title:   func(s string) string { return title.Render(s) },
		heading: func(s string) string { return heading.Render(s) },
		muted:   func(s string) string { return muted.Render(s) },
		code:    func(s string) string { return code.Render(s) },
		link:    func(s string) string { return link.Render(s) },
	}
}

// Terminal 把分析结果写到终端；styled 为 false 时不输出任何转义序列
func Terminal(w io.Writer, a session.Analysis, styled bool) error {
	th := plainTheme()
	if styled {
		th = styledTheme()
	}

	var sb strings.Builder
	if a.SourceFilePath != "" {
		sb.WriteString(th.muted(a.SourceFilePath))
		sb.WriteString("\n\n")
	}

	sb.WriteString(th.title("Annotations"))
	sb.WriteString("\n")
	if strings.TrimSpace(a.Annotations) == "" {
		sb.WriteString(th.muted(noAnnotations))
		sb.WriteString("\n")
	} else {
		writeBlocks(&sb, parser.Blocks(a.Annotations), th)
	}

	for i, d := range a.Diagrams {
		sb.WriteString("\n")
		sb.WriteString(th.title(fmt.Sprintf("Diagram %d · %s", i+1, d.Kind)))
		sb.WriteString("\n")
		for _, line := range strings.Split(d.Source, "\n") {
			sb.WriteString("    ")
			sb.WriteString(th.code(line))
			sb.WriteString("\n")
		}
		if live, err := mermaid.LiveURL(d.Source); err == nil {
			sb.WriteString(th.muted("Edit: "))
			sb.WriteString(th.link(live))
			sb.WriteString("\n")
		}
	}

	if len(a.CodeInsights) > 0 {
		sb.WriteString("\n")
		sb.WriteString(th.title("Code links"))
		sb.WriteString("\n")
		for _, ci := range a.CodeInsights {
			sb.WriteString("  ")
			sb.WriteString(th.link(navigate.Label(ci)))
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeBlocks(sb *strings.Builder, blocks []parser.Block, th theme) {
	for _, b := range blocks {
		switch b.Kind {
		case parser.Heading:
			sb.WriteString(th.heading(b.Text))
		case parser.ListItem:
			sb.WriteString(strings.Repeat("  ", b.Level-1))
			sb.WriteString("• ")
			sb.WriteString(b.Text)
		case parser.Quote:
			for i, line := range strings.Split(b.Text, "\n") {
				if i > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(th.muted("│ " + line))
			}
		case parser.Code:
			for i, line := range strings.Split(b.Text, "\n") {
				if i > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString("    ")
				sb.WriteString(th.code(line))
			}
		case parser.Rule:
			sb.WriteString(th.muted(strings.Repeat("─", 40)))
		default:
			sb.WriteString(b.Text)
		}
		sb.WriteString("\n")
	}
}
