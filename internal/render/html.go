package render

import (
	"bytes"
	"html/template"

	"github.com/riverfjs/devnotes-go/internal/mermaid"
	"github.com/riverfjs/devnotes-go/internal/navigate"
	"github.com/riverfjs/devnotes-go/internal/parser"
	"github.com/riverfjs/devnotes-go/internal/session"
	"github.com/riverfjs/devnotes-go/internal/types"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>DevNotes</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; line-height: 1.5; }
pre.mermaid { background: #f6f8fa; padding: 1rem; }
.insights a { cursor: pointer; }
.muted { color: #6a737d; }
</style>
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
</head>
<body>
{{if .SourceFilePath}}<p class="muted">{{.SourceFilePath}}</p>{{end}}
<section class="annotations">
{{if .Annotations}}{{.Annotations}}{{else}}<p class="muted">(No annotations)</p>{{end}}
</section>
{{range .Diagrams}}
<section class="diagram">
<h2>{{.Kind}}</h2>
<pre class="mermaid">{{.Source}}</pre>
{{if .LiveURL}}<p><a href="{{.LiveURL}}" target="_blank" rel="noopener">Open in mermaid.live</a></p>{{end}}
</section>
{{end}}
{{if .Insights}}
<section class="insights">
<h2>Code links</h2>
<ul>
{{range .Insights}}<li><a data-start="{{.CodeStartLine}}" data-end="{{.CodeEndLine}}">{{.Label}}</a></li>
{{end}}</ul>
<pre id="snippet"></pre>
</section>
{{end}}
<script>
const filePath = {{.SourceFilePath}};
document.querySelectorAll(".insights a").forEach((el) => {
  el.addEventListener("click", async () => {
    const res = await fetch("/api/open", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({
        filePath: filePath,
        codeStartLine: Number(el.dataset.start),
        codeEndLine: Number(el.dataset.end),
      }),
    });
    const body = await res.json();
    document.getElementById("snippet").textContent = res.ok ? body.snippet : body.error;
  });
});
</script>
</body>
</html>
`))

type diagramView struct {
	Kind    types.DiagramKind
	Source  string
	LiveURL string
}

type insightView struct {
	types.CodeInsight
	Label string
}

type pageView struct {
	SourceFilePath string
	Annotations    template.HTML
	Diagrams       []diagramView
	Insights       []insightView
}

// HTML 渲染结果页面
func HTML(a session.Analysis) (string, error) {
	v := pageView{SourceFilePath: a.SourceFilePath}

	if a.Annotations != "" {
		body, err := parser.HTML(a.Annotations)
		if err != nil {
			return "", err
		}
		// goldmark 默认不输出原始 HTML
		v.Annotations = template.HTML(body)
	}

	for _, d := range a.Diagrams {
		live, err := mermaid.LiveURL(d.Source)
		if err != nil {
			return "", err
		}
		v.Diagrams = append(v.Diagrams, diagramView{Kind: d.Kind, Source: d.Source, LiveURL: live})
	}

	for _, ci := range a.CodeInsights {
		v.Insights = append(v.Insights, insightView{CodeInsight: ci, Label: navigate.Label(ci)})
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
