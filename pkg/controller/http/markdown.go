package http

import (
	"bytes"
	"html/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Reports put one item per line without blank lines in between, so soft breaks are kept
var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var reportPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Weekly Digest {{ .Week }}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
hr { margin: 2rem 0; }
</style>
</head>
<body>
<article>{{ .Executive }}</article>
<hr>
<article>{{ .Combined }}</article>
</body>
</html>
`))

func markdownToHTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &buf); err != nil {
		return "", goerr.Wrap(err, "failed to convert markdown")
	}
	// goldmark escapes raw HTML unless html.WithUnsafe is set
	return template.HTML(buf.String()), nil
}

// renderReportHTML renders both report documents into one page
func renderReportHTML(week, executiveMD, combinedMD string) ([]byte, error) {
	executive, err := markdownToHTML(executiveMD)
	if err != nil {
		return nil, err
	}
	combined, err := markdownToHTML(combinedMD)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := reportPage.Execute(&buf, map[string]any{
		"Week":      week,
		"Executive": executive,
		"Combined":  combined,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to render report page")
	}
	return buf.Bytes(), nil
}
