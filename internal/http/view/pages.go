package view

import (
	"bytes"
	"html/template"
)

// StatusPageData drives the terminal-state pages (not found, inactive,
// expired).
type StatusPageData struct {
	Title   string
	Heading string
	Message string
}

// ContentPageData drives the raw-content fallback page.
type ContentPageData struct {
	Title  string
	Type   string
	Fields map[string]string
	Plain  string
}

// AppPageData drives the app-download landing page.
type AppPageData struct {
	Title       string
	AppName     string
	Description string
	AppStoreURL string
	PlayURL     string
}

var pageTmpl = template.Must(template.New("page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{.Title}}</title>
	<style>
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: #0b1020;
			color: #e7ecff;
			font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		.card {
			background: rgba(255, 255, 255, 0.05);
			border: 1px solid rgba(255, 255, 255, 0.15);
			border-radius: 16px;
			padding: 32px;
			width: min(520px, 92vw);
		}
		h1 { font-size: 1.4rem; margin: 0 0 10px; }
		p { color: #a1acc5; margin-top: 0; }
		dl { margin: 18px 0 0; }
		dt {
			font-size: 0.78rem;
			text-transform: uppercase;
			letter-spacing: 0.08em;
			color: #a1acc5;
		}
		dd {
			margin: 2px 0 14px;
			word-break: break-all;
		}
		pre {
			white-space: pre-wrap;
			word-break: break-all;
			background: rgba(125, 211, 252, 0.07);
			border: 1px solid rgba(125, 211, 252, 0.25);
			border-radius: 12px;
			padding: 16px;
		}
		a.button {
			display: inline-block;
			margin: 14px 12px 0 0;
			padding: 12px 26px;
			border-radius: 999px;
			background: linear-gradient(120deg, #7dd3fc, #38bdf8);
			color: #050708;
			font-weight: 600;
			text-decoration: none;
		}
	</style>
</head>
<body>
	<div class="card">
		{{block "body" .}}{{end}}
	</div>
</body>
</html>
`))

var statusTmpl = template.Must(template.Must(pageTmpl.Clone()).Parse(`
{{define "body"}}
	<h1>{{.Heading}}</h1>
	<p>{{.Message}}</p>
{{end}}
`))

var contentTmpl = template.Must(template.Must(pageTmpl.Clone()).Parse(`
{{define "body"}}
	<h1>Scanned content</h1>
	<p>This {{.Type}} code carries the following content.</p>
	{{if .Plain}}
	<pre>{{.Plain}}</pre>
	{{else}}
	<dl>
		{{range $key, $value := .Fields}}
		<dt>{{$key}}</dt><dd>{{$value}}</dd>
		{{end}}
	</dl>
	{{end}}
{{end}}
`))

var appTmpl = template.Must(template.Must(pageTmpl.Clone()).Parse(`
{{define "body"}}
	<h1>{{if .AppName}}{{.AppName}}{{else}}Get the app{{end}}</h1>
	{{if .Description}}<p>{{.Description}}</p>{{end}}
	{{if .AppStoreURL}}<a class="button" href="{{.AppStoreURL}}">App Store</a>{{end}}
	{{if .PlayURL}}<a class="button" href="{{.PlayURL}}">Google Play</a>{{end}}
{{end}}
`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderStatusPage expands the terminal-state template.
func RenderStatusPage(data StatusPageData) (string, error) {
	return render(statusTmpl, data)
}

// RenderContentPage expands the raw-content fallback template.
func RenderContentPage(data ContentPageData) (string, error) {
	if data.Title == "" {
		data.Title = "Scanned content"
	}
	return render(contentTmpl, data)
}

// RenderAppPage expands the app-download landing template.
func RenderAppPage(data AppPageData) (string, error) {
	if data.Title == "" {
		data.Title = "Get the app"
	}
	return render(appTmpl, data)
}
