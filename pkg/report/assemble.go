package report

import (
	"bytes"
	"html/template"
	"io"
)

// DefaultPageTitle is used when Page.Title is empty.
const DefaultPageTitle = "Flame Report"

// Page describes the document shell around the fragments.
type Page struct {
	Title   string // <title> and page heading
	Context string // report title shown under the heading
}

var pageTemplate = template.Must(template.New("report").Parse(`<html>
<head>
<title>{{.Title}}</title>
</head>
<body>
<h2>{{.Title}}</h2>
<h3>Trace: {{.Context}}</h3>
{{range $i, $g := .Graphs}}{{if $i}}<br /><br />{{end}}<h4>{{$g.Header}}</h4>
{{$g.Body}}{{end}}
</body>
</html>
`))

type graph struct {
	Header string
	Body   template.HTML
}

// Assemble writes the HTML document with fragments in the given order.
// Fragment bodies are renderer output and are embedded verbatim.
func Assemble(w io.Writer, fragments []Fragment, page Page) error {
	if page.Title == "" {
		page.Title = DefaultPageTitle
	}
	data := struct {
		Title   string
		Context string
		Graphs  []graph
	}{
		Title:   page.Title,
		Context: page.Context,
		Graphs:  make([]graph, 0, len(fragments)),
	}
	for _, f := range fragments {
		data.Graphs = append(data.Graphs, graph{
			Header: f.Header(),
			Body:   template.HTML(f.Body),
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
