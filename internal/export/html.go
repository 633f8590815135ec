package export

import (
	"html/template"
	"io"

	"tradelens/internal/insights"
	"tradelens/internal/model"
)

// The rendered document combines the summary and the data table. A
// downstream HTML-to-PDF converter consumes this output as-is.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Report.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
h1 { color: #1B4F72; }
h2 { color: #2E86C1; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f4f8; }
</style>
</head>
<body>
<h1>{{.Report.Title}}</h1>
{{if .Report.Metrics}}
<table>
{{range .Report.Metrics}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>
{{end}}</table>
{{end}}
{{range .Report.Tables}}
<h2>{{.Title}}</h2>
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
{{end}}
<h2>Data</h2>
<table>
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))

// WriteHTML renders the report and the record data as a standalone document.
func WriteHTML(w io.Writer, records []model.ShipmentRecord, report insights.Report) error {
	return reportTemplate.Execute(w, struct {
		Report insights.Report
		Header []string
		Rows   [][]string
	}{
		Report: report,
		Header: recordHeader,
		Rows:   recordRows(records),
	})
}
