package listview

import (
	"fmt"
	"html/template"
	"io"
	"strings"
)

// All interpolated text goes through html/template, so record fields can
// never open a tag. URLs with unsafe schemes are replaced by the template
// engine.
var templates = template.Must(template.New("listview").Parse(`
{{- define "country" -}}
{{- if .Visible -}}
<h3>Scholarships for {{.Query}}</h3>
{{- if .IsLoading}}<p>Loading...</p>
{{- else if .IsEmpty}}<p>No results.</p>
{{- else if .IsError}}<p class="error">Error: {{.Message}}</p>
{{- else}}<ul class="rows">
{{- range $i, $row := .Rows}}<li class="row"><div class="col">
<div class="title">{{.Record.Name}}</div>
<div class="meta">{{.Record.Provider}} • Deadline: {{.Record.DeadlineOrUnknown}}</div>
<a class="link" target="_blank" rel="noopener" href="{{.Record.URL}}">View</a>
</div><button class="btn small" data-seq="{{$.Seq}}" data-row="{{$i}}"{{if .Save.Disabled}} disabled{{end}}>{{.Save.Label}}</button></li>
{{- end}}</ul>
{{- end}}
{{- end}}
{{- end}}

{{- define "saved" -}}
{{- if .IsLoading}}Loading...
{{- else if .IsEmpty}}<p class="muted">No saved scholarships yet.</p>
{{- else if .IsError}}<p class="error">Error: {{.Message}}</p>
{{- else}}<ul class="rows">
{{- range .Rows}}<li class="row"><div class="col">
<div class="title">{{.Record.Name}}</div>
<div class="meta">{{.Record.Provider}} • Deadline: {{.Record.DeadlineOrUnknown}}</div>
<a class="link" target="_blank" rel="noopener" href="{{.Record.URL}}">Open</a>
</div></li>
{{- end}}</ul>
{{- end}}
{{- end}}
`))

// Render writes the country list container's contents. A hidden view
// renders nothing.
func Render(w io.Writer, v View) error {
	return templates.ExecuteTemplate(w, "country", v)
}

// RenderSaved writes the saved list container's contents.
func RenderSaved(w io.Writer, v View) error {
	return templates.ExecuteTemplate(w, "saved", v)
}

// RenderText writes a plain-text rendering for terminals. The heading is
// omitted when query is empty (the saved list has none).
func RenderText(w io.Writer, v View) error {
	var b strings.Builder
	if v.Query != "" {
		fmt.Fprintf(&b, "Scholarships for %s\n", v.Query)
	}

	switch v.Kind {
	case Hidden:
	case Loading:
		b.WriteString("Loading...\n")
	case Empty:
		if v.Query != "" {
			b.WriteString("No results.\n")
		} else {
			b.WriteString("No saved scholarships yet.\n")
		}
	case Failed:
		fmt.Fprintf(&b, "Error: %s\n", v.Message)
	case Populated:
		for i, row := range v.Rows {
			rec := row.Record
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec.Name)
			fmt.Fprintf(&b, "   %s • Deadline: %s\n", rec.Provider, rec.DeadlineOrUnknown())
			if rec.URL != "" {
				fmt.Fprintf(&b, "   %s\n", rec.URL)
			}
			if rec.ID != "" {
				fmt.Fprintf(&b, "   id: %s\n", rec.ID)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
