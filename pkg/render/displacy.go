// Package render draws extracted entities as displaCy style "ent" markup.
package render

import (
	"bytes"
	"html/template"
	"sort"

	"github.com/slulibrary/nerdemo/pkg/models"
)

const defaultColor = "#ddd"

var labelColors = map[string]template.CSS{
	"ORG":         "#7aecec",
	"PRODUCT":     "#bfeeb7",
	"GPE":         "#feca74",
	"LOC":         "#ff9561",
	"LOCATION":    "#ff9561",
	"PERSON":      "#aa9cfc",
	"NORP":        "#c887fb",
	"FAC":         "#9cc9cc",
	"EVENT":       "#ffeb80",
	"LAW":         "#ff8197",
	"LANGUAGE":    "#ff8197",
	"WORK_OF_ART": "#f0d0ff",
	"DATE":        "#bfe1d9",
	"TIME":        "#bfe1d9",
	"MONEY":       "#e4e7d2",
	"QUANTITY":    "#e4e7d2",
	"ORDINAL":     "#e4e7d2",
	"CARDINAL":    "#e4e7d2",
	"PERCENT":     "#e4e7d2",
}

// LabelColor returns the highlight colour for an entity label.
func LabelColor(label string) template.CSS {
	if c, ok := labelColors[label]; ok {
		return c
	}
	return defaultColor
}

const entTemplates = `
{{- define "fragment" -}}
<div class="entities" style="line-height: 2.5; direction: ltr; white-space: pre-wrap">
{{- range . -}}
{{- if .Label -}}
<mark class="entity" style="background: {{ .Color }}; padding: 0.45em 0.6em; margin: 0 0.25em; line-height: 1; border-radius: 0.35em;">{{ .Text }}<span style="font-size: 0.8em; font-weight: bold; line-height: 1; border-radius: 0.35em; vertical-align: middle; margin-left: 0.5rem">{{ .Label }}</span></mark>
{{- else -}}
{{ .Text }}
{{- end -}}
{{- end -}}
</div>
{{- end -}}

{{- define "page" -}}
<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>displaCy</title>
</head>
<body style="font-size: 16px; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif; padding: 4rem 2rem; direction: ltr">
<figure style="margin-bottom: 6rem">
{{ template "fragment" . }}
</figure>
</body>
</html>
{{- end -}}
`

var entTmpl = template.Must(template.New("ent").Parse(entTemplates))

type segment struct {
	Text  string
	Label string
	Color template.CSS
}

// Render returns doc.Text with each entity wrapped in a coloured <mark>. With
// page set the markup is a standalone HTML document, suitable for an iframe.
func Render(doc *models.Document, page bool) (string, error) {
	name := "fragment"
	if page {
		name = "page"
	}

	var buf bytes.Buffer
	if err := entTmpl.ExecuteTemplate(&buf, name, segments(doc)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// segments splits the text into plain and entity runs. Entities that overlap
// one already placed are left as plain text.
func segments(doc *models.Document) []segment {
	if doc == nil {
		return nil
	}

	runes := []rune(doc.Text)
	ents := make([]models.Entity, len(doc.Entities))
	copy(ents, doc.Entities)
	sort.SliceStable(ents, func(i, j int) bool {
		return ents[i].StartChar < ents[j].StartChar
	})

	var segs []segment
	cursor := 0
	for _, e := range ents {
		if e.StartChar < cursor || e.StartChar >= e.EndChar || e.EndChar > len(runes) {
			continue
		}
		if e.StartChar > cursor {
			segs = append(segs, segment{Text: string(runes[cursor:e.StartChar])})
		}
		segs = append(segs, segment{
			Text:  string(runes[e.StartChar:e.EndChar]),
			Label: e.Label,
			Color: LabelColor(e.Label),
		})
		cursor = e.EndChar
	}
	if cursor < len(runes) {
		segs = append(segs, segment{Text: string(runes[cursor:])})
	}
	return segs
}
