package web

import (
	"html/template"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/slulibrary/nerdemo/pkg/render"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"LabelColor": render.LabelColor,
		"Comma": func(n int) string {
			return humanize.Comma(int64(n))
		},
		"Plural": english.PluralWord,
	}
}
