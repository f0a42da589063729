package web

import (
	"bytes"
	"html/template"

	"github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
)

type CustomPreWrapper struct{}

// Start is called to write a start <pre> element.
func (p *CustomPreWrapper) Start(code bool, _ string) string {
	if code {
		return `<pre class="raw-response" tabindex="0" style="tab-size:2;white-space:pre-wrap;word-break:break-word;">`
	}
	return "<pre>"
}

// End is called to write the end </pre> element.
func (p *CustomPreWrapper) End(_ bool) string {
	return "</pre>"
}

// CodeHighlight takes a string of code and a lexer name and returns a
// highlighted HTML fragment. Unknown lexers fall back to plain text.
func CodeHighlight(code string, lexer string) (template.HTML, error) {
	l := lexers.Get(lexer)
	if l == nil {
		l = lexers.Fallback
	}

	formatter := html.New(
		html.WrapLongLines(true),
		html.TabWidth(2),
		html.WithPreWrapper(&CustomPreWrapper{}),
	)

	iterator, err := l.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, styles.Get("github"), iterator); err != nil {
		return "", err
	}

	// chroma escapes the tokens it emits
	return template.HTML(buf.String()), nil //nolint:gosec
}
