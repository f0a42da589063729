// Package web serves the interactive NER demo page.
package web

import (
	"embed"

	"github.com/slulibrary/nerdemo/internal"
)

var log = internal.GetLogger()

//go:embed static/*
var StaticFS embed.FS

//go:embed templates/*
var TemplatesFS embed.FS

const (
	// TabTitle names the browser tab, PageTitle is the page heading.
	TabTitle   = "SLU Library NER Demo"
	PageTitle  = "SLU Library NER DEMO"
	PageIntro  = "This is a demo of the NER model trained on the SLU Library dataset."
	FormPrompt = "Enter a sentence to extract named entities:"

	EntitiesHeading  = "Extracted Entities:"
	NoEntitiesNotice = "No named entities were found in the text."
)
