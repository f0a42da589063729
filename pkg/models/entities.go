package models

import "unicode/utf8"

// Entity is a labeled span of the source text. StartChar and EndChar are
// character (rune) offsets, so Text == string([]rune(source)[StartChar:EndChar]).
type Entity struct {
	Text      string `json:"text"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
	Label     string `json:"label"`
}

// Document is the output of a Pipeline: the processed text and its entities in
// extraction order.
type Document struct {
	Text     string
	Entities []Entity
}

// HasEntities reports whether any entity was found.
func (d *Document) HasEntities() bool {
	return d != nil && len(d.Entities) > 0
}

// SpanBuilder turns offsets reported by a pipeline into Entities whose Text is
// sliced from the source, dropping spans that fall outside of it.
type SpanBuilder struct {
	runes []rune
}

func NewSpanBuilder(text string) *SpanBuilder {
	return &SpanBuilder{runes: []rune(text)}
}

// Len returns the source length in characters.
func (b *SpanBuilder) Len() int {
	return len(b.runes)
}

// Span returns the entity covering runes [start, end). ok is false when the
// offsets are not a non-empty range inside the source.
func (b *SpanBuilder) Span(start, end int, label string) (Entity, bool) {
	if start < 0 || start >= end || end > len(b.runes) {
		return Entity{}, false
	}
	return Entity{
		Text:      string(b.runes[start:end]),
		StartChar: start,
		EndChar:   end,
		Label:     label,
	}, true
}

// ByteSpan is Span for byte offsets into the source string.
func (b *SpanBuilder) ByteSpan(source string, start, end int, label string) (Entity, bool) {
	if start < 0 || start >= end || end > len(source) {
		return Entity{}, false
	}
	runeStart := utf8.RuneCountInString(source[:start])
	runeEnd := runeStart + utf8.RuneCountInString(source[start:end])
	return b.Span(runeStart, runeEnd, label)
}

// ExtractionRequest is the body of POST /api/ner.
type ExtractionRequest struct {
	Text string `json:"text"`
}

// ExtractionResponse is returned by POST /api/ner and the extract command.
type ExtractionResponse struct {
	Entities      []Entity `json:"entities"`
	ProcessedText string   `json:"processed_text"`
}

// NewExtractionResponse never leaves Entities nil so it encodes as [].
func NewExtractionResponse(text string, entities []Entity) ExtractionResponse {
	if entities == nil {
		entities = []Entity{}
	}
	return ExtractionResponse{Entities: entities, ProcessedText: text}
}

// Wire types of the zep-nlp-server /entities endpoint.

type EntityMatch struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

type NLPEntity struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Matches []EntityMatch `json:"matches"`
}

type EntityRequestRecord struct {
	UUID     string `json:"uuid"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

type EntityResponseRecord struct {
	UUID     string      `json:"uuid"`
	Entities []NLPEntity `json:"entities"`
}

type EntityRequest struct {
	Texts []EntityRequestRecord `json:"texts"`
}

type EntityResponse struct {
	Texts []EntityResponseRecord `json:"texts"`
}
