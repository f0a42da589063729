package testutils

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/slulibrary/nerdemo/pkg/models"
)

const ObamaText = "Barack Obama was born in Hawaii."

// ObamaEntities is what FakePipeline finds in ObamaText.
var ObamaEntities = []models.Entity{
	{Text: "Barack Obama", StartChar: 0, EndChar: 12, Label: "PERSON"},
	{Text: "Hawaii", StartChar: 25, EndChar: 31, Label: "GPE"},
}

// KnownEntities labels a fixed vocabulary of names.
var KnownEntities = map[string]string{
	"Barack Obama": "PERSON",
	"Hawaii":       "GPE",
	"Apple":        "ORG",
	"Cupertino":    "GPE",
	"Zürich":       "GPE",
	"José":         "PERSON",
	"Sunday":       "DATE",
}

var _ models.Pipeline = &FakePipeline{}

// FakePipeline finds every occurrence of its vocabulary in the text, left to
// right, without overlaps. Results are deterministic.
type FakePipeline struct {
	Vocabulary map[string]string
	// Err is returned by Process when set.
	Err error
	// Panic makes Process panic with this value when set.
	Panic any

	calls  atomic.Int64
	closed atomic.Bool
}

func NewFakePipeline() *FakePipeline {
	return &FakePipeline{Vocabulary: KnownEntities}
}

func (p *FakePipeline) Name() string {
	return "fake"
}

func (p *FakePipeline) Calls() int {
	return int(p.calls.Load())
}

func (p *FakePipeline) Closed() bool {
	return p.closed.Load()
}

func (p *FakePipeline) Close() error {
	if p.closed.Swap(true) {
		return errors.New("pipeline already closed")
	}
	return nil
}

func (p *FakePipeline) Process(ctx context.Context, text string) (*models.Document, error) {
	p.calls.Add(1)
	if p.Panic != nil {
		panic(p.Panic)
	}
	if p.Err != nil {
		return nil, p.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// longer names first so "Barack Obama" wins over any shorter overlap
	names := make([]string, 0, len(p.Vocabulary))
	for name := range p.Vocabulary {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	b := models.NewSpanBuilder(text)
	taken := make([]bool, len(text))
	var entities []models.Entity
	for _, name := range names {
		for from := 0; from < len(text); {
			i := strings.Index(text[from:], name)
			if i < 0 {
				break
			}
			start, end := from+i, from+i+len(name)
			from = end
			if overlaps(taken, start, end) {
				continue
			}
			ent, ok := b.ByteSpan(text, start, end, p.Vocabulary[name])
			if !ok {
				continue
			}
			for k := start; k < end; k++ {
				taken[k] = true
			}
			entities = append(entities, ent)
		}
	}

	sort.Slice(entities, func(i, j int) bool {
		return entities[i].StartChar < entities[j].StartChar
	})
	return &models.Document{Text: text, Entities: entities}, nil
}

func overlaps(taken []bool, start, end int) bool {
	for k := start; k < end; k++ {
		if taken[k] {
			return true
		}
	}
	return false
}
