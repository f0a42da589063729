package nlp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"

	"github.com/slulibrary/nerdemo/pkg/models"
)

// proseModelFile is the classifier file prose writes into a model directory.
const proseModelFile = "Maxent"

var _ models.Pipeline = &ProsePipeline{}

// ProsePipeline runs a prose tokenizer, tagger and entity chunker in process.
type ProsePipeline struct {
	name string
	// nil selects the English model compiled into prose.
	model *prose.Model
}

func NewProsePipeline(name string, model *prose.Model) *ProsePipeline {
	return &ProsePipeline{name: name, model: model}
}

// LoadProseModel loads a model directory written by prose. A missing directory
// or classifier file is reported as models.ErrModelNotFound.
func LoadProseModel(dir string) (model *prose.Model, err error) {
	if err := checkProseModelDir(dir); err != nil {
		return nil, err
	}

	// prose panics on a corrupt classifier instead of returning an error
	defer func() {
		if r := recover(); r != nil {
			model = nil
			err = fmt.Errorf("loading prose model from %s: %v", dir, r)
		}
	}()

	return prose.ModelFromDisk(dir), nil
}

func checkProseModelDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return models.NewModelNotFoundError(dir)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("model path %s is not a directory", dir)
	}

	_, err = os.Stat(filepath.Join(dir, proseModelFile))
	if errors.Is(err, fs.ErrNotExist) {
		return models.NewModelNotFoundError(filepath.Join(dir, proseModelFile))
	}
	return err
}

func (p *ProsePipeline) Name() string {
	return p.name
}

func (p *ProsePipeline) Close() error {
	return nil
}

func (p *ProsePipeline) Process(ctx context.Context, text string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return &models.Document{Text: text, Entities: []models.Entity{}}, nil
	}

	opts := []prose.DocOpt{prose.WithSegmentation(false)}
	if p.model != nil {
		opts = append(opts, prose.UsingModel(p.model))
	}

	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return nil, fmt.Errorf("prose failed to process text: %w", err)
	}

	found := make([]labeledText, len(doc.Entities()))
	for i, e := range doc.Entities() {
		found[i] = labeledText{text: e.Text, label: e.Label}
	}

	return &models.Document{Text: text, Entities: alignEntities(text, found)}, nil
}

type labeledText struct {
	text  string
	label string
}

// alignEntities recovers offsets for entities reported as token text only.
// prose joins an entity's tokens with single spaces, so each entity is matched
// token by token, in order, allowing any whitespace between tokens.
func alignEntities(text string, found []labeledText) []models.Entity {
	b := models.NewSpanBuilder(text)

	entities := make([]models.Entity, 0, len(found))
	cursor := 0
	for _, f := range found {
		start, end, ok := locate(text, f.text, cursor)
		if !ok {
			log.Debugf("unable to locate entity %q in text, dropping it", f.text)
			continue
		}
		ent, ok := b.ByteSpan(text, start, end, f.label)
		if !ok {
			continue
		}
		entities = append(entities, ent)
		cursor = end
	}

	return entities
}

// locate returns the byte range of entityText's tokens in text, searching from
// byte offset from.
func locate(text, entityText string, from int) (int, int, bool) {
	tokens := strings.Fields(entityText)
	if len(tokens) == 0 {
		return 0, 0, false
	}

	for from < len(text) {
		idx := strings.Index(text[from:], tokens[0])
		if idx < 0 {
			return 0, 0, false
		}
		start := from + idx
		if end, ok := matchTokens(text, tokens[1:], start+len(tokens[0])); ok {
			return start, end, true
		}
		from = start + 1
	}

	return 0, 0, false
}

func matchTokens(text string, tokens []string, pos int) (int, bool) {
	for _, tok := range tokens {
		rest := text[pos:]
		trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
		if !strings.HasPrefix(trimmed, tok) {
			return 0, false
		}
		pos += len(rest) - len(trimmed) + len(tok)
	}
	return pos, true
}
