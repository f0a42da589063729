package extractors

import (
	"context"
	"time"

	"github.com/slulibrary/nerdemo/pkg/models"
)

// Force compiler to validate that EntityExtractor implements the Extractor interface.
var _ models.Extractor = &EntityExtractor{}

// EntityExtractor runs a loaded pipeline over raw text. Entities are returned
// exactly as the pipeline produced them.
type EntityExtractor struct {
	pipeline models.Pipeline
}

func NewEntityExtractor(pipeline models.Pipeline) *EntityExtractor {
	return &EntityExtractor{pipeline: pipeline}
}

func (ee *EntityExtractor) Extract(ctx context.Context, text string) ([]models.Entity, error) {
	doc, err := ee.Process(ctx, text)
	if err != nil {
		return nil, err
	}
	return doc.Entities, nil
}

// Process returns the pipeline's document. The entity list is never nil.
func (ee *EntityExtractor) Process(ctx context.Context, text string) (*models.Document, error) {
	start := time.Now()

	doc, err := ee.pipeline.Process(ctx, text)
	if err != nil {
		return nil, NewExtractorError("EntityExtractor pipeline "+ee.pipeline.Name()+" failed", err)
	}
	if doc.Entities == nil {
		doc.Entities = []models.Entity{}
	}

	log.Debugf(
		"EntityExtractor found %d entities in %d characters in %s",
		len(doc.Entities),
		len([]rune(text)),
		time.Since(start),
	)
	return doc, nil
}
