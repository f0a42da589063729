package models

import (
	"context"

	"github.com/slulibrary/nerdemo/config"
)

// AppState is a struct that holds the state of the application
// Use cmd.NewAppState to create a new instance
type AppState struct {
	Config *config.Config
	// Pipeline and Extractor are nil for the echo UI, which never loads a model.
	Pipeline  Pipeline
	Extractor Extractor
}

// Extractor runs entity extraction over raw text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
	Process(ctx context.Context, text string) (*Document, error)
}
