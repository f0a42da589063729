package models

import "context"

// Pipeline is a loaded NER model. Implementations are read-only after
// construction and safe for concurrent use.
type Pipeline interface {
	// Name identifies the model or service backing the pipeline.
	Name() string
	// Process runs the model over text. Entities keep the model's order and are
	// not filtered or deduplicated.
	Process(ctx context.Context, text string) (*Document, error)
	Close() error
}

// LoadResult is the outcome of trying one model source: either a loaded
// Pipeline or the reason the source could not provide one.
type LoadResult struct {
	Source   string
	Pipeline Pipeline
	Err      error
}

func Loaded(source string, p Pipeline) LoadResult {
	return LoadResult{Source: source, Pipeline: p}
}

func Failed(source string, err error) LoadResult {
	return LoadResult{Source: source, Err: err}
}

func (r LoadResult) Ok() bool {
	return r.Err == nil && r.Pipeline != nil
}
