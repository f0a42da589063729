package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/slulibrary/nerdemo/config"
	"github.com/slulibrary/nerdemo/pkg/models"
	"github.com/slulibrary/nerdemo/pkg/nlp"
)

// readInput joins args, or reads all of stdin when there are none.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func runExtract(ctx context.Context, text string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig()

	appState, err := NewAppState(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closePipeline(appState)

	return writeExtraction(ctx, appState.Extractor, text, out)
}

func writeExtraction(ctx context.Context, extractor models.Extractor, text string, out io.Writer) error {
	doc, err := extractor.Process(ctx, text)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(models.NewExtractionResponse(text, doc.Entities))
}

func runFetchModel(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig()

	return fetchModel(ctx, cfg.NLP.Fallback, nlp.NewDownloader(nlp.NewRetryableHTTPClient(0, 0)), out)
}

func fetchModel(ctx context.Context, fallback config.FallbackConfig, d *nlp.Downloader, out io.Writer) error {
	if fallback.URL == "" {
		return errors.New("nlp.fallback.url is not set; the built-in model needs no download")
	}

	dir, err := d.Install(ctx, nlp.ModelArchive{
		Name:     fallback.Name,
		URL:      fallback.URL,
		Checksum: fallback.Checksum,
	}, fallback.CacheDir)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, dir)
	return err
}
