package nlp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/slulibrary/nerdemo/config"
	"github.com/slulibrary/nerdemo/pkg/models"
)

// Source is one place a pipeline can be loaded from.
type Source interface {
	Name() string
	Load(ctx context.Context) models.LoadResult
}

// Loader tries its sources in order. A source failing with
// models.ErrModelNotFound hands over to the next one; any other failure stops
// the loader.
type Loader struct {
	sources []Source
}

func NewLoader(sources ...Source) *Loader {
	return &Loader{sources: sources}
}

// NewLoaderFromConfig builds the source chain for cfg.NLP.Pipeline.
func NewLoaderFromConfig(cfg *config.Config) (*Loader, error) {
	nlpCfg := cfg.NLP

	switch nlpCfg.Pipeline {
	case config.PipelineLocal, "":
		sources := []Source{&DiskSource{Path: nlpCfg.ModelPath}}
		if nlpCfg.Fallback.URL != "" {
			sources = append(sources, &DownloadSource{
				Archive: ModelArchive{
					Name:     nlpCfg.Fallback.Name,
					URL:      nlpCfg.Fallback.URL,
					Checksum: nlpCfg.Fallback.Checksum,
				},
				CacheDir:   nlpCfg.Fallback.CacheDir,
				Downloader: NewDownloader(NewRetryableHTTPClient(0, 0)),
			})
		} else {
			sources = append(sources, &BuiltinSource{})
		}
		return NewLoader(sources...), nil
	case config.PipelineNLPServer:
		client := NewRetryableHTTPClient(DefaultRetryMax, DefaultTimeout)
		return NewLoader(&NLPServerSource{
			Pipeline: NewNLPServerPipeline(nlpCfg.ServerURL, nlpCfg.Language, client),
		}), nil
	case config.PipelineComprehend:
		return NewLoader(&ComprehendSource{
			Config:   nlpCfg.Comprehend,
			Language: nlpCfg.Language,
		}), nil
	default:
		return nil, fmt.Errorf("nlp.pipeline (%s) is not supported", nlpCfg.Pipeline)
	}
}

func (l *Loader) Load(ctx context.Context) (models.Pipeline, error) {
	var lastErr error
	for _, s := range l.sources {
		result := s.Load(ctx)
		if result.Ok() {
			log.Infof("Loaded NER pipeline %q from %s", result.Pipeline.Name(), result.Source)
			return result.Pipeline, nil
		}

		err := result.Err
		if err == nil {
			err = errors.New("source returned no pipeline")
		}
		if !errors.Is(err, models.ErrModelNotFound) {
			return nil, fmt.Errorf("loading model from %s: %w", result.Source, err)
		}

		log.Warnf("%s: %s, trying next model source", result.Source, err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no model sources configured")
	}
	return nil, fmt.Errorf("no model could be loaded: %w", lastErr)
}

// DiskSource loads a prose model directory, typically a locally trained model.
type DiskSource struct {
	Path string
}

func (s *DiskSource) Name() string {
	return "disk " + s.Path
}

func (s *DiskSource) Load(_ context.Context) models.LoadResult {
	model, err := LoadProseModel(s.Path)
	if err != nil {
		return models.Failed(s.Name(), err)
	}
	return models.Loaded(s.Name(), NewProsePipeline(filepath.Base(s.Path), model))
}

// DownloadSource installs a model archive into a cache directory, then loads it
// from disk.
type DownloadSource struct {
	Archive    ModelArchive
	CacheDir   string
	Downloader *Downloader
}

func (s *DownloadSource) Name() string {
	return "download " + s.Archive.URL
}

func (s *DownloadSource) Load(ctx context.Context) models.LoadResult {
	dir, err := s.Downloader.Install(ctx, s.Archive, s.CacheDir)
	if err != nil {
		return models.Failed(s.Name(), err)
	}

	model, err := LoadProseModel(dir)
	if err != nil {
		// the archive was just validated, so a missing model here is not a reason to fall back
		return models.Failed(s.Name(), fmt.Errorf("installed model is unusable: %s", err))
	}
	return models.Loaded(s.Name(), NewProsePipeline(s.Archive.Name, model))
}

// BuiltinSource uses the English model compiled into prose.
type BuiltinSource struct{}

const builtinModelName = "prose-en"

func (s *BuiltinSource) Name() string {
	return "builtin " + builtinModelName
}

func (s *BuiltinSource) Load(ctx context.Context) models.LoadResult {
	p := NewProsePipeline(builtinModelName, nil)
	// the built-in model is decoded lazily; surface problems at startup
	if _, err := p.Process(ctx, "Warm up the built-in model in London."); err != nil {
		return models.Failed(s.Name(), err)
	}
	return models.Loaded(s.Name(), p)
}

// NLPServerSource is loaded once the NLP server answers its health check.
type NLPServerSource struct {
	Pipeline *NLPServerPipeline
}

func (s *NLPServerSource) Name() string {
	return s.Pipeline.Name()
}

func (s *NLPServerSource) Load(ctx context.Context) models.LoadResult {
	if err := s.Pipeline.HealthCheck(ctx); err != nil {
		return models.Failed(s.Name(), err)
	}
	return models.Loaded(s.Name(), s.Pipeline)
}

type ComprehendSource struct {
	Config   config.ComprehendConfig
	Language string
}

func (s *ComprehendSource) Name() string {
	return "comprehend " + s.Config.Region
}

func (s *ComprehendSource) Load(_ context.Context) models.LoadResult {
	client, err := NewComprehendClient(s.Config)
	if err != nil {
		return models.Failed(s.Name(), err)
	}
	return models.Loaded(s.Name(), NewComprehendPipeline(client, s.Config.Region, s.Language))
}
