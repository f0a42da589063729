package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/comprehend"
	"github.com/aws/aws-sdk-go/service/comprehend/comprehendiface"

	"github.com/slulibrary/nerdemo/config"
	"github.com/slulibrary/nerdemo/pkg/models"
)

var _ models.Pipeline = &ComprehendPipeline{}

// ComprehendPipeline uses AWS Comprehend's DetectEntities.
type ComprehendPipeline struct {
	client   comprehendiface.ComprehendAPI
	region   string
	language string
}

func NewComprehendPipeline(client comprehendiface.ComprehendAPI, region, language string) *ComprehendPipeline {
	return &ComprehendPipeline{client: client, region: region, language: language}
}

// NewComprehendClient builds a client from static credentials when they are set,
// falling back to the default AWS credential chain.
func NewComprehendClient(cfg config.ComprehendConfig) (*comprehend.Comprehend, error) {
	awsConfig := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}

	return comprehend.New(sess), nil
}

func (p *ComprehendPipeline) Name() string {
	return "comprehend " + p.region
}

func (p *ComprehendPipeline) Close() error {
	return nil
}

func (p *ComprehendPipeline) Process(ctx context.Context, text string) (*models.Document, error) {
	// Comprehend rejects empty input
	if strings.TrimSpace(text) == "" {
		return &models.Document{Text: text, Entities: []models.Entity{}}, nil
	}

	out, err := p.client.DetectEntitiesWithContext(ctx, &comprehend.DetectEntitiesInput{
		Text:         aws.String(text),
		LanguageCode: aws.String(p.language),
	})
	if err != nil {
		return nil, fmt.Errorf("comprehend DetectEntities failed: %w", err)
	}

	b := models.NewSpanBuilder(text)
	entities := make([]models.Entity, 0, len(out.Entities))
	for _, e := range out.Entities {
		start := int(aws.Int64Value(e.BeginOffset))
		end := int(aws.Int64Value(e.EndOffset))
		ent, ok := b.Span(start, end, aws.StringValue(e.Type))
		if !ok {
			log.Debugf("dropping out of range comprehend entity %q [%d:%d]", aws.StringValue(e.Text), start, end)
			continue
		}
		entities = append(entities, ent)
	}

	return &models.Document{Text: text, Entities: entities}, nil
}
