package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/slulibrary/nerdemo/config"
	"github.com/slulibrary/nerdemo/pkg/models"
)

var _ models.Pipeline = &NLPServerPipeline{}

// NLPServerPipeline delegates extraction to a zep-nlp-server compatible service.
type NLPServerPipeline struct {
	serverURL string
	language  string
	client    *http.Client
}

func NewNLPServerPipeline(serverURL, language string, client *http.Client) *NLPServerPipeline {
	return &NLPServerPipeline{
		serverURL: strings.TrimRight(serverURL, "/"),
		language:  language,
		client:    client,
	}
}

func (p *NLPServerPipeline) Name() string {
	return "nlp_server " + p.serverURL
}

func (p *NLPServerPipeline) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// HealthCheck verifies that the server is reachable.
func (p *NLPServerPipeline) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.serverURL+"/healthz", nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", config.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("nlp server health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nlp server health check returned %s", resp.Status)
	}
	return nil
}

func (p *NLPServerPipeline) Process(ctx context.Context, text string) (*models.Document, error) {
	requestID := uuid.NewString()
	requestBody := models.EntityRequest{Texts: []models.EntityRequestRecord{{
		UUID:     requestID,
		Text:     text,
		Language: p.language,
	}}}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling nlp server request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.serverURL+"/entities",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", config.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nlp server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nlp server returned %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	var response models.EntityResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("error decoding nlp server response: %w", err)
	}

	for _, record := range response.Texts {
		if record.UUID == requestID {
			return &models.Document{Text: text, Entities: flattenMatches(text, record.Entities)}, nil
		}
	}

	return nil, fmt.Errorf("nlp server response has no record for %s", requestID)
}

// flattenMatches turns the server's entities, which group every match of the
// same name, into one span per match ordered by position in the text.
func flattenMatches(text string, nlpEntities []models.NLPEntity) []models.Entity {
	b := models.NewSpanBuilder(text)

	entities := make([]models.Entity, 0, len(nlpEntities))
	for _, e := range nlpEntities {
		for _, m := range e.Matches {
			ent, ok := b.Span(m.Start, m.End, e.Label)
			if !ok {
				log.Debugf("dropping out of range nlp server match %q [%d:%d]", m.Text, m.Start, m.End)
				continue
			}
			entities = append(entities, ent)
		}
	}

	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].StartChar != entities[j].StartChar {
			return entities[i].StartChar < entities[j].StartChar
		}
		return entities[i].EndChar < entities[j].EndChar
	})

	return entities
}
