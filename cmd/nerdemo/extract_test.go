package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slulibrary/nerdemo/config"
	"github.com/slulibrary/nerdemo/pkg/extractors"
	"github.com/slulibrary/nerdemo/pkg/nlp"
	"github.com/slulibrary/nerdemo/pkg/testutils"
)

func TestReadInput(t *testing.T) {
	text, err := readInput([]string{"Barack", "Obama"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "Barack Obama", text)

	text, err = readInput(nil, strings.NewReader("Barack Obama was born in Hawaii.\n"))
	require.NoError(t, err)
	assert.Equal(t, testutils.ObamaText, text)

	text, err = readInput(nil, strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestWriteExtraction(t *testing.T) {
	extractor := extractors.NewEntityExtractor(testutils.NewFakePipeline())

	var out bytes.Buffer
	require.NoError(t, writeExtraction(context.Background(), extractor, testutils.ObamaText, &out))
	assert.JSONEq(t, `{
		"entities": [
			{"text": "Barack Obama", "start_char": 0, "end_char": 12, "label": "PERSON"},
			{"text": "Hawaii", "start_char": 25, "end_char": 31, "label": "GPE"}
		],
		"processed_text": "Barack Obama was born in Hawaii."
	}`, out.String())

	out.Reset()
	require.NoError(t, writeExtraction(context.Background(), extractor, "", &out))
	assert.JSONEq(t, `{"entities": [], "processed_text": ""}`, out.String())

	failing := testutils.NewFakePipeline()
	failing.Err = errors.New("model crashed")
	err := writeExtraction(context.Background(), extractors.NewEntityExtractor(failing), "text", &out)
	assert.Error(t, err)
}

func TestNewAppStateEcho(t *testing.T) {
	cfg := testutils.NewTestConfig()

	appState, err := NewAppState(context.Background(), cfg, false)
	require.NoError(t, err)
	assert.Nil(t, appState.Pipeline)
	assert.Nil(t, appState.Extractor)
	assert.Same(t, cfg, appState.Config)

	// nothing to close
	closePipeline(appState)
}

func TestClosePipeline(t *testing.T) {
	appState, err := NewAppState(context.Background(), testutils.NewTestConfig(), false)
	require.NoError(t, err)
	pipeline := testutils.NewFakePipeline()
	appState.Pipeline = pipeline

	closePipeline(appState)
	assert.True(t, pipeline.Closed())
}

func TestFetchModelWithoutURL(t *testing.T) {
	var out bytes.Buffer
	err := fetchModel(
		context.Background(),
		config.FallbackConfig{Name: "en_core_web_sm", CacheDir: t.TempDir()},
		nlp.NewDownloader(nil),
		&out,
	)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}
