package internal

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogFormat(t *testing.T) {
	defer func() { _ = SetLogFormat(TextFormat) }()

	require.NoError(t, SetLogFormat(JSONFormat))
	assert.IsType(t, &logrus.JSONFormatter{}, GetLogger().Formatter)

	require.NoError(t, SetLogFormat(""))
	assert.IsType(t, &logrus.TextFormatter{}, GetLogger().Formatter)

	assert.Error(t, SetLogFormat("xml"))
}

func TestLeveledLogrusFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.Out = &buf
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.DebugLevel)

	leveled := NewLeveledLogrus(l)
	leveled.Warn("retrying", "url", "http://nlp/entities", "attempt", 2, "dangling")

	out := buf.String()
	assert.Contains(t, out, `"msg":"retrying"`)
	assert.Contains(t, out, `"url":"http://nlp/entities"`)
	assert.Contains(t, out, `"attempt":2`)
	assert.NotContains(t, out, "dangling")
}
