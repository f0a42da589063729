package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slulibrary/nerdemo/config"
	"github.com/slulibrary/nerdemo/pkg/auth"
	"github.com/slulibrary/nerdemo/pkg/extractors"
	"github.com/slulibrary/nerdemo/pkg/models"
	"github.com/slulibrary/nerdemo/pkg/server/apihandlers"
	"github.com/slulibrary/nerdemo/pkg/testutils"
)

func newTestAppState(t *testing.T, pipeline models.Pipeline) *models.AppState {
	t.Helper()
	cfg := testutils.NewTestConfig()
	return &models.AppState{
		Config:    cfg,
		Extractor: extractors.NewEntityExtractor(pipeline),
	}
}

func newTestRouter(t *testing.T, appState *models.AppState) http.Handler {
	t.Helper()
	router, err := setupRouter(appState)
	require.NoError(t, err)
	return router
}

func postNER(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ner", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func decodeBody[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &v), res.Body.String())
	return v
}

func assertCORSHeaders(t *testing.T, res *httptest.ResponseRecorder) {
	t.Helper()
	for key, value := range CORSHeaders {
		assert.Equal(t, value, res.Header().Get(key), key)
	}
}

func TestRootHandler(t *testing.T) {
	router := newTestRouter(t, newTestAppState(t, testutils.NewFakePipeline()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))
	assert.JSONEq(
		t,
		`{"message": "NER API is running. Use /api/ner endpoint for entity recognition."}`,
		res.Body.String(),
	)
	assertCORSHeaders(t, res)
	assert.Equal(t, config.VersionString, res.Header().Get(versionHeader))
	assert.NotEmpty(t, res.Header().Get(requestIDHeader))
}

func TestNERHandler(t *testing.T) {
	router := newTestRouter(t, newTestAppState(t, testutils.NewFakePipeline()))

	res := postNER(t, router, `{"text": "Barack Obama was born in Hawaii."}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assertCORSHeaders(t, res)

	got := decodeBody[models.ExtractionResponse](t, res)
	assert.Equal(t, testutils.ObamaText, got.ProcessedText)
	assert.Equal(t, testutils.ObamaEntities, got.Entities)

	// wire format
	assert.JSONEq(t, `{
		"entities": [
			{"text": "Barack Obama", "start_char": 0, "end_char": 12, "label": "PERSON"},
			{"text": "Hawaii", "start_char": 25, "end_char": 31, "label": "GPE"}
		],
		"processed_text": "Barack Obama was born in Hawaii."
	}`, res.Body.String())
}

func TestNERHandlerProcessedTextIsExactInput(t *testing.T) {
	router := newTestRouter(t, newTestAppState(t, testutils.NewFakePipeline()))

	texts := []string{
		"  Zoë met José in Zürich on Sunday.\n",
		"nothing to find",
		"Apple\tApple",
		"<script>alert('Apple')</script>",
	}
	for _, text := range texts {
		body, err := json.Marshal(models.ExtractionRequest{Text: text})
		require.NoError(t, err)

		res := postNER(t, router, string(body))
		require.Equal(t, http.StatusOK, res.Code)

		got := decodeBody[models.ExtractionResponse](t, res)
		assert.Equal(t, text, got.ProcessedText)
		assert.NotNil(t, got.Entities)

		runes := []rune(got.ProcessedText)
		for _, e := range got.Entities {
			require.True(t, 0 <= e.StartChar && e.StartChar < e.EndChar && e.EndChar <= len(runes), "%+v", e)
			assert.Equal(t, e.Text, string(runes[e.StartChar:e.EndChar]))
		}
	}
}

func TestNERHandlerDeterministic(t *testing.T) {
	router := newTestRouter(t, newTestAppState(t, testutils.NewFakePipeline()))
	body := `{"text": "Apple met Apple in Cupertino on Sunday."}`

	first := postNER(t, router, body)
	second := postNER(t, router, body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestNERHandlerBadRequests(t *testing.T) {
	pipeline := testutils.NewFakePipeline()
	router := newTestRouter(t, newTestAppState(t, pipeline))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty object", `{}`, apihandlers.MsgMissingText},
		{"empty body", ``, apihandlers.MsgMissingText},
		{"invalid json", `{"text": `, apihandlers.MsgMissingText},
		{"array body", `["Barack Obama"]`, apihandlers.MsgMissingText},
		{"string body", `"Barack Obama"`, apihandlers.MsgMissingText},
		{"null body", `null`, apihandlers.MsgMissingText},
		{"trailing garbage", `{"text": "Barack Obama"} trailing garbage`, apihandlers.MsgMissingText},
		{"two objects", `{"text": "Barack Obama"}{"text": "Hawaii"}`, apihandlers.MsgMissingText},
		{"other field", `{"content": "Barack Obama"}`, apihandlers.MsgMissingText},
		{"null text", `{"text": null}`, apihandlers.MsgEmptyText},
		{"empty text", `{"text": ""}`, apihandlers.MsgEmptyText},
		{"whitespace text", `{"text": "   "}`, apihandlers.MsgEmptyText},
		{"newline text", `{"text": "\n\t "}`, apihandlers.MsgEmptyText},
		{"number text", `{"text": 42}`, apihandlers.MsgTextNotString},
		{"list text", `{"text": ["Barack Obama"]}`, apihandlers.MsgTextNotString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := postNER(t, router, tt.body)

			require.Equal(t, http.StatusBadRequest, res.Code)
			assert.Equal(t, map[string]string{"error": tt.want}, decodeBody[map[string]string](t, res))
			assertCORSHeaders(t, res)
		})
	}

	assert.Zero(t, pipeline.Calls(), "bad requests never reach the pipeline")
}

func TestNERHandlerRequestTooLarge(t *testing.T) {
	appState := newTestAppState(t, testutils.NewFakePipeline())
	appState.Config.Server.MaxRequestSize = 64
	router := newTestRouter(t, appState)

	res := postNER(t, router, `{"text": "`+strings.Repeat("Hawaii ", 100)+`"}`)

	require.Equal(t, http.StatusRequestEntityTooLarge, res.Code)
	assert.Contains(t, res.Body.String(), "Request body too large")
	assertCORSHeaders(t, res)
}

func TestNERHandlerExtractionFailure(t *testing.T) {
	pipeline := testutils.NewFakePipeline()
	pipeline.Err = errors.New("model crashed")
	router := newTestRouter(t, newTestAppState(t, pipeline))

	res := postNER(t, router, `{"text": "Barack Obama"}`)

	require.Equal(t, http.StatusInternalServerError, res.Code)
	assert.JSONEq(t, `{"error": "Internal Server Error"}`, res.Body.String())
	assertCORSHeaders(t, res)
}

func TestNERHandlerPanicRecovered(t *testing.T) {
	pipeline := testutils.NewFakePipeline()
	pipeline.Panic = "segfault in model"
	router := newTestRouter(t, newTestAppState(t, pipeline))

	res := postNER(t, router, `{"text": "Barack Obama"}`)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assertCORSHeaders(t, res)
}

func TestRouterErrors(t *testing.T) {
	router := newTestRouter(t, newTestAppState(t, testutils.NewFakePipeline()))

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)

		require.Equal(t, http.StatusNotFound, res.Code)
		assert.JSONEq(t, `{"error": "Not Found"}`, res.Body.String())
		assertCORSHeaders(t, res)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ner", nil)
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)

		require.Equal(t, http.StatusMethodNotAllowed, res.Code)
		assert.JSONEq(t, `{"error": "Method Not Allowed"}`, res.Body.String())
		assertCORSHeaders(t, res)
	})
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, newTestAppState(t, testutils.NewFakePipeline()))

	req := httptest.NewRequest(http.MethodOptions, "/api/ner", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assertCORSHeaders(t, res)
	assert.Equal(t, "GET,PUT,POST,DELETE", res.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type,Authorization", res.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, res.Body.String())
}

func TestHeartbeat(t *testing.T) {
	router := newTestRouter(t, newTestAppState(t, testutils.NewFakePipeline()))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assertCORSHeaders(t, res)
}

func TestDebugProfiler(t *testing.T) {
	for _, debug := range []bool{true, false} {
		appState := newTestAppState(t, testutils.NewFakePipeline())
		appState.Config.Server.Debug = debug
		router := newTestRouter(t, appState)

		req := httptest.NewRequest(http.MethodGet, "/debug/vars", nil)
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)

		if debug {
			assert.Equal(t, http.StatusOK, res.Code)
		} else {
			assert.Equal(t, http.StatusNotFound, res.Code)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("auth required", func(t *testing.T) {
		appState := newTestAppState(t, testutils.NewFakePipeline())
		appState.Config.Auth = config.AuthConfig{Secret: "test-secret", Required: true}
		router := newTestRouter(t, appState)

		res := postNER(t, router, `{"text": "Barack Obama"}`)
		require.Equal(t, http.StatusUnauthorized, res.Code)
		assertCORSHeaders(t, res)

		token, err := auth.GenerateJWT(appState.Config)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/ner", bytes.NewBufferString(`{"text": "Barack Obama"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		res = httptest.NewRecorder()
		router.ServeHTTP(res, req)
		require.Equal(t, http.StatusOK, res.Code)

		// the root route stays public
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		res = httptest.NewRecorder()
		router.ServeHTTP(res, req)
		require.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("auth not required", func(t *testing.T) {
		appState := newTestAppState(t, testutils.NewFakePipeline())
		appState.Config.Auth = config.AuthConfig{Secret: "test-secret"}
		router := newTestRouter(t, appState)

		res := postNER(t, router, `{"text": "Barack Obama"}`)
		require.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("auth required without secret", func(t *testing.T) {
		appState := newTestAppState(t, testutils.NewFakePipeline())
		appState.Config.Auth = config.AuthConfig{Required: true}

		_, err := setupRouter(appState)
		assert.ErrorIs(t, err, auth.ErrSecretNotSet)
	})
}

func TestSendVersion(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	handler := SendVersion(nextHandler)

	req, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get(versionHeader) != config.VersionString {
		t.Errorf("handler returned wrong version header: got %v want %v",
			rr.Header().Get(versionHeader), config.VersionString)
	}
}

func TestApplyCustomHeaders(t *testing.T) {
	handler := ApplyCustomHeaders(map[string]string{
		"X-Static": "static",
		"X-Route":  "default",
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	rr.Header().Set("X-Route", "override")
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "static", rr.Header().Get("X-Static"))
	assert.Equal(t, "override", rr.Header().Get("X-Route"))
}

func TestCreate(t *testing.T) {
	appState := newTestAppState(t, testutils.NewFakePipeline())

	srv, err := Create(appState)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8000", srv.Addr)
	assert.Equal(t, ReadHeaderTimeout, srv.ReadHeaderTimeout)
}
