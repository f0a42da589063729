package apihandlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/slulibrary/nerdemo/pkg/models"
	"github.com/slulibrary/nerdemo/pkg/server/handlertools"
)

const (
	RootMessage = "NER API is running. Use /api/ner endpoint for entity recognition."

	MsgMissingText   = "Missing 'text' field"
	MsgEmptyText     = "Text cannot be empty"
	MsgTextNotString = "Field 'text' must be a string"
)

type RootResponse struct {
	Message string `json:"message"`
}

// RootHandler reports that the API is up.
func RootHandler(w http.ResponseWriter, _ *http.Request) {
	if err := handlertools.EncodeJSON(w, RootResponse{Message: RootMessage}); err != nil {
		handlertools.RenderError(w, err, http.StatusInternalServerError)
		return
	}
}

// NERHandler godoc
//
//	@Summary		Extract named entities
//	@Description	run the loaded NER pipeline over text
//	@Accept			json
//	@Produce		json
//	@Param			request	body		models.ExtractionRequest	true	"Text"
//	@Success		200		{object}	models.ExtractionResponse
//	@Failure		400		{object}	handlertools.ErrorResponse	"Bad Request"
//	@Failure		413		{object}	handlertools.ErrorResponse	"Request Entity Too Large"
//	@Failure		500		{object}	handlertools.ErrorResponse	"Internal Server Error"
//	@Router			/api/ner [post]
func NERHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := decodeExtractionRequest(r)
		if err != nil {
			handlertools.RenderError(w, err, http.StatusBadRequest)
			return
		}

		doc, err := appState.Extractor.Process(r.Context(), text)
		if err != nil {
			handlertools.RenderError(
				w,
				fmt.Errorf("entity extraction failed: %w", err),
				http.StatusInternalServerError,
			)
			return
		}

		if err := handlertools.EncodeJSON(w, models.NewExtractionResponse(text, doc.Entities)); err != nil {
			handlertools.RenderError(w, err, http.StatusInternalServerError)
			return
		}
	}
}

// decodeExtractionRequest returns the "text" field of the body. Anything that
// is not a JSON object holding that key counts as a missing field.
func decodeExtractionRequest(r *http.Request) (string, error) {
	var body map[string]json.RawMessage
	if err := handlertools.DecodeJSON(r, &body); err != nil {
		if handlertools.IsRequestTooLarge(err) {
			return "", err
		}
		return "", models.NewBadRequestError(MsgMissingText)
	}

	raw, ok := body["text"]
	if !ok {
		return "", models.NewBadRequestError(MsgMissingText)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", models.NewBadRequestError(MsgEmptyText)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", models.NewBadRequestError(MsgTextNotString)
	}
	if strings.TrimSpace(text) == "" {
		return "", models.NewBadRequestError(MsgEmptyText)
	}

	return text, nil
}
