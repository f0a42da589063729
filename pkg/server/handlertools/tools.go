package handlertools

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/slulibrary/nerdemo/internal"
	"github.com/slulibrary/nerdemo/pkg/models"
)

var log = internal.GetLogger()

const (
	MsgInternalServerError = "Internal Server Error"
	MsgRequestTooLarge     = "Request body too large"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EncodeJSON encodes data into JSON and writes it to the response writer.
func EncodeJSON(w http.ResponseWriter, data interface{}) error {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	return json.NewEncoder(w).Encode(data)
}

var ErrTrailingData = errors.New("request body must hold a single JSON value")

// DecodeJSON decodes a JSON request body into the provided data struct.
// Anything but whitespace after the first value is an error.
func DecodeJSON(r *http.Request, data interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(data); err != nil {
		return err
	}

	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case IsRequestTooLarge(err):
		return err
	default:
		return ErrTrailingData
	}
}

// IsRequestTooLarge reports whether err came from reading past a body size limit.
func IsRequestTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr) || (err != nil && err.Error() == "http: request body too large")
}

// RenderError writes err as {"error": "..."}. Bad requests keep their message,
// server errors are logged and hidden behind a generic message.
func RenderError(w http.ResponseWriter, err error, status int) {
	message := err.Error()

	switch {
	case IsRequestTooLarge(err):
		status = http.StatusRequestEntityTooLarge
		message = MsgRequestTooLarge
	case errors.Is(err, models.ErrBadRequest):
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		log.Error(err)
		message = MsgInternalServerError
	} else if status != http.StatusNotFound {
		// Don't log not found errors
		log.Debugf("%d: %s", status, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		log.Errorf("failed to write error response: %s", err)
	}
}
