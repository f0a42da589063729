package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/slulibrary/nerdemo/config"
	"github.com/slulibrary/nerdemo/pkg/auth"
	"github.com/slulibrary/nerdemo/pkg/server/handlertools"
)

const (
	versionHeader   = "X-Nerdemo-Version"
	requestIDHeader = "X-Request-Id"
)

// CORSHeaders are sent on every response, errors included.
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,Authorization",
	"Access-Control-Allow-Methods": "GET,PUT,POST,DELETE",
}

// SendVersion is a middleware that adds the current version to the response
func SendVersion(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get(versionHeader) == "" {
			w.Header().Add(
				versionHeader,
				config.VersionString,
			)
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// SendRequestID echoes the id assigned by middleware.RequestID.
func SendRequestID(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(requestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// ApplyCustomHeaders is a middleware that adds custom headers to the response
func ApplyCustomHeaders(customHeaders map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for key, value := range customHeaders {
				// Only add the header if it's not already set, allowing for route-specific overrides
				if w.Header().Get(key) == "" {
					w.Header().Add(key, value)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AnswerPreflight ends CORS preflight requests with the full CORSHeaders lists,
// replacing the narrowed values go-chi/cors echoes back from the request.
func AnswerPreflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
			next.ServeHTTP(w, r)
			return
		}
		for key, value := range CORSHeaders {
			w.Header().Set(key, value)
		}
		w.WriteHeader(http.StatusOK)
	})
}

// Authenticator rejects requests whose bearer token failed verification.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.Authenticated(r); err != nil {
			handlertools.RenderError(w, errors.New("Unauthorized"), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	handlertools.RenderError(w, errors.New("Not Found"), http.StatusNotFound)
}

func methodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	handlertools.RenderError(w, errors.New("Method Not Allowed"), http.StatusMethodNotAllowed)
}
