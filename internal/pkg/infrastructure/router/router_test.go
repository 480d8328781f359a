package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/matryer/is"
)

func TestThatTrailingSlashesAreIgnored(t *testing.T) {
	is := is.New(t)

	r := New(context.Background(), "test")
	r.Get("/api/locations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/locations/1/", nil))

	is.Equal(w.Code, http.StatusTeapot)
}

func TestThatRequestsCarryALogger(t *testing.T) {
	is := is.New(t)

	r := New(context.Background(), "test")
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		is.True(logging.GetFromContext(r.Context()) != nil)
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	is.Equal(w.Code, http.StatusNoContent)
}

func TestThatPreflightAllowsUpdates(t *testing.T) {
	is := is.New(t)

	r := New(context.Background(), "test")
	r.Put("/api/presentations/{id}/approval", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/presentations/1/approval", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	is.Equal(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}
