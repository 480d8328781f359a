package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/diwise/conference-go/internal/pkg/application/conferences"
	"github.com/diwise/conference-go/internal/pkg/presentation/api/auth"
	"github.com/diwise/conference-go/pkg/encoding"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("conference-go/api")

var errInvalidBody = errors.New("invalid request body")

const (
	msgDoesNotExist string = "Does not exist"
	msgInvalidBody  string = "Invalid request body"
)

func RegisterHandlers(ctx context.Context, r chi.Router, policies io.Reader, app conferences.App) error {
	authenticator, err := auth.NewAuthenticator(ctx, policies)
	if err != nil {
		return fmt.Errorf("failed to create api authenticator: %w", err)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(authenticator))

		r.Get("/states", NewListStatesHandler(app))

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", NewListLocationsHandler(app))
			r.Post("/", NewCreateLocationHandler(app))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", NewShowLocationHandler(app))
				r.Put("/", NewUpdateLocationHandler(app))
				r.Delete("/", NewDeleteLocationHandler(app))
			})
		})

		r.Route("/conferences", func(r chi.Router) {
			r.Get("/", NewListConferencesHandler(app))
			r.Post("/", NewCreateConferenceHandler(app))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", NewShowConferenceHandler(app))
				r.Put("/", NewUpdateConferenceHandler(app))
				r.Delete("/", NewDeleteConferenceHandler(app))

				r.Get("/weather", NewConferenceWeatherHandler(app))

				r.Get("/attendees", NewListAttendeesHandler(app))
				r.Post("/attendees", NewCreateAttendeeHandler(app))

				r.Get("/presentations", NewListPresentationsHandler(app))
				r.Post("/presentations", NewCreatePresentationHandler(app))
			})
		})

		r.Route("/attendees/{id}", func(r chi.Router) {
			r.Get("/", NewShowAttendeeHandler(app))
			r.Put("/", NewUpdateAttendeeHandler(app))
			r.Delete("/", NewDeleteAttendeeHandler(app))
		})

		r.Route("/presentations/{id}", func(r chi.Router) {
			r.Get("/", NewShowPresentationHandler(app))
			r.Put("/", NewUpdatePresentationHandler(app))
			r.Delete("/", NewDeletePresentationHandler(app))

			r.Put("/approval", NewApprovePresentationHandler(app))
			r.Put("/rejection", NewRejectPresentationHandler(app))
		})
	})

	return nil
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle wraps fn in a span and turns any error it returns into a response
func handle(operation string, fn handlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), operation, trace.WithSpanKind(trace.SpanKindServer))
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = fn(w, r.WithContext(ctx))
		if err != nil {
			writeError(ctx, w, err)
		}
	})
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, conferences.ErrNotFound
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		return fmt.Errorf("%w: %s", errInvalidBody, err.Error())
	}
	return nil
}

func writeEncoded(w http.ResponseWriter, v any, enc encoding.Encoder) error {
	body, err := encoding.Marshal(v, enc)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, body)
	return nil
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	body, _ := json.Marshal(map[string]string{"message": message})
	writeJSON(w, statusCode, body)
}

func writeJSON(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var ire conferences.InvalidReferenceError

	switch {
	case errors.As(err, &ire):
		writeMessage(w, http.StatusBadRequest, ire.Error())
	case errors.Is(err, conferences.ErrNotFound):
		writeMessage(w, http.StatusNotFound, msgDoesNotExist)
	case errors.Is(err, errInvalidBody):
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
	default:
		logging.GetFromContext(ctx).Error("request failed", "err", err.Error())
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}

func writeDeleted(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, []byte(`{"deleted":true}`))
}

func collection(name string, items any) *encoding.Map {
	return encoding.NewMap(encoding.P(name, items))
}
