package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/open-policy-agent/opa/rego"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("conference-go/api/authz")

var ErrAccessDenied = errors.New("authorization failed")

type Enticator interface {
	CheckAccess(ctx context.Context, r *http.Request) error
}

type enticatorImpl struct {
	preparedQuery rego.PreparedEvalQuery
}

// NewAuthenticator compiles the rego policies read from the given reader. The
// policies are expected to define data.conference.authz.allow
func NewAuthenticator(ctx context.Context, policies io.Reader) (Enticator, error) {
	module, err := io.ReadAll(policies)
	if err != nil {
		return nil, fmt.Errorf("unable to read authz policies: %s", err.Error())
	}

	impl := &enticatorImpl{}

	impl.preparedQuery, err = rego.New(
		rego.Query("x = data.conference.authz.allow"),
		rego.Module("conference.rego", string(module)),
	).PrepareForEval(ctx)

	if err != nil {
		return nil, err
	}

	return impl, nil
}

func (e *enticatorImpl) CheckAccess(ctx context.Context, r *http.Request) error {
	var err error

	ctx, span := tracer.Start(ctx, "check-auth")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	token := r.Header.Get("Authorization")
	token, _ = strings.CutPrefix(token, "Bearer ")

	path := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	input := map[string]any{
		"method": r.Method,
		"path":   path,
		"token":  token,
	}

	results, err := e.preparedQuery.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		err = fmt.Errorf("opa eval failed: %w", err)
		return err
	}

	if len(results) == 0 {
		err = fmt.Errorf("%w: opa query could not be satisfied", ErrAccessDenied)
		return err
	}

	switch binding := results[0].Bindings["x"].(type) {
	case bool:
		if !binding {
			err = ErrAccessDenied
			return err
		}
	case map[string]any:
	default:
		err = fmt.Errorf("opa error: unexpected result type %T", binding)
		return err
	}

	return nil
}

// Middleware rejects requests that the policies do not allow with 403 Forbidden
func Middleware(e Enticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			err := e.CheckAccess(ctx, r)
			if err != nil {
				logging.GetFromContext(ctx).Info("access denied", "method", r.Method, "path", r.URL.Path, "err", err.Error())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				body, _ := json.Marshal(map[string]string{"message": "Forbidden"})
				w.Write(body)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
