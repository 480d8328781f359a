package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestThatDefaultPolicyAllowsEverything(t *testing.T) {
	is := is.New(t)

	a, err := NewAuthenticator(context.Background(), strings.NewReader(allowAll))
	is.NoErr(err)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		r := httptest.NewRequest(method, "/api/locations/1", nil)
		is.NoErr(a.CheckAccess(context.Background(), r))
	}
}

func TestThatPolicyCanRequireTokenForDecisions(t *testing.T) {
	is := is.New(t)

	a, err := NewAuthenticator(context.Background(), strings.NewReader(tokenForDecisions))
	is.NoErr(err)

	r := httptest.NewRequest(http.MethodPut, "/api/presentations/1/approval", nil)
	is.True(a.CheckAccess(context.Background(), r) != nil)

	r.Header.Set("Authorization", "Bearer s3cr3t")
	is.NoErr(a.CheckAccess(context.Background(), r))

	r = httptest.NewRequest(http.MethodGet, "/api/presentations/1", nil)
	is.NoErr(a.CheckAccess(context.Background(), r))
}

func TestThatMiddlewareAnswersForbidden(t *testing.T) {
	is := is.New(t)

	a, err := NewAuthenticator(context.Background(), strings.NewReader(tokenForDecisions))
	is.NoErr(err)

	called := false
	h := Middleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/presentations/1/rejection", nil))

	is.Equal(w.Code, http.StatusForbidden)
	is.Equal(w.Body.String(), `{"message":"Forbidden"}`)
	is.True(!called)
}

func TestThatInvalidPolicyFailsToCompile(t *testing.T) {
	is := is.New(t)

	_, err := NewAuthenticator(context.Background(), strings.NewReader("package conference.authz\n\nallow {"))
	is.True(err != nil)
}

const allowAll string = `package conference.authz

default allow := true
`

const tokenForDecisions string = `package conference.authz

import rego.v1

default allow := false

allow if {
	input.method == "GET"
}

allow if {
	input.path[0] == "api"
	input.path[1] == "presentations"
	input.path[3] in {"approval", "rejection"}
	input.token == "s3cr3t"
}
`
