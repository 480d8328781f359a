package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diwise/conference-go/internal/pkg/application/conferences"
	"github.com/diwise/conference-go/internal/pkg/domain"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/router"
	"github.com/matryer/is"
)

func TestListStates(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/api/states", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"states":[{"name":"Arizona","abbreviation":"AZ"},{"name":"Texas","abbreviation":"TX"}]}`)
}

func TestThatEmptyLocationListIsAnEmptyArray(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/api/locations", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), "application/json")
	is.Equal(body, `{"locations":[]}`)
}

func TestCreateLocation(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/api/locations", strings.NewReader(`{"name":"Convention Center","city":"Austin","room_count":12,"state":"TX"}`))

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"href":"/api/locations/1/","name":"Convention Center","city":"Austin","room_count":12,"created":"2023-01-02T03:04:05Z","updated":"2023-01-02T03:04:05Z","picture_url":"","state":"TX"}`)

	_, body = newTestRequest(is, ts, http.MethodGet, "/api/locations/", nil)
	is.Equal(body, `{"locations":[{"href":"/api/locations/1/","name":"Convention Center"}]}`)
}

func TestThatUnknownStateIsRejectedAndNothingIsStored(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/api/locations", strings.NewReader(`{"name":"Nowhere","city":"Void","room_count":1,"state":"ZZ"}`))

	is.Equal(resp.StatusCode, http.StatusBadRequest)
	is.Equal(body, `{"message":"Invalid state abbreviation"}`)

	_, body = newTestRequest(is, ts, http.MethodGet, "/api/locations", nil)
	is.Equal(body, `{"locations":[]}`)
}

func TestThatMalformedBodyIsABadRequest(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/api/locations", strings.NewReader(`this is not my json`))

	is.Equal(resp.StatusCode, http.StatusBadRequest)
	is.Equal(body, `{"message":"Invalid request body"}`)
}

func TestThatUnknownIDDoesNotExist(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	for _, path := range []string{"/api/locations/9", "/api/conferences/9", "/api/attendees/9", "/api/presentations/9", "/api/locations/abc"} {
		resp, body := newTestRequest(is, ts, http.MethodGet, path, nil)
		is.Equal(resp.StatusCode, http.StatusNotFound)
		is.Equal(body, `{"message":"Does not exist"}`)
	}
}

func TestConferenceDetailNestsLocation(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createTestConference(is, ts)

	resp, body := newTestRequest(is, ts, http.MethodGet, "/api/conferences/1", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"href":"/api/conferences/1/","name":"GopherCon","description":"All things Go","max_presentations":20,"max_attendees":300,"starts":"2023-06-01T09:00:00Z","ends":"2023-06-03T17:00:00Z","created":"2023-01-02T03:04:05Z","updated":"2023-01-02T03:04:05Z","location":{"href":"/api/locations/1/","name":"Convention Center"}}`)
}

func TestThatConferenceWithUnknownLocationIsRejected(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/api/conferences", strings.NewReader(`{"name":"GopherCon","location":42}`))
	is.Equal(resp.StatusCode, http.StatusBadRequest)
	is.Equal(body, `{"message":"Invalid location id"}`)
}

func TestThatConferenceUpdateResolvesLocationName(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createTestConference(is, ts)

	resp, body := newTestRequest(is, ts, http.MethodPut, "/api/conferences/1", strings.NewReader(`{"location":"Nowhere"}`))
	is.Equal(resp.StatusCode, http.StatusBadRequest)
	is.Equal(body, `{"message":"Invalid location name"}`)

	resp, body = newTestRequest(is, ts, http.MethodPut, "/api/conferences/1", strings.NewReader(`{"max_attendees":500}`))
	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.Contains(body, `"max_attendees":500`))
}

func TestAttendeeDetail(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createTestConference(is, ts)

	resp, body := newTestRequest(is, ts, http.MethodPost, "/api/conferences/1/attendees", strings.NewReader(`{"email":"ada@x.io","name":"Ada Lovelace","company_name":"ACME"}`))
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"href":"/api/attendees/1/","email":"ada@x.io","name":"Ada Lovelace","company_name":"ACME","created":"2023-01-02T03:04:05Z","conference":{"href":"/api/conferences/1/","name":"GopherCon"}}`)

	_, body = newTestRequest(is, ts, http.MethodGet, "/api/conferences/1/attendees", nil)
	is.Equal(body, `{"attendees":[{"href":"/api/attendees/1/","name":"Ada Lovelace"}]}`)
}

func TestThatAttendeeForUnknownConferenceIsRejected(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/api/conferences/3/attendees", strings.NewReader(`{"email":"ada@x.io","name":"Ada"}`))
	is.Equal(resp.StatusCode, http.StatusBadRequest)
	is.Equal(body, `{"message":"Invalid conference id"}`)
}

func TestPresentationLifecycle(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createTestConference(is, ts)

	resp, body := newTestRequest(is, ts, http.MethodPost, "/api/conferences/1/presentations", strings.NewReader(`{"presenter_name":"Rob","company_name":"Go","presenter_email":"rob@go.dev","title":"Concurrency","synopsis":"Is not parallelism"}`))
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"href":"/api/presentations/1/","presenter_name":"Rob","company_name":"Go","presenter_email":"rob@go.dev","title":"Concurrency","synopsis":"Is not parallelism","created":"2023-01-02T03:04:05Z","conference":{"href":"/api/conferences/1/","name":"GopherCon"},"status":"SUBMITTED"}`)

	_, body = newTestRequest(is, ts, http.MethodGet, "/api/conferences/1/presentations", nil)
	is.Equal(body, `{"presentations":[{"href":"/api/presentations/1/","title":"Concurrency","status":"SUBMITTED"}]}`)

	resp, body = newTestRequest(is, ts, http.MethodPut, "/api/presentations/1/approval", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.HasSuffix(body, `"status":"APPROVED"}`))

	resp, body = newTestRequest(is, ts, http.MethodDelete, "/api/presentations/1", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"deleted":true}`)

	resp, _ = newTestRequest(is, ts, http.MethodPut, "/api/presentations/1/rejection", nil)
	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestThatDeletingLocationRemovesItsConferences(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createTestConference(is, ts)

	resp, body := newTestRequest(is, ts, http.MethodDelete, "/api/locations/1", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"deleted":true}`)

	_, body = newTestRequest(is, ts, http.MethodGet, "/api/conferences", nil)
	is.Equal(body, `{"conferences":[]}`)
}

func TestConferenceWeather(t *testing.T) {
	is, ts, wf := setupTest(t)
	defer ts.Close()

	createTestConference(is, ts)

	resp, body := newTestRequest(is, ts, http.MethodGet, "/api/conferences/1/weather", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"weather":{"temperature":88.5,"description":"clear sky"}}`)

	wf.err = errors.New("no such place")

	_, body = newTestRequest(is, ts, http.MethodGet, "/api/conferences/1/weather", nil)
	is.Equal(body, `{"weather":null}`)
}

func TestThatPoliciesCanForbidRequests(t *testing.T) {
	is := is.New(t)

	app, _ := newTestApp(t)

	r := router.New(context.Background(), "test")
	err := RegisterHandlers(context.Background(), r, strings.NewReader(readOnlyPolicy), app)
	is.NoErr(err)

	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/api/locations", strings.NewReader(`{"name":"Hall","state":"TX"}`))
	is.Equal(resp.StatusCode, http.StatusForbidden)
	is.Equal(body, `{"message":"Forbidden"}`)

	resp, _ = newTestRequest(is, ts, http.MethodGet, "/api/locations", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
}

func createTestConference(is *is.I, ts *httptest.Server) {
	resp, _ := newTestRequest(is, ts, http.MethodPost, "/api/locations", strings.NewReader(`{"name":"Convention Center","city":"Austin","room_count":12,"state":"TX"}`))
	is.Equal(resp.StatusCode, http.StatusOK)

	resp, _ = newTestRequest(is, ts, http.MethodPost, "/api/conferences", strings.NewReader(`{
		"name": "GopherCon",
		"description": "All things Go",
		"max_presentations": 20,
		"max_attendees": 300,
		"starts": "2023-06-01T09:00:00Z",
		"ends": "2023-06-03T17:00:00Z",
		"location": 1
	}`))
	is.Equal(resp.StatusCode, http.StatusOK)
}

func newTestRequest(is *is.I, ts *httptest.Server, method, path string, body io.Reader) (*http.Response, string) {
	req, _ := http.NewRequest(method, ts.URL+path, body)
	req.Header.Add("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	is.NoErr(err) // failed to read response body

	return resp, string(respBody)
}

func setupTest(t *testing.T) (*is.I, *httptest.Server, *weatherFinder) {
	is := is.New(t)

	app, wf := newTestApp(t)

	r := router.New(context.Background(), "test")
	err := RegisterHandlers(context.Background(), r, strings.NewReader(allowAllPolicy), app)
	is.NoErr(err)

	return is, httptest.NewServer(r), wf
}

func newTestApp(t *testing.T) (conferences.App, *weatherFinder) {
	states, err := database.LoadStates(strings.NewReader(statesYaml))
	if err != nil {
		t.Fatalf("failed to load states: %s", err.Error())
	}

	wf := &weatherFinder{weather: &domain.Weather{Temperature: 88.5, Description: "clear sky"}}

	app := conferences.New(
		database.NewInMemoryDatastore(states),
		conferences.WithWeatherFinder(wf),
		conferences.WithClock(func() time.Time { return time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC) }),
	)

	return app, wf
}

type weatherFinder struct {
	weather *domain.Weather
	err     error
}

func (wf *weatherFinder) CurrentWeather(ctx context.Context, city, state string) (*domain.Weather, error) {
	return wf.weather, wf.err
}

const statesYaml string = `
states:
  - name: Texas
    abbreviation: TX
  - name: Arizona
    abbreviation: AZ
`

const allowAllPolicy string = `package conference.authz

default allow := true
`

const readOnlyPolicy string = `package conference.authz

default allow := false

allow {
	input.method == "GET"
}
`
