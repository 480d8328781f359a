package messaging

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestThatDecisionRoundTrips(t *testing.T) {
	is := is.New(t)

	body, err := PresentationDecision{PresenterEmail: "rob@go.dev", PresenterName: "Rob", Title: "Concurrency"}.Body()
	is.NoErr(err)
	is.Equal(string(body), `{"presenter_email":"rob@go.dev","presenter_name":"Rob","title":"Concurrency"}`)

	d, err := DecodePresentationDecision(body)
	is.NoErr(err)
	is.Equal(d.PresenterName, "Rob")
}

func TestThatDecisionWithoutRecipientIsInvalid(t *testing.T) {
	is := is.New(t)

	_, err := DecodePresentationDecision([]byte(`{"presenter_name":"Rob","title":"Concurrency"}`))
	is.True(errors.Is(err, ErrInvalidMessage))

	_, err = DecodePresentationDecision([]byte(`not json`))
	is.True(errors.Is(err, ErrInvalidMessage))
}
