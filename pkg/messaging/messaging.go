// Package messaging holds the message contract shared by the conference api,
// which publishes presentation decisions, and the mailer, which consumes them.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	ApprovalsQueue  string = "process_approval"
	RejectionsQueue string = "process_rejection"

	ContentType string = "application/json"
)

var ErrInvalidMessage = errors.New("invalid message")

type PresentationDecision struct {
	PresenterEmail string `json:"presenter_email"`
	PresenterName  string `json:"presenter_name"`
	Title          string `json:"title"`
}

func (d PresentationDecision) Body() ([]byte, error) {
	return json.Marshal(d)
}

// DecodePresentationDecision parses a message body. A decision without a
// recipient address is rejected.
func DecodePresentationDecision(body []byte) (PresentationDecision, error) {
	d := PresentationDecision{}

	err := json.Unmarshal(body, &d)
	if err != nil {
		return d, fmt.Errorf("%w: %s", ErrInvalidMessage, err.Error())
	}

	if d.PresenterEmail == "" {
		return d, fmt.Errorf("%w: presenter_email is missing", ErrInvalidMessage)
	}

	return d, nil
}

// Delivery is a message received from a queue. Ack must be called once the
// message has been taken care of.
type Delivery struct {
	Queue string
	Body  []byte
	Ack   func() error
}

// Session is an open subscription to one or more queues. Done reports the
// error that ended the session, if the connection to the broker is lost.
type Session interface {
	Deliveries() <-chan Delivery
	Done() <-chan error
	Close() error
}

type Source interface {
	Open(ctx context.Context, queues ...string) (Session, error)
}

type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}
