package rabbitmq

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	amqp "github.com/rabbitmq/amqp091-go"
)

func TestThatURLCarriesConfiguration(t *testing.T) {
	is := is.New(t)

	cfg := Config{host: "broker", port: "5673", user: "mailer", password: "secret", vhost: "/"}
	is.True(cfg.Enabled())

	uri, err := amqp.ParseURI(cfg.URL())
	is.NoErr(err)
	is.Equal(uri.Host, "broker")
	is.Equal(uri.Port, 5673)
	is.Equal(uri.Username, "mailer")
	is.Equal(uri.Password, "secret")
}

func TestThatInvalidPortFallsBackToDefault(t *testing.T) {
	is := is.New(t)

	cfg := Config{host: "broker", port: "amqp", user: "guest", password: "guest", vhost: "/"}

	uri, err := amqp.ParseURI(cfg.URL())
	is.NoErr(err)
	is.Equal(uri.Port, 5672)
}

func TestThatQueuesDefaultToDecisionQueues(t *testing.T) {
	is := is.New(t)

	unsetQueueVariables(t)

	cfg := LoadConfiguration(context.Background())
	is.Equal(cfg.ApprovalsQueue(), "process_approval")
	is.Equal(cfg.RejectionsQueue(), "process_rejection")
}

func TestThatQueuesCanBeSetFromEnvironment(t *testing.T) {
	is := is.New(t)

	t.Setenv("RABBITMQ_APPROVALS_QUEUE", "talks_approved")
	t.Setenv("RABBITMQ_REJECTIONS_QUEUE", "talks_rejected")

	cfg := LoadConfiguration(context.Background())
	is.Equal(cfg.ApprovalsQueue(), "talks_approved")
	is.Equal(cfg.RejectionsQueue(), "talks_rejected")
}

func TestThatUnreachableBrokerIsReportedAsNotConnected(t *testing.T) {
	is := is.New(t)

	cfg := Config{host: "127.0.0.1", port: "1", user: "guest", password: "guest", vhost: "/"}

	_, err := NewSource(cfg).Open(context.Background(), "process_approval")
	is.True(errors.Is(err, ErrNotConnected))

	err = NewPublisher(cfg).Publish(context.Background(), "process_approval", []byte("{}"))
	is.True(errors.Is(err, ErrNotConnected))
}

func unsetQueueVariables(t *testing.T) {
	for _, key := range []string{"RABBITMQ_APPROVALS_QUEUE", "RABBITMQ_REJECTIONS_QUEUE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
