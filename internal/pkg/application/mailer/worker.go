package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/mail"
	"github.com/diwise/conference-go/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrConnectionLost = errors.New("connection to broker lost")

var tracer = otel.Tracer("conference-go/mailer")

type outcome struct {
	subject *template.Template
	body    *template.Template
}

type Worker struct {
	cfg      Config
	source   messaging.Source
	sender   mail.Sender
	outcomes map[string]outcome
}

func NewWorker(cfg Config, source messaging.Source, sender mail.Sender) (*Worker, error) {
	if cfg.Queues.Approvals == cfg.Queues.Rejections {
		return nil, fmt.Errorf("approvals and rejections must use different queues, both are %q", cfg.Queues.Approvals)
	}

	w := &Worker{
		cfg:      cfg,
		source:   source,
		sender:   sender,
		outcomes: map[string]outcome{},
	}

	templates := map[string]Template{
		cfg.Queues.Approvals:  cfg.Templates.Approval,
		cfg.Queues.Rejections: cfg.Templates.Rejection,
	}

	for queue, t := range templates {
		subject, err := template.New(queue + "-subject").Option("missingkey=error").Parse(t.Subject)
		if err != nil {
			return nil, fmt.Errorf("invalid subject template for %s: %w", queue, err)
		}

		body, err := template.New(queue + "-body").Option("missingkey=error").Parse(t.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid body template for %s: %w", queue, err)
		}

		w.outcomes[queue] = outcome{subject: subject, body: body}
	}

	return w, nil
}

// Run consumes presentation decisions until ctx is cancelled. Lost or failed
// broker connections are retried forever, with a jittered pause in between.
func (w *Worker) Run(ctx context.Context) error {
	logger := logging.GetFromContext(ctx)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.cfg.Retry.Interval
	b.MaxInterval = w.cfg.Retry.Interval
	b.RandomizationFactor = w.cfg.Retry.Jitter
	b.Multiplier = 1
	b.MaxElapsedTime = 0
	b.Reset()

	err := backoff.RetryNotify(
		func() error {
			return w.consume(ctx)
		},
		backoff.WithContext(b, ctx),
		func(err error, wait time.Duration) {
			logger.Error("could not connect to broker", "err", err.Error(), "retry_in", wait.String())
		},
	)

	if ctx.Err() != nil {
		return nil
	}

	return err
}

func (w *Worker) consume(ctx context.Context) error {
	sess, err := w.source.Open(ctx, w.cfg.Queues.Approvals, w.cfg.Queues.Rejections)
	if err != nil {
		return err
	}
	defer sess.Close()

	logging.GetFromContext(ctx).Info("consuming presentation decisions", "queues", []string{w.cfg.Queues.Approvals, w.cfg.Queues.Rejections})

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-sess.Done():
			if ok && err != nil {
				return err
			}
			return ErrConnectionLost
		case d, ok := <-sess.Deliveries():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrConnectionLost
			}
			w.handle(ctx, d)
		}
	}
}

// handle acknowledges a delivery before acting on it, so a presenter is never
// mailed twice about the same decision.
func (w *Worker) handle(ctx context.Context, d messaging.Delivery) {
	var err error

	ctx, span := tracer.Start(ctx, "handle-decision", trace.WithAttributes(attribute.String("queue", d.Queue)))
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	logger := logging.GetFromContext(ctx).With("queue", d.Queue)

	if d.Ack != nil {
		if ackErr := d.Ack(); ackErr != nil {
			logger.Warn("failed to ack delivery", "err", ackErr.Error())
		}
	}

	o, ok := w.outcomes[d.Queue]
	if !ok {
		err = fmt.Errorf("no template for queue %s", d.Queue)
		logger.Error("dropping message", "err", err.Error())
		return
	}

	decision, err := messaging.DecodePresentationDecision(d.Body)
	if err != nil {
		logger.Error("dropping message", "err", err.Error())
		return
	}

	m, err := w.render(o, decision)
	if err != nil {
		logger.Error("failed to render mail", "err", err.Error())
		return
	}

	err = w.sender.Send(ctx, m)
	if err != nil {
		logger.Error("failed to send mail", "to", m.To, "err", err.Error())
		return
	}
}

func (w *Worker) render(o outcome, decision messaging.PresentationDecision) (mail.Mail, error) {
	subject := &bytes.Buffer{}
	if err := o.subject.Execute(subject, decision); err != nil {
		return mail.Mail{}, err
	}

	body := &bytes.Buffer{}
	if err := o.body.Execute(body, decision); err != nil {
		return mail.Mail{}, err
	}

	return mail.Mail{
		From:    w.cfg.From,
		To:      decision.PresenterEmail,
		Subject: subject.String(),
		Body:    body.String(),
	}, nil
}
