package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/diwise/conference-go/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrNotConnected = errors.New("not connected to broker")

type Config struct {
	host     string
	port     string
	user     string
	password string
	vhost    string

	approvals  string
	rejections string
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		host:     env.GetVariableOrDefault(ctx, "RABBITMQ_HOST", ""),
		port:     env.GetVariableOrDefault(ctx, "RABBITMQ_PORT", "5672"),
		user:     env.GetVariableOrDefault(ctx, "RABBITMQ_USER", "guest"),
		password: env.GetVariableOrDefault(ctx, "RABBITMQ_PASSWORD", "guest"),
		vhost:    env.GetVariableOrDefault(ctx, "RABBITMQ_VHOST", "/"),

		approvals:  env.GetVariableOrDefault(ctx, "RABBITMQ_APPROVALS_QUEUE", messaging.ApprovalsQueue),
		rejections: env.GetVariableOrDefault(ctx, "RABBITMQ_REJECTIONS_QUEUE", messaging.RejectionsQueue),
	}
}

func (c Config) Enabled() bool {
	return c.host != ""
}

// ApprovalsQueue is the queue that approved presentations are published to
func (c Config) ApprovalsQueue() string {
	return c.approvals
}

func (c Config) RejectionsQueue() string {
	return c.rejections
}

func (c Config) URL() string {
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     c.host,
		Username: c.user,
		Password: c.password,
		Vhost:    c.vhost,
	}

	port, err := strconv.Atoi(c.port)
	if err != nil || port <= 0 {
		port = 5672
	}
	uri.Port = port

	return uri.String()
}

func dial(cfg Config, queues []string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotConnected, err.Error())
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	for _, q := range queues {
		_, err = ch.QueueDeclare(q, true, false, false, false, nil)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, nil, fmt.Errorf("failed to declare queue %s: %w", q, err)
		}
	}

	return conn, ch, nil
}

// Publisher sends persistent messages to durable queues. The connection is
// established lazily and dropped on failure, so the next publish redials.
type Publisher struct {
	cfg    Config
	queues []string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(cfg Config, queues ...string) *Publisher {
	return &Publisher{cfg: cfg, queues: queues}
}

func (p *Publisher) Publish(ctx context.Context, queue string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		p.reset()

		conn, ch, err := dial(p.cfg, p.queues)
		if err != nil {
			return err
		}

		p.conn, p.ch = conn, ch
	}

	err := p.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  messaging.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Body:         body,
	})

	if err != nil {
		p.reset()
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}

	logging.GetFromContext(ctx).Debug("message published", "queue", queue)

	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.reset()
	return nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

type Source struct {
	cfg Config
}

func NewSource(cfg Config) *Source {
	return &Source{cfg: cfg}
}

// Open dials the broker, declares the queues and starts consuming them with
// manual acknowledgement.
func (s *Source) Open(ctx context.Context, queues ...string) (messaging.Session, error) {
	conn, ch, err := dial(s.cfg, queues)
	if err != nil {
		return nil, err
	}

	sess := &session{
		conn:       conn,
		deliveries: make(chan messaging.Delivery),
		done:       make(chan error, 1),
		stop:       make(chan struct{}),
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	var wg sync.WaitGroup

	for _, q := range queues {
		msgs, err := ch.ConsumeWithContext(ctx, q, "", false, false, false, false, nil)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to consume %s: %w", q, err)
		}

		wg.Add(1)
		go func(queue string, msgs <-chan amqp.Delivery) {
			defer wg.Done()
			sess.forward(queue, msgs)
		}(q, msgs)
	}

	go func() {
		wg.Wait()
		close(sess.deliveries)
	}()

	go func() {
		select {
		case amqpErr, ok := <-closed:
			if ok && amqpErr != nil {
				sess.done <- fmt.Errorf("%w: %s", ErrNotConnected, amqpErr.Error())
			} else {
				sess.done <- ErrNotConnected
			}
		case <-sess.stop:
		}
		close(sess.done)
	}()

	return sess, nil
}

type session struct {
	conn       *amqp.Connection
	deliveries chan messaging.Delivery
	done       chan error
	stop       chan struct{}
	once       sync.Once
}

func (s *session) forward(queue string, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-s.stop:
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}

			delivery := messaging.Delivery{
				Queue: queue,
				Body:  d.Body,
				Ack: func() error {
					return d.Ack(false)
				},
			}

			select {
			case s.deliveries <- delivery:
			case <-s.stop:
				return
			}
		}
	}
}

func (s *session) Deliveries() <-chan messaging.Delivery {
	return s.deliveries
}

func (s *session) Done() <-chan error {
	return s.done
}

func (s *session) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		err = s.conn.Close()
	})
	return err
}
