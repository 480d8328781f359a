package mailer

import (
	"fmt"
	"io"
	"time"

	"github.com/diwise/conference-go/pkg/messaging"
	yaml "gopkg.in/yaml.v2"
)

type Template struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type Config struct {
	From string `yaml:"from"`

	Queues struct {
		Approvals  string `yaml:"approvals"`
		Rejections string `yaml:"rejections"`
	} `yaml:"queues"`

	Retry struct {
		Interval time.Duration `yaml:"interval"`
		Jitter   float64       `yaml:"jitter"`
	} `yaml:"retry"`

	Templates struct {
		Approval  Template `yaml:"approval"`
		Rejection Template `yaml:"rejection"`
	} `yaml:"templates"`
}

func DefaultConfig() Config {
	cfg := Config{From: "admin@conference.go"}

	cfg.Queues.Approvals = messaging.ApprovalsQueue
	cfg.Queues.Rejections = messaging.RejectionsQueue

	cfg.Retry.Interval = 2 * time.Second
	cfg.Retry.Jitter = 0.1

	cfg.Templates.Approval = Template{
		Subject: "Your presentation has been accepted",
		Body:    "{{.PresenterName}}, we're happy to tell you that your presentation {{.Title}} has been accepted.",
	}
	cfg.Templates.Rejection = Template{
		Subject: "Your presentation has been rejected",
		Body:    "We're sorry, {{.PresenterName}}, but your presentation {{.Title}} has been rejected.",
	}

	return cfg
}

// LoadConfiguration reads a yaml document on top of the default configuration,
// so that only the settings present in the document are overridden.
func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mailer configuration: %w", err)
	}

	if cfg.Retry.Interval <= 0 {
		return nil, fmt.Errorf("retry interval must be positive, got %s", cfg.Retry.Interval)
	}

	if cfg.Retry.Jitter < 0 || cfg.Retry.Jitter >= 1 {
		return nil, fmt.Errorf("retry jitter must be in [0, 1), got %v", cfg.Retry.Jitter)
	}

	return &cfg, nil
}
