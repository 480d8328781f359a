package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/diwise/conference-go/internal/pkg/application/mailer"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/mail"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/messaging/rabbitmq"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
)

const serviceName string = "presentation-mailer"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, logger, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	var configPath string
	flag.StringVar(&configPath, "config", "", "a yaml file with mail templates, queue names and retry settings")
	flag.Parse()

	cfg, err := loadConfiguration(configPath)
	if err != nil {
		logger.Error("failed to load mailer configuration", "path", configPath, "err", err.Error())
		os.Exit(1)
	}

	broker := rabbitmq.LoadConfiguration(ctx)
	if !broker.Enabled() {
		logger.Error("no message broker configured, set RABBITMQ_HOST")
		os.Exit(1)
	}

	smtpConfig := mail.LoadConfiguration(ctx)
	if !smtpConfig.Enabled() {
		logger.Warn("no smtp host configured, mail will only be logged")
	}

	worker, err := mailer.NewWorker(*cfg, rabbitmq.NewSource(broker), mail.NewSender(smtpConfig))
	if err != nil {
		logger.Error("failed to create worker", "err", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting presentation mailer")

	err = worker.Run(ctx)
	if err != nil {
		logger.Error("mailer stopped unexpectedly", "err", err.Error())
		os.Exit(1)
	}

	logger.Info("presentation mailer stopped")
}

func loadConfiguration(path string) (*mailer.Config, error) {
	if path == "" {
		cfg := mailer.DefaultConfig()
		return &cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return mailer.LoadConfiguration(f)
}
