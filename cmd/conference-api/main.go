package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/diwise/conference-go/internal/pkg/application/conferences"
	"github.com/diwise/conference-go/internal/pkg/domain"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/messaging/rabbitmq"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/router"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/services/openweather"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/services/pexels"
	"github.com/diwise/conference-go/internal/pkg/presentation/api"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const serviceName string = "conference-api"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, logger, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	flags := parseExternalConfig(ctx, defaultFlags())

	policies, err := os.Open(flags[policiesPath])
	if err != nil {
		logger.Error("unable to open authorization policies", "path", flags[policiesPath], "err", err.Error())
		os.Exit(1)
	}
	defer policies.Close()

	states, err := os.Open(flags[statesPath])
	if err != nil {
		logger.Error("unable to open states file", "path", flags[statesPath], "err", err.Error())
		os.Exit(1)
	}
	defer states.Close()

	handler, shutdown, err := initialize(ctx, flags, policies, states)
	if err != nil {
		logger.Error("failed to initialize service", "err", err.Error())
		os.Exit(1)
	}
	defer shutdown()

	addr := flags[listenAddress] + ":" + flags[servicePort]
	logger.Info("starting to listen for connections", "addr", addr)

	err = http.ListenAndServe(addr, handler)
	if err != nil {
		logger.Error("failed to listen for connections", "err", err.Error())
	}
}

func initialize(ctx context.Context, flags FlagMap, policies, states io.Reader) (http.Handler, func(), error) {
	logger := logging.GetFromContext(ctx)

	seed, err := database.LoadStates(states)
	if err != nil {
		return nil, nil, err
	}

	db, err := newDatastore(ctx, seed)
	if err != nil {
		return nil, nil, err
	}

	shutdown := []func(){db.Close}
	options := []conferences.Option{}

	if flags[pexelsKey] != "" {
		options = append(options, conferences.WithPhotoFinder(pexels.New(flags[pexelsKey])))
	} else {
		logger.Warn("no pexels api key configured, locations will not get pictures")
	}

	if flags[openWeatherKey] != "" {
		options = append(options, conferences.WithWeatherFinder(openweather.New(flags[openWeatherKey])))
	} else {
		logger.Warn("no open weather api key configured, conferences will not report weather")
	}

	if cfg := rabbitmq.LoadConfiguration(ctx); cfg.Enabled() {
		publisher := rabbitmq.NewPublisher(cfg, cfg.ApprovalsQueue(), cfg.RejectionsQueue())
		options = append(options,
			conferences.WithPublisher(publisher),
			conferences.WithQueues(cfg.ApprovalsQueue(), cfg.RejectionsQueue()),
		)
		shutdown = append(shutdown, func() { publisher.Close() })
	} else {
		logger.Warn("no message broker configured, presentation decisions will not be published")
	}

	cleanup := func() {
		for _, fn := range shutdown {
			fn()
		}
	}

	app := conferences.New(db, options...)

	r := router.New(ctx, serviceName)

	err = api.RegisterHandlers(ctx, r, policies, app)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return r, cleanup, nil
}

func newDatastore(ctx context.Context, states []domain.State) (database.Datastore, error) {
	cfg := database.LoadConfiguration(ctx)

	if !cfg.Enabled() {
		logging.GetFromContext(ctx).Info("no database configured, using in-memory datastore")
		return database.NewInMemoryDatastore(states), nil
	}

	db, err := database.NewPostgresDatastore(ctx, cfg, states)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}
