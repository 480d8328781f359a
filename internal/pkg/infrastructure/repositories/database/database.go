package database

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/diwise/conference-go/internal/pkg/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	yaml "gopkg.in/yaml.v2"
)

var ErrNotFound = errors.New("not found")

type Datastore interface {
	ListStates(ctx context.Context) ([]*domain.State, error)
	GetStateByAbbreviation(ctx context.Context, abbreviation string) (*domain.State, error)

	ListLocations(ctx context.Context) ([]*domain.Location, error)
	GetLocation(ctx context.Context, id int) (*domain.Location, error)
	GetLocationByName(ctx context.Context, name string) (*domain.Location, error)
	CreateLocation(ctx context.Context, location domain.Location) (*domain.Location, error)
	UpdateLocation(ctx context.Context, location domain.Location) (*domain.Location, error)
	DeleteLocation(ctx context.Context, id int) error

	ListConferences(ctx context.Context) ([]*domain.Conference, error)
	GetConference(ctx context.Context, id int) (*domain.Conference, error)
	CreateConference(ctx context.Context, conference domain.Conference) (*domain.Conference, error)
	UpdateConference(ctx context.Context, conference domain.Conference) (*domain.Conference, error)
	DeleteConference(ctx context.Context, id int) error

	GetConferenceVO(ctx context.Context, importHref string) (*domain.ConferenceVO, error)
	GetConferenceVOByName(ctx context.Context, name string) (*domain.ConferenceVO, error)

	ListAttendees(ctx context.Context, conferenceHref string) ([]*domain.Attendee, error)
	GetAttendee(ctx context.Context, id int) (*domain.Attendee, error)
	CreateAttendee(ctx context.Context, attendee domain.Attendee) (*domain.Attendee, error)
	UpdateAttendee(ctx context.Context, attendee domain.Attendee) (*domain.Attendee, error)
	DeleteAttendee(ctx context.Context, id int) error

	ListPresentations(ctx context.Context, conferenceID int) ([]*domain.Presentation, error)
	GetPresentation(ctx context.Context, id int) (*domain.Presentation, error)
	CreatePresentation(ctx context.Context, presentation domain.Presentation) (*domain.Presentation, error)
	UpdatePresentation(ctx context.Context, presentation domain.Presentation) (*domain.Presentation, error)
	DeletePresentation(ctx context.Context, id int) error

	Close()
}

type Config struct {
	host     string
	user     string
	password string
	port     string
	dbname   string
	sslmode  string
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		host:     env.GetVariableOrDefault(ctx, "POSTGRES_HOST", ""),
		user:     env.GetVariableOrDefault(ctx, "POSTGRES_USER", ""),
		password: env.GetVariableOrDefault(ctx, "POSTGRES_PASSWORD", ""),
		port:     env.GetVariableOrDefault(ctx, "POSTGRES_PORT", "5432"),
		dbname:   env.GetVariableOrDefault(ctx, "POSTGRES_DBNAME", "conferences"),
		sslmode:  env.GetVariableOrDefault(ctx, "POSTGRES_SSLMODE", "disable"),
	}
}

// Enabled reports whether a database host has been configured
func (c Config) Enabled() bool {
	return c.host != ""
}

func (c Config) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.user, c.password, c.host, c.port, c.dbname, c.sslmode)
}

// LoadStates reads the list of states that new datastores are seeded with
func LoadStates(data io.Reader) ([]domain.State, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := struct {
		States []domain.State `yaml:"states"`
	}{}

	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse states: %w", err)
	}

	return cfg.States, nil
}
