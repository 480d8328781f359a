package conferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/conference-go/internal/pkg/domain"
	"github.com/diwise/conference-go/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/conference-go/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("conference-go/conferences")

type App interface {
	ListStates(ctx context.Context) ([]*domain.State, error)

	ListLocations(ctx context.Context) ([]*domain.Location, error)
	GetLocation(ctx context.Context, id int) (*domain.Location, error)
	CreateLocation(ctx context.Context, in LocationInput) (*domain.Location, error)
	UpdateLocation(ctx context.Context, id int, in LocationInput) (*domain.Location, error)
	DeleteLocation(ctx context.Context, id int) error

	ListConferences(ctx context.Context) ([]*domain.Conference, error)
	GetConference(ctx context.Context, id int) (*domain.Conference, error)
	CreateConference(ctx context.Context, in NewConference) (*domain.Conference, error)
	UpdateConference(ctx context.Context, id int, in ConferenceUpdate) (*domain.Conference, error)
	DeleteConference(ctx context.Context, id int) error
	ConferenceWeather(ctx context.Context, id int) (*domain.Weather, error)

	ListAttendees(ctx context.Context, conferenceID int) ([]*domain.Attendee, error)
	GetAttendee(ctx context.Context, id int) (*domain.Attendee, error)
	CreateAttendee(ctx context.Context, conferenceID int, in AttendeeInput) (*domain.Attendee, error)
	UpdateAttendee(ctx context.Context, id int, in AttendeeUpdate) (*domain.Attendee, error)
	DeleteAttendee(ctx context.Context, id int) error

	ListPresentations(ctx context.Context, conferenceID int) ([]*domain.Presentation, error)
	GetPresentation(ctx context.Context, id int) (*domain.Presentation, error)
	CreatePresentation(ctx context.Context, conferenceID int, in PresentationInput) (*domain.Presentation, error)
	UpdatePresentation(ctx context.Context, id int, in PresentationInput) (*domain.Presentation, error)
	DeletePresentation(ctx context.Context, id int) error
	ApprovePresentation(ctx context.Context, id int) (*domain.Presentation, error)
	RejectPresentation(ctx context.Context, id int) (*domain.Presentation, error)
}

type PhotoFinder interface {
	FindPhoto(ctx context.Context, query string) (string, error)
}

type WeatherFinder interface {
	CurrentWeather(ctx context.Context, city, state string) (*domain.Weather, error)
}

type Option func(*app)

func WithPhotoFinder(pf PhotoFinder) Option {
	return func(a *app) {
		a.photos = pf
	}
}

func WithWeatherFinder(wf WeatherFinder) Option {
	return func(a *app) {
		a.weather = wf
	}
}

func WithPublisher(p messaging.Publisher) Option {
	return func(a *app) {
		a.publisher = p
	}
}

// WithQueues sets the queues that presentation decisions are published to
func WithQueues(approvals, rejections string) Option {
	return func(a *app) {
		a.approvals = approvals
		a.rejections = rejections
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *app) {
		a.now = now
	}
}

type app struct {
	db        database.Datastore
	photos    PhotoFinder
	weather   WeatherFinder
	publisher messaging.Publisher
	now       func() time.Time

	approvals  string
	rejections string
}

func New(db database.Datastore, opts ...Option) App {
	a := &app{
		db:         db,
		approvals:  messaging.ApprovalsQueue,
		rejections: messaging.RejectionsQueue,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *app) ListStates(ctx context.Context) ([]*domain.State, error) {
	return a.db.ListStates(ctx)
}

func (a *app) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	return a.db.ListLocations(ctx)
}

func (a *app) GetLocation(ctx context.Context, id int) (*domain.Location, error) {
	return a.db.GetLocation(ctx, id)
}

func (a *app) CreateLocation(ctx context.Context, in LocationInput) (*domain.Location, error) {
	state, err := a.state(ctx, in.State)
	if err != nil {
		return nil, err
	}

	now := a.now()
	l := domain.Location{Created: now, Updated: now, State: state}

	set(&l.Name, in.Name)
	set(&l.City, in.City)
	set(&l.RoomCount, in.RoomCount)

	l.PictureURL = a.findPhoto(ctx, l.City, state.Abbreviation)

	return a.db.CreateLocation(ctx, l)
}

func (a *app) UpdateLocation(ctx context.Context, id int, in LocationInput) (*domain.Location, error) {
	l, err := a.db.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.State != nil {
		l.State, err = a.state(ctx, in.State)
		if err != nil {
			return nil, err
		}
	}

	set(&l.Name, in.Name)
	set(&l.City, in.City)
	set(&l.RoomCount, in.RoomCount)
	l.Updated = a.now()

	return a.db.UpdateLocation(ctx, *l)
}

func (a *app) DeleteLocation(ctx context.Context, id int) error {
	return a.db.DeleteLocation(ctx, id)
}

func (a *app) state(ctx context.Context, abbreviation *string) (*domain.State, error) {
	if abbreviation == nil {
		return nil, NewInvalidReferenceError(InvalidStateAbbreviation)
	}

	s, err := a.db.GetStateByAbbreviation(ctx, *abbreviation)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NewInvalidReferenceError(InvalidStateAbbreviation)
	}

	return s, err
}

func (a *app) findPhoto(ctx context.Context, city, state string) string {
	if a.photos == nil {
		return ""
	}

	url, err := a.photos.FindPhoto(ctx, fmt.Sprintf("%s %s", city, state))
	if err != nil {
		logging.GetFromContext(ctx).Warn("failed to find location photo", "city", city, "state", state, "err", err.Error())
		return ""
	}

	return url
}

func (a *app) ListConferences(ctx context.Context) ([]*domain.Conference, error) {
	return a.db.ListConferences(ctx)
}

func (a *app) GetConference(ctx context.Context, id int) (*domain.Conference, error) {
	return a.db.GetConference(ctx, id)
}

func (a *app) CreateConference(ctx context.Context, in NewConference) (*domain.Conference, error) {
	if in.Location == nil {
		return nil, NewInvalidReferenceError(InvalidLocationID)
	}

	location, err := a.db.GetLocation(ctx, *in.Location)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NewInvalidReferenceError(InvalidLocationID)
	} else if err != nil {
		return nil, err
	}

	now := a.now()
	c := domain.Conference{Created: now, Updated: now, Location: location}
	applyConference(&c, in.ConferenceInput)

	return a.db.CreateConference(ctx, c)
}

func (a *app) UpdateConference(ctx context.Context, id int, in ConferenceUpdate) (*domain.Conference, error) {
	c, err := a.db.GetConference(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Location != nil {
		c.Location, err = a.db.GetLocationByName(ctx, *in.Location)
		if errors.Is(err, database.ErrNotFound) {
			return nil, NewInvalidReferenceError(InvalidLocationName)
		} else if err != nil {
			return nil, err
		}
	}

	applyConference(c, in.ConferenceInput)
	c.Updated = a.now()

	return a.db.UpdateConference(ctx, *c)
}

func applyConference(c *domain.Conference, in ConferenceInput) {
	set(&c.Name, in.Name)
	set(&c.Description, in.Description)
	set(&c.MaxPresentations, in.MaxPresentations)
	set(&c.MaxAttendees, in.MaxAttendees)
	set(&c.Starts, in.Starts)
	set(&c.Ends, in.Ends)
}

func (a *app) DeleteConference(ctx context.Context, id int) error {
	return a.db.DeleteConference(ctx, id)
}

// ConferenceWeather returns the current weather at the conference location, or
// nil if no weather could be found for it.
func (a *app) ConferenceWeather(ctx context.Context, id int) (*domain.Weather, error) {
	var err error

	ctx, span := tracer.Start(ctx, "conference-weather", trace.WithAttributes(attribute.Int("conference.id", id)))
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	c, err := a.db.GetConference(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.weather == nil || c.Location == nil || c.Location.State == nil {
		return nil, nil
	}

	w, weatherErr := a.weather.CurrentWeather(ctx, c.Location.City, c.Location.State.Abbreviation)
	if weatherErr != nil {
		logging.GetFromContext(ctx).Warn("failed to fetch weather", "conference", id, "err", weatherErr.Error())
		return nil, nil
	}

	return w, nil
}

func (a *app) ListAttendees(ctx context.Context, conferenceID int) ([]*domain.Attendee, error) {
	return a.db.ListAttendees(ctx, domain.ConferenceHref(conferenceID))
}

func (a *app) GetAttendee(ctx context.Context, id int) (*domain.Attendee, error) {
	return a.db.GetAttendee(ctx, id)
}

func (a *app) CreateAttendee(ctx context.Context, conferenceID int, in AttendeeInput) (*domain.Attendee, error) {
	vo, err := a.db.GetConferenceVO(ctx, domain.ConferenceHref(conferenceID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, NewInvalidReferenceError(InvalidConferenceID)
	} else if err != nil {
		return nil, err
	}

	at := domain.Attendee{Created: a.now(), Conference: vo}
	applyAttendee(&at, in)

	return a.db.CreateAttendee(ctx, at)
}

func (a *app) UpdateAttendee(ctx context.Context, id int, in AttendeeUpdate) (*domain.Attendee, error) {
	at, err := a.db.GetAttendee(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Conference != nil {
		at.Conference, err = a.db.GetConferenceVOByName(ctx, *in.Conference)
		if errors.Is(err, database.ErrNotFound) {
			return nil, NewInvalidReferenceError(InvalidConferenceID)
		} else if err != nil {
			return nil, err
		}
	}

	applyAttendee(at, in.AttendeeInput)

	return a.db.UpdateAttendee(ctx, *at)
}

func applyAttendee(at *domain.Attendee, in AttendeeInput) {
	set(&at.Email, in.Email)
	set(&at.Name, in.Name)
	set(&at.CompanyName, in.CompanyName)
}

func (a *app) DeleteAttendee(ctx context.Context, id int) error {
	return a.db.DeleteAttendee(ctx, id)
}

func (a *app) ListPresentations(ctx context.Context, conferenceID int) ([]*domain.Presentation, error) {
	return a.db.ListPresentations(ctx, conferenceID)
}

func (a *app) GetPresentation(ctx context.Context, id int) (*domain.Presentation, error) {
	return a.db.GetPresentation(ctx, id)
}

func (a *app) CreatePresentation(ctx context.Context, conferenceID int, in PresentationInput) (*domain.Presentation, error) {
	c, err := a.db.GetConference(ctx, conferenceID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NewInvalidReferenceError(InvalidConferenceID)
	} else if err != nil {
		return nil, err
	}

	p := domain.Presentation{Created: a.now(), Status: domain.StatusSubmitted, Conference: c}
	applyPresentation(&p, in)

	return a.db.CreatePresentation(ctx, p)
}

func (a *app) UpdatePresentation(ctx context.Context, id int, in PresentationInput) (*domain.Presentation, error) {
	p, err := a.db.GetPresentation(ctx, id)
	if err != nil {
		return nil, err
	}

	applyPresentation(p, in)

	return a.db.UpdatePresentation(ctx, *p)
}

func applyPresentation(p *domain.Presentation, in PresentationInput) {
	set(&p.PresenterName, in.PresenterName)
	set(&p.CompanyName, in.CompanyName)
	set(&p.PresenterEmail, in.PresenterEmail)
	set(&p.Title, in.Title)
	set(&p.Synopsis, in.Synopsis)
}

func (a *app) DeletePresentation(ctx context.Context, id int) error {
	return a.db.DeletePresentation(ctx, id)
}

func (a *app) ApprovePresentation(ctx context.Context, id int) (*domain.Presentation, error) {
	return a.decide(ctx, id, domain.StatusApproved, a.approvals)
}

func (a *app) RejectPresentation(ctx context.Context, id int) (*domain.Presentation, error) {
	return a.decide(ctx, id, domain.StatusRejected, a.rejections)
}

// decide stores the new status and then notifies the presenter. The status
// change stands even if the notification could not be published.
func (a *app) decide(ctx context.Context, id int, status domain.Status, queue string) (*domain.Presentation, error) {
	var err error

	ctx, span := tracer.Start(ctx, "decide-presentation", trace.WithAttributes(
		attribute.Int("presentation.id", id),
		attribute.String("presentation.status", string(status)),
	))
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	p, err := a.db.GetPresentation(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Status = status

	p, err = a.db.UpdatePresentation(ctx, *p)
	if err != nil {
		return nil, err
	}

	if a.publisher == nil {
		return p, nil
	}

	logger := logging.GetFromContext(ctx)

	body, encErr := messaging.PresentationDecision{
		PresenterEmail: p.PresenterEmail,
		PresenterName:  p.PresenterName,
		Title:          p.Title,
	}.Body()

	if encErr != nil {
		logger.Error("failed to encode presentation decision", "err", encErr.Error())
		return p, nil
	}

	pubErr := a.publisher.Publish(ctx, queue, body)
	if pubErr != nil {
		logger.Error("failed to publish presentation decision", "queue", queue, "err", pubErr.Error())
	}

	return p, nil
}
