package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/diwise/conference-go/internal/pkg/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgres struct {
	pool *pgxpool.Pool
}

// NewPostgresDatastore connects to the configured database, creates the schema
// if needed and seeds it with the given states.
func NewPostgresDatastore(ctx context.Context, cfg Config, states []domain.State) (Datastore, error) {
	pool, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db := &postgres{pool: pool}

	err = db.initialize(ctx, states)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return db, nil
}

func connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	conn, err := pgxpool.New(ctx, cfg.ConnStr())
	if err != nil {
		return nil, err
	}

	err = conn.Ping(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return conn, err
}

func (db *postgres) initialize(ctx context.Context, states []domain.State) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS states (
			id           SERIAL PRIMARY KEY,
			name         TEXT NOT NULL,
			abbreviation TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS locations (
			id          SERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			city        TEXT NOT NULL,
			room_count  INTEGER NOT NULL DEFAULT 0,
			created     TIMESTAMPTZ NOT NULL,
			updated     TIMESTAMPTZ NOT NULL,
			picture_url TEXT NOT NULL DEFAULT '',
			state_id    INTEGER NOT NULL REFERENCES states(id)
		);

		CREATE TABLE IF NOT EXISTS conferences (
			id                SERIAL PRIMARY KEY,
			name              TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			max_presentations INTEGER NOT NULL DEFAULT 0,
			max_attendees     INTEGER NOT NULL DEFAULT 0,
			starts            TIMESTAMPTZ NOT NULL,
			ends              TIMESTAMPTZ NOT NULL,
			created           TIMESTAMPTZ NOT NULL,
			updated           TIMESTAMPTZ NOT NULL,
			location_id       INTEGER NOT NULL REFERENCES locations(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS attendees (
			id            SERIAL PRIMARY KEY,
			email         TEXT NOT NULL,
			name          TEXT NOT NULL,
			company_name  TEXT NOT NULL DEFAULT '',
			created       TIMESTAMPTZ NOT NULL,
			conference_id INTEGER NOT NULL REFERENCES conferences(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS presentations (
			id              SERIAL PRIMARY KEY,
			presenter_name  TEXT NOT NULL,
			company_name    TEXT NOT NULL DEFAULT '',
			presenter_email TEXT NOT NULL,
			title           TEXT NOT NULL,
			synopsis        TEXT NOT NULL DEFAULT '',
			created         TIMESTAMPTZ NOT NULL,
			status          TEXT NOT NULL,
			conference_id   INTEGER NOT NULL REFERENCES conferences(id) ON DELETE CASCADE
		);`

	_, err := db.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if len(states) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range states {
		batch.Queue(`INSERT INTO states (name, abbreviation) VALUES ($1, $2) ON CONFLICT (abbreviation) DO NOTHING;`, s.Name, s.Abbreviation)
	}

	err = db.pool.SendBatch(ctx, batch).Close()
	if err != nil {
		return fmt.Errorf("failed to seed states: %w", err)
	}

	return nil
}

func (db *postgres) Close() {
	db.pool.Close()
}

func (db *postgres) ListStates(ctx context.Context) ([]*domain.State, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, name, abbreviation FROM states ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make([]*domain.State, 0)

	for rows.Next() {
		s := &domain.State{}
		err := rows.Scan(&s.ID, &s.Name, &s.Abbreviation)
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}

	return states, rows.Err()
}

func (db *postgres) GetStateByAbbreviation(ctx context.Context, abbreviation string) (*domain.State, error) {
	s := &domain.State{}

	err := db.pool.QueryRow(ctx,
		`SELECT id, name, abbreviation FROM states WHERE abbreviation=$1;`, abbreviation,
	).Scan(&s.ID, &s.Name, &s.Abbreviation)

	if err != nil {
		return nil, notFoundOr(err)
	}

	return s, nil
}

const selectLocation string = `
	SELECT l.id, l.name, l.city, l.room_count, l.created, l.updated, l.picture_url,
	       s.id, s.name, s.abbreviation
	FROM locations l JOIN states s ON s.id = l.state_id`

func scanLocation(row pgx.Row) (*domain.Location, error) {
	l := &domain.Location{State: &domain.State{}}

	err := row.Scan(
		&l.ID, &l.Name, &l.City, &l.RoomCount, &l.Created, &l.Updated, &l.PictureURL,
		&l.State.ID, &l.State.Name, &l.State.Abbreviation,
	)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return l, nil
}

func (db *postgres) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	rows, err := db.pool.Query(ctx, selectLocation+` ORDER BY l.id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)

	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}

	return locations, rows.Err()
}

func (db *postgres) GetLocation(ctx context.Context, id int) (*domain.Location, error) {
	return scanLocation(db.pool.QueryRow(ctx, selectLocation+` WHERE l.id=$1;`, id))
}

func (db *postgres) GetLocationByName(ctx context.Context, name string) (*domain.Location, error) {
	return scanLocation(db.pool.QueryRow(ctx, selectLocation+` WHERE l.name=$1 ORDER BY l.id LIMIT 1;`, name))
}

func (db *postgres) CreateLocation(ctx context.Context, location domain.Location) (*domain.Location, error) {
	if location.State == nil {
		return nil, ErrNotFound
	}

	var id int
	err := db.pool.QueryRow(ctx, `
		INSERT INTO locations (name, city, room_count, created, updated, picture_url, state_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;`,
		location.Name, location.City, location.RoomCount, location.Created, location.Updated, location.PictureURL, location.State.ID,
	).Scan(&id)

	if err != nil {
		return nil, err
	}

	return db.GetLocation(ctx, id)
}

func (db *postgres) UpdateLocation(ctx context.Context, location domain.Location) (*domain.Location, error) {
	if location.State == nil {
		return nil, ErrNotFound
	}

	tag, err := db.pool.Exec(ctx, `
		UPDATE locations SET name=$2, city=$3, room_count=$4, updated=$5, picture_url=$6, state_id=$7
		WHERE id=$1;`,
		location.ID, location.Name, location.City, location.RoomCount, location.Updated, location.PictureURL, location.State.ID,
	)

	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return db.GetLocation(ctx, location.ID)
}

func (db *postgres) DeleteLocation(ctx context.Context, id int) error {
	return db.deleteByID(ctx, `DELETE FROM locations WHERE id=$1;`, id)
}

const selectConference string = `
	SELECT c.id, c.name, c.description, c.max_presentations, c.max_attendees,
	       c.starts, c.ends, c.created, c.updated,
	       l.id, l.name, l.city, l.room_count, l.created, l.updated, l.picture_url,
	       s.id, s.name, s.abbreviation
	FROM conferences c
	JOIN locations l ON l.id = c.location_id
	JOIN states s ON s.id = l.state_id`

func scanConference(row pgx.Row) (*domain.Conference, error) {
	c := &domain.Conference{Location: &domain.Location{State: &domain.State{}}}
	l := c.Location

	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.MaxPresentations, &c.MaxAttendees,
		&c.Starts, &c.Ends, &c.Created, &c.Updated,
		&l.ID, &l.Name, &l.City, &l.RoomCount, &l.Created, &l.Updated, &l.PictureURL,
		&l.State.ID, &l.State.Name, &l.State.Abbreviation,
	)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return c, nil
}

func (db *postgres) ListConferences(ctx context.Context) ([]*domain.Conference, error) {
	rows, err := db.pool.Query(ctx, selectConference+` ORDER BY c.id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conferences := make([]*domain.Conference, 0)

	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		conferences = append(conferences, c)
	}

	return conferences, rows.Err()
}

func (db *postgres) GetConference(ctx context.Context, id int) (*domain.Conference, error) {
	return scanConference(db.pool.QueryRow(ctx, selectConference+` WHERE c.id=$1;`, id))
}

func (db *postgres) CreateConference(ctx context.Context, conference domain.Conference) (*domain.Conference, error) {
	if conference.Location == nil {
		return nil, ErrNotFound
	}

	var id int
	err := db.pool.QueryRow(ctx, `
		INSERT INTO conferences (name, description, max_presentations, max_attendees, starts, ends, created, updated, location_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id;`,
		conference.Name, conference.Description, conference.MaxPresentations, conference.MaxAttendees,
		conference.Starts, conference.Ends, conference.Created, conference.Updated, conference.Location.ID,
	).Scan(&id)

	if err != nil {
		return nil, err
	}

	return db.GetConference(ctx, id)
}

func (db *postgres) UpdateConference(ctx context.Context, conference domain.Conference) (*domain.Conference, error) {
	if conference.Location == nil {
		return nil, ErrNotFound
	}

	tag, err := db.pool.Exec(ctx, `
		UPDATE conferences SET name=$2, description=$3, max_presentations=$4, max_attendees=$5,
		       starts=$6, ends=$7, updated=$8, location_id=$9
		WHERE id=$1;`,
		conference.ID, conference.Name, conference.Description, conference.MaxPresentations, conference.MaxAttendees,
		conference.Starts, conference.Ends, conference.Updated, conference.Location.ID,
	)

	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return db.GetConference(ctx, conference.ID)
}

func (db *postgres) DeleteConference(ctx context.Context, id int) error {
	return db.deleteByID(ctx, `DELETE FROM conferences WHERE id=$1;`, id)
}

func (db *postgres) GetConferenceVO(ctx context.Context, importHref string) (*domain.ConferenceVO, error) {
	id, ok := domain.ConferenceIDFromHref(importHref)
	if !ok {
		return nil, ErrNotFound
	}

	vo := &domain.ConferenceVO{ImportHref: domain.ConferenceHref(id)}

	err := db.pool.QueryRow(ctx, `SELECT name FROM conferences WHERE id=$1;`, id).Scan(&vo.Name)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return vo, nil
}

func (db *postgres) GetConferenceVOByName(ctx context.Context, name string) (*domain.ConferenceVO, error) {
	var id int

	err := db.pool.QueryRow(ctx, `SELECT id FROM conferences WHERE name=$1 ORDER BY id LIMIT 1;`, name).Scan(&id)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return &domain.ConferenceVO{ImportHref: domain.ConferenceHref(id), Name: name}, nil
}

const selectAttendee string = `
	SELECT a.id, a.email, a.name, a.company_name, a.created, c.id, c.name
	FROM attendees a JOIN conferences c ON c.id = a.conference_id`

func scanAttendee(row pgx.Row) (*domain.Attendee, error) {
	a := &domain.Attendee{Conference: &domain.ConferenceVO{}}

	var conferenceID int

	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.CompanyName, &a.Created, &conferenceID, &a.Conference.Name)
	if err != nil {
		return nil, notFoundOr(err)
	}

	a.Conference.ImportHref = domain.ConferenceHref(conferenceID)

	return a, nil
}

func (db *postgres) ListAttendees(ctx context.Context, conferenceHref string) ([]*domain.Attendee, error) {
	attendees := make([]*domain.Attendee, 0)

	conferenceID, ok := domain.ConferenceIDFromHref(conferenceHref)
	if !ok {
		return attendees, nil
	}

	rows, err := db.pool.Query(ctx, selectAttendee+` WHERE a.conference_id=$1 ORDER BY a.id;`, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}

	return attendees, rows.Err()
}

func (db *postgres) GetAttendee(ctx context.Context, id int) (*domain.Attendee, error) {
	return scanAttendee(db.pool.QueryRow(ctx, selectAttendee+` WHERE a.id=$1;`, id))
}

func (db *postgres) CreateAttendee(ctx context.Context, attendee domain.Attendee) (*domain.Attendee, error) {
	conferenceID, err := conferenceIDFromVO(attendee.Conference)
	if err != nil {
		return nil, err
	}

	var id int
	err = db.pool.QueryRow(ctx, `
		INSERT INTO attendees (email, name, company_name, created, conference_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
		attendee.Email, attendee.Name, attendee.CompanyName, attendee.Created, conferenceID,
	).Scan(&id)

	if err != nil {
		return nil, err
	}

	return db.GetAttendee(ctx, id)
}

func (db *postgres) UpdateAttendee(ctx context.Context, attendee domain.Attendee) (*domain.Attendee, error) {
	conferenceID, err := conferenceIDFromVO(attendee.Conference)
	if err != nil {
		return nil, err
	}

	tag, err := db.pool.Exec(ctx, `
		UPDATE attendees SET email=$2, name=$3, company_name=$4, conference_id=$5 WHERE id=$1;`,
		attendee.ID, attendee.Email, attendee.Name, attendee.CompanyName, conferenceID,
	)

	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return db.GetAttendee(ctx, attendee.ID)
}

func (db *postgres) DeleteAttendee(ctx context.Context, id int) error {
	return db.deleteByID(ctx, `DELETE FROM attendees WHERE id=$1;`, id)
}

const selectPresentation string = `
	SELECT p.id, p.presenter_name, p.company_name, p.presenter_email, p.title, p.synopsis, p.created, p.status,
	       c.id, c.name, c.description, c.max_presentations, c.max_attendees,
	       c.starts, c.ends, c.created, c.updated,
	       l.id, l.name, l.city, l.room_count, l.created, l.updated, l.picture_url,
	       s.id, s.name, s.abbreviation
	FROM presentations p
	JOIN conferences c ON c.id = p.conference_id
	JOIN locations l ON l.id = c.location_id
	JOIN states s ON s.id = l.state_id`

func scanPresentation(row pgx.Row) (*domain.Presentation, error) {
	p := &domain.Presentation{
		Conference: &domain.Conference{Location: &domain.Location{State: &domain.State{}}},
	}
	c := p.Conference
	l := c.Location

	var status string

	err := row.Scan(
		&p.ID, &p.PresenterName, &p.CompanyName, &p.PresenterEmail, &p.Title, &p.Synopsis, &p.Created, &status,
		&c.ID, &c.Name, &c.Description, &c.MaxPresentations, &c.MaxAttendees,
		&c.Starts, &c.Ends, &c.Created, &c.Updated,
		&l.ID, &l.Name, &l.City, &l.RoomCount, &l.Created, &l.Updated, &l.PictureURL,
		&l.State.ID, &l.State.Name, &l.State.Abbreviation,
	)
	if err != nil {
		return nil, notFoundOr(err)
	}

	p.Status = domain.Status(status)

	return p, nil
}

func (db *postgres) ListPresentations(ctx context.Context, conferenceID int) ([]*domain.Presentation, error) {
	rows, err := db.pool.Query(ctx, selectPresentation+` WHERE p.conference_id=$1 ORDER BY p.id;`, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	presentations := make([]*domain.Presentation, 0)

	for rows.Next() {
		p, err := scanPresentation(rows)
		if err != nil {
			return nil, err
		}
		presentations = append(presentations, p)
	}

	return presentations, rows.Err()
}

func (db *postgres) GetPresentation(ctx context.Context, id int) (*domain.Presentation, error) {
	return scanPresentation(db.pool.QueryRow(ctx, selectPresentation+` WHERE p.id=$1;`, id))
}

func (db *postgres) CreatePresentation(ctx context.Context, presentation domain.Presentation) (*domain.Presentation, error) {
	if presentation.Conference == nil {
		return nil, ErrNotFound
	}

	var id int
	err := db.pool.QueryRow(ctx, `
		INSERT INTO presentations (presenter_name, company_name, presenter_email, title, synopsis, created, status, conference_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id;`,
		presentation.PresenterName, presentation.CompanyName, presentation.PresenterEmail, presentation.Title,
		presentation.Synopsis, presentation.Created, string(presentation.Status), presentation.Conference.ID,
	).Scan(&id)

	if err != nil {
		return nil, err
	}

	return db.GetPresentation(ctx, id)
}

func (db *postgres) UpdatePresentation(ctx context.Context, presentation domain.Presentation) (*domain.Presentation, error) {
	if presentation.Conference == nil {
		return nil, ErrNotFound
	}

	tag, err := db.pool.Exec(ctx, `
		UPDATE presentations SET presenter_name=$2, company_name=$3, presenter_email=$4, title=$5,
		       synopsis=$6, status=$7, conference_id=$8
		WHERE id=$1;`,
		presentation.ID, presentation.PresenterName, presentation.CompanyName, presentation.PresenterEmail,
		presentation.Title, presentation.Synopsis, string(presentation.Status), presentation.Conference.ID,
	)

	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return db.GetPresentation(ctx, presentation.ID)
}

func (db *postgres) DeletePresentation(ctx context.Context, id int) error {
	return db.deleteByID(ctx, `DELETE FROM presentations WHERE id=$1;`, id)
}

func (db *postgres) deleteByID(ctx context.Context, sql string, id int) error {
	tag, err := db.pool.Exec(ctx, sql, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func conferenceIDFromVO(vo *domain.ConferenceVO) (int, error) {
	if vo == nil {
		return 0, ErrNotFound
	}

	id, ok := domain.ConferenceIDFromHref(vo.ImportHref)
	if !ok {
		return 0, ErrNotFound
	}

	return id, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
