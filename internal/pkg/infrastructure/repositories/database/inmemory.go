package database

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/diwise/conference-go/internal/pkg/domain"
)

type locationRow struct {
	domain.Location
	stateID int
}

type conferenceRow struct {
	domain.Conference
	locationID int
}

type attendeeRow struct {
	domain.Attendee
	conferenceID int
}

type presentationRow struct {
	domain.Presentation
	conferenceID int
}

type inmemory struct {
	mu sync.RWMutex

	sequences map[string]int

	states        map[int]domain.State
	locations     map[int]locationRow
	conferences   map[int]conferenceRow
	attendees     map[int]attendeeRow
	presentations map[int]presentationRow
}

// NewInMemoryDatastore returns a Datastore that keeps everything in process
// memory, seeded with the given states.
func NewInMemoryDatastore(states []domain.State) Datastore {
	db := &inmemory{
		sequences:     map[string]int{},
		states:        map[int]domain.State{},
		locations:     map[int]locationRow{},
		conferences:   map[int]conferenceRow{},
		attendees:     map[int]attendeeRow{},
		presentations: map[int]presentationRow{},
	}

	for _, s := range states {
		s.ID = db.newID("states")
		db.states[s.ID] = s
	}

	return db
}

func (db *inmemory) newID(table string) int {
	db.sequences[table]++
	return db.sequences[table]
}

func (db *inmemory) ListStates(ctx context.Context) ([]*domain.State, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]*domain.State, 0, len(db.states))
	for _, id := range sortedKeys(db.states) {
		s := db.states[id]
		result = append(result, &s)
	}

	slices.SortStableFunc(result, func(a, b *domain.State) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return result, nil
}

func (db *inmemory) GetStateByAbbreviation(ctx context.Context, abbreviation string) (*domain.State, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, s := range db.states {
		if s.Abbreviation == abbreviation {
			return &s, nil
		}
	}

	return nil, ErrNotFound
}

func (db *inmemory) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]*domain.Location, 0, len(db.locations))
	for _, id := range sortedKeys(db.locations) {
		result = append(result, db.location(id))
	}

	return result, nil
}

func (db *inmemory) GetLocation(ctx context.Context, id int) (*domain.Location, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if _, ok := db.locations[id]; !ok {
		return nil, ErrNotFound
	}

	return db.location(id), nil
}

func (db *inmemory) GetLocationByName(ctx context.Context, name string) (*domain.Location, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, id := range sortedKeys(db.locations) {
		if db.locations[id].Name == name {
			return db.location(id), nil
		}
	}

	return nil, ErrNotFound
}

func (db *inmemory) CreateLocation(ctx context.Context, location domain.Location) (*domain.Location, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if location.State == nil {
		return nil, ErrNotFound
	}

	if _, ok := db.states[location.State.ID]; !ok {
		return nil, ErrNotFound
	}

	location.ID = db.newID("locations")
	db.locations[location.ID] = locationRow{Location: location, stateID: location.State.ID}

	return db.location(location.ID), nil
}

func (db *inmemory) UpdateLocation(ctx context.Context, location domain.Location) (*domain.Location, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.locations[location.ID]; !ok {
		return nil, ErrNotFound
	}

	if location.State == nil {
		return nil, ErrNotFound
	}

	if _, ok := db.states[location.State.ID]; !ok {
		return nil, ErrNotFound
	}

	db.locations[location.ID] = locationRow{Location: location, stateID: location.State.ID}

	return db.location(location.ID), nil
}

func (db *inmemory) DeleteLocation(ctx context.Context, id int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.locations[id]; !ok {
		return ErrNotFound
	}

	delete(db.locations, id)

	for cid, c := range db.conferences {
		if c.locationID == id {
			db.deleteConference(cid)
		}
	}

	return nil
}

func (db *inmemory) ListConferences(ctx context.Context) ([]*domain.Conference, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]*domain.Conference, 0, len(db.conferences))
	for _, id := range sortedKeys(db.conferences) {
		result = append(result, db.conference(id))
	}

	return result, nil
}

func (db *inmemory) GetConference(ctx context.Context, id int) (*domain.Conference, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if _, ok := db.conferences[id]; !ok {
		return nil, ErrNotFound
	}

	return db.conference(id), nil
}

func (db *inmemory) CreateConference(ctx context.Context, conference domain.Conference) (*domain.Conference, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if conference.Location == nil {
		return nil, ErrNotFound
	}

	if _, ok := db.locations[conference.Location.ID]; !ok {
		return nil, ErrNotFound
	}

	conference.ID = db.newID("conferences")
	db.conferences[conference.ID] = conferenceRow{Conference: conference, locationID: conference.Location.ID}

	return db.conference(conference.ID), nil
}

func (db *inmemory) UpdateConference(ctx context.Context, conference domain.Conference) (*domain.Conference, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.conferences[conference.ID]; !ok {
		return nil, ErrNotFound
	}

	if conference.Location == nil {
		return nil, ErrNotFound
	}

	if _, ok := db.locations[conference.Location.ID]; !ok {
		return nil, ErrNotFound
	}

	db.conferences[conference.ID] = conferenceRow{Conference: conference, locationID: conference.Location.ID}

	return db.conference(conference.ID), nil
}

func (db *inmemory) DeleteConference(ctx context.Context, id int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.conferences[id]; !ok {
		return ErrNotFound
	}

	db.deleteConference(id)

	return nil
}

func (db *inmemory) deleteConference(id int) {
	delete(db.conferences, id)

	for aid, a := range db.attendees {
		if a.conferenceID == id {
			delete(db.attendees, aid)
		}
	}

	for pid, p := range db.presentations {
		if p.conferenceID == id {
			delete(db.presentations, pid)
		}
	}
}

func (db *inmemory) GetConferenceVO(ctx context.Context, importHref string) (*domain.ConferenceVO, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	id, ok := domain.ConferenceIDFromHref(importHref)
	if !ok {
		return nil, ErrNotFound
	}

	return db.conferenceVO(id)
}

func (db *inmemory) GetConferenceVOByName(ctx context.Context, name string) (*domain.ConferenceVO, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, id := range sortedKeys(db.conferences) {
		if db.conferences[id].Name == name {
			return db.conferenceVO(id)
		}
	}

	return nil, ErrNotFound
}

func (db *inmemory) ListAttendees(ctx context.Context, conferenceHref string) ([]*domain.Attendee, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	conferenceID, ok := domain.ConferenceIDFromHref(conferenceHref)
	if !ok {
		return []*domain.Attendee{}, nil
	}

	result := []*domain.Attendee{}
	for _, id := range sortedKeys(db.attendees) {
		if db.attendees[id].conferenceID == conferenceID {
			result = append(result, db.attendee(id))
		}
	}

	return result, nil
}

func (db *inmemory) GetAttendee(ctx context.Context, id int) (*domain.Attendee, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if _, ok := db.attendees[id]; !ok {
		return nil, ErrNotFound
	}

	return db.attendee(id), nil
}

func (db *inmemory) CreateAttendee(ctx context.Context, attendee domain.Attendee) (*domain.Attendee, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	conferenceID, err := db.voConferenceID(attendee.Conference)
	if err != nil {
		return nil, err
	}

	attendee.ID = db.newID("attendees")
	db.attendees[attendee.ID] = attendeeRow{Attendee: attendee, conferenceID: conferenceID}

	return db.attendee(attendee.ID), nil
}

func (db *inmemory) UpdateAttendee(ctx context.Context, attendee domain.Attendee) (*domain.Attendee, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.attendees[attendee.ID]; !ok {
		return nil, ErrNotFound
	}

	conferenceID, err := db.voConferenceID(attendee.Conference)
	if err != nil {
		return nil, err
	}

	db.attendees[attendee.ID] = attendeeRow{Attendee: attendee, conferenceID: conferenceID}

	return db.attendee(attendee.ID), nil
}

func (db *inmemory) DeleteAttendee(ctx context.Context, id int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.attendees[id]; !ok {
		return ErrNotFound
	}

	delete(db.attendees, id)
	return nil
}

func (db *inmemory) ListPresentations(ctx context.Context, conferenceID int) ([]*domain.Presentation, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := []*domain.Presentation{}
	for _, id := range sortedKeys(db.presentations) {
		if db.presentations[id].conferenceID == conferenceID {
			result = append(result, db.presentation(id))
		}
	}

	return result, nil
}

func (db *inmemory) GetPresentation(ctx context.Context, id int) (*domain.Presentation, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if _, ok := db.presentations[id]; !ok {
		return nil, ErrNotFound
	}

	return db.presentation(id), nil
}

func (db *inmemory) CreatePresentation(ctx context.Context, presentation domain.Presentation) (*domain.Presentation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if presentation.Conference == nil {
		return nil, ErrNotFound
	}

	if _, ok := db.conferences[presentation.Conference.ID]; !ok {
		return nil, ErrNotFound
	}

	presentation.ID = db.newID("presentations")
	db.presentations[presentation.ID] = presentationRow{Presentation: presentation, conferenceID: presentation.Conference.ID}

	return db.presentation(presentation.ID), nil
}

func (db *inmemory) UpdatePresentation(ctx context.Context, presentation domain.Presentation) (*domain.Presentation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.presentations[presentation.ID]; !ok {
		return nil, ErrNotFound
	}

	if presentation.Conference == nil {
		return nil, ErrNotFound
	}

	if _, ok := db.conferences[presentation.Conference.ID]; !ok {
		return nil, ErrNotFound
	}

	db.presentations[presentation.ID] = presentationRow{Presentation: presentation, conferenceID: presentation.Conference.ID}

	return db.presentation(presentation.ID), nil
}

func (db *inmemory) DeletePresentation(ctx context.Context, id int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.presentations[id]; !ok {
		return ErrNotFound
	}

	delete(db.presentations, id)
	return nil
}

func (db *inmemory) Close() {}

// the helpers below expect the caller to hold the lock

func (db *inmemory) location(id int) *domain.Location {
	row := db.locations[id]
	l := row.Location

	s := db.states[row.stateID]
	l.State = &s

	return &l
}

func (db *inmemory) conference(id int) *domain.Conference {
	row := db.conferences[id]
	c := row.Conference
	c.Location = db.location(row.locationID)

	return &c
}

func (db *inmemory) conferenceVO(id int) (*domain.ConferenceVO, error) {
	row, ok := db.conferences[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &domain.ConferenceVO{
		ImportHref: domain.ConferenceHref(id),
		Name:       row.Name,
	}, nil
}

func (db *inmemory) voConferenceID(vo *domain.ConferenceVO) (int, error) {
	if vo == nil {
		return 0, ErrNotFound
	}

	id, ok := domain.ConferenceIDFromHref(vo.ImportHref)
	if !ok {
		return 0, ErrNotFound
	}

	if _, ok := db.conferences[id]; !ok {
		return 0, ErrNotFound
	}

	return id, nil
}

func (db *inmemory) attendee(id int) *domain.Attendee {
	row := db.attendees[id]
	a := row.Attendee
	a.Conference, _ = db.conferenceVO(row.conferenceID)

	return &a
}

func (db *inmemory) presentation(id int) *domain.Presentation {
	row := db.presentations[id]
	p := row.Presentation
	p.Conference = db.conference(row.conferenceID)

	return &p
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
