package conferences

import "time"

// Input fields are pointers so that updates only touch what the caller sent.

type LocationInput struct {
	Name      *string `json:"name"`
	City      *string `json:"city"`
	RoomCount *int    `json:"room_count"`
	State     *string `json:"state"`
}

type ConferenceInput struct {
	Name             *string    `json:"name"`
	Description      *string    `json:"description"`
	MaxPresentations *int       `json:"max_presentations"`
	MaxAttendees     *int       `json:"max_attendees"`
	Starts           *time.Time `json:"starts"`
	Ends             *time.Time `json:"ends"`
}

// NewConference references its location by id
type NewConference struct {
	ConferenceInput
	Location *int `json:"location"`
}

// ConferenceUpdate references its location by name
type ConferenceUpdate struct {
	ConferenceInput
	Location *string `json:"location"`
}

type AttendeeInput struct {
	Email       *string `json:"email"`
	Name        *string `json:"name"`
	CompanyName *string `json:"company_name"`
}

// AttendeeUpdate references its conference by name
type AttendeeUpdate struct {
	AttendeeInput
	Conference *string `json:"conference"`
}

type PresentationInput struct {
	PresenterName  *string `json:"presenter_name"`
	CompanyName    *string `json:"company_name"`
	PresenterEmail *string `json:"presenter_email"`
	Title          *string `json:"title"`
	Synopsis       *string `json:"synopsis"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
