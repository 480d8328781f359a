package api

import (
	"github.com/diwise/conference-go/internal/pkg/domain"
	"github.com/diwise/conference-go/pkg/encoding"
)

var stateKind = encoding.NewKind("state",
	encoding.Attr("name", func(s *domain.State) any { return s.Name }),
	encoding.Attr("abbreviation", func(s *domain.State) any { return s.Abbreviation }),
)

var locationKind = encoding.NewKind("location",
	encoding.Attr("name", func(l *domain.Location) any { return l.Name }),
	encoding.Attr("city", func(l *domain.Location) any { return l.City }),
	encoding.Attr("room_count", func(l *domain.Location) any { return l.RoomCount }),
	encoding.Attr("created", func(l *domain.Location) any { return l.Created }),
	encoding.Attr("updated", func(l *domain.Location) any { return l.Updated }),
	encoding.Attr("picture_url", func(l *domain.Location) any { return l.PictureURL }),
	encoding.Attr("state", func(l *domain.Location) any { return l.State }),
)

var conferenceKind = encoding.NewKind("conference",
	encoding.Attr("name", func(c *domain.Conference) any { return c.Name }),
	encoding.Attr("description", func(c *domain.Conference) any { return c.Description }),
	encoding.Attr("max_presentations", func(c *domain.Conference) any { return c.MaxPresentations }),
	encoding.Attr("max_attendees", func(c *domain.Conference) any { return c.MaxAttendees }),
	encoding.Attr("starts", func(c *domain.Conference) any { return c.Starts }),
	encoding.Attr("ends", func(c *domain.Conference) any { return c.Ends }),
	encoding.Attr("created", func(c *domain.Conference) any { return c.Created }),
	encoding.Attr("updated", func(c *domain.Conference) any { return c.Updated }),
	encoding.Attr("location", func(c *domain.Conference) any { return c.Location }),
)

var conferenceVOKind = encoding.NewKind("conferencevo",
	encoding.Attr("name", func(vo *domain.ConferenceVO) any { return vo.Name }),
	encoding.Attr("import_href", func(vo *domain.ConferenceVO) any { return vo.ImportHref }),
)

var attendeeKind = encoding.NewKind("attendee",
	encoding.Attr("email", func(a *domain.Attendee) any { return a.Email }),
	encoding.Attr("name", func(a *domain.Attendee) any { return a.Name }),
	encoding.Attr("company_name", func(a *domain.Attendee) any { return a.CompanyName }),
	encoding.Attr("created", func(a *domain.Attendee) any { return a.Created }),
	encoding.Attr("conference", func(a *domain.Attendee) any { return a.Conference }),
)

var presentationKind = encoding.NewKind("presentation",
	encoding.Attr("presenter_name", func(p *domain.Presentation) any { return p.PresenterName }),
	encoding.Attr("company_name", func(p *domain.Presentation) any { return p.CompanyName }),
	encoding.Attr("presenter_email", func(p *domain.Presentation) any { return p.PresenterEmail }),
	encoding.Attr("title", func(p *domain.Presentation) any { return p.Title }),
	encoding.Attr("synopsis", func(p *domain.Presentation) any { return p.Synopsis }),
	encoding.Attr("created", func(p *domain.Presentation) any { return p.Created }),
	encoding.Attr("status", func(p *domain.Presentation) any { return p.Status }),
	encoding.Attr("conference", func(p *domain.Presentation) any { return p.Conference }),
)

var (
	StateList = encoding.MustTable(stateKind, []string{"name", "abbreviation"})

	LocationList   = encoding.MustTable(locationKind, []string{"name"})
	LocationDetail = encoding.MustTable(locationKind,
		[]string{"name", "city", "room_count", "created", "updated", "picture_url"},
		encoding.Extra(func(l *domain.Location) *encoding.Map {
			if l.State == nil {
				return encoding.NewMap(encoding.P("state", nil))
			}
			return encoding.NewMap(encoding.P("state", l.State.Abbreviation))
		}),
	)

	ConferenceList   = encoding.MustTable(conferenceKind, []string{"name"})
	ConferenceDetail = encoding.MustTable(conferenceKind,
		[]string{"name", "description", "max_presentations", "max_attendees", "starts", "ends", "created", "updated", "location"},
		encoding.Nested("location", LocationList),
	)

	ConferenceVODetail = encoding.MustTable(conferenceVOKind, []string{"name"})

	AttendeeList   = encoding.MustTable(attendeeKind, []string{"name"})
	AttendeeDetail = encoding.MustTable(attendeeKind,
		[]string{"email", "name", "company_name", "created", "conference"},
		encoding.Nested("conference", ConferenceVODetail),
	)

	PresentationList = encoding.MustTable(presentationKind, []string{"title"},
		encoding.Extra(presentationStatus),
	)
	PresentationDetail = encoding.MustTable(presentationKind,
		[]string{"presenter_name", "company_name", "presenter_email", "title", "synopsis", "created", "conference"},
		encoding.Nested("conference", ConferenceList),
		encoding.Extra(presentationStatus),
	)
)

func presentationStatus(p *domain.Presentation) *encoding.Map {
	return encoding.NewMap(encoding.P("status", p.Status))
}

// Weather has no entity kind of its own and is written through the plain
// value encoder.
func weatherResponse(w *domain.Weather) *encoding.Map {
	if w == nil {
		return encoding.NewMap(encoding.P("weather", nil))
	}

	return encoding.NewMap(encoding.P("weather", encoding.NewMap(
		encoding.P("temperature", w.Temperature),
		encoding.P("description", w.Description),
	)))
}
