package api

import (
	"net/http"

	"github.com/diwise/conference-go/internal/pkg/application/conferences"
	"github.com/diwise/conference-go/pkg/encoding"
)

func NewListStatesHandler(app conferences.App) http.HandlerFunc {
	return handle("list-states", func(w http.ResponseWriter, r *http.Request) error {
		states, err := app.ListStates(r.Context())
		if err != nil {
			return err
		}
		return writeEncoded(w, collection("states", states), StateList)
	})
}

func NewListLocationsHandler(app conferences.App) http.HandlerFunc {
	return handle("list-locations", func(w http.ResponseWriter, r *http.Request) error {
		locations, err := app.ListLocations(r.Context())
		if err != nil {
			return err
		}
		return writeEncoded(w, collection("locations", locations), LocationList)
	})
}

func NewCreateLocationHandler(app conferences.App) http.HandlerFunc {
	return handle("create-location", func(w http.ResponseWriter, r *http.Request) error {
		in := conferences.LocationInput{}
		if err := decodeBody(r, &in); err != nil {
			return err
		}

		l, err := app.CreateLocation(r.Context(), in)
		if err != nil {
			return err
		}
		return writeEncoded(w, l, LocationDetail)
	})
}

func NewShowLocationHandler(app conferences.App) http.HandlerFunc {
	return handle("show-location", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		l, err := app.GetLocation(r.Context(), id)
		if err != nil {
			return err
		}
		return writeEncoded(w, l, LocationDetail)
	})
}

func NewUpdateLocationHandler(app conferences.App) http.HandlerFunc {
	return handle("update-location", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		in := conferences.LocationInput{}
		if err := decodeBody(r, &in); err != nil {
			return err
		}

		l, err := app.UpdateLocation(r.Context(), id, in)
		if err != nil {
			return err
		}
		return writeEncoded(w, l, LocationDetail)
	})
}

func NewDeleteLocationHandler(app conferences.App) http.HandlerFunc {
	return handle("delete-location", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		if err := app.DeleteLocation(r.Context(), id); err != nil {
			return err
		}

		writeDeleted(w)
		return nil
	})
}

func NewListConferencesHandler(app conferences.App) http.HandlerFunc {
	return handle("list-conferences", func(w http.ResponseWriter, r *http.Request) error {
		result, err := app.ListConferences(r.Context())
		if err != nil {
			return err
		}
		return writeEncoded(w, collection("conferences", result), ConferenceList)
	})
}

func NewCreateConferenceHandler(app conferences.App) http.HandlerFunc {
	return handle("create-conference", func(w http.ResponseWriter, r *http.Request) error {
		in := conferences.NewConference{}
		if err := decodeBody(r, &in); err != nil {
			return err
		}

		c, err := app.CreateConference(r.Context(), in)
		if err != nil {
			return err
		}
		return writeEncoded(w, c, ConferenceDetail)
	})
}

func NewShowConferenceHandler(app conferences.App) http.HandlerFunc {
	return handle("show-conference", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		c, err := app.GetConference(r.Context(), id)
		if err != nil {
			return err
		}
		return writeEncoded(w, c, ConferenceDetail)
	})
}

func NewUpdateConferenceHandler(app conferences.App) http.HandlerFunc {
	return handle("update-conference", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		in := conferences.ConferenceUpdate{}
		if err := decodeBody(r, &in); err != nil {
			return err
		}

		c, err := app.UpdateConference(r.Context(), id, in)
		if err != nil {
			return err
		}
		return writeEncoded(w, c, ConferenceDetail)
	})
}

func NewDeleteConferenceHandler(app conferences.App) http.HandlerFunc {
	return handle("delete-conference", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		if err := app.DeleteConference(r.Context(), id); err != nil {
			return err
		}

		writeDeleted(w)
		return nil
	})
}

func NewConferenceWeatherHandler(app conferences.App) http.HandlerFunc {
	return handle("conference-weather", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		weather, err := app.ConferenceWeather(r.Context(), id)
		if err != nil {
			return err
		}
		return writeEncoded(w, weatherResponse(weather), encoding.Values{})
	})
}

func NewListAttendeesHandler(app conferences.App) http.HandlerFunc {
	return handle("list-attendees", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		attendees, err := app.ListAttendees(r.Context(), id)
		if err != nil {
			return err
		}
		return writeEncoded(w, collection("attendees", attendees), AttendeeList)
	})
}

func NewCreateAttendeeHandler(app conferences.App) http.HandlerFunc {
	return handle("create-attendee", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		in := conferences.AttendeeInput{}
		if err := decodeBody(r, &in); err != nil {
			return err
		}

		a, err := app.CreateAttendee(r.Context(), id, in)
		if err != nil {
			return err
		}
		return writeEncoded(w, a, AttendeeDetail)
	})
}

func NewShowAttendeeHandler(app conferences.App) http.HandlerFunc {
	return handle("show-attendee", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		a, err := app.GetAttendee(r.Context(), id)
		if err != nil {
			return err
		}
		return writeEncoded(w, a, AttendeeDetail)
	})
}

func NewUpdateAttendeeHandler(app conferences.App) http.HandlerFunc {
	return handle("update-attendee", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		in := conferences.AttendeeUpdate{}
		if err := decodeBody(r, &in); err != nil {
			return err
		}

		a, err := app.UpdateAttendee(r.Context(), id, in)
		if err != nil {
			return err
		}
		return writeEncoded(w, a, AttendeeDetail)
	})
}

func NewDeleteAttendeeHandler(app conferences.App) http.HandlerFunc {
	return handle("delete-attendee", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		if err := app.DeleteAttendee(r.Context(), id); err != nil {
			return err
		}

		writeDeleted(w)
		return nil
	})
}

func NewListPresentationsHandler(app conferences.App) http.HandlerFunc {
	return handle("list-presentations", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		presentations, err := app.ListPresentations(r.Context(), id)
		if err != nil {
			return err
		}
		return writeEncoded(w, collection("presentations", presentations), PresentationList)
	})
}

func NewCreatePresentationHandler(app conferences.App) http.HandlerFunc {
	return handle("create-presentation", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		in := conferences.PresentationInput{}
		if err := decodeBody(r, &in); err != nil {
			return err
		}

		p, err := app.CreatePresentation(r.Context(), id, in)
		if err != nil {
			return err
		}
		return writeEncoded(w, p, PresentationDetail)
	})
}

func NewShowPresentationHandler(app conferences.App) http.HandlerFunc {
	return handle("show-presentation", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		p, err := app.GetPresentation(r.Context(), id)
		if err != nil {
			return err
		}
		return writeEncoded(w, p, PresentationDetail)
	})
}

func NewUpdatePresentationHandler(app conferences.App) http.HandlerFunc {
	return handle("update-presentation", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		in := conferences.PresentationInput{}
		if err := decodeBody(r, &in); err != nil {
			return err
		}

		p, err := app.UpdatePresentation(r.Context(), id, in)
		if err != nil {
			return err
		}
		return writeEncoded(w, p, PresentationDetail)
	})
}

func NewDeletePresentationHandler(app conferences.App) http.HandlerFunc {
	return handle("delete-presentation", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		if err := app.DeletePresentation(r.Context(), id); err != nil {
			return err
		}

		writeDeleted(w)
		return nil
	})
}

func NewApprovePresentationHandler(app conferences.App) http.HandlerFunc {
	return handle("approve-presentation", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		p, err := app.ApprovePresentation(r.Context(), id)
		if err != nil {
			return err
		}
		return writeEncoded(w, p, PresentationDetail)
	})
}

func NewRejectPresentationHandler(app conferences.App) http.HandlerFunc {
	return handle("reject-presentation", func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}

		p, err := app.RejectPresentation(r.Context(), id)
		if err != nil {
			return err
		}
		return writeEncoded(w, p, PresentationDetail)
	})
}
