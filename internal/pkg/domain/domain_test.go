package domain

import (
	"testing"

	"github.com/matryer/is"
)

func TestConferenceIDFromHref(t *testing.T) {
	is := is.New(t)

	id, ok := ConferenceIDFromHref("/api/conferences/42/")
	is.True(ok)
	is.Equal(id, 42)

	for _, href := range []string{"", "/api/conferences/", "/api/conferences/x/", "/api/locations/1/", "/api/conferences/1", "/api/conferences/-1/"} {
		_, ok := ConferenceIDFromHref(href)
		is.True(!ok) // should not accept malformed reference
	}
}

func TestHrefOnlyWhenPersisted(t *testing.T) {
	is := is.New(t)

	_, ok := (&Location{}).Href()
	is.True(!ok)

	href, ok := (&Location{ID: 3}).Href()
	is.True(ok)
	is.Equal(href, "/api/locations/3/")

	href, ok = (&ConferenceVO{ImportHref: ConferenceHref(5)}).Href()
	is.True(ok)
	is.Equal(href, "/api/conferences/5/")
}
