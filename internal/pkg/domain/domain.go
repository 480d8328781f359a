package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type State struct {
	ID           int    `yaml:"-"`
	Name         string `yaml:"name"`
	Abbreviation string `yaml:"abbreviation"`
}

type Location struct {
	ID         int
	Name       string
	City       string
	RoomCount  int
	Created    time.Time
	Updated    time.Time
	PictureURL string
	State      *State
}

func (l *Location) Href() (string, bool) {
	if l.ID == 0 {
		return "", false
	}
	return fmt.Sprintf("/api/locations/%d/", l.ID), true
}

type Conference struct {
	ID               int
	Name             string
	Description      string
	MaxPresentations int
	MaxAttendees     int
	Starts           time.Time
	Ends             time.Time
	Created          time.Time
	Updated          time.Time
	Location         *Location
}

func (c *Conference) Href() (string, bool) {
	if c.ID == 0 {
		return "", false
	}
	return ConferenceHref(c.ID), true
}

func ConferenceHref(id int) string {
	return fmt.Sprintf("/api/conferences/%d/", id)
}

// ConferenceVO is the attendee side's copy of a conference, identified by the
// reference it was imported from.
type ConferenceVO struct {
	ImportHref string
	Name       string
}

func (vo *ConferenceVO) Href() (string, bool) {
	return vo.ImportHref, vo.ImportHref != ""
}

type Attendee struct {
	ID          int
	Email       string
	Name        string
	CompanyName string
	Created     time.Time
	Conference  *ConferenceVO
}

func (a *Attendee) Href() (string, bool) {
	if a.ID == 0 {
		return "", false
	}
	return fmt.Sprintf("/api/attendees/%d/", a.ID), true
}

type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

type Presentation struct {
	ID             int
	PresenterName  string
	CompanyName    string
	PresenterEmail string
	Title          string
	Synopsis       string
	Created        time.Time
	Status         Status
	Conference     *Conference
}

func (p *Presentation) Href() (string, bool) {
	if p.ID == 0 {
		return "", false
	}
	return fmt.Sprintf("/api/presentations/%d/", p.ID), true
}

type Weather struct {
	Temperature float64
	Description string
}

// ConferenceIDFromHref extracts the conference id from a canonical conference
// reference such as /api/conferences/3/
func ConferenceIDFromHref(href string) (int, bool) {
	const prefix string = "/api/conferences/"

	if !strings.HasPrefix(href, prefix) || !strings.HasSuffix(href, "/") {
		return 0, false
	}

	id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(href, prefix), "/"))
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
