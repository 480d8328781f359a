package conferences

import (
	"github.com/diwise/conference-go/internal/pkg/infrastructure/repositories/database"
)

var ErrNotFound = database.ErrNotFound

// InvalidReferenceError is returned when a natural key in a request, such as a
// state abbreviation or a location name, does not resolve to a stored entity.
type InvalidReferenceError struct {
	msg string
}

func NewInvalidReferenceError(msg string) InvalidReferenceError {
	return InvalidReferenceError{msg: msg}
}

func (ire InvalidReferenceError) Error() string {
	return ire.msg
}

const (
	InvalidStateAbbreviation string = "Invalid state abbreviation"
	InvalidLocationID        string = "Invalid location id"
	InvalidLocationName      string = "Invalid location name"
	InvalidConferenceID      string = "Invalid conference id"
)
