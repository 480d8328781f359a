package encoding

import (
	"errors"
	"fmt"
)

var ErrUnsupportedType = errors.New("unsupported type")
var ErrMissingAttribute = errors.New("missing attribute")

// UnsupportedTypeError is returned when a value matches neither the entity kind
// of the encoder nor any of its value codecs.
type UnsupportedTypeError struct {
	typeName string
}

func newUnsupportedTypeError(v any) error {
	return &UnsupportedTypeError{typeName: fmt.Sprintf("%T", v)}
}

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("object of type %s is not encodable", e.typeName)
}

func (e UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// MissingAttributeError reports a property table that names an attribute the
// entity kind does not have.
type MissingAttributeError struct {
	kind      string
	attribute string
}

func newMissingAttributeError(kind, attribute string) error {
	return &MissingAttributeError{kind: kind, attribute: attribute}
}

func (e MissingAttributeError) Error() string {
	return fmt.Sprintf("%s has no attribute %q", e.kind, e.attribute)
}

func (e MissingAttributeError) Is(target error) bool { return target == ErrMissingAttribute }

func (e MissingAttributeError) Kind() string      { return e.kind }
func (e MissingAttributeError) Attribute() string { return e.attribute }
