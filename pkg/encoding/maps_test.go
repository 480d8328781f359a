package encoding

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestMapKeepsInsertionOrder(t *testing.T) {
	is := is.New(t)

	m := NewMap(P("zeta", 1), P("alpha", 2))
	m.Set("mu", 3)

	b, err := json.Marshal(m)
	is.NoErr(err)
	is.Equal(string(b), `{"zeta":1,"alpha":2,"mu":3}`)
	is.Equal(m.Keys(), []string{"zeta", "alpha", "mu"})
}

func TestMapOverwriteKeepsPosition(t *testing.T) {
	is := is.New(t)

	m := NewMap(P("a", 1), P("b", 2))
	m.Set("a", "one")

	b, err := json.Marshal(m)
	is.NoErr(err)
	is.Equal(string(b), `{"a":"one","b":2}`)
	is.Equal(m.Len(), 2)
}

func TestNilMapMarshalsToNull(t *testing.T) {
	is := is.New(t)

	var m *Map
	b, err := json.Marshal(m)

	is.NoErr(err)
	is.Equal(string(b), "null")
	is.Equal(m.Len(), 0)

	_, ok := m.Get("anything")
	is.True(!ok)
}

func TestNestedMapsMarshalInOrder(t *testing.T) {
	is := is.New(t)

	m := NewMap(
		P("name", "PyCon"),
		P("location", NewMap(P("name", "Hall"), P("href", "/api/locations/1/"))),
		P("tags", []any{"a", "b"}),
	)

	b, err := json.Marshal(m)
	is.NoErr(err)
	is.Equal(string(b), `{"name":"PyCon","location":{"name":"Hall","href":"/api/locations/1/"},"tags":["a","b"]}`)
}

func TestRangeStopsEarly(t *testing.T) {
	is := is.New(t)

	m := NewMap(P("a", 1), P("b", 2), P("c", 3))

	visited := []string{}
	m.Range(func(key string, _ any) bool {
		visited = append(visited, key)
		return key != "b"
	})

	is.Equal(visited, []string{"a", "b"})
}
