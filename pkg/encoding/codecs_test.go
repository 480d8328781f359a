package encoding

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestTemporalCodecPreservesOffset(t *testing.T) {
	is := is.New(t)

	cet := time.FixedZone("CET", 3600)
	ts := time.Date(2023, 4, 5, 10, 30, 15, 120000000, cet)

	encoded, ok := TemporalCodec{}.Encode(ts)

	is.True(ok)
	is.Equal(encoded, "2023-04-05T10:30:15.12+01:00")
}

func TestTemporalCodecRoundTrip(t *testing.T) {
	is := is.New(t)

	instants := []time.Time{
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 999999999, time.FixedZone("", -5*3600)),
		time.Unix(1700000000, 123456).In(time.FixedZone("", 9*3600+1800)),
	}

	for _, instant := range instants {
		encoded, ok := TemporalCodec{}.Encode(instant)
		is.True(ok)

		parsed, err := time.Parse(time.RFC3339Nano, encoded.(string))
		is.NoErr(err)
		is.True(parsed.Equal(instant)) // should parse back to the same instant
	}
}

func TestTemporalCodecHandlesNilPointer(t *testing.T) {
	is := is.New(t)

	var ts *time.Time
	encoded, ok := TemporalCodec{}.Encode(ts)

	is.True(ok)
	is.Equal(encoded, nil)
}

func TestTemporalCodecIgnoresOtherValues(t *testing.T) {
	is := is.New(t)

	_, ok := TemporalCodec{}.Encode("2023-01-01")
	is.True(!ok) // strings are not temporal values
}

func TestBulkCodecKeepsOrderAndElements(t *testing.T) {
	is := is.New(t)

	type thing struct{ n int }
	items := []*thing{{1}, {2}, {3}}

	encoded, ok := BulkCodec{}.Encode(items)
	is.True(ok)

	result := encoded.([]any)
	is.Equal(len(result), 3)
	is.Equal(result[0], items[0]) // elements should not be encoded by the bulk codec
	is.Equal(result[2], items[2])
}

func TestBulkCodecEncodesNilSliceAsEmpty(t *testing.T) {
	is := is.New(t)

	var items []string
	encoded, ok := BulkCodec{}.Encode(items)
	is.True(ok)

	b, _ := json.Marshal(encoded)
	is.Equal(string(b), "[]")
}

func TestBulkCodecIgnoresBytesAndScalars(t *testing.T) {
	is := is.New(t)

	_, ok := BulkCodec{}.Encode([]byte("abc"))
	is.True(!ok)

	_, ok = BulkCodec{}.Encode(17)
	is.True(!ok)

	_, ok = BulkCodec{}.Encode(nil)
	is.True(!ok)
}

func TestChainFallsThroughInOrder(t *testing.T) {
	is := is.New(t)

	calls := []string{}
	first := codecFunc(func(v any) (any, bool) {
		calls = append(calls, "first")
		return nil, false
	})
	second := codecFunc(func(v any) (any, bool) {
		calls = append(calls, "second")
		return "second", true
	})
	third := codecFunc(func(v any) (any, bool) {
		calls = append(calls, "third")
		return "third", true
	})

	encoded, ok := Chain{first, second, third}.Encode(struct{}{})

	is.True(ok)
	is.Equal(encoded, "second")
	is.Equal(calls, []string{"first", "second"})
}

func TestEmptyChainHandlesNothing(t *testing.T) {
	is := is.New(t)

	_, ok := Chain{}.Encode(time.Now())
	is.True(!ok)
}

type codecFunc func(v any) (any, bool)

func (f codecFunc) Encode(v any) (any, bool) { return f(v) }
