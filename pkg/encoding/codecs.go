package encoding

import (
	"reflect"
	"time"
)

// TimeFormat is the ISO-8601 layout used for temporal values
const TimeFormat string = time.RFC3339Nano

// ValueCodec converts a value that has no native JSON representation. The
// boolean result is false when the codec does not recognise the value, in which
// case the next codec in the chain gets a go.
type ValueCodec interface {
	Encode(v any) (any, bool)
}

// Chain is an ordered list of value codecs, tried front to back
type Chain []ValueCodec

func (c Chain) Encode(v any) (any, bool) {
	for _, codec := range c {
		if encoded, ok := codec.Encode(v); ok {
			return encoded, true
		}
	}

	return nil, false
}

// DefaultChain returns a new chain with the temporal codec followed by the
// bulk codec
func DefaultChain() Chain {
	return Chain{TemporalCodec{}, BulkCodec{}}
}

// TemporalCodec encodes time.Time values as ISO-8601 strings, keeping the
// offset of the value's location.
type TemporalCodec struct{}

func (TemporalCodec) Encode(v any) (any, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.Format(TimeFormat), true
	case *time.Time:
		if t == nil {
			return nil, true
		}
		return t.Format(TimeFormat), true
	}

	return nil, false
}

// BulkCodec turns any slice or array into a []any holding the original,
// still unencoded, elements. Byte slices are left alone.
type BulkCodec struct{}

func (BulkCodec) Encode(v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	if _, ok := v.([]byte); ok {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}

	return items, true
}
