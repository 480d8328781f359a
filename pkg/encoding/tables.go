package encoding

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Encoder turns a value into a JSON compatible structure made of natives,
// *Map and []any.
type Encoder interface {
	Encode(v any) (any, error)
}

type EncoderFunc func(v any) (any, error)

func (f EncoderFunc) Encode(v any) (any, error) {
	return f(v)
}

type tableConfig struct {
	nested map[string]Encoder
	hooks  []any
	chain  Chain
}

type TableOption func(*tableConfig)

// Nested declares the encoder that handles the value of the named attribute
func Nested(attribute string, enc Encoder) TableOption {
	return func(s *tableConfig) {
		s.nested[attribute] = enc
	}
}

// Extra adds an extension hook. Its entries are merged after the declared
// attributes, in the order the hooks are added, and win over declared
// attributes with the same key.
func Extra[T any](hook func(T) *Map) TableOption {
	return func(s *tableConfig) {
		s.hooks = append(s.hooks, hook)
	}
}

// WithValueCodecs replaces the default value codec chain
func WithValueCodecs(chain Chain) TableOption {
	return func(s *tableConfig) {
		s.chain = append(Chain{}, chain...)
	}
}

type property[T any] struct {
	name   string
	get    func(T) (any, error)
	nested Encoder
}

// Table is the property table for an entity kind. It encodes instances of the
// kind into ordered maps and falls back to its value codecs for anything else.
// A Table is immutable once created and safe for concurrent use.
type Table[T any] struct {
	kind       *Kind[T]
	properties []property[T]
	hooks      []func(T) *Map
	chain      Chain
}

func NewTable[T any](kind *Kind[T], attributes []string, options ...TableOption) (*Table[T], error) {
	cfg := &tableConfig{
		nested: map[string]Encoder{},
		chain:  DefaultChain(),
	}

	for _, opt := range options {
		opt(cfg)
	}

	t := &Table[T]{
		kind:       kind,
		properties: make([]property[T], 0, len(attributes)),
		chain:      cfg.chain,
	}

	declared := map[string]bool{}

	for _, name := range attributes {
		get, err := kind.accessor(name)
		if err != nil {
			return nil, err
		}

		declared[name] = true

		t.properties = append(t.properties, property[T]{
			name:   name,
			get:    get,
			nested: cfg.nested[name],
		})
	}

	for name := range cfg.nested {
		if !declared[name] {
			return nil, newMissingAttributeError(kind.Name(), name)
		}
	}

	for _, h := range cfg.hooks {
		hook, ok := h.(func(T) *Map)
		if !ok {
			return nil, fmt.Errorf("extension hook %T does not accept %s", h, kind.Name())
		}
		t.hooks = append(t.hooks, hook)
	}

	return t, nil
}

// MustTable is like NewTable but panics on error. Intended for tables built
// during program initialisation.
func MustTable[T any](kind *Kind[T], attributes []string, options ...TableOption) *Table[T] {
	t, err := NewTable(kind, attributes, options...)
	if err != nil {
		panic(fmt.Sprintf("encoding: %s", err.Error()))
	}
	return t
}

func (t *Table[T]) Kind() *Kind[T] {
	return t.kind
}

// Encode dispatches on the type of v. Instances of T are encoded as entities,
// JSON natives pass through, maps and slices are walked, and anything else is
// handed to the value codec chain.
func (t *Table[T]) Encode(v any) (any, error) {
	if o, ok := v.(T); ok {
		if isNilPointer(o) {
			return nil, nil
		}
		return t.EncodeEntity(o)
	}

	return encodeValue(v, t.chain, t)
}

// EncodeEntity builds the ordered map for a single instance of the kind
func (t *Table[T]) EncodeEntity(o T) (*Map, error) {
	m := NewMap()

	if r, ok := any(o).(Referencer); ok {
		if href, ok := r.Href(); ok {
			m.Set("href", href)
		}
	}

	for _, p := range t.properties {
		value, err := p.get(o)
		if err != nil {
			return nil, err
		}

		if p.nested != nil {
			value, err = p.nested.Encode(value)
		} else {
			value, err = t.Encode(value)
		}

		if err != nil {
			return nil, err
		}

		m.Set(p.name, value)
	}

	for _, hook := range t.hooks {
		extra := hook(o)

		var err error
		extra.Range(func(key string, value any) bool {
			value, err = t.Encode(value)
			if err != nil {
				return false
			}
			m.Set(key, value)
			return true
		})

		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// EncodeAll encodes each entity in order. An empty input gives an empty,
// non-nil result.
func (t *Table[T]) EncodeAll(items []T) ([]*Map, error) {
	result := make([]*Map, 0, len(items))

	for _, item := range items {
		m, err := t.EncodeEntity(item)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}

	return result, nil
}

// Values encodes values that are not entities, using only the value codecs
type Values struct {
	Chain Chain
}

func (ve Values) Encode(v any) (any, error) {
	chain := ve.Chain
	if chain == nil {
		chain = DefaultChain()
	}
	return encodeValue(v, chain, ve)
}

// Marshal encodes v with enc and returns the JSON representation
func Marshal(v any, enc Encoder) ([]byte, error) {
	encoded, err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(encoded)
}

func encodeValue(v any, chain Chain, self Encoder) (any, error) {
	switch value := v.(type) {
	case nil, bool, string, json.Number, json.RawMessage,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case *Map:
		if value == nil {
			return nil, nil
		}

		m := NewMap()
		var err error
		value.Range(func(key string, item any) bool {
			item, err = self.Encode(item)
			if err != nil {
				return false
			}
			m.Set(key, item)
			return true
		})

		if err != nil {
			return nil, err
		}
		return m, nil
	case map[string]any:
		m := make(map[string]any, len(value))
		for key, item := range value {
			encoded, err := self.Encode(item)
			if err != nil {
				return nil, err
			}
			m[key] = encoded
		}
		return m, nil
	case []any:
		return encodeItems(value, self)
	}

	encoded, ok := chain.Encode(v)
	if !ok {
		return encodeKind(v, self)
	}

	if items, ok := encoded.([]any); ok {
		return encodeItems(items, self)
	}

	return encoded, nil
}

// encodeKind handles values of named types whose underlying kind has a native
// JSON form, and maps with string keys. It runs after the value codecs so that
// a codec registered for a named type takes precedence.
func encodeKind(v any, self Encoder) (any, error) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32:
		return float32(rv.Float()), nil
	case reflect.Float64:
		return rv.Float(), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}

		if rv.IsNil() {
			return nil, nil
		}

		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			item, err := self.Encode(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			m[iter.Key().String()] = item
		}
		return m, nil
	}

	return nil, newUnsupportedTypeError(v)
}

func encodeItems(items []any, self Encoder) ([]any, error) {
	result := make([]any, 0, len(items))

	for _, item := range items {
		encoded, err := self.Encode(item)
		if err != nil {
			return nil, err
		}
		result = append(result, encoded)
	}

	return result, nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
