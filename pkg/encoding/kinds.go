package encoding

// Referencer is implemented by entities that may expose a canonical reference.
// The reference is written under "href" ahead of any other key.
type Referencer interface {
	Href() (string, bool)
}

// AttributeReader lets an entity resolve attributes by name at encode time,
// for kinds whose attribute set is not known up front.
type AttributeReader interface {
	Attribute(name string) (any, bool)
}

type Attribute[T any] struct {
	name string
	get  func(T) any
}

// Attr declares a named attribute together with its read function
func Attr[T any](name string, get func(T) any) Attribute[T] {
	return Attribute[T]{name: name, get: get}
}

// Kind describes an entity kind: its name and the attributes that can be read
// from instances of it.
type Kind[T any] struct {
	name  string
	attrs map[string]func(T) any
}

func NewKind[T any](name string, attributes ...Attribute[T]) *Kind[T] {
	k := &Kind[T]{
		name:  name,
		attrs: make(map[string]func(T) any, len(attributes)),
	}

	for _, a := range attributes {
		k.attrs[a.name] = a.get
	}

	return k
}

func (k *Kind[T]) Name() string {
	return k.name
}

func (k *Kind[T]) Has(attribute string) bool {
	_, ok := k.attrs[attribute]
	return ok
}

// accessor resolves an attribute name to a read function. Names the kind does
// not declare are only resolvable when T reads its own attributes.
func (k *Kind[T]) accessor(attribute string) (func(T) (any, error), error) {
	if get, ok := k.attrs[attribute]; ok {
		return func(o T) (any, error) { return get(o), nil }, nil
	}

	var zero T
	if _, ok := any(zero).(AttributeReader); !ok {
		return nil, newMissingAttributeError(k.name, attribute)
	}

	return func(o T) (any, error) {
		reader, ok := any(o).(AttributeReader)
		if !ok {
			return nil, newMissingAttributeError(k.name, attribute)
		}

		value, ok := reader.Attribute(attribute)
		if !ok {
			return nil, newMissingAttributeError(k.name, attribute)
		}

		return value, nil
	}, nil
}
