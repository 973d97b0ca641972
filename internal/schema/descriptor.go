package schema

import (
	"fmt"
	"sync"
)

// Kind classifies a declared field type.
type Kind int

const (
	KindScalar Kind = iota
	KindRecord
	KindList
	KindMap
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindAny:
		return "any"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Scalar names a JSON scalar type.
type Scalar string

const (
	ScalarString  Scalar = "string"
	ScalarInteger Scalar = "integer"
	ScalarNumber  Scalar = "number"
	ScalarBoolean Scalar = "boolean"
)

// FieldType is the declared type of a record field. A nested record is
// given either directly (Record) or by name (Ref); names resolve against
// the owning descriptor's Namespace at derivation time.
type FieldType struct {
	Kind   Kind
	Scalar Scalar
	Enum   []string
	Record *Descriptor
	Ref    string
	Elem   *FieldType
}

// String returns a scalar string type.
func String() FieldType { return FieldType{Kind: KindScalar, Scalar: ScalarString} }

// Integer returns a scalar integer type.
func Integer() FieldType { return FieldType{Kind: KindScalar, Scalar: ScalarInteger} }

// Number returns a scalar number type.
func Number() FieldType { return FieldType{Kind: KindScalar, Scalar: ScalarNumber} }

// Boolean returns a scalar boolean type.
func Boolean() FieldType { return FieldType{Kind: KindScalar, Scalar: ScalarBoolean} }

// Enum returns a string type restricted to values.
func Enum(values ...string) FieldType {
	return FieldType{Kind: KindScalar, Scalar: ScalarString, Enum: values}
}

// Record returns a nested record type bound to d.
func Record(d *Descriptor) FieldType { return FieldType{Kind: KindRecord, Record: d} }

// Ref returns a nested record type that is looked up by name when the
// schema is derived.
func Ref(name string) FieldType { return FieldType{Kind: KindRecord, Ref: name} }

// ListOf returns a list type with elem items.
func ListOf(elem FieldType) FieldType { return FieldType{Kind: KindList, Elem: &elem} }

// MapOf returns a string-keyed map type with elem values.
func MapOf(elem FieldType) FieldType { return FieldType{Kind: KindMap, Elem: &elem} }

// Any returns an unconstrained type.
func Any() FieldType { return FieldType{Kind: KindAny} }

// Field is one named field of a record.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	// Required fields have no default; optional fields accept null and
	// take Default when absent.
	Required bool
	Default  any
}

// Descriptor is a static description of a structured record type.
type Descriptor struct {
	Name        string
	Description string
	Fields      []Field
	Namespace   *Namespace
}

// Namespace resolves record names used by forward references.
type Namespace struct {
	mu    sync.RWMutex
	types map[string]*Descriptor
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{types: map[string]*Descriptor{}}
}

// Register adds d to the namespace under d.Name and binds d to it.
// Registering a second descriptor under the same name panics; this only
// happens at package initialisation.
func (ns *Namespace) Register(d *Descriptor) *Descriptor {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if _, ok := ns.types[d.Name]; ok {
		panic(fmt.Sprintf("schema: duplicate record %q in namespace", d.Name))
	}
	ns.types[d.Name] = d
	d.Namespace = ns
	return d
}

// Lookup returns the descriptor registered under name.
func (ns *Namespace) Lookup(name string) (*Descriptor, bool) {
	if ns == nil {
		return nil, false
	}
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	d, ok := ns.types[name]
	return d, ok
}

// Names lists registered record names in no particular order.
func (ns *Namespace) Names() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	out := make([]string, 0, len(ns.types))
	for name := range ns.types {
		out = append(out, name)
	}
	return out
}

func (d *Descriptor) check() error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrNotRecord)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: descriptor has no name", ErrNotRecord)
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for i, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s field %d has no name", ErrNotRecord, d.Name, i)
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: %s declares field %q twice", ErrNotRecord, d.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}
