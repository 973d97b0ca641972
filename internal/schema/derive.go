// Package schema derives validating JSON Schemas from declarative record
// descriptors. Derivation is memoised per descriptor so shared nested
// records yield one schema value and self-referential records terminate.
package schema

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotRecord reports a descriptor that is not a usable structured record.
	ErrNotRecord = errors.New("not a structured record")
	// ErrUnresolvedRef reports a forward reference whose name is not registered.
	ErrUnresolvedRef = errors.New("unresolved type reference")
)

// Cache maps descriptors to their derived schemas. The zero value is not
// usable; call NewCache. A Cache is safe for concurrent use: each
// derivation holds the cache lock until it returns.
type Cache struct {
	mu      sync.Mutex
	schemas map[*Descriptor]*Schema
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{schemas: map[*Descriptor]*Schema{}}
}

// Get returns the cached schema for d.
func (c *Cache) Get(d *Descriptor) (*Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schemas[d]
	return s, ok
}

// Len reports the number of cached schemas.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.schemas)
}

// Derive returns the schema for d, building it and every record it
// reaches on first use. A nil cache derives into a fresh one.
func Derive(d *Descriptor, cache *Cache) (*Schema, error) {
	if cache == nil {
		cache = NewCache()
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()

	r := &run{schemas: cache.schemas}
	s, err := r.derive(d)
	if err == nil {
		err = r.finalize()
	}
	if err != nil {
		// Nothing half-built may stay visible to later derivations.
		for _, b := range r.built {
			delete(cache.schemas, b.desc)
		}
		return nil, err
	}
	return s, nil
}

// MustDerive is like Derive but panics on error. It is meant for
// package-level and startup registration where a bad descriptor is a
// programming error.
func MustDerive(d *Descriptor, cache *Cache) *Schema {
	s, err := Derive(d, cache)
	if err != nil {
		panic(fmt.Sprintf("schema: derive %s: %v", descriptorName(d), err))
	}
	return s
}

type run struct {
	schemas map[*Descriptor]*Schema
	built   []*Schema
}

func (r *run) derive(d *Descriptor) (*Schema, error) {
	if s, ok := r.schemas[d]; ok {
		return s, nil
	}
	if err := d.check(); err != nil {
		return nil, err
	}

	// Publish before walking fields so cycles find the in-progress schema.
	s := &Schema{name: d.Name + "Model", desc: d}
	r.schemas[d] = s
	r.built = append(r.built, s)

	fields := make([]SchemaField, 0, len(d.Fields))
	for _, f := range d.Fields {
		t, err := r.resolve(d, f.Name, f.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, SchemaField{
			Name:        f.Name,
			Type:        t,
			Description: f.Description,
			Required:    f.Required,
			Default:     f.Default,
		})
	}
	s.fields = fields
	return s, nil
}

func (r *run) resolve(owner *Descriptor, field string, ft FieldType) (Type, error) {
	switch {
	case ft.Kind == KindScalar:
		return Type{Kind: KindScalar, Scalar: ft.Scalar, Enum: ft.Enum}, nil
	case ft.Kind == KindRecord:
		nested, err := r.record(owner, field, ft)
		if err != nil {
			return Type{}, err
		}
		return Type{Kind: KindRecord, Record: nested}, nil
	case ft.Kind == KindList && ft.Elem != nil && ft.Elem.Kind == KindRecord:
		nested, err := r.record(owner, field, *ft.Elem)
		if err != nil {
			return Type{}, err
		}
		return Type{Kind: KindList, Elem: &Type{Kind: KindRecord, Record: nested}}, nil
	default:
		return passthrough(ft), nil
	}
}

func (r *run) record(owner *Descriptor, field string, ft FieldType) (*Schema, error) {
	target := ft.Record
	if target == nil {
		if ft.Ref == "" {
			return nil, fmt.Errorf("%w: %s.%s declares a record without a type", ErrNotRecord, owner.Name, field)
		}
		d, ok := owner.Namespace.Lookup(ft.Ref)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s refers to %q", ErrUnresolvedRef, owner.Name, field, ft.Ref)
		}
		target = d
	}
	return r.derive(target)
}

// finalize renders and compiles every schema built during the run. It
// runs after the outermost derive so records inside a cycle see their
// siblings fully assembled.
func (r *run) finalize() error {
	for _, s := range r.built {
		if err := s.compile(); err != nil {
			return fmt.Errorf("compile %s: %w", s.name, err)
		}
	}
	return nil
}

// passthrough keeps a declared type as-is. Records nested inside it are
// not derived and validate as plain objects.
func passthrough(ft FieldType) Type {
	switch ft.Kind {
	case KindScalar:
		return Type{Kind: KindScalar, Scalar: ft.Scalar, Enum: ft.Enum}
	case KindList, KindMap:
		t := Type{Kind: ft.Kind}
		if ft.Elem != nil {
			elem := passthrough(*ft.Elem)
			t.Elem = &elem
		}
		return t
	case KindRecord:
		return Type{Kind: KindMap}
	default:
		return Type{Kind: KindAny}
	}
}

func descriptorName(d *Descriptor) string {
	if d == nil {
		return "<nil>"
	}
	return d.Name
}
