package models

import (
	"fmt"
	"sort"

	"github.com/xiy/codeocean-mcp/internal/schema"
)

// Set is the derived schema for every registered descriptor.
type Set struct {
	cache   *schema.Cache
	schemas map[string]*schema.Schema
}

// Build derives every registered descriptor into one shared cache.
func Build() (*Set, error) {
	cache := schema.NewCache()
	set := &Set{cache: cache, schemas: map[string]*schema.Schema{}}
	for _, name := range Names() {
		d, _ := Namespace.Lookup(name)
		s, err := schema.Derive(d, cache)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", name, err)
		}
		set.schemas[name] = s
	}
	return set, nil
}

// Names lists registered descriptor names in sorted order.
func Names() []string {
	names := Namespace.Names()
	sort.Strings(names)
	return names
}

// Schema returns the derived schema for d.
func (s *Set) Schema(d *schema.Descriptor) *schema.Schema {
	if d == nil {
		return nil
	}
	return s.schemas[d.Name]
}

// Lookup returns the derived schema registered under name.
func (s *Set) Lookup(name string) (*schema.Schema, bool) {
	out, ok := s.schemas[name]
	return out, ok
}

// Len reports the number of derived schemas.
func (s *Set) Len() int { return len(s.schemas) }
