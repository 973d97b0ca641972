package compact

import "fmt"

// Record exposes named fields of a search result item, whatever its
// concrete shape.
type Record interface {
	Field(name string) (any, bool)
}

// Map adapts a mapping-shaped item, such as a decoded JSON object.
type Map map[string]any

// Field implements Record.
func (m Map) Field(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Records adapts a slice of any Record implementation.
func Records[T Record](items []T) []Record {
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

const (
	fieldID          = "id"
	fieldName        = "name"
	fieldSlug        = "slug"
	fieldDescription = "description"
	fieldTags        = "tags"
)

// fieldDefaults is used when an item lacks a field or holds null for it.
var fieldDefaults = map[string]any{
	fieldID:          "",
	fieldName:        "",
	fieldSlug:        "",
	fieldDescription: nil,
	fieldTags:        []string{},
}

func lookup(item Record, name string) any {
	if item == nil {
		return fieldDefaults[name]
	}
	v, ok := item.Field(name)
	if !ok || v == nil {
		return fieldDefaults[name]
	}
	return v
}

func textField(item Record, name string) string {
	switch v := lookup(item, name).(type) {
	case string:
		return v
	case *string:
		if v == nil {
			return fieldDefaults[name].(string)
		}
		return *v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func optionalTextField(item Record, name string) string {
	switch v := lookup(item, name).(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	default:
		return fmt.Sprint(v)
	}
}

func tagsField(item Record) []string {
	switch v := lookup(item, fieldTags).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, tag := range v {
			if s, ok := tag.(string); ok {
				out = append(out, s)
				continue
			}
			if tag != nil {
				out = append(out, fmt.Sprint(tag))
			}
		}
		return out
	default:
		return nil
	}
}
