package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchParams struct {
	Query     string   `json:"query,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	SortOrder string   `json:"sort_order,omitempty"`
	Archived  *bool    `json:"archived,omitempty"`
	Filters   []filter `json:"filters,omitempty"`
}

type filter struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

func searchDescriptor() *Descriptor {
	ns := NewNamespace()
	ns.Register(&Descriptor{Name: "Filter", Fields: []Field{
		{Name: "key", Type: String(), Required: true},
		{Name: "value", Type: String()},
	}})
	return ns.Register(&Descriptor{Name: "SearchParams", Fields: []Field{
		{Name: "query", Type: String()},
		{Name: "limit", Type: Integer(), Default: 100},
		{Name: "sort_order", Type: Enum("asc", "desc")},
		{Name: "archived", Type: Boolean()},
		{Name: "filters", Type: ListOf(Ref("Filter"))},
	}})
}

func TestDecode_AppliesDefaultsAndNestedRecords(t *testing.T) {
	t.Parallel()
	s := MustDerive(searchDescriptor(), nil)

	var got searchParams
	err := s.Decode(json.RawMessage(`{"query":"DNA","filters":[{"key":"tags","value":"brain"}]}`), &got)
	require.NoError(t, err)
	assert.Equal(t, "DNA", got.Query)
	assert.Equal(t, 100, got.Limit)
	require.Len(t, got.Filters, 1)
	assert.Equal(t, filter{Key: "tags", Value: "brain"}, got.Filters[0])
}

func TestDecode_EmptyInputIsEmptyObject(t *testing.T) {
	t.Parallel()
	s := MustDerive(searchDescriptor(), nil)

	var got searchParams
	require.NoError(t, s.Decode(nil, &got))
	assert.Equal(t, 100, got.Limit)
}

func TestDecode_AcceptsNullForOptionalFields(t *testing.T) {
	t.Parallel()
	s := MustDerive(searchDescriptor(), nil)

	var got searchParams
	require.NoError(t, s.Decode(json.RawMessage(`{"archived":null,"sort_order":null}`), &got))
	assert.Nil(t, got.Archived)
}

func TestDecode_RejectsTypeMismatch(t *testing.T) {
	t.Parallel()
	s := MustDerive(searchDescriptor(), nil)

	cases := []string{
		`{"limit":"ten"}`,
		`{"limit":1.5}`,
		`{"sort_order":"sideways"}`,
		`{"archived":"yes"}`,
		`{"filters":[{"value":"missing key"}]}`,
		`{"filters":{"key":"not a list"}}`,
		`[1,2,3]`,
	}
	for _, in := range cases {
		var got searchParams
		err := s.Decode(json.RawMessage(in), &got)
		assert.Error(t, err, in)
	}
}

func TestDecode_RejectsMalformedJSON(t *testing.T) {
	t.Parallel()
	s := MustDerive(searchDescriptor(), nil)
	var got searchParams
	assert.Error(t, s.Decode(json.RawMessage(`{"query":`), &got))
}

func TestJSON_DocumentShape(t *testing.T) {
	t.Parallel()
	s := MustDerive(searchDescriptor(), nil)

	doc := s.JSON()
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, "SearchParamsModel", doc["title"])

	defs, ok := doc["$defs"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, defs, "FilterModel")

	props := doc["properties"].(map[string]any)
	limit := props["limit"].(map[string]any)
	assert.Equal(t, 100, limit["default"])
	assert.Equal(t, []any{"integer", "null"}, limit["type"])

	filters := props["filters"].(map[string]any)
	items := filters["items"].(map[string]any)
	assert.Equal(t, "#/$defs/FilterModel", items["$ref"])

	filterDef := defs["FilterModel"].(map[string]any)
	assert.Equal(t, []string{"key"}, filterDef["required"])
}

func TestApplyDefaults_IgnoresNonObjects(t *testing.T) {
	t.Parallel()
	s := MustDerive(searchDescriptor(), nil)
	assert.NotPanics(t, func() {
		s.ApplyDefaults("text")
		s.ApplyDefaults(nil)
		s.ApplyDefaults(map[string]any{"filters": "not a list"})
	})
}
