// Package compact turns pages of platform search results into a small
// tabular form for LLM consumption: fixed columns, truncated
// descriptions, capped tag lists and pagination metadata.
package compact

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	MaxDescriptionLength = 200
	MaxTagsCount         = 10
	TruncationSuffix     = "...(more)"
	TagsTruncationMarker = "..more.."
)

// ResultType names the kind of item in a compact table.
type ResultType string

const (
	ResultCapsule   ResultType = "capsule"
	ResultPipeline  ResultType = "pipeline"
	ResultDataAsset ResultType = "data_asset"
)

// includesSlug reports whether rows of this kind carry a slug column.
func (rt ResultType) includesSlug() bool {
	return rt == ResultCapsule || rt == ResultPipeline
}

var (
	capsuleColumns   = []string{"id", "name", "slug", "description", "tags"}
	dataAssetColumns = []string{"id", "name", "description", "tags"}
)

// CapsuleColumns returns the column set shared by capsules and pipelines.
func CapsuleColumns() []string { return append([]string(nil), capsuleColumns...) }

// DataAssetColumns returns the column set of data assets.
func DataAssetColumns() []string { return append([]string(nil), dataAssetColumns...) }

// Columns returns the column set for rt.
func Columns(rt ResultType) []string {
	if rt.includesSlug() {
		return CapsuleColumns()
	}
	return DataAssetColumns()
}

// Row is one result item; its length always matches the column set.
type Row []any

// SearchMeta describes the page a table was built from.
type SearchMeta struct {
	HasMore       bool       `json:"has_more"`
	NextToken     *string    `json:"next_token"`
	TotalReturned int        `json:"total_returned"`
	ResultType    ResultType `json:"result_type"`
}

// Table is the compact form of one search page.
type Table struct {
	Cols []string   `json:"cols"`
	Rows []Row      `json:"rows"`
	Meta SearchMeta `json:"meta"`
}

// Compactor applies configurable truncation limits.
type Compactor struct {
	MaxDescriptionLength int
	MaxTagsCount         int
}

// Default uses the standard limits.
var Default = Compactor{
	MaxDescriptionLength: MaxDescriptionLength,
	MaxTagsCount:         MaxTagsCount,
}

// New returns a Compactor, substituting the standard limit for any
// non-positive value.
func New(maxDescriptionLength, maxTagsCount int) Compactor {
	c := Default
	if maxDescriptionLength > 0 {
		c.MaxDescriptionLength = maxDescriptionLength
	}
	if maxTagsCount > 0 {
		c.MaxTagsCount = maxTagsCount
	}
	return c
}

// Row extracts the compact row for item.
func (c Compactor) Row(item Record, includeSlug bool) Row {
	id := textField(item, fieldID)
	name := textField(item, fieldName)
	var description any
	if d := TruncateDescription(optionalTextField(item, fieldDescription), c.MaxDescriptionLength); d != nil {
		description = *d
	}
	tags := LimitTags(tagsField(item), c.MaxTagsCount)

	if includeSlug {
		return Row{id, name, textField(item, fieldSlug), description, tags}
	}
	return Row{id, name, description, tags}
}

// Table builds the compact table for one page of results, preserving
// input order.
func (c Compactor) Table(results []Record, hasMore bool, nextToken *string, rt ResultType) Table {
	includeSlug := rt.includesSlug()
	rows := make([]Row, 0, len(results))
	for _, item := range results {
		rows = append(rows, c.Row(item, includeSlug))
	}
	return Table{
		Cols: Columns(rt),
		Rows: rows,
		Meta: SearchMeta{
			HasMore:       hasMore,
			NextToken:     nextToken,
			TotalReturned: len(rows),
			ResultType:    rt,
		},
	}
}

// ExtractRow is Default.Row.
func ExtractRow(item Record, includeSlug bool) Row {
	return Default.Row(item, includeSlug)
}

// ToTable is Default.Table.
func ToTable(results []Record, hasMore bool, nextToken *string, rt ResultType) Table {
	return Default.Table(results, hasMore, nextToken, rt)
}

var longWhitespace = regexp.MustCompile(`[\s\v\p{Z}\x{85}]{3,}`)

// TruncateDescription normalises text and shortens it to at most
// maxLength characters, cutting at a word boundary when one lies in the
// second half of the allowance. It returns nil when nothing but
// whitespace remains. A non-positive maxLength yields an empty string
// for any non-blank text.
func TruncateDescription(text string, maxLength int) *string {
	if text == "" {
		return nil
	}
	normalized := strings.TrimSpace(longWhitespace.ReplaceAllString(text, " "))
	if normalized == "" {
		return nil
	}
	maxLength = max(maxLength, 0)

	runes := []rune(normalized)
	if len(runes) <= maxLength {
		return &normalized
	}

	suffix := []rune(TruncationSuffix)
	truncateAt := maxLength - len(suffix)
	if truncateAt <= 0 {
		out := string(suffix[:maxLength])
		return &out
	}

	cutAt := truncateAt
	if lastSpace := lastSpaceBefore(runes, truncateAt); lastSpace > maxLength/2 {
		cutAt = lastSpace
	}
	out := strings.TrimRightFunc(string(runes[:cutAt]), unicode.IsSpace) + TruncationSuffix
	return &out
}

// lastSpaceBefore returns the index of the last ' ' in runes[:end], or -1.
func lastSpaceBefore(runes []rune, end int) int {
	for i := end - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}

// LimitTags caps tags at maxCount entries, replacing the overflow with a
// single marker. The result is always a new slice and never nil. A
// maxCount below one is treated as one.
func LimitTags(tags []string, maxCount int) []string {
	if len(tags) == 0 {
		return []string{}
	}
	maxCount = max(maxCount, 1)
	if len(tags) <= maxCount {
		return append([]string(nil), tags...)
	}
	out := make([]string, 0, maxCount)
	out = append(out, tags[:maxCount-1]...)
	return append(out, TagsTruncationMarker)
}
