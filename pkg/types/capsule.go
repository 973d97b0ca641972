package types

// CapsuleStatus values.
const (
	CapsuleStatusNonRelease = "non_release"
	CapsuleStatusRelease    = "release"
)

// Sort orders shared by capsule and data asset searches.
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// Ownership filters shared by capsule and data asset searches.
const (
	OwnershipPrivate = "private"
	OwnershipCreated = "created"
	OwnershipShared  = "shared"
)

// Capsule is a reproducible compute capsule (or pipeline) on the platform.
type Capsule struct {
	ID              string           `json:"id"`
	Created         int64            `json:"created"`
	Name            string           `json:"name"`
	Status          string           `json:"status"`
	Owner           string           `json:"owner"`
	Slug            string           `json:"slug"`
	Article         *Article         `json:"article,omitempty"`
	ClonedFromURL   *string          `json:"cloned_from_url,omitempty"`
	Description     *string          `json:"description,omitempty"`
	ResearchField   *string          `json:"field,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	OriginalCapsule *OriginalCapsule `json:"original_capsule,omitempty"`
	ReleaseCapsule  *string          `json:"release_capsule,omitempty"`
	Versions        []CapsuleVersion `json:"versions,omitempty"`
}

// Field exposes the attributes used by search result compaction.
func (c Capsule) Field(name string) (any, bool) {
	switch name {
	case "id":
		return c.ID, true
	case "name":
		return c.Name, true
	case "slug":
		return c.Slug, true
	case "description":
		if c.Description == nil {
			return nil, true
		}
		return *c.Description, true
	case "tags":
		return c.Tags, true
	default:
		return nil, false
	}
}

// Article is the publication a capsule belongs to.
type Article struct {
	URL             *string `json:"url,omitempty"`
	ID              *string `json:"id,omitempty"`
	DOI             *string `json:"doi,omitempty"`
	Citation        *string `json:"citation,omitempty"`
	State           *string `json:"state,omitempty"`
	Name            *string `json:"name,omitempty"`
	JournalName     *string `json:"journal_name,omitempty"`
	PublishingState *string `json:"publishing_state,omitempty"`
}

// OriginalCapsule identifies the capsule a copy was made from.
type OriginalCapsule struct {
	ID             *string `json:"id,omitempty"`
	Major          *int    `json:"major,omitempty"`
	Minor          *int    `json:"minor,omitempty"`
	Name           *string `json:"name,omitempty"`
	Created        *int64  `json:"created,omitempty"`
	PublicVersions []int   `json:"public_versions,omitempty"`
}

// CapsuleVersion is one released version of a capsule.
type CapsuleVersion struct {
	Major        int     `json:"major"`
	Minor        int     `json:"minor"`
	PublishOneID *string `json:"publish_one_id,omitempty"`
	DOI          *string `json:"doi,omitempty"`
	Created      *int64  `json:"created,omitempty"`
}

// SearchFilterRange bounds a numeric filter.
type SearchFilterRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// SearchFilter narrows a search on one field.
type SearchFilter struct {
	Key     string             `json:"key"`
	Value   any                `json:"value,omitempty"`
	Values  []any              `json:"values,omitempty"`
	Range   *SearchFilterRange `json:"range,omitempty"`
	Exclude *bool              `json:"exclude,omitempty"`
}

// CapsuleSearchParams filters capsule and pipeline searches.
type CapsuleSearchParams struct {
	Query     *string        `json:"query,omitempty"`
	NextToken *string        `json:"next_token,omitempty"`
	Offset    *int           `json:"offset,omitempty"`
	Limit     *int           `json:"limit,omitempty"`
	SortField *string        `json:"sort_field,omitempty"`
	SortOrder *string        `json:"sort_order,omitempty"`
	Ownership *string        `json:"ownership,omitempty"`
	Status    *string        `json:"status,omitempty"`
	Favorite  *bool          `json:"favorite,omitempty"`
	Archived  *bool          `json:"archived,omitempty"`
	Filters   []SearchFilter `json:"filters,omitempty"`
}

// CapsuleSearchResults is one page of capsule or pipeline results.
type CapsuleSearchResults struct {
	HasMore   bool      `json:"has_more"`
	Results   []Capsule `json:"results"`
	NextToken *string   `json:"next_token,omitempty"`
}

// DataAssetAttachParams names a data asset to attach to a capsule.
type DataAssetAttachParams struct {
	ID    string  `json:"id"`
	Mount *string `json:"mount,omitempty"`
}

// DataAssetAttachResults reports the outcome of attaching one data asset.
type DataAssetAttachResults struct {
	ID         string  `json:"id"`
	Mount      *string `json:"mount,omitempty"`
	Ready      bool    `json:"ready"`
	MountState *string `json:"mount_state,omitempty"`
	JobID      *string `json:"job_id,omitempty"`
	ExternalID *string `json:"external,omitempty"`
}

// AttachResults wraps the outcome of an attach request.
type AttachResults struct {
	Results []DataAssetAttachResults `json:"results"`
}
