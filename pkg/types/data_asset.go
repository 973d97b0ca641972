package types

// Data asset states.
const (
	DataAssetStateDraft  = "draft"
	DataAssetStateReady  = "ready"
	DataAssetStateFailed = "failed"
)

// Data asset types.
const (
	DataAssetTypeDataset = "dataset"
	DataAssetTypeResult  = "result"
	DataAssetTypeModel   = "model"
)

// Data asset origins.
const (
	OriginInternal = "internal"
	OriginExternal = "external"
)

// DataAsset is a dataset, result or model stored on the platform.
type DataAsset struct {
	ID             string         `json:"id"`
	Created        int64          `json:"created"`
	Name           string         `json:"name"`
	Mount          string         `json:"mount"`
	State          string         `json:"state"`
	Type           string         `json:"type"`
	LastUsed       int64          `json:"last_used"`
	Description    *string        `json:"description,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Files          *int64         `json:"files,omitempty"`
	Size           *int64         `json:"size,omitempty"`
	SourceBucket   *SourceBucket  `json:"source_bucket,omitempty"`
	Provenance     *Provenance    `json:"provenance,omitempty"`
	CustomMetadata map[string]any `json:"custom_metadata,omitempty"`
	Owner          *string        `json:"owner,omitempty"`
}

// Field exposes the attributes used by search result compaction.
func (d DataAsset) Field(name string) (any, bool) {
	switch name {
	case "id":
		return d.ID, true
	case "name":
		return d.Name, true
	case "description":
		if d.Description == nil {
			return nil, true
		}
		return *d.Description, true
	case "tags":
		return d.Tags, true
	default:
		return nil, false
	}
}

// Ready reports whether the asset finished (successfully or not) building.
func (d DataAsset) Ready() bool {
	return d.State == DataAssetStateReady || d.State == DataAssetStateFailed
}

// SourceBucket locates an external asset's storage.
type SourceBucket struct {
	Origin   string  `json:"origin"`
	Bucket   *string `json:"bucket,omitempty"`
	Prefix   *string `json:"prefix,omitempty"`
	External *bool   `json:"external,omitempty"`
}

// Provenance records how a result asset was produced.
type Provenance struct {
	Commit      *string  `json:"commit,omitempty"`
	Run         *string  `json:"run_script,omitempty"`
	Docker      *string  `json:"docker_image,omitempty"`
	Capsule     *string  `json:"capsule,omitempty"`
	DataAssets  []string `json:"data_assets,omitempty"`
	Computation *string  `json:"computation,omitempty"`
}

// DataAssetSearchParams filters data asset searches.
type DataAssetSearchParams struct {
	Query     *string        `json:"query,omitempty"`
	NextToken *string        `json:"next_token,omitempty"`
	Offset    *int           `json:"offset,omitempty"`
	Limit     *int           `json:"limit,omitempty"`
	SortField *string        `json:"sort_field,omitempty"`
	SortOrder *string        `json:"sort_order,omitempty"`
	Type      *string        `json:"type,omitempty"`
	Ownership *string        `json:"ownership,omitempty"`
	Origin    *string        `json:"origin,omitempty"`
	Favorite  *bool          `json:"favorite,omitempty"`
	Archived  *bool          `json:"archived,omitempty"`
	Filters   []SearchFilter `json:"filters,omitempty"`
}

// DataAssetSearchResults is one page of data asset results.
type DataAssetSearchResults struct {
	HasMore   bool        `json:"has_more"`
	Results   []DataAsset `json:"results"`
	NextToken *string     `json:"next_token,omitempty"`
}

// DataAssetUpdateParams changes a data asset's metadata.
type DataAssetUpdateParams struct {
	Name           *string        `json:"name,omitempty"`
	Description    *string        `json:"description,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Mount          *string        `json:"mount,omitempty"`
	CustomMetadata map[string]any `json:"custom_metadata,omitempty"`
}

// AWSS3Source imports an asset from an S3 bucket.
type AWSS3Source struct {
	Bucket                string  `json:"bucket"`
	Prefix                *string `json:"prefix,omitempty"`
	KeepOnExternalStorage *bool   `json:"keep_on_external_storage,omitempty"`
	Public                *bool   `json:"public,omitempty"`
}

// ComputationSource captures a computation's results as an asset.
type ComputationSource struct {
	ID   string  `json:"id"`
	Path *string `json:"path,omitempty"`
}

// Source describes where a new data asset's content comes from.
type Source struct {
	AWS         *AWSS3Source       `json:"aws,omitempty"`
	Computation *ComputationSource `json:"computation,omitempty"`
}

// DataAssetParams creates a data asset.
type DataAssetParams struct {
	Name           string         `json:"name"`
	Tags           []string       `json:"tags"`
	Mount          string         `json:"mount"`
	Description    *string        `json:"description,omitempty"`
	Source         *Source        `json:"source,omitempty"`
	CustomMetadata map[string]any `json:"custom_metadata,omitempty"`
}

// FolderItem is a file or folder; folders list their children.
type FolderItem struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Type     string       `json:"type"`
	Size     *int64       `json:"size,omitempty"`
	Children []FolderItem `json:"children,omitempty"`
}

// Folder lists the contents of a data asset or result directory.
type Folder struct {
	Items []FolderItem `json:"items"`
}

// DownloadFileURL is a time-limited download link.
type DownloadFileURL struct {
	URL string `json:"url"`
}

// FileContent is the leading text of a downloaded file.
type FileContent struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
}
