// Package models declares the record descriptors for platform types and
// tool arguments. Every descriptor is registered in Namespace so that
// forward references by name resolve during derivation.
package models

import "github.com/xiy/codeocean-mcp/internal/schema"

// Namespace holds every descriptor declared in this package.
var Namespace = schema.NewNamespace()

func register(d *schema.Descriptor) *schema.Descriptor {
	return Namespace.Register(d)
}

func required(name string, t schema.FieldType, desc string) schema.Field {
	return schema.Field{Name: name, Type: t, Description: desc, Required: true}
}

func optional(name string, t schema.FieldType, desc string) schema.Field {
	return schema.Field{Name: name, Type: t, Description: desc}
}

func withDefault(name string, t schema.FieldType, def any, desc string) schema.Field {
	return schema.Field{Name: name, Type: t, Description: desc, Default: def}
}

var (
	sortOrder = schema.Enum("asc", "desc")
	ownership = schema.Enum("private", "created", "shared")
)

// Capsules.
var (
	Article = register(&schema.Descriptor{
		Name: "Article",
		Fields: []schema.Field{
			optional("url", schema.String(), ""),
			optional("id", schema.String(), ""),
			optional("doi", schema.String(), ""),
			optional("citation", schema.String(), ""),
			optional("state", schema.String(), ""),
			optional("name", schema.String(), ""),
			optional("journal_name", schema.String(), ""),
			optional("publishing_state", schema.String(), ""),
		},
	})

	OriginalCapsule = register(&schema.Descriptor{
		Name: "OriginalCapsule",
		Fields: []schema.Field{
			optional("id", schema.String(), ""),
			optional("major", schema.Integer(), ""),
			optional("minor", schema.Integer(), ""),
			optional("name", schema.String(), ""),
			optional("created", schema.Integer(), ""),
			optional("public_versions", schema.ListOf(schema.Integer()), ""),
		},
	})

	CapsuleVersion = register(&schema.Descriptor{
		Name: "CapsuleVersion",
		Fields: []schema.Field{
			required("major", schema.Integer(), ""),
			required("minor", schema.Integer(), ""),
			optional("publish_one_id", schema.String(), ""),
			optional("doi", schema.String(), ""),
			optional("created", schema.Integer(), ""),
		},
	})

	Capsule = register(&schema.Descriptor{
		Name:        "Capsule",
		Description: "A reproducible compute capsule or pipeline.",
		Fields: []schema.Field{
			required("id", schema.String(), "Capsule ID."),
			required("created", schema.Integer(), "Creation time in seconds since the epoch."),
			required("name", schema.String(), ""),
			required("status", schema.Enum("non_release", "release"), ""),
			required("owner", schema.String(), "Owner user ID."),
			required("slug", schema.String(), "Short alternate identifier."),
			optional("article", schema.Record(Article), ""),
			optional("cloned_from_url", schema.String(), ""),
			optional("description", schema.String(), ""),
			optional("field", schema.String(), "Research field."),
			optional("tags", schema.ListOf(schema.String()), ""),
			optional("original_capsule", schema.Record(OriginalCapsule), ""),
			optional("release_capsule", schema.String(), ""),
			optional("versions", schema.ListOf(schema.Record(CapsuleVersion)), ""),
		},
	})

	SearchFilterRange = register(&schema.Descriptor{
		Name: "SearchFilterRange",
		Fields: []schema.Field{
			optional("min", schema.Number(), ""),
			optional("max", schema.Number(), ""),
		},
	})

	SearchFilter = register(&schema.Descriptor{
		Name:        "SearchFilter",
		Description: "Narrows a search to items whose key matches value, values or range.",
		Fields: []schema.Field{
			required("key", schema.String(), "Field to filter on."),
			optional("value", schema.Any(), ""),
			optional("values", schema.ListOf(schema.Any()), ""),
			optional("range", schema.Record(SearchFilterRange), ""),
			optional("exclude", schema.Boolean(), "Exclude matching items instead."),
		},
	})

	CapsuleSearchParams = register(&schema.Descriptor{
		Name: "CapsuleSearchParams",
		Fields: []schema.Field{
			optional("query", schema.String(), "Free text search query."),
			optional("next_token", schema.String(), "Token from a previous page."),
			optional("offset", schema.Integer(), ""),
			optional("limit", schema.Integer(), "Maximum results per page."),
			optional("sort_field", schema.Enum("created", "type", "name", "last_accessed"), ""),
			optional("sort_order", sortOrder, ""),
			optional("ownership", ownership, ""),
			optional("status", schema.Enum("non_release", "release"), ""),
			optional("favorite", schema.Boolean(), ""),
			optional("archived", schema.Boolean(), ""),
			optional("filters", schema.ListOf(schema.Record(SearchFilter)), ""),
		},
	})

	CapsuleSearchResults = register(&schema.Descriptor{
		Name: "CapsuleSearchResults",
		Fields: []schema.Field{
			required("has_more", schema.Boolean(), ""),
			required("results", schema.ListOf(schema.Record(Capsule)), ""),
			optional("next_token", schema.String(), ""),
		},
	})

	DataAssetAttachParams = register(&schema.Descriptor{
		Name: "DataAssetAttachParams",
		Fields: []schema.Field{
			required("id", schema.String(), "Data asset ID."),
			optional("mount", schema.String(), "Mount folder under /data."),
		},
	})

	DataAssetAttachResults = register(&schema.Descriptor{
		Name: "DataAssetAttachResults",
		Fields: []schema.Field{
			required("id", schema.String(), ""),
			optional("mount", schema.String(), ""),
			required("ready", schema.Boolean(), ""),
			optional("mount_state", schema.String(), ""),
			optional("job_id", schema.String(), ""),
			optional("external", schema.String(), ""),
		},
	})
)

// Computations.
var (
	ComputationDataAsset = register(&schema.Descriptor{
		Name: "ComputationDataAsset",
		Fields: []schema.Field{
			optional("id", schema.String(), ""),
			optional("mount", schema.String(), ""),
		},
	})

	Param = register(&schema.Descriptor{
		Name: "Param",
		Fields: []schema.Field{
			optional("name", schema.String(), ""),
			optional("param_name", schema.String(), ""),
			optional("value", schema.String(), ""),
		},
	})

	Computation = register(&schema.Descriptor{
		Name:        "Computation",
		Description: "One run of a capsule or pipeline.",
		Fields: []schema.Field{
			required("id", schema.String(), "Computation ID."),
			required("created", schema.Integer(), ""),
			required("name", schema.String(), ""),
			required("run_time", schema.Integer(), "Run time in seconds."),
			required("state", schema.Enum("initializing", "running", "finalizing", "completed", "failed"), ""),
			optional("cloud_workstation", schema.Boolean(), ""),
			optional("data_assets", schema.ListOf(schema.Record(ComputationDataAsset)), ""),
			optional("end_status", schema.Enum("stopped", "failed", "succeeded"), ""),
			optional("exit_code", schema.Integer(), ""),
			optional("has_results", schema.Boolean(), ""),
			optional("parameters", schema.ListOf(schema.Record(Param)), ""),
			optional("nextflow_profile", schema.String(), ""),
		},
	})

	DataAssetsRunParam = register(&schema.Descriptor{
		Name: "DataAssetsRunParam",
		Fields: []schema.Field{
			required("id", schema.String(), "Data asset ID."),
			required("mount", schema.String(), "Mount folder under /data."),
		},
	})

	NamedRunParam = register(&schema.Descriptor{
		Name: "NamedRunParam",
		Fields: []schema.Field{
			required("param_name", schema.String(), ""),
			required("value", schema.String(), ""),
		},
	})

	RunParams = register(&schema.Descriptor{
		Name:        "RunParams",
		Description: "Starts a computation. Set capsule_id or pipeline_id.",
		Fields: []schema.Field{
			optional("capsule_id", schema.String(), ""),
			optional("pipeline_id", schema.String(), ""),
			optional("version", schema.Integer(), "Released capsule version to run."),
			optional("resume_run_id", schema.String(), ""),
			optional("data_assets", schema.ListOf(schema.Record(DataAssetsRunParam)), ""),
			optional("parameters", schema.ListOf(schema.String()), "Ordered parameters."),
			optional("named_parameters", schema.ListOf(schema.Record(NamedRunParam)), ""),
		},
	})
)

// Data assets.
var (
	SourceBucket = register(&schema.Descriptor{
		Name: "SourceBucket",
		Fields: []schema.Field{
			required("origin", schema.Enum("aws", "local", "gcp"), ""),
			optional("bucket", schema.String(), ""),
			optional("prefix", schema.String(), ""),
			optional("external", schema.Boolean(), ""),
		},
	})

	Provenance = register(&schema.Descriptor{
		Name: "Provenance",
		Fields: []schema.Field{
			optional("commit", schema.String(), ""),
			optional("run_script", schema.String(), ""),
			optional("docker_image", schema.String(), ""),
			optional("capsule", schema.String(), ""),
			optional("data_assets", schema.ListOf(schema.String()), ""),
			optional("computation", schema.String(), ""),
		},
	})

	DataAsset = register(&schema.Descriptor{
		Name:        "DataAsset",
		Description: "A dataset, result or model.",
		Fields: []schema.Field{
			required("id", schema.String(), "Data asset ID."),
			required("created", schema.Integer(), ""),
			required("name", schema.String(), ""),
			required("mount", schema.String(), ""),
			required("state", schema.Enum("draft", "ready", "failed"), ""),
			required("type", schema.Enum("dataset", "result", "model"), ""),
			required("last_used", schema.Integer(), ""),
			optional("description", schema.String(), ""),
			optional("tags", schema.ListOf(schema.String()), ""),
			optional("files", schema.Integer(), "Number of files."),
			optional("size", schema.Integer(), "Size in bytes."),
			optional("source_bucket", schema.Record(SourceBucket), ""),
			optional("provenance", schema.Record(Provenance), ""),
			optional("custom_metadata", schema.MapOf(schema.Any()), ""),
			optional("owner", schema.String(), ""),
		},
	})

	DataAssetSearchParams = register(&schema.Descriptor{
		Name: "DataAssetSearchParams",
		Fields: []schema.Field{
			optional("query", schema.String(), "Free text search query."),
			optional("next_token", schema.String(), "Token from a previous page."),
			optional("offset", schema.Integer(), ""),
			optional("limit", schema.Integer(), "Maximum results per page."),
			optional("sort_field", schema.Enum("created", "type", "name", "size"), ""),
			optional("sort_order", sortOrder, ""),
			optional("type", schema.Enum("dataset", "result", "model"), ""),
			optional("ownership", ownership, ""),
			optional("origin", schema.Enum("internal", "external"), ""),
			optional("favorite", schema.Boolean(), ""),
			optional("archived", schema.Boolean(), ""),
			optional("filters", schema.ListOf(schema.Record(SearchFilter)), ""),
		},
	})

	DataAssetSearchResults = register(&schema.Descriptor{
		Name: "DataAssetSearchResults",
		Fields: []schema.Field{
			required("has_more", schema.Boolean(), ""),
			required("results", schema.ListOf(schema.Record(DataAsset)), ""),
			optional("next_token", schema.String(), ""),
		},
	})

	DataAssetUpdateParams = register(&schema.Descriptor{
		Name: "DataAssetUpdateParams",
		Fields: []schema.Field{
			optional("name", schema.String(), ""),
			optional("description", schema.String(), ""),
			optional("tags", schema.ListOf(schema.String()), ""),
			optional("mount", schema.String(), ""),
			optional("custom_metadata", schema.MapOf(schema.Any()), ""),
		},
	})

	AWSS3Source = register(&schema.Descriptor{
		Name: "AWSS3Source",
		Fields: []schema.Field{
			required("bucket", schema.String(), ""),
			optional("prefix", schema.String(), ""),
			optional("keep_on_external_storage", schema.Boolean(), ""),
			optional("public", schema.Boolean(), ""),
		},
	})

	ComputationSource = register(&schema.Descriptor{
		Name: "ComputationSource",
		Fields: []schema.Field{
			required("id", schema.String(), "Computation ID."),
			optional("path", schema.String(), "Results subfolder to capture."),
		},
	})

	Source = register(&schema.Descriptor{
		Name: "Source",
		Fields: []schema.Field{
			optional("aws", schema.Record(AWSS3Source), ""),
			optional("computation", schema.Record(ComputationSource), ""),
		},
	})

	DataAssetParams = register(&schema.Descriptor{
		Name: "DataAssetParams",
		Fields: []schema.Field{
			required("name", schema.String(), ""),
			required("tags", schema.ListOf(schema.String()), ""),
			required("mount", schema.String(), ""),
			optional("description", schema.String(), ""),
			optional("source", schema.Record(Source), ""),
			optional("custom_metadata", schema.MapOf(schema.Any()), ""),
		},
	})

	FolderItem = register(&schema.Descriptor{
		Name: "FolderItem",
		Fields: []schema.Field{
			required("name", schema.String(), ""),
			required("path", schema.String(), ""),
			required("type", schema.Enum("file", "folder"), ""),
			optional("size", schema.Integer(), ""),
			optional("children", schema.ListOf(schema.Ref("FolderItem")), "Folder contents."),
		},
	})

	Folder = register(&schema.Descriptor{
		Name: "Folder",
		Fields: []schema.Field{
			required("items", schema.ListOf(schema.Record(FolderItem)), ""),
		},
	})

	DownloadFileURL = register(&schema.Descriptor{
		Name: "DownloadFileURL",
		Fields: []schema.Field{
			required("url", schema.String(), "Time-limited download link."),
		},
	})

	FileContent = register(&schema.Descriptor{
		Name: "FileContent",
		Fields: []schema.Field{
			required("path", schema.String(), ""),
			required("content", schema.String(), ""),
			required("truncated", schema.Boolean(), "Whether content was cut at the size limit."),
		},
	})
)

// Compact search results.
var (
	CompactSearchMeta = register(&schema.Descriptor{
		Name: "CompactSearchMeta",
		Fields: []schema.Field{
			required("has_more", schema.Boolean(), ""),
			optional("next_token", schema.String(), ""),
			required("total_returned", schema.Integer(), ""),
			required("result_type", schema.Enum("capsule", "pipeline", "data_asset"), ""),
		},
	})

	CompactTable = register(&schema.Descriptor{
		Name:        "CompactTable",
		Description: "Search results as a column list and positional rows.",
		Fields: []schema.Field{
			required("cols", schema.ListOf(schema.String()), "Column names, in row order."),
			required("rows", schema.ListOf(schema.ListOf(schema.Any())), ""),
			required("meta", schema.Record(CompactSearchMeta), ""),
		},
	})
)
