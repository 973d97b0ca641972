package models

import "github.com/xiy/codeocean-mcp/internal/schema"

// DefaultPollingInterval is the default number of seconds between status
// checks while waiting on the platform.
const DefaultPollingInterval = 5

// Tool argument records.
var (
	CapsuleSearchArgs = register(&schema.Descriptor{
		Name: "CapsuleSearchArgs",
		Fields: []schema.Field{
			required("search_params", schema.Record(CapsuleSearchParams), "Search parameters. Use only what the user asked for."),
		},
	})

	DataAssetSearchArgs = register(&schema.Descriptor{
		Name: "DataAssetSearchArgs",
		Fields: []schema.Field{
			required("search_params", schema.Record(DataAssetSearchParams), "Search parameters. Use only what the user asked for."),
		},
	})

	CapsuleIDArgs = register(&schema.Descriptor{
		Name: "CapsuleIDArgs",
		Fields: []schema.Field{
			required("capsule_id", schema.String(), "Capsule ID."),
		},
	})

	ComputationIDArgs = register(&schema.Descriptor{
		Name: "ComputationIDArgs",
		Fields: []schema.Field{
			required("computation_id", schema.String(), "Computation ID."),
		},
	})

	ResultFileArgs = register(&schema.Descriptor{
		Name: "ResultFileArgs",
		Fields: []schema.Field{
			required("computation_id", schema.String(), "Computation ID."),
			required("file_path", schema.String(), "Path of the result file, as listed in the run results."),
		},
	})

	DataAssetIDArgs = register(&schema.Descriptor{
		Name: "DataAssetIDArgs",
		Fields: []schema.Field{
			required("data_asset_id", schema.String(), "Data asset ID."),
		},
	})

	DataAssetFileArgs = register(&schema.Descriptor{
		Name: "DataAssetFileArgs",
		Fields: []schema.Field{
			required("data_asset_id", schema.String(), "Data asset ID."),
			required("file_path", schema.String(), "Path of the file inside the data asset."),
		},
	})

	DataAssetDownloadArgs = register(&schema.Descriptor{
		Name: "DataAssetDownloadArgs",
		Fields: []schema.Field{
			required("data_asset_id", schema.String(), "Data asset ID."),
			optional("file_path", schema.String(), "Path of the file inside the data asset. Omit for the whole asset."),
		},
	})

	AttachDataAssetsArgs = register(&schema.Descriptor{
		Name: "AttachDataAssetsArgs",
		Fields: []schema.Field{
			required("capsule_id", schema.String(), "Capsule ID."),
			required("data_asset_ids", schema.ListOf(schema.Record(DataAssetAttachParams)), "Data assets to attach, as parameter objects."),
		},
	})

	RunCapsuleArgs = register(&schema.Descriptor{
		Name: "RunCapsuleArgs",
		Fields: []schema.Field{
			required("run_params", schema.Record(RunParams), ""),
			withDefault("polling_interval", schema.Number(), DefaultPollingInterval, "Seconds between status checks."),
			optional("timeout", schema.Number(), "Seconds to wait before giving up. Waits indefinitely when absent."),
		},
	})

	UpdateMetadataArgs = register(&schema.Descriptor{
		Name: "UpdateMetadataArgs",
		Fields: []schema.Field{
			required("data_asset_id", schema.String(), "Data asset ID."),
			required("update_params", schema.Record(DataAssetUpdateParams), ""),
		},
	})

	WaitUntilReadyArgs = register(&schema.Descriptor{
		Name: "WaitUntilReadyArgs",
		Fields: []schema.Field{
			required("data_asset", schema.Record(DataAsset), "The data asset to wait on, as returned by the platform."),
			withDefault("polling_interval", schema.Number(), DefaultPollingInterval, "Seconds between status checks."),
			optional("timeout", schema.Number(), "Seconds to wait before giving up. Waits indefinitely when absent."),
		},
	})

	CreateDataAssetArgs = register(&schema.Descriptor{
		Name: "CreateDataAssetArgs",
		Fields: []schema.Field{
			required("data_asset_params", schema.Record(DataAssetParams), ""),
		},
	})
)

// Tool result wrappers.
var (
	ComputationList = register(&schema.Descriptor{
		Name: "ComputationList",
		Fields: []schema.Field{
			required("computations", schema.ListOf(schema.Record(Computation)), ""),
		},
	})

	AttachResults = register(&schema.Descriptor{
		Name: "AttachResults",
		Fields: []schema.Field{
			required("results", schema.ListOf(schema.Record(DataAssetAttachResults)), ""),
		},
	})

	RunResult = register(&schema.Descriptor{
		Name: "RunResult",
		Fields: []schema.Field{
			required("computation", schema.Record(Computation), ""),
			optional("results", schema.Record(Folder), "Result files, when the run produced any."),
		},
	})
)
