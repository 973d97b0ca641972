package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xiy/codeocean-mcp/internal/models"
	"github.com/xiy/codeocean-mcp/internal/schema"
)

// ToolDefinition models MCP tool metadata.
type ToolDefinition struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"inputSchema"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
}

type handlerFunc func(ctx context.Context, raw json.RawMessage) (any, error)

type tool struct {
	def  ToolDefinition
	args *schema.Schema
	call handlerFunc
}

// bind validates and defaults raw arguments against args, decodes them
// into A and passes them to fn.
func bind[A any](name string, args *schema.Schema, fn func(context.Context, A) (any, error)) handlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in A
		if err := args.Decode(raw, &in); err != nil {
			return nil, fmt.Errorf("invalid %s arguments: %w", name, err)
		}
		return fn(ctx, in)
	}
}

func newTool[A any](set *models.Set, name, description string, in, out *schema.Descriptor, fn func(context.Context, A) (any, error)) *tool {
	args := set.Schema(in)
	t := &tool{
		def: ToolDefinition{
			Name:        name,
			Description: description,
			InputSchema: args.JSON(),
		},
		args: args,
		call: bind(name, args, fn),
	}
	if out != nil {
		t.def.OutputSchema = set.Schema(out).JSON()
	}
	return t
}

// Tools lists the tool definitions in registration order.
func (s *Server) Tools() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, t.def)
	}
	return out
}

const (
	minimalParamsNote = "Provide only the minimal required parameters (e.g. limit=10); do not include optional params like sort_field or sort_order unless requested."
	compactNote       = " Results come back as a compact table: 'cols' names the columns and each entry of 'rows' lists values in that order; descriptions are shortened and long tag lists end with '..more..'."
)

func (s *Server) buildTools(set *models.Set) []*tool {
	capsuleResults, assetResults := models.CapsuleSearchResults, models.DataAssetSearchResults
	searchNote := ""
	if s.opts.CompactSearchResults {
		capsuleResults, assetResults = models.CompactTable, models.CompactTable
		searchNote = compactNote
	}

	return []*tool{
		newTool(set, "search_capsules",
			"Search for capsules matching the given criteria. Use only for capsule searches. "+minimalParamsNote+searchNote,
			models.CapsuleSearchArgs, capsuleResults, s.searchCapsules),
		newTool(set, "search_pipelines",
			"Search for pipelines matching the given criteria. Use only for pipeline searches. "+minimalParamsNote+searchNote,
			models.CapsuleSearchArgs, capsuleResults, s.searchPipelines),
		newTool(set, "get_capsule",
			"Retrieve a capsule's metadata by ID. Use only to fetch metadata for a known capsule ID. Do not use for searching.",
			models.CapsuleIDArgs, models.Capsule, s.getCapsule),
		newTool(set, "list_computations",
			"List all computations run from a capsule.",
			models.CapsuleIDArgs, models.ComputationList, s.listComputations),
		newTool(set, "attach_data_assets",
			"Attach data assets to a capsule. Accepts a list of parameter objects (e.g. [{\"id\": \"...\"}]), not just a list of IDs.",
			models.AttachDataAssetsArgs, models.AttachResults, s.attachDataAssets),
		newTool(set, "run_capsule_and_return_result",
			"Run a capsule or pipeline, wait until the computation finishes and return it together with its result files. Set run_params.capsule_id or run_params.pipeline_id.",
			models.RunCapsuleArgs, models.RunResult, s.runCapsule),
		newTool(set, "get_computation",
			"Retrieve a computation's state and metadata by ID.",
			models.ComputationIDArgs, models.Computation, s.getComputation),
		newTool(set, "get_result_file_download_url",
			"Get a download URL for one result file of a finished computation.",
			models.ResultFileArgs, models.DownloadFileURL, s.getResultFileDownloadURL),
		newTool(set, "search_data_assets",
			"Retrieve data assets that match a rich set of search criteria, when asked for data assets or datasets. Searches external and internal data assets (filtered by the 'origin' field). "+minimalParamsNote+searchNote,
			models.DataAssetSearchArgs, assetResults, s.searchDataAssets),
		newTool(set, "get_data_asset",
			"Retrieve a data asset's metadata by ID.",
			models.DataAssetIDArgs, models.DataAsset, s.getDataAsset),
		newTool(set, "get_data_asset_file_download_url",
			"Get a download URL for a file in a data asset. Only use when the data asset is known to be ready; otherwise call wait_until_ready first.",
			models.DataAssetDownloadArgs, models.DownloadFileURL, s.getDataAssetFileDownloadURL),
		newTool(set, "read_data_asset_file",
			"Download a file from a ready data asset and return the start of its text content.",
			models.DataAssetFileArgs, models.FileContent, s.readDataAssetFile),
		newTool(set, "list_data_asset_files",
			"List the files in a data asset.",
			models.DataAssetIDArgs, models.Folder, s.listDataAssetFiles),
		newTool(set, "update_metadata",
			"Update a data asset's name, description, tags, mount or custom metadata.",
			models.UpdateMetadataArgs, models.DataAsset, s.updateMetadata),
		newTool(set, "wait_until_ready",
			"Poll a data asset until it is ready or failed. Use this tool when asked to wait for a data asset to be ready.",
			models.WaitUntilReadyArgs, models.DataAsset, s.waitUntilReady),
		newTool(set, "create_data_asset",
			"Create a new data asset from an external bucket or a computation's results. The asset starts as a draft; use wait_until_ready before reading its files.",
			models.CreateDataAssetArgs, models.DataAsset, s.createDataAsset),
	}
}
