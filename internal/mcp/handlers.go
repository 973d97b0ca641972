package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/xiy/codeocean-mcp/internal/compact"
	"github.com/xiy/codeocean-mcp/internal/store"
	"github.com/xiy/codeocean-mcp/pkg/types"
)

// Platform is the subset of the Code Ocean API the tools call.
type Platform interface {
	SearchCapsules(ctx context.Context, params types.CapsuleSearchParams) (types.CapsuleSearchResults, error)
	SearchPipelines(ctx context.Context, params types.CapsuleSearchParams) (types.CapsuleSearchResults, error)
	GetCapsule(ctx context.Context, capsuleID string) (types.Capsule, error)
	ListComputations(ctx context.Context, capsuleID string) ([]types.Computation, error)
	AttachDataAssets(ctx context.Context, capsuleID string, params []types.DataAssetAttachParams) ([]types.DataAssetAttachResults, error)

	RunCapsule(ctx context.Context, params types.RunParams) (types.Computation, error)
	GetComputation(ctx context.Context, computationID string) (types.Computation, error)
	WaitUntilCompleted(ctx context.Context, computation types.Computation, interval, timeout time.Duration) (types.Computation, error)
	ListComputationResults(ctx context.Context, computationID, path string) (types.Folder, error)
	GetResultFileDownloadURL(ctx context.Context, computationID, path string) (types.DownloadFileURL, error)

	SearchDataAssets(ctx context.Context, params types.DataAssetSearchParams) (types.DataAssetSearchResults, error)
	GetDataAsset(ctx context.Context, dataAssetID string) (types.DataAsset, error)
	GetDataAssetFileDownloadURL(ctx context.Context, dataAssetID, path string) (types.DownloadFileURL, error)
	ListDataAssetFiles(ctx context.Context, dataAssetID, path string) (types.Folder, error)
	UpdateMetadata(ctx context.Context, dataAssetID string, params types.DataAssetUpdateParams) (types.DataAsset, error)
	CreateDataAsset(ctx context.Context, params types.DataAssetParams) (types.DataAsset, error)
	WaitUntilReady(ctx context.Context, asset types.DataAsset, interval, timeout time.Duration) (types.DataAsset, error)

	ReadFile(ctx context.Context, url string) (content string, truncated bool, err error)
}

var errNoRunTarget = errors.New("run_params must set capsule_id or pipeline_id")

type capsuleSearchArgs struct {
	SearchParams types.CapsuleSearchParams `json:"search_params"`
}

type dataAssetSearchArgs struct {
	SearchParams types.DataAssetSearchParams `json:"search_params"`
}

type capsuleIDArgs struct {
	CapsuleID string `json:"capsule_id"`
}

type computationIDArgs struct {
	ComputationID string `json:"computation_id"`
}

type resultFileArgs struct {
	ComputationID string `json:"computation_id"`
	FilePath      string `json:"file_path"`
}

type dataAssetIDArgs struct {
	DataAssetID string `json:"data_asset_id"`
}

type dataAssetFileArgs struct {
	DataAssetID string `json:"data_asset_id"`
	FilePath    string `json:"file_path"`
}

type attachArgs struct {
	CapsuleID    string                        `json:"capsule_id"`
	DataAssetIDs []types.DataAssetAttachParams `json:"data_asset_ids"`
}

type runArgs struct {
	RunParams       types.RunParams `json:"run_params"`
	PollingInterval *float64        `json:"polling_interval"`
	Timeout         *float64        `json:"timeout"`
}

type updateMetadataArgs struct {
	DataAssetID  string                      `json:"data_asset_id"`
	UpdateParams types.DataAssetUpdateParams `json:"update_params"`
}

type waitArgs struct {
	DataAsset       types.DataAsset `json:"data_asset"`
	PollingInterval *float64        `json:"polling_interval"`
	Timeout         *float64        `json:"timeout"`
}

type createDataAssetArgs struct {
	DataAssetParams types.DataAssetParams `json:"data_asset_params"`
}

func (s *Server) searchCapsules(ctx context.Context, in capsuleSearchArgs) (any, error) {
	res, err := s.platform.SearchCapsules(ctx, in.SearchParams)
	if err != nil {
		return nil, err
	}
	if res.Results == nil {
		res.Results = []types.Capsule{}
	}
	return s.searchResult(ctx, "search_capsules", compact.ResultCapsule, in.SearchParams.Query,
		res, compact.Records(res.Results), res.HasMore, res.NextToken), nil
}

func (s *Server) searchPipelines(ctx context.Context, in capsuleSearchArgs) (any, error) {
	res, err := s.platform.SearchPipelines(ctx, in.SearchParams)
	if err != nil {
		return nil, err
	}
	if res.Results == nil {
		res.Results = []types.Capsule{}
	}
	return s.searchResult(ctx, "search_pipelines", compact.ResultPipeline, in.SearchParams.Query,
		res, compact.Records(res.Results), res.HasMore, res.NextToken), nil
}

func (s *Server) searchDataAssets(ctx context.Context, in dataAssetSearchArgs) (any, error) {
	res, err := s.platform.SearchDataAssets(ctx, in.SearchParams)
	if err != nil {
		return nil, err
	}
	if res.Results == nil {
		res.Results = []types.DataAsset{}
	}
	return s.searchResult(ctx, "search_data_assets", compact.ResultDataAsset, in.SearchParams.Query,
		res, compact.Records(res.Results), res.HasMore, res.NextToken), nil
}

// searchResult picks the compact or full form of a search page and
// records what it cost.
func (s *Server) searchResult(ctx context.Context, toolName string, rt compact.ResultType, query *string, full any, items []compact.Record, hasMore bool, nextToken *string) any {
	out := full
	if s.opts.CompactSearchResults {
		out = s.opts.Compactor.Table(items, hasMore, nextToken, rt)
	}
	if s.opts.Searches == nil {
		return out
	}

	fullTokens := s.countJSON(full)
	compactTokens := fullTokens
	if s.opts.CompactSearchResults {
		compactTokens = s.countJSON(out)
	}
	ev := store.SearchEvent{
		ToolName:      toolName,
		ResultType:    string(rt),
		Rows:          len(items),
		HasMore:       hasMore,
		Compact:       s.opts.CompactSearchResults,
		FullTokens:    fullTokens,
		CompactTokens: compactTokens,
		CreatedAt:     time.Now().UTC(),
	}
	if query != nil {
		ev.Query = strings.TrimSpace(*query)
	}
	if _, err := s.opts.Searches.InsertSearchEvent(ctx, ev); err != nil {
		s.logger.Warn("failed to persist search event", "tool", toolName, "error", err)
	}
	return out
}

func (s *Server) countJSON(v any) int {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return s.opts.Tokens.Count(string(b))
}

func (s *Server) getCapsule(ctx context.Context, in capsuleIDArgs) (any, error) {
	return s.platform.GetCapsule(ctx, in.CapsuleID)
}

func (s *Server) listComputations(ctx context.Context, in capsuleIDArgs) (any, error) {
	comps, err := s.platform.ListComputations(ctx, in.CapsuleID)
	if err != nil {
		return nil, err
	}
	if comps == nil {
		comps = []types.Computation{}
	}
	return types.ComputationList{Computations: comps}, nil
}

func (s *Server) attachDataAssets(ctx context.Context, in attachArgs) (any, error) {
	res, err := s.platform.AttachDataAssets(ctx, in.CapsuleID, in.DataAssetIDs)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []types.DataAssetAttachResults{}
	}
	return types.AttachResults{Results: res}, nil
}

func (s *Server) runCapsule(ctx context.Context, in runArgs) (any, error) {
	if blank(in.RunParams.CapsuleID) && blank(in.RunParams.PipelineID) {
		return nil, errNoRunTarget
	}
	comp, err := s.platform.RunCapsule(ctx, in.RunParams)
	if err != nil {
		return nil, err
	}
	s.logger.Info("computation started", "computation", comp.ID, "state", comp.State)

	comp, err = s.platform.WaitUntilCompleted(ctx, comp, s.interval(in.PollingInterval), seconds(in.Timeout))
	if err != nil {
		return nil, err
	}
	out := types.RunResult{Computation: comp}
	if comp.State == types.ComputationCompleted && (comp.HasResults == nil || *comp.HasResults) {
		folder, err := s.platform.ListComputationResults(ctx, comp.ID, "")
		if err != nil {
			return nil, err
		}
		out.Results = &folder
	}
	return out, nil
}

func (s *Server) getComputation(ctx context.Context, in computationIDArgs) (any, error) {
	return s.platform.GetComputation(ctx, in.ComputationID)
}

func (s *Server) getResultFileDownloadURL(ctx context.Context, in resultFileArgs) (any, error) {
	return s.platform.GetResultFileDownloadURL(ctx, in.ComputationID, in.FilePath)
}

func (s *Server) getDataAsset(ctx context.Context, in dataAssetIDArgs) (any, error) {
	return s.platform.GetDataAsset(ctx, in.DataAssetID)
}

func (s *Server) getDataAssetFileDownloadURL(ctx context.Context, in dataAssetFileArgs) (any, error) {
	return s.platform.GetDataAssetFileDownloadURL(ctx, in.DataAssetID, in.FilePath)
}

func (s *Server) readDataAssetFile(ctx context.Context, in dataAssetFileArgs) (any, error) {
	link, err := s.platform.GetDataAssetFileDownloadURL(ctx, in.DataAssetID, in.FilePath)
	if err != nil {
		return nil, err
	}
	content, truncated, err := s.platform.ReadFile(ctx, link.URL)
	if err != nil {
		return nil, err
	}
	return types.FileContent{Path: in.FilePath, Content: content, Truncated: truncated}, nil
}

func (s *Server) listDataAssetFiles(ctx context.Context, in dataAssetIDArgs) (any, error) {
	folder, err := s.platform.ListDataAssetFiles(ctx, in.DataAssetID, "")
	if err != nil {
		return nil, err
	}
	if folder.Items == nil {
		folder.Items = []types.FolderItem{}
	}
	return folder, nil
}

func (s *Server) updateMetadata(ctx context.Context, in updateMetadataArgs) (any, error) {
	return s.platform.UpdateMetadata(ctx, in.DataAssetID, in.UpdateParams)
}

func (s *Server) waitUntilReady(ctx context.Context, in waitArgs) (any, error) {
	return s.platform.WaitUntilReady(ctx, in.DataAsset, s.interval(in.PollingInterval), seconds(in.Timeout))
}

func (s *Server) createDataAsset(ctx context.Context, in createDataAssetArgs) (any, error) {
	asset, err := s.platform.CreateDataAsset(ctx, in.DataAssetParams)
	if err != nil {
		return nil, err
	}
	s.logger.Info("data asset created", "data_asset", asset.ID, "state", asset.State)
	return asset, nil
}

// interval converts a polling interval in seconds; null selects the
// configured default.
func (s *Server) interval(secs *float64) time.Duration {
	if secs == nil {
		return s.opts.DefaultPollingInterval
	}
	return seconds(secs)
}

func seconds(secs *float64) time.Duration {
	if secs == nil || *secs <= 0 {
		return 0
	}
	return time.Duration(*secs * float64(time.Second))
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
