package mcp

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiy/codeocean-mcp/internal/compact"
	"github.com/xiy/codeocean-mcp/pkg/types"
)

func sampleCapsules(n int) []types.Capsule {
	desc := strings.Repeat("single-cell RNA sequencing analysis ", 15)
	tags := make([]string, 15)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag-%d", i)
	}
	out := make([]types.Capsule, n)
	for i := range out {
		out[i] = types.Capsule{
			ID:      fmt.Sprintf("cap-%d", i),
			Created: 1700000000,
			Name:    fmt.Sprintf("Capsule %d", i),
			Status:  types.CapsuleStatusRelease,
			Owner:   "owner-1",
			Slug:    fmt.Sprintf("%07d", i),
			Tags:    tags,
		}
		d := desc
		out[i].Description = &d
	}
	return out
}

func structured[T any](t *testing.T, result map[string]any) T {
	t.Helper()
	require.NotEqual(t, true, result["isError"], "tool failed: %v", result["content"])
	v, ok := result["structuredContent"].(T)
	require.Truef(t, ok, "structuredContent is %T", result["structuredContent"])
	return v
}

func TestSearchCapsules_CompactTable(t *testing.T) {
	t.Parallel()
	next := "page-2"
	platform := &fakePlatform{capsules: sampleCapsules(12), hasMore: true, next: &next}
	searches := &captureSearches{}
	srv := newTestServer(t, platform, nil, Options{CompactSearchResults: true, Searches: searches})

	table := structured[compact.Table](t, callTool(t, srv, "search_capsules", `{"search_params":{"query":" rna ","limit":12}}`))

	assert.Equal(t, []string{"id", "name", "slug", "description", "tags"}, table.Cols)
	require.Len(t, table.Rows, 12)
	assert.Equal(t, "cap-0", table.Rows[0][0])
	desc, ok := table.Rows[0][3].(string)
	require.True(t, ok)
	assert.LessOrEqual(t, len([]rune(desc)), 200)
	assert.True(t, strings.HasSuffix(desc, compact.TruncationSuffix))
	tags, ok := table.Rows[0][4].([]string)
	require.True(t, ok)
	assert.Len(t, tags, 10)
	assert.Equal(t, compact.TagsTruncationMarker, tags[9])

	assert.True(t, table.Meta.HasMore)
	require.NotNil(t, table.Meta.NextToken)
	assert.Equal(t, "page-2", *table.Meta.NextToken)
	assert.Equal(t, 12, table.Meta.TotalReturned)
	assert.Equal(t, compact.ResultCapsule, table.Meta.ResultType)

	require.NotNil(t, platform.lastSearch.Limit)
	assert.Equal(t, 12, *platform.lastSearch.Limit)

	require.Len(t, searches.events, 1)
	ev := searches.events[0]
	assert.Equal(t, "search_capsules", ev.ToolName)
	assert.Equal(t, "capsule", ev.ResultType)
	assert.Equal(t, "rna", ev.Query)
	assert.Equal(t, 12, ev.Rows)
	assert.True(t, ev.Compact)
	assert.Greater(t, ev.FullTokens, ev.CompactTokens)
}

func TestSearchPipelines_UsesPipelineResultType(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &fakePlatform{capsules: sampleCapsules(1)}, nil, Options{CompactSearchResults: true})
	table := structured[compact.Table](t, callTool(t, srv, "search_pipelines", `{"search_params":{}}`))
	assert.Equal(t, compact.ResultPipeline, table.Meta.ResultType)
	assert.Nil(t, table.Meta.NextToken)
}

func TestSearchDataAssets_CompactColumns(t *testing.T) {
	t.Parallel()
	platform := &fakePlatform{assets: []types.DataAsset{{ID: "da-1", Name: "mouse atlas", Tags: []string{"mouse"}}}}
	srv := newTestServer(t, platform, nil, Options{CompactSearchResults: true})
	table := structured[compact.Table](t, callTool(t, srv, "search_data_assets", `{"search_params":{"origin":"external"}}`))
	assert.Equal(t, []string{"id", "name", "description", "tags"}, table.Cols)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, compact.Row{"da-1", "mouse atlas", nil, []string{"mouse"}}, table.Rows[0])
}

func TestSearchCapsules_FullResults(t *testing.T) {
	t.Parallel()
	searches := &captureSearches{}
	srv := newTestServer(t, &fakePlatform{capsules: sampleCapsules(2)}, nil, Options{Searches: searches})

	res := structured[types.CapsuleSearchResults](t, callTool(t, srv, "search_capsules", `{"search_params":{"limit":2}}`))
	require.Len(t, res.Results, 2)
	assert.Len(t, res.Results[0].Tags, 15)

	require.Len(t, searches.events, 1)
	assert.False(t, searches.events[0].Compact)
	assert.Equal(t, searches.events[0].FullTokens, searches.events[0].CompactTokens)
	assert.Empty(t, searches.events[0].Query)
}

func TestSearchCapsules_EmptyPageIsNotNull(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &fakePlatform{}, nil, Options{})
	res := structured[types.CapsuleSearchResults](t, callTool(t, srv, "search_capsules", `{"search_params":{}}`))
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
}

func TestToolCall_InvalidArgumentsNeverReachPlatform(t *testing.T) {
	t.Parallel()
	platform := &fakePlatform{}
	srv := newTestServer(t, platform, nil, Options{CompactSearchResults: true})

	for _, tc := range []struct {
		tool, args string
	}{
		{"search_capsules", `{"search_params":{"limit":"ten"}}`},
		{"search_capsules", `{}`},
		{"search_capsules", `{"search_params":{"sort_order":"sideways"}}`},
		{"get_capsule", `{"capsule_id":42}`},
		{"attach_data_assets", `{"capsule_id":"c","data_asset_ids":["a1"]}`},
		{"create_data_asset", `{"data_asset_params":{"name":"x","mount":"x"}}`},
	} {
		text := errorText(t, callTool(t, srv, tc.tool, tc.args))
		assert.Containsf(t, text, "invalid "+tc.tool+" arguments", "args %s", tc.args)
	}
	assert.Zero(t, platform.searchCalls)
}

func TestRunCapsule_WaitsAndListsResults(t *testing.T) {
	t.Parallel()
	platform := &fakePlatform{finished: types.Computation{State: types.ComputationCompleted}}
	srv := newTestServer(t, platform, nil, Options{})

	res := structured[types.RunResult](t, callTool(t, srv, "run_capsule_and_return_result", `{"run_params":{"capsule_id":"cap-1","parameters":["3"]}}`))

	require.NotNil(t, platform.runParams.CapsuleID)
	assert.Equal(t, "cap-1", *platform.runParams.CapsuleID)
	assert.Equal(t, []string{"3"}, platform.runParams.Parameters)
	assert.Equal(t, 5*time.Second, platform.waitInterval)
	assert.Zero(t, platform.waitTimeout)
	assert.Equal(t, "comp-1", res.Computation.ID)
	require.NotNil(t, res.Results)
	assert.Equal(t, "output.txt", res.Results.Items[0].Name)

	link := structured[types.DownloadFileURL](t, callTool(t, srv, "get_result_file_download_url", `{"computation_id":"comp-1","file_path":"output.txt"}`))
	assert.Equal(t, "https://results.example.com/comp-1/output.txt", link.URL)
}

func TestRunCapsule_NullIntervalUsesConfiguredDefault(t *testing.T) {
	t.Parallel()
	platform := &fakePlatform{finished: types.Computation{State: types.ComputationCompleted}}
	srv := newTestServer(t, platform, nil, Options{DefaultPollingInterval: 7 * time.Second})

	callTool(t, srv, "run_capsule_and_return_result", `{"run_params":{"pipeline_id":"pipe-1"},"polling_interval":null,"timeout":2.5}`)
	assert.Equal(t, 7*time.Second, platform.waitInterval)
	assert.Equal(t, 2500*time.Millisecond, platform.waitTimeout)
}

func TestRunCapsule_SkipsResultsWhenNoneProduced(t *testing.T) {
	t.Parallel()
	noResults := false
	for _, finished := range []types.Computation{
		{State: types.ComputationFailed},
		{State: types.ComputationCompleted, HasResults: &noResults},
	} {
		platform := &fakePlatform{finished: finished}
		srv := newTestServer(t, platform, nil, Options{})
		res := structured[types.RunResult](t, callTool(t, srv, "run_capsule_and_return_result", `{"run_params":{"capsule_id":"cap-1"}}`))
		assert.Nil(t, res.Results)
		assert.Zero(t, platform.resultsCalls)
	}
}

func TestRunCapsule_RequiresTarget(t *testing.T) {
	t.Parallel()
	platform := &fakePlatform{}
	srv := newTestServer(t, platform, nil, Options{})
	text := errorText(t, callTool(t, srv, "run_capsule_and_return_result", `{"run_params":{"capsule_id":"  "}}`))
	assert.Contains(t, text, "capsule_id or pipeline_id")
	assert.Nil(t, platform.runParams.CapsuleID)
}

func TestWaitUntilReady(t *testing.T) {
	t.Parallel()
	platform := &fakePlatform{}
	srv := newTestServer(t, platform, nil, Options{})
	args := `{"data_asset":{"id":"da-1","created":1,"name":"n","mount":"n","state":"draft","type":"dataset","last_used":0,"description":null},"polling_interval":10}`

	asset := structured[types.DataAsset](t, callTool(t, srv, "wait_until_ready", args))
	assert.Equal(t, types.DataAssetStateReady, asset.State)
	assert.Equal(t, "da-1", asset.ID)
	assert.Equal(t, 10*time.Second, platform.waitInterval)
}

func TestDataAssetFiles(t *testing.T) {
	t.Parallel()
	platform := &fakePlatform{fileContent: "a,b\n1,2\n"}
	srv := newTestServer(t, platform, nil, Options{})

	link := structured[types.DownloadFileURL](t, callTool(t, srv, "get_data_asset_file_download_url", `{"data_asset_id":"da-1"}`))
	assert.Equal(t, "https://files.example.com/", link.URL)
	assert.Empty(t, platform.downloadPath)

	file := structured[types.FileContent](t, callTool(t, srv, "read_data_asset_file", `{"data_asset_id":"da-1","file_path":"tables/x.csv"}`))
	assert.Equal(t, "tables/x.csv", platform.downloadPath)
	assert.Equal(t, types.FileContent{Path: "tables/x.csv", Content: "a,b\n1,2\n"}, file)

	folder := structured[types.Folder](t, callTool(t, srv, "list_data_asset_files", `{"data_asset_id":"da-1"}`))
	assert.NotNil(t, folder.Items)
}

func TestAttachAndCreate(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &fakePlatform{}, nil, Options{})

	attached := structured[types.AttachResults](t, callTool(t, srv, "attach_data_assets", `{"capsule_id":"cap-1","data_asset_ids":[{"id":"a1"},{"id":"a2","mount":"ref"}]}`))
	require.Len(t, attached.Results, 2)
	require.NotNil(t, attached.Results[1].Mount)
	assert.Equal(t, "ref", *attached.Results[1].Mount)

	created := structured[types.DataAsset](t, callTool(t, srv, "create_data_asset", `{"data_asset_params":{"name":"atlas","mount":"atlas","tags":["mouse"],"source":{"aws":{"bucket":"open-data"}}}}`))
	assert.Equal(t, types.DataAssetStateDraft, created.State)
	assert.Equal(t, []string{"mouse"}, created.Tags)

	updated := structured[types.DataAsset](t, callTool(t, srv, "update_metadata", `{"data_asset_id":"da-1","update_params":{"name":"renamed","tags":["a","b"]}}`))
	assert.Equal(t, "renamed", updated.Name)

	comps := structured[types.ComputationList](t, callTool(t, srv, "list_computations", `{"capsule_id":"cap-1"}`))
	assert.NotNil(t, comps.Computations)
}
