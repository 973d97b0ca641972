package codeocean

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/xiy/codeocean-mcp/pkg/types"
)

// SearchDataAssets returns one page of data assets matching params.
func (c *Client) SearchDataAssets(ctx context.Context, params types.DataAssetSearchParams) (types.DataAssetSearchResults, error) {
	var out types.DataAssetSearchResults
	err := c.do(ctx, http.MethodPost, "/data_assets/search", nil, params, &out)
	return out, err
}

// GetDataAsset fetches a data asset by ID.
func (c *Client) GetDataAsset(ctx context.Context, dataAssetID string) (types.DataAsset, error) {
	var out types.DataAsset
	err := c.do(ctx, http.MethodGet, "/data_assets/"+escape(dataAssetID), nil, nil, &out)
	return out, err
}

// GetDataAssetFileDownloadURL returns a download link for one file of a
// data asset, or for the whole asset when path is empty.
func (c *Client) GetDataAssetFileDownloadURL(ctx context.Context, dataAssetID, path string) (types.DownloadFileURL, error) {
	var out types.DownloadFileURL
	var q url.Values
	if path != "" {
		q = url.Values{"path": {path}}
	}
	err := c.do(ctx, http.MethodGet, "/data_assets/"+escape(dataAssetID)+"/files/download_url", q, nil, &out)
	return out, err
}

// ListDataAssetFiles lists the files under path in a data asset. An
// empty path lists the root.
func (c *Client) ListDataAssetFiles(ctx context.Context, dataAssetID, path string) (types.Folder, error) {
	var out types.Folder
	err := c.do(ctx, http.MethodPost, "/data_assets/"+escape(dataAssetID)+"/files", nil, map[string]string{"path": path}, &out)
	return out, err
}

// UpdateMetadata changes a data asset's name, description, tags, mount or
// custom metadata.
func (c *Client) UpdateMetadata(ctx context.Context, dataAssetID string, params types.DataAssetUpdateParams) (types.DataAsset, error) {
	var out types.DataAsset
	err := c.do(ctx, http.MethodPut, "/data_assets/"+escape(dataAssetID), nil, params, &out)
	return out, err
}

// CreateDataAsset starts building a new data asset. The returned asset is
// usually still in the draft state; see WaitUntilReady.
func (c *Client) CreateDataAsset(ctx context.Context, params types.DataAssetParams) (types.DataAsset, error) {
	if params.Tags == nil {
		params.Tags = []string{}
	}
	var out types.DataAsset
	err := c.do(ctx, http.MethodPost, "/data_assets", nil, params, &out)
	return out, err
}

// WaitUntilReady polls a data asset until it is ready or failed. A zero
// timeout waits until ctx is done.
func (c *Client) WaitUntilReady(ctx context.Context, asset types.DataAsset, interval, timeout time.Duration) (types.DataAsset, error) {
	if asset.Ready() {
		return asset, nil
	}
	latest := asset
	err := c.poll(ctx, interval, timeout, func(ctx context.Context) (bool, error) {
		cur, err := c.GetDataAsset(ctx, asset.ID)
		if err != nil {
			return false, err
		}
		latest = cur
		return cur.Ready(), nil
	})
	if err != nil {
		return latest, fmt.Errorf("data asset %s: %w", asset.ID, err)
	}
	return latest, nil
}
