package codeocean

import (
	"context"
	"net/http"

	"github.com/xiy/codeocean-mcp/pkg/types"
)

// SearchCapsules returns one page of capsules matching params.
func (c *Client) SearchCapsules(ctx context.Context, params types.CapsuleSearchParams) (types.CapsuleSearchResults, error) {
	var out types.CapsuleSearchResults
	err := c.do(ctx, http.MethodPost, "/capsules/search", nil, params, &out)
	return out, err
}

// SearchPipelines returns one page of pipelines matching params.
func (c *Client) SearchPipelines(ctx context.Context, params types.CapsuleSearchParams) (types.CapsuleSearchResults, error) {
	var out types.CapsuleSearchResults
	err := c.do(ctx, http.MethodPost, "/pipelines/search", nil, params, &out)
	return out, err
}

// GetCapsule fetches a capsule by ID.
func (c *Client) GetCapsule(ctx context.Context, capsuleID string) (types.Capsule, error) {
	var out types.Capsule
	err := c.do(ctx, http.MethodGet, "/capsules/"+escape(capsuleID), nil, nil, &out)
	return out, err
}

// ListComputations lists the computations run from a capsule.
func (c *Client) ListComputations(ctx context.Context, capsuleID string) ([]types.Computation, error) {
	var out []types.Computation
	if err := c.do(ctx, http.MethodGet, "/capsules/"+escape(capsuleID)+"/computations", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AttachDataAssets attaches data assets to a capsule.
func (c *Client) AttachDataAssets(ctx context.Context, capsuleID string, params []types.DataAssetAttachParams) ([]types.DataAssetAttachResults, error) {
	if params == nil {
		params = []types.DataAssetAttachParams{}
	}
	var out []types.DataAssetAttachResults
	if err := c.do(ctx, http.MethodPost, "/capsules/"+escape(capsuleID)+"/data_assets", nil, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
