package codeocean

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/xiy/codeocean-mcp/pkg/types"
)

// RunCapsule starts a computation.
func (c *Client) RunCapsule(ctx context.Context, params types.RunParams) (types.Computation, error) {
	var out types.Computation
	err := c.do(ctx, http.MethodPost, "/computations", nil, params, &out)
	return out, err
}

// GetComputation fetches a computation by ID.
func (c *Client) GetComputation(ctx context.Context, computationID string) (types.Computation, error) {
	var out types.Computation
	err := c.do(ctx, http.MethodGet, "/computations/"+escape(computationID), nil, nil, &out)
	return out, err
}

// WaitUntilCompleted polls a computation until it completes or fails.
// A zero timeout waits until ctx is done.
func (c *Client) WaitUntilCompleted(ctx context.Context, computation types.Computation, interval, timeout time.Duration) (types.Computation, error) {
	if computation.Done() {
		return computation, nil
	}
	var latest types.Computation
	err := c.poll(ctx, interval, timeout, func(ctx context.Context) (bool, error) {
		cur, err := c.GetComputation(ctx, computation.ID)
		if err != nil {
			return false, err
		}
		latest = cur
		return cur.Done(), nil
	})
	if err != nil {
		return latest, fmt.Errorf("computation %s: %w", computation.ID, err)
	}
	return latest, nil
}

// ListComputationResults lists the result files of a computation.
func (c *Client) ListComputationResults(ctx context.Context, computationID, path string) (types.Folder, error) {
	var out types.Folder
	err := c.do(ctx, http.MethodPost, "/computations/"+escape(computationID)+"/results", nil, map[string]string{"path": path}, &out)
	return out, err
}

// GetResultFileDownloadURL returns a download link for one result file.
func (c *Client) GetResultFileDownloadURL(ctx context.Context, computationID, path string) (types.DownloadFileURL, error) {
	var out types.DownloadFileURL
	q := url.Values{"path": {path}}
	err := c.do(ctx, http.MethodGet, "/computations/"+escape(computationID)+"/results/download_url", q, nil, &out)
	return out, err
}

// poll calls check every interval until it reports done, fails, ctx ends
// or timeout elapses.
func (c *Client) poll(ctx context.Context, interval, timeout time.Duration, check func(context.Context) (bool, error)) error {
	if interval < c.minPoll {
		return fmt.Errorf("%w: %s is below the %s minimum", ErrPollingInterval, interval, c.minPoll)
	}
	if timeout > 0 && timeout < interval {
		return fmt.Errorf("%w: timeout %s is shorter than the polling interval %s", ErrPollingInterval, timeout, interval)
	}

	started := time.Now()
	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if timeout > 0 && time.Since(started)+interval > timeout {
			return fmt.Errorf("%w after %s", ErrTimeout, time.Since(started).Round(time.Millisecond))
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
