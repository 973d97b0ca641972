package codeocean

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xiy/codeocean-mcp/pkg/types"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{Domain: srv.URL, Token: "tok", MaxFileChars: 10})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.minPoll = 0
	return c
}

func TestNew_RequiresCredentials(t *testing.T) {
	t.Parallel()
	if _, err := New(Options{Token: "x"}); err == nil {
		t.Fatal("expected error for missing domain")
	}
	if _, err := New(Options{Domain: "acme.codeocean.com"}); err == nil {
		t.Fatal("expected error for missing token")
	}
	c, err := New(Options{Domain: "acme.codeocean.com/", Token: "x"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got, want := c.BaseURL(), "https://acme.codeocean.com/api/v1"; got != want {
		t.Fatalf("BaseURL() = %q, want %q", got, want)
	}
}

func TestSearchCapsules_SendsAuthAndBody(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/capsules/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "tok" || pass != "" {
			t.Errorf("basic auth = %q/%q/%v", user, pass, ok)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["query"] != "rna" {
			t.Errorf("query = %v", body["query"])
		}
		if _, ok := body["limit"]; ok {
			t.Error("unset limit should be omitted")
		}
		_, _ = io.WriteString(w, `{"has_more":true,"next_token":"n2","results":[{"id":"c1","name":"RNA","slug":"111","status":"release","owner":"o","created":1}]}`)
	}))

	q := "rna"
	res, err := c.SearchCapsules(context.Background(), types.CapsuleSearchParams{Query: &q})
	if err != nil {
		t.Fatalf("SearchCapsules() error = %v", err)
	}
	if !res.HasMore || res.NextToken == nil || *res.NextToken != "n2" {
		t.Fatalf("unexpected paging %+v", res)
	}
	if len(res.Results) != 1 || res.Results[0].Slug != "111" {
		t.Fatalf("unexpected results %+v", res.Results)
	}
}

func TestGetCapsule_NotFound(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"capsule not found"}`, http.StatusNotFound)
	}))

	_, err := c.GetCapsule(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetCapsule() error = %v, want ErrNotFound", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Path != "/capsules/missing" {
		t.Fatalf("expected APIError for /capsules/missing, got %v", err)
	}
	if !strings.Contains(err.Error(), "capsule not found") {
		t.Fatalf("error should carry the response body: %v", err)
	}
}

func TestServerErrorIsNotNotFound(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	_, err := c.GetDataAsset(context.Background(), "d1")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("GetDataAsset() error = %v", err)
	}
}

func TestAttachDataAssets(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/capsules/c1/data_assets" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body []types.DataAssetAttachParams
		_ = json.NewDecoder(r.Body).Decode(&body)
		out := make([]types.DataAssetAttachResults, 0, len(body))
		for _, p := range body {
			out = append(out, types.DataAssetAttachResults{ID: p.ID, Mount: p.Mount, Ready: true})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))

	mount := "ref"
	res, err := c.AttachDataAssets(context.Background(), "c1", []types.DataAssetAttachParams{{ID: "d1", Mount: &mount}, {ID: "d2"}})
	if err != nil {
		t.Fatalf("AttachDataAssets() error = %v", err)
	}
	if len(res) != 2 || !res[0].Ready || *res[0].Mount != "ref" || res[1].Mount != nil {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestDownloadURLEscapesPath(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("path"); got != "dir/a b.csv" {
			t.Errorf("path query = %q", got)
		}
		_, _ = io.WriteString(w, `{"url":"https://files.example/x"}`)
	}))
	u, err := c.GetDataAssetFileDownloadURL(context.Background(), "d1", "dir/a b.csv")
	if err != nil {
		t.Fatalf("GetDataAssetFileDownloadURL() error = %v", err)
	}
	if u.URL != "https://files.example/x" {
		t.Fatalf("URL = %q", u.URL)
	}
}

func TestWaitUntilReady_PollsUntilReady(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := types.DataAssetStateDraft
		if calls.Add(1) >= 3 {
			state = types.DataAssetStateReady
		}
		_ = json.NewEncoder(w).Encode(types.DataAsset{ID: "d1", State: state})
	}))

	got, err := c.WaitUntilReady(context.Background(), types.DataAsset{ID: "d1", State: types.DataAssetStateDraft}, time.Millisecond, 0)
	if err != nil {
		t.Fatalf("WaitUntilReady() error = %v", err)
	}
	if got.State != types.DataAssetStateReady || calls.Load() != 3 {
		t.Fatalf("state = %s after %d calls", got.State, calls.Load())
	}
}

func TestWaitUntilReady_AlreadyReadySkipsRequests(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))
	in := types.DataAsset{ID: "d1", State: types.DataAssetStateFailed}
	got, err := c.WaitUntilReady(context.Background(), in, time.Millisecond, 0)
	if err != nil || got.State != types.DataAssetStateFailed {
		t.Fatalf("WaitUntilReady() = %+v, %v", got, err)
	}
}

func TestWaitUntilReady_Timeout(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(types.DataAsset{ID: "d1", State: types.DataAssetStateDraft})
	}))
	_, err := c.WaitUntilReady(context.Background(), types.DataAsset{ID: "d1"}, 5*time.Millisecond, 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WaitUntilReady() error = %v, want ErrTimeout", err)
	}
}

func TestWaitUntilReady_RejectsShortInterval(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.NotFoundHandler())
	c.minPoll = 5 * time.Second
	_, err := c.WaitUntilReady(context.Background(), types.DataAsset{ID: "d1"}, time.Second, 0)
	if !errors.Is(err, ErrPollingInterval) {
		t.Fatalf("WaitUntilReady() error = %v, want ErrPollingInterval", err)
	}
	_, err = c.WaitUntilReady(context.Background(), types.DataAsset{ID: "d1"}, 10*time.Second, 6*time.Second)
	if !errors.Is(err, ErrPollingInterval) {
		t.Fatalf("timeout below interval: error = %v, want ErrPollingInterval", err)
	}
}

func TestWaitUntilCompleted_ContextCancel(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(types.Computation{ID: "r1", State: types.ComputationRunning})
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.WaitUntilCompleted(ctx, types.Computation{ID: "r1", State: types.ComputationInitializing}, 5*time.Millisecond, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitUntilCompleted() error = %v, want deadline exceeded", err)
	}
}

func TestReadFile_Truncates(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/short":
			_, _ = io.WriteString(w, "héllo")
		case "/long":
			_, _ = io.WriteString(w, "0123456789abcdef")
		case "/binary":
			_, _ = w.Write([]byte{'o', 'k', 0xff, 0xfe, '!'})
		}
	}))
	t.Cleanup(srv.Close)
	c, err := New(Options{Domain: srv.URL, Token: "tok", MaxFileChars: 10})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cases := []struct {
		path      string
		want      string
		truncated bool
	}{
		{"/short", "héllo", false},
		{"/long", "0123456789", true},
		{"/binary", "ok!", false},
	}
	for _, tc := range cases {
		got, truncated, err := c.ReadFile(context.Background(), srv.URL+tc.path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", tc.path, err)
		}
		if got != tc.want || truncated != tc.truncated {
			t.Fatalf("ReadFile(%s) = %q, %v; want %q, %v", tc.path, got, truncated, tc.want, tc.truncated)
		}
	}
}
