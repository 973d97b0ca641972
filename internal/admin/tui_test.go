package admin

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xiy/codeocean-mcp/internal/store"
)

type fakeDashboardStore struct {
	stats    store.Stats
	searches []store.SearchEvent
	err      error
}

func (f fakeDashboardStore) Stats(context.Context) (store.Stats, error) { return f.stats, f.err }

func (f fakeDashboardStore) RecentMCPRequestLogs(context.Context, int) ([]store.MCPRequestLog, error) {
	return []store.MCPRequestLog{{Method: "tools/call", ToolName: "search_capsules", Success: true, DurationMS: 12}}, nil
}

func (f fakeDashboardStore) RecentSearchEvents(context.Context, int) ([]store.SearchEvent, error) {
	return f.searches, nil
}

func TestFetchDashboard_UpdatesModel(t *testing.T) {
	t.Parallel()
	st := fakeDashboardStore{
		stats: store.Stats{Requests: 4, Searches: 2, FullTokens: 1000, CompactTokens: 250},
		searches: []store.SearchEvent{{
			ToolName: "search_capsules", ResultType: "capsule", Query: "rna", Rows: 10,
			HasMore: true, Compact: true, FullTokens: 1000, CompactTokens: 250,
			CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		}},
	}
	msg := fetchDashboardCmd(context.Background(), st, 8, 8)()

	m := model{ctx: context.Background(), st: st, maxLogs: 10}
	next, _ := m.Update(msg)
	got := next.(model)
	if got.lastErr != nil {
		t.Fatalf("lastErr = %v", got.lastErr)
	}
	if len(got.searches) != 1 || len(got.reqLogs) != 1 {
		t.Fatalf("dashboard not populated: %+v", got)
	}
	if !strings.Contains(got.renderStats(), "750 (75%)") {
		t.Fatalf("unexpected stats pane:\n%s", got.renderStats())
	}

	pane := formatSearchPane(got.searches)
	for _, want := range []string{"09:30:00", "C capsule", "10+", "rna"} {
		if !strings.Contains(pane, want) {
			t.Fatalf("search pane missing %q:\n%s", want, pane)
		}
	}
}

func TestFetchDashboard_Error(t *testing.T) {
	t.Parallel()
	st := fakeDashboardStore{err: errors.New("database is locked")}
	m := model{ctx: context.Background(), st: st, maxLogs: 2}
	next, _ := m.Update(fetchDashboardCmd(context.Background(), st, 8, 8)())
	got := next.(model)
	if got.lastErr == nil {
		t.Fatal("expected lastErr")
	}
	if !strings.Contains(got.renderStats(), "database is locked") {
		t.Fatalf("stats pane should show the error:\n%s", got.renderStats())
	}
	if len(got.logLines) != 1 || !strings.Contains(got.logLines[0], "refresh error") {
		t.Fatalf("unexpected log lines %v", got.logLines)
	}
}

func TestFormatHelpers(t *testing.T) {
	t.Parallel()
	if got := formatRatio(1, 0); got != "-" {
		t.Fatalf("formatRatio(1, 0) = %q", got)
	}
	if got := truncateText("abcdefgh", 5); got != "ab..." {
		t.Fatalf("truncateText() = %q", got)
	}
	if got := formatSearchPane(nil); got != "(no searches yet)" {
		t.Fatalf("formatSearchPane(nil) = %q", got)
	}
}
