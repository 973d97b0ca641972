package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Stats summarizes database counters for admin dashboards.
type Stats struct {
	Requests       int64
	FailedRequests int64
	Searches       int64
	CompactedRows  int64
	FullTokens     int64
	CompactTokens  int64
}

// TokensSaved is the estimated token difference between full and compact
// search payloads.
func (s Stats) TokensSaved() int64 {
	return s.FullTokens - s.CompactTokens
}

// MCPRequestLog captures one incoming MCP request handled by the server.
type MCPRequestLog struct {
	ID         int64
	Method     string
	ToolName   string
	Success    bool
	ErrorText  string
	DurationMS int64
	CreatedAt  time.Time
}

// SearchEvent records one search tool call and the size of its payload.
type SearchEvent struct {
	ID         string
	ToolName   string
	ResultType string
	Query      string
	Rows       int
	HasMore    bool
	// Compact is false when the full platform results were returned.
	Compact       bool
	FullTokens    int
	CompactTokens int
	CreatedAt     time.Time
}

// SQLiteStore persists request and search logs in SQLite.
type SQLiteStore struct {
	db         *sql.DB
	logger     *log.Logger
	ftsEnabled bool
}

// OpenSQLite opens and initializes the SQLite store.
func OpenSQLite(ctx context.Context, dbPath string, logger *log.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	for _, stmt := range splitSQLStatements(schemaSQL) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			if strings.Contains(strings.ToLower(stmt), "virtual table") {
				s.logger.Warn("FTS5 disabled; search history falls back to LIKE queries", "error", err)
				continue
			}
			return fmt.Errorf("run schema stmt: %w", err)
		}
	}

	s.ftsEnabled = s.hasFTSTable(ctx)
	return nil
}

func splitSQLStatements(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p+";")
	}
	return out
}

func (s *SQLiteStore) hasFTSTable(ctx context.Context) bool {
	const q = `SELECT count(*) FROM sqlite_master WHERE type='table' AND name='search_events_fts'`
	var n int
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// InsertMCPRequestLog stores one request event for admin observability.
func (s *SQLiteStore) InsertMCPRequestLog(ctx context.Context, rec MCPRequestLog) error {
	ts := rec.CreatedAt.UTC()
	if rec.CreatedAt.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO mcp_requests (
		method, tool_name, success, error_text, duration_ms, created_at
	) VALUES (?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(rec.Method),
		strings.TrimSpace(rec.ToolName),
		boolToInt(rec.Success),
		strings.TrimSpace(rec.ErrorText),
		rec.DurationMS,
		formatTime(ts),
	)
	if err != nil {
		return fmt.Errorf("insert mcp request log: %w", err)
	}
	return nil
}

// RecentMCPRequestLogs returns most recent request events in newest-first order.
func (s *SQLiteStore) RecentMCPRequestLogs(ctx context.Context, limit int) ([]MCPRequestLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, method, tool_name, success, error_text, duration_ms, created_at
FROM mcp_requests
ORDER BY created_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list mcp request logs: %w", err)
	}
	defer rows.Close()

	items := make([]MCPRequestLog, 0, limit)
	for rows.Next() {
		var (
			row            MCPRequestLog
			successAsInt   int
			createdAtValue string
		)
		if err := rows.Scan(
			&row.ID,
			&row.Method,
			&row.ToolName,
			&successAsInt,
			&row.ErrorText,
			&row.DurationMS,
			&createdAtValue,
		); err != nil {
			return nil, fmt.Errorf("scan mcp request log: %w", err)
		}
		row.Success = successAsInt == 1
		row.CreatedAt = parseTime(createdAtValue)
		items = append(items, row)
	}
	return items, rows.Err()
}

// InsertSearchEvent stores one search event. A missing ID is generated.
func (s *SQLiteStore) InsertSearchEvent(ctx context.Context, ev SearchEvent) (SearchEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	ev.CreatedAt = ev.CreatedAt.UTC()
	ev.Query = strings.TrimSpace(ev.Query)

	_, err := s.db.ExecContext(ctx, `INSERT INTO search_events (
		id, tool_name, result_type, query_text, row_count, has_more, compact, full_tokens, compact_tokens, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		ev.ToolName,
		ev.ResultType,
		ev.Query,
		ev.Rows,
		boolToInt(ev.HasMore),
		boolToInt(ev.Compact),
		ev.FullTokens,
		ev.CompactTokens,
		formatTime(ev.CreatedAt),
	)
	if err != nil {
		return ev, fmt.Errorf("insert search event: %w", err)
	}

	if s.ftsEnabled && ev.Query != "" {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO search_events_fts(id, query_text) VALUES (?, ?)`,
			ev.ID, ev.Query,
		); err != nil {
			s.logger.Warn("fts insert failed; continuing", "error", err)
		}
	}
	return ev, nil
}

const searchEventColumns = `e.id, e.tool_name, e.result_type, e.query_text, e.row_count, e.has_more, e.compact, e.full_tokens, e.compact_tokens, e.created_at`

// RecentSearchEvents returns search events in newest-first order.
func (s *SQLiteStore) RecentSearchEvents(ctx context.Context, limit int) ([]SearchEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+searchEventColumns+`
FROM search_events e
ORDER BY e.created_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list search events: %w", err)
	}
	return collectSearchEvents(rows, limit)
}

// FindSearchEvents returns past search events whose query matches every
// term of text, newest first.
func (s *SQLiteStore) FindSearchEvents(ctx context.Context, text string, limit int) ([]SearchEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	text = strings.TrimSpace(text)
	terms := tokenizeQueryTerms(text)
	if len(terms) == 0 && text == "" {
		return s.RecentSearchEvents(ctx, limit)
	}

	if len(terms) > 0 && s.ftsEnabled {
		items, err := s.findFTS(ctx, buildFTSMatchQuery(terms), limit)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		if err != nil {
			s.logger.Warn("fts query failed; fallback to LIKE", "error", err)
		}
	}
	return s.findLIKE(ctx, text, terms, limit)
}

func (s *SQLiteStore) findFTS(ctx context.Context, match string, limit int) ([]SearchEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+searchEventColumns+`
FROM search_events_fts
JOIN search_events e ON e.id = search_events_fts.id
WHERE search_events_fts MATCH ?
ORDER BY e.created_at DESC
LIMIT ?`, match, limit)
	if err != nil {
		return nil, err
	}
	return collectSearchEvents(rows, limit)
}

func (s *SQLiteStore) findLIKE(ctx context.Context, text string, terms []string, limit int) ([]SearchEvent, error) {
	q := `SELECT ` + searchEventColumns + `
FROM search_events e
WHERE 1 = 1
`
	args := make([]any, 0, len(terms)+2)
	if len(terms) > 0 {
		for _, term := range terms {
			q += " AND lower(e.query_text) LIKE ?\n"
			args = append(args, "%"+term+"%")
		}
	} else {
		// Punctuation-only input has no terms; match it literally.
		q += " AND e.query_text LIKE ?\n"
		args = append(args, "%"+text+"%")
	}
	q += " ORDER BY e.created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search events like: %w", err)
	}
	return collectSearchEvents(rows, limit)
}

func collectSearchEvents(rows *sql.Rows, limit int) ([]SearchEvent, error) {
	defer rows.Close()
	items := make([]SearchEvent, 0, limit)
	for rows.Next() {
		var (
			ev             SearchEvent
			hasMore        int
			compact        int
			createdAtValue string
		)
		if err := rows.Scan(
			&ev.ID,
			&ev.ToolName,
			&ev.ResultType,
			&ev.Query,
			&ev.Rows,
			&hasMore,
			&compact,
			&ev.FullTokens,
			&ev.CompactTokens,
			&createdAtValue,
		); err != nil {
			return nil, fmt.Errorf("scan search event: %w", err)
		}
		ev.HasMore = hasMore == 1
		ev.Compact = compact == 1
		ev.CreatedAt = parseTime(createdAtValue)
		items = append(items, ev)
	}
	return items, rows.Err()
}

// Stats aggregates request and search counters.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT count(*), coalesce(sum(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) FROM mcp_requests`).
		Scan(&st.Requests, &st.FailedRequests); err != nil {
		return st, fmt.Errorf("request stats: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*),
       coalesce(sum(CASE WHEN compact = 1 THEN row_count ELSE 0 END), 0),
       coalesce(sum(full_tokens), 0),
       coalesce(sum(compact_tokens), 0)
FROM search_events`).Scan(&st.Searches, &st.CompactedRows, &st.FullTokens, &st.CompactTokens); err != nil {
		return st, fmt.Errorf("search stats: %w", err)
	}
	return st, nil
}

// PruneBefore deletes request and search rows created before cutoff and
// returns how many rows were removed.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ts := formatTime(cutoff.UTC())

	res, err := s.db.ExecContext(ctx, `DELETE FROM mcp_requests WHERE created_at < ?`, ts)
	if err != nil {
		return 0, fmt.Errorf("prune mcp requests: %w", err)
	}
	requests, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}

	res, err = s.db.ExecContext(ctx, `DELETE FROM search_events WHERE created_at < ?`, ts)
	if err != nil {
		return requests, fmt.Errorf("prune search events: %w", err)
	}
	searches, err := res.RowsAffected()
	if err != nil {
		return requests, fmt.Errorf("prune rows affected: %w", err)
	}
	if s.ftsEnabled && searches > 0 {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM search_events_fts WHERE id NOT IN (SELECT id FROM search_events)`)
	}
	return requests + searches, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Timestamps are stored as fixed-width RFC 3339 UTC text so that string
// order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	if ts, err := time.Parse(timeLayout, v); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return ts
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
