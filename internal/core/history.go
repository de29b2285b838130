package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultHistoryLimit is the page size used when a filter leaves Limit unset.
const DefaultHistoryLimit = 50

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is what history keeps about one validation. File contents and
// cell values are never stored.
type RunSummary struct {
	ID             string    `json:"id"`
	FileName       string    `json:"fileName"`
	Project        string    `json:"project"`
	Fingerprint    string    `json:"fingerprint"`
	SizeBytes      int64     `json:"sizeBytes"`
	Encoding       string    `json:"encoding,omitempty"`
	Outcome        string    `json:"outcome"`
	StructuralKind string    `json:"structuralKind,omitempty"`
	Rows           int       `json:"rows"`
	Findings       int       `json:"findings"`
	Warnings       int       `json:"warnings"`
	DurationMS     int64     `json:"durationMs"`
	ClientIP       string    `json:"clientIp,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RunFilter narrows a history listing. Empty fields match everything.
type RunFilter struct {
	Project string
	Outcome string
	Limit   int
	Offset  int
}

func (f RunFilter) matches(r RunSummary) bool {
	if f.Project != "" && f.Project != r.Project {
		return false
	}
	if f.Outcome != "" && f.Outcome != r.Outcome {
		return false
	}
	return true
}

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultHistoryLimit
	}
	return f.Limit
}

// RunStore persists run summaries. Listings are newest first.
type RunStore interface {
	Save(ctx context.Context, run RunSummary) error
	List(ctx context.Context, filter RunFilter) ([]RunSummary, error)
	Get(ctx context.Context, id string) (RunSummary, error)

	// Prune deletes runs created before cutoff and reports how many went.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// ----------------------------------------------------------------------------
// In-memory store
// ----------------------------------------------------------------------------

// MemoryRunStore keeps the most recent runs in a bounded ring.
type MemoryRunStore struct {
	mu    sync.RWMutex
	runs  []RunSummary // oldest first
	limit int
}

// NewMemoryRunStore keeps at most limit runs; older ones are dropped.
func NewMemoryRunStore(limit int) *MemoryRunStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryRunStore{limit: limit}
}

func (m *MemoryRunStore) Save(_ context.Context, run RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, run)
	if over := len(m.runs) - m.limit; over > 0 {
		m.runs = append(m.runs[:0], m.runs[over:]...)
	}
	return nil
}

func (m *MemoryRunStore) List(_ context.Context, filter RunFilter) ([]RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]RunSummary, 0)
	skipped := 0
	for i := len(m.runs) - 1; i >= 0 && len(result) < filter.limit(); i-- {
		if !filter.matches(m.runs[i]) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		result = append(result, m.runs[i])
	}
	return result, nil
}

func (m *MemoryRunStore) Get(_ context.Context, id string) (RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].ID == id {
			return m.runs[i], nil
		}
	}
	return RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
}

func (m *MemoryRunStore) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.runs[:0]
	for _, r := range m.runs {
		if !r.CreatedAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	removed := int64(len(m.runs) - len(kept))
	clear(m.runs[len(kept):])
	m.runs = kept
	return removed, nil
}

// ----------------------------------------------------------------------------
// PostgreSQL store
// ----------------------------------------------------------------------------

const createRunsTable = `CREATE TABLE IF NOT EXISTS validation_runs (
	id              UUID PRIMARY KEY,
	file_name       TEXT NOT NULL,
	project         TEXT NOT NULL,
	fingerprint     TEXT NOT NULL,
	size_bytes      BIGINT NOT NULL,
	encoding        TEXT,
	outcome         TEXT NOT NULL,
	structural_kind TEXT,
	row_count       INTEGER NOT NULL,
	finding_count   INTEGER NOT NULL,
	warning_count   INTEGER NOT NULL,
	duration_ms     BIGINT NOT NULL,
	client_ip       TEXT,
	user_agent      TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS validation_runs_created_at_idx ON validation_runs (created_at DESC);
CREATE INDEX IF NOT EXISTS validation_runs_project_idx ON validation_runs (project, created_at DESC);`

const runColumns = `id::text, file_name, project, fingerprint, size_bytes, encoding, outcome,
	structural_kind, row_count, finding_count, warning_count, duration_ms,
	client_ip, user_agent, created_at`

// PgRunStore keeps run history in the validation_runs table.
type PgRunStore struct {
	pool *pgxpool.Pool
}

// NewPgRunStore wraps an open pool. Call EnsureSchema before first use.
func NewPgRunStore(pool *pgxpool.Pool) *PgRunStore {
	return &PgRunStore{pool: pool}
}

// EnsureSchema creates the history table and its indexes if missing.
func (p *PgRunStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("create validation_runs: %w", err)
	}
	return nil
}

func (p *PgRunStore) Save(ctx context.Context, run RunSummary) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO validation_runs (
		id, file_name, project, fingerprint, size_bytes, encoding, outcome,
		structural_kind, row_count, finding_count, warning_count, duration_ms,
		client_ip, user_agent, created_at
	) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		run.ID, run.FileName, run.Project, run.Fingerprint, run.SizeBytes,
		toPgText(run.Encoding), run.Outcome, toPgText(run.StructuralKind),
		run.Rows, run.Findings, run.Warnings, run.DurationMS,
		toPgText(run.ClientIP), toPgText(run.UserAgent), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

func (p *PgRunStore) List(ctx context.Context, filter RunFilter) ([]RunSummary, error) {
	query, args := listRunsQuery(filter)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]RunSummary, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, run)
	}
	return result, rows.Err()
}

func (p *PgRunStore) Get(ctx context.Context, id string) (RunSummary, error) {
	row := p.pool.QueryRow(ctx, "SELECT "+runColumns+" FROM validation_runs WHERE id::text = $1", id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

func (p *PgRunStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, "DELETE FROM validation_runs WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// listRunsQuery builds the filtered, paginated listing query.
func listRunsQuery(filter RunFilter) (string, []any) {
	wb := newWhereBuilder()
	wb.Add("project", filter.Project)
	wb.Add("outcome", filter.Outcome)
	where, args := wb.Build()

	query := "SELECT " + runColumns + " FROM validation_runs" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", wb.NextArgIndex(), wb.NextArgIndex()+1)
	return query, append(args, filter.limit(), max(filter.Offset, 0))
}

func scanRun(row pgx.Row) (RunSummary, error) {
	var (
		run                                 RunSummary
		encoding, kind, clientIP, userAgent pgtype.Text
	)
	err := row.Scan(
		&run.ID, &run.FileName, &run.Project, &run.Fingerprint, &run.SizeBytes,
		&encoding, &run.Outcome, &kind, &run.Rows, &run.Findings, &run.Warnings,
		&run.DurationMS, &clientIP, &userAgent, &run.CreatedAt,
	)
	if err != nil {
		return RunSummary{}, err
	}
	run.Encoding = encoding.String
	run.StructuralKind = kind.String
	run.ClientIP = clientIP.String
	run.UserAgent = userAgent.String
	return run, nil
}

// toPgText maps "" to NULL.
func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// whereBuilder assembles an AND-joined WHERE clause with numbered
// placeholders. Empty values are skipped.
type whereBuilder struct {
	conditions []string
	args       []any
}

func newWhereBuilder() *whereBuilder {
	return &whereBuilder{}
}

// Add appends "column = $n" when value is non-empty. column must be a
// trusted identifier.
func (w *whereBuilder) Add(column, value string) {
	if value == "" {
		return
	}
	w.args = append(w.args, value)
	w.conditions = append(w.conditions, fmt.Sprintf("%s = $%d", column, len(w.args)))
}

// Build returns the clause (with a leading space, or "") and its args.
func (w *whereBuilder) Build() (string, []any) {
	if len(w.conditions) == 0 {
		return "", w.args
	}
	return " WHERE " + strings.Join(w.conditions, " AND "), w.args
}

// NextArgIndex is the placeholder number the next argument will take.
func (w *whereBuilder) NextArgIndex() int {
	return len(w.args) + 1
}
