package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NewsChecker/internal/domain"
	"NewsChecker/internal/ports"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const analysesTable = "analyses"

const schema = `CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	score INTEGER NOT NULL,
	status TEXT NOT NULL,
	result TEXT NOT NULL,
	created_at BIGINT NOT NULL
)`

const indexes = `CREATE INDEX IF NOT EXISTS idx_analyses_url_created ON analyses (url, created_at)`

// Repository persists scored analyses into SQLite or Postgres.
// created_at is stored as unix milliseconds so both drivers compare it the same way.
type Repository struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
}

var _ ports.AnalysisRepository = (*Repository)(nil)

// Open connects to the database and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*Repository, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	repo := NewRepository(db, driver)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewRepository wires a sql.DB implementation.
func NewRepository(db *sql.DB, driver string) *Repository {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &Repository{db: db, driver: driver, builder: builder}
}

// Migrate creates the analyses table when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	for _, stmt := range []string{schema, indexes} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// AlreadyAnalyzed returns the subset of urls scored at or after since.
func (r *Repository) AlreadyAnalyzed(ctx context.Context, urls []string, since time.Time) (map[string]bool, error) {
	result := make(map[string]bool)
	if r.db == nil || len(urls) == 0 {
		return result, nil
	}

	query := r.builder.Select("DISTINCT url").From(analysesTable).
		Where(sq.GtOrEq{"created_at": since.UnixMilli()})
	if r.driver == DriverPostgres {
		query = query.Where("url = ANY(?)", pq.StringArray(urls))
	} else {
		query = query.Where(sq.Eq{"url": urls})
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query analyzed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveAnalysis inserts the analysis, assigning an ID and timestamp when missing.
func (r *Repository) SaveAnalysis(ctx context.Context, analysis domain.Analysis) error {
	if r.db == nil {
		return nil
	}
	if analysis.ID == "" {
		analysis.ID = uuid.NewString()
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(analysis.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = r.builder.Insert(analysesTable).
		Columns("id", "source", "url", "title", "score", "status", "result", "created_at").
		Values(
			analysis.ID,
			string(analysis.Source),
			analysis.URL,
			analysis.Title,
			analysis.Result.Score,
			string(analysis.Result.Status),
			string(payload),
			analysis.CreatedAt.UnixMilli(),
		).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	return nil
}

// ListRecent returns up to limit analyses, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error) {
	if r.db == nil || limit <= 0 {
		return []domain.Analysis{}, nil
	}

	rows, err := r.builder.Select("id", "source", "url", "title", "result", "created_at").
		From(analysesTable).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	analyses := make([]domain.Analysis, 0, limit)
	for rows.Next() {
		var (
			analysis domain.Analysis
			source   string
			payload  string
			created  int64
		)
		if err := rows.Scan(&analysis.ID, &source, &analysis.URL, &analysis.Title, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &analysis.Result); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", analysis.ID, err)
		}
		analysis.Source = domain.AnalysisSource(source)
		analysis.CreatedAt = time.UnixMilli(created).UTC()
		analyses = append(analyses, analysis)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return analyses, nil
}
