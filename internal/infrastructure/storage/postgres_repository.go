package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"SiteProfiler/internal/domain"
	"SiteProfiler/internal/ports"
)

// PostgresRepository persists synthesized site configurations: one row in
// the website registry plus the ranked candidate URLs.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ConfigurationRepository = (*PostgresRepository)(nil)

// Open connects to Postgres with the lib/pq driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Exists reports whether the website registry already holds this source
// URL.
func (r *PostgresRepository) Exists(ctx context.Context, sourceURL string) (bool, error) {
	if r.db == nil {
		return false, nil
	}

	query, args, err := r.builder.
		Select("1").
		From("websites").
		Where(sq.Eq{"source_url": sourceURL}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query website: %w", err)
	}
	return true, nil
}

// SaveConfiguration upserts the registry row and replaces the candidate
// URL set in one transaction.
func (r *PostgresRepository) SaveConfiguration(ctx context.Context, cfg domain.SiteConfiguration) error {
	if r.db == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := r.builder.
		Insert("websites").
		Columns("source_url", "site_name", "description", "site_type", "confidence",
			"has_top_nav", "has_side_bar", "has_pagination", "has_search",
			"has_categories", "has_content_table", "generated_at").
		Values(cfg.SourceURL, cfg.SiteName, cfg.Description,
			string(cfg.Detection.SiteType), cfg.Detection.Confidence,
			cfg.Flags[domain.FlagHasTopNav], cfg.Flags[domain.FlagHasSideBar],
			cfg.Flags[domain.FlagHasPagination], cfg.Flags[domain.FlagHasSearch],
			cfg.Flags[domain.FlagHasCategories], cfg.Flags[domain.FlagHasContentGrid],
			cfg.GeneratedAt).
		Suffix(`ON CONFLICT (source_url) DO UPDATE
            SET site_name = EXCLUDED.site_name,
                description = EXCLUDED.description,
                site_type = EXCLUDED.site_type,
                confidence = EXCLUDED.confidence,
                has_top_nav = EXCLUDED.has_top_nav,
                has_side_bar = EXCLUDED.has_side_bar,
                has_pagination = EXCLUDED.has_pagination,
                has_search = EXCLUDED.has_search,
                has_categories = EXCLUDED.has_categories,
                has_content_table = EXCLUDED.has_content_table,
                generated_at = EXCLUDED.generated_at,
                updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build website upsert: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert website: %w", err)
	}

	query, args, err = r.builder.
		Delete("website_urls").
		Where(sq.Eq{"source_url": cfg.SourceURL}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build candidates delete: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete candidates: %w", err)
	}

	if len(cfg.Candidates) > 0 {
		insert := r.builder.
			Insert("website_urls").
			Columns("source_url", "url", "anchor_text", "score", "origin", "position")
		for i, candidate := range cfg.Candidates {
			insert = insert.Values(cfg.SourceURL, candidate.URL, candidate.AnchorText,
				candidate.Score, string(candidate.Origin), i)
		}
		query, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("build candidates insert: %w", err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert candidates: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
