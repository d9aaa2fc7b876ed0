package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-scout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS discovery_cache (
	id              TEXT PRIMARY KEY,
	normalized_name TEXT NOT NULL UNIQUE,
	result          TEXT NOT NULL,
	discovered_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS crawl_cache (
	id         TEXT PRIMARY KEY,
	site_url   TEXT NOT NULL UNIQUE,
	result     TEXT NOT NULL,
	crawled_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_discovery_cache_name ON discovery_cache(normalized_name);
CREATE INDEX IF NOT EXISTS idx_discovery_cache_expires_at ON discovery_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_crawl_cache_site_url ON crawl_cache(site_url);
CREATE INDEX IF NOT EXISTS idx_crawl_cache_expires_at ON crawl_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetDiscovery(ctx context.Context, normalizedName string) (*model.DiscoveryResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT result FROM discovery_cache
		 WHERE normalized_name = ? AND expires_at > datetime('now')`,
		normalizedName,
	)

	var resultJSON string
	err := row.Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get discovery")
	}

	var result model.DiscoveryResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal discovery result")
	}
	return &result, nil
}

func (s *SQLiteStore) PutDiscovery(ctx context.Context, result *model.DiscoveryResult, ttl time.Duration) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal discovery result")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO discovery_cache (id, normalized_name, result, discovered_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (normalized_name) DO UPDATE SET result = excluded.result,
		   discovered_at = excluded.discovered_at, expires_at = excluded.expires_at`,
		uuid.New().String(), result.NormalizedName, string(resultJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: put discovery")
}

func (s *SQLiteStore) DeleteDiscovery(ctx context.Context, normalizedName string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM discovery_cache WHERE normalized_name = ?`,
		normalizedName,
	)
	return eris.Wrap(err, "sqlite: delete discovery")
}

func (s *SQLiteStore) GetCachedCrawl(ctx context.Context, siteURL string) (*model.CrawlResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT result FROM crawl_cache
		 WHERE site_url = ? AND expires_at > datetime('now')`,
		siteURL,
	)

	var resultJSON string
	err := row.Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached crawl")
	}

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal crawl result")
	}
	return &result, nil
}

func (s *SQLiteStore) PutCachedCrawl(ctx context.Context, result *model.CrawlResult, ttl time.Duration) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal crawl result")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO crawl_cache (id, site_url, result, crawled_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (site_url) DO UPDATE SET result = excluded.result,
		   crawled_at = excluded.crawled_at, expires_at = excluded.expires_at`,
		uuid.New().String(), result.SiteURL, string(resultJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: put cached crawl")
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int, error) {
	total := 0
	for _, table := range []string{"discovery_cache", "crawl_cache"} {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE expires_at <= datetime('now')`,
		)
		if err != nil {
			return total, eris.Wrapf(err, "sqlite: delete expired %s", table)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, eris.Wrap(err, "sqlite: rows affected")
		}
		total += int(n)
	}
	return total, nil
}
