package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-scout/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS discovery_cache (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	normalized_name TEXT NOT NULL UNIQUE,
	result          JSONB NOT NULL,
	discovered_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS crawl_cache (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	site_url   TEXT NOT NULL UNIQUE,
	result     JSONB NOT NULL,
	crawled_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_discovery_cache_name ON discovery_cache(normalized_name);
CREATE INDEX IF NOT EXISTS idx_discovery_cache_expires_at ON discovery_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_crawl_cache_site_url ON crawl_cache(site_url);
CREATE INDEX IF NOT EXISTS idx_crawl_cache_expires_at ON crawl_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) GetDiscovery(ctx context.Context, normalizedName string) (*model.DiscoveryResult, error) {
	var resultJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM discovery_cache
		 WHERE normalized_name = $1 AND expires_at > now()`,
		normalizedName,
	).Scan(&resultJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get discovery")
	}

	var result model.DiscoveryResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal discovery result")
	}
	return &result, nil
}

func (s *PostgresStore) PutDiscovery(ctx context.Context, result *model.DiscoveryResult, ttl time.Duration) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal discovery result")
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO discovery_cache (id, normalized_name, result, discovered_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (normalized_name) DO UPDATE SET result = $3, discovered_at = $4, expires_at = $5`,
		uuid.New().String(), result.NormalizedName, resultJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: put discovery")
}

func (s *PostgresStore) DeleteDiscovery(ctx context.Context, normalizedName string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM discovery_cache WHERE normalized_name = $1`,
		normalizedName,
	)
	return eris.Wrap(err, "postgres: delete discovery")
}

func (s *PostgresStore) GetCachedCrawl(ctx context.Context, siteURL string) (*model.CrawlResult, error) {
	var resultJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM crawl_cache
		 WHERE site_url = $1 AND expires_at > now()`,
		siteURL,
	).Scan(&resultJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get cached crawl")
	}

	var result model.CrawlResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal crawl result")
	}
	return &result, nil
}

func (s *PostgresStore) PutCachedCrawl(ctx context.Context, result *model.CrawlResult, ttl time.Duration) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal crawl result")
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO crawl_cache (id, site_url, result, crawled_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (site_url) DO UPDATE SET result = $3, crawled_at = $4, expires_at = $5`,
		uuid.New().String(), result.SiteURL, resultJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: put cached crawl")
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int, error) {
	total := 0
	for _, table := range []string{"discovery_cache", "crawl_cache"} {
		tag, err := s.pool.Exec(ctx,
			`DELETE FROM `+table+` WHERE expires_at <= now()`,
		)
		if err != nil {
			return total, eris.Wrapf(err, "postgres: delete expired %s", table)
		}
		total += int(tag.RowsAffected())
	}
	return total, nil
}
