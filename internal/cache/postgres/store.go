package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store — кэш в таблице movie_cache; срок жизни считается по часам базы.
type Store struct {
	pool   *pgxpool.Pool
	prefix string
}

func New(pool *pgxpool.Pool, prefix string) *Store {
	return &Store{pool: pool, prefix: prefix}
}

func (s *Store) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM movie_cache
		WHERE key = $1 AND expires_at > now()
	`, s.key(key)).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres get: %w", err)
	}
	return value, true, nil
}

// Set — upsert; перезапись выставляет новый срок от текущего момента.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO movie_cache (key, value, expires_at)
		VALUES ($1, $2, now() + make_interval(secs => $3::double precision))
		ON CONFLICT (key) DO UPDATE SET
			value      = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at
	`, s.key(key), value, ttl.Seconds()); err != nil {
		return fmt.Errorf("postgres set: %w", err)
	}
	return nil
}

// Prune — удаляет просроченные записи, возвращает их число.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM movie_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("postgres prune: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
