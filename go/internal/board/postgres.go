package board

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PostgresStore keeps each board as a JSONB document row. The catalog is the
// whole table plus the is_active flag.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the boards table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Msg("connected to Postgres board store")
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS boards (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL,
			data      JSONB NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT FALSE
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure boards schema: %w", err)
	}
	return nil
}

// Load assembles the catalog from the boards table. An empty table yields the
// seeded default catalog.
func (s *PostgresStore) Load(ctx context.Context) (*Catalog, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, data, is_active FROM boards`)
	if err != nil {
		return nil, fmt.Errorf("failed to query boards: %w", err)
	}
	defer rows.Close()

	catalog := &Catalog{Boards: make(map[string]*StoredBoard)}
	for rows.Next() {
		var (
			id, name string
			raw      []byte
			active   bool
		)
		if err := rows.Scan(&id, &name, &raw, &active); err != nil {
			return nil, fmt.Errorf("failed to scan board row: %w", err)
		}
		var data BoardData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to parse board %s: %w", id, err)
		}
		catalog.Boards[id] = &StoredBoard{Name: name, Data: data}
		if active {
			catalog.ActiveBoardID = id
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read board rows: %w", err)
	}

	if len(catalog.Boards) == 0 {
		log.Info().Msg("boards table empty, using default catalog")
		return defaultCatalog(), nil
	}
	log.Info().Int("boards", len(catalog.Boards)).Msg("board data loaded from Postgres")
	return catalog, nil
}

// Save replaces the table contents with the catalog in one transaction.
func (s *PostgresStore) Save(ctx context.Context, catalog *Catalog) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM boards`); err != nil {
		return fmt.Errorf("failed to clear boards: %w", err)
	}
	for id, b := range catalog.Boards {
		raw, err := json.Marshal(b.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal board %s: %w", id, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO boards (id, name, data, is_active) VALUES ($1, $2, $3, $4)`,
			id, b.Name, raw, id == catalog.ActiveBoardID,
		); err != nil {
			return fmt.Errorf("failed to insert board %s: %w", id, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit boards: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
