package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps artifacts in a single table, partitioned by namespace
// (normally the output directory name).
type PostgresStore struct {
	db         *sql.DB
	namespace  string
	schemaOnce sync.Once
	schemaErr  error
}

// OpenPostgres connects through the pgx database/sql driver.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB, namespace string) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	return &PostgresStore{db: db, namespace: namespace}, nil
}

func (s *PostgresStore) Location() string { return "postgres:" + s.namespace }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS perspective_artifacts (
    namespace TEXT NOT NULL,
    name TEXT NOT NULL,
    content BYTEA NOT NULL,
    size BIGINT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    PRIMARY KEY (namespace, name)
);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Exists(ctx context.Context, name string) (bool, error) {
	name, err := checkName(name)
	if err != nil {
		return false, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return false, err
	}
	var one int
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM perspective_artifacts WHERE namespace=$1 AND name=$2`,
		s.namespace, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Put inserts the row in one statement; a conflicting row is left alone
// and reported as ErrExists.
func (s *PostgresStore) Put(ctx context.Context, name string, content []byte) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if content == nil {
		content = []byte{}
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO perspective_artifacts (namespace, name, content, size, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (namespace, name) DO NOTHING
`, s.namespace, name, content, int64(len(content)), time.Now())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExists
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, name string) ([]byte, error) {
	name, err := checkName(name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var content []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT content FROM perspective_artifacts WHERE namespace=$1 AND name=$2`,
		s.namespace, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return content, err
}

func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM perspective_artifacts WHERE namespace=$1 AND name LIKE '%.json' ORDER BY name`,
		s.namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
