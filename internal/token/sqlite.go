package token

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	logx "github.com/RatTrap1337/Zoho-Attendance-Manager/pkg/logx"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS token (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	access_token TEXT NOT NULL,
	obtained_at  TEXT NOT NULL,
	expires_at   TEXT NOT NULL
);
`

// sqliteStore keeps the token as a single row; every save replaces it.
type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg StoreConfig, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("token store path is required for sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db, log: log}, nil
}

func (s *sqliteStore) Load(ctx context.Context) (*Token, error) {
	var t Token
	var obtained, expires string
	err := s.db.QueryRowContext(ctx,
		`SELECT access_token, obtained_at, expires_at FROM token WHERE id = 1`,
	).Scan(&t.AccessToken, &obtained, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if t.ObtainedAt, err = time.Parse(time.RFC3339Nano, obtained); err != nil {
		return nil, err
	}
	if t.ExpiresAt, err = time.Parse(time.RFC3339Nano, expires); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *sqliteStore) Save(ctx context.Context, t Token) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO token(id, access_token, obtained_at, expires_at) VALUES(1,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
			access_token=excluded.access_token,
			obtained_at=excluded.obtained_at,
			expires_at=excluded.expires_at`,
		t.AccessToken,
		t.ObtainedAt.Format(time.RFC3339Nano),
		t.ExpiresAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
