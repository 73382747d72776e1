// storage persists the settings document, either as a json file or as a row in mysql.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("buzzerd.storage")

// Document is a flat string to string mapping, the form settings are stored and submitted in.
type Document map[string]string

// ErrNotFound is returned by Load when nothing was saved yet.
var ErrNotFound = errors.New("settings not found")

type Store interface {
	Load() (Document, error)
	Save(Document) error
}

// SQLStore keeps documents in the settings table, one row per name.
type SQLStore struct {
	ctx  context.Context
	db   *sql.DB
	name string
}

const queryTimeout = 5 * time.Second

// dsn options: ?timeout=1s&readTimeout=5s&writeTimeout=5s
func NewSQLStore(ctx context.Context, dsn, name string) (*SQLStore, error) {
	// Open doesn't validate the DSN, ParseDSN does
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(30 * time.Second)
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(2)

	return &SQLStore{
		ctx:  ctx,
		db:   db,
		name: name,
	}, nil
}

// EnsureSchema creates the settings table if it is missing.
func (s *SQLStore) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(s.ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS settings (
			name VARCHAR(64) NOT NULL PRIMARY KEY,
			document TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (s *SQLStore) Load() (Document, error) {
	ctx, cancel := context.WithTimeout(s.ctx, queryTimeout)
	defer cancel()

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM settings WHERE name = ?`, s.name).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLStore) Save(doc Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(s.ctx, queryTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (name, document) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE document = VALUES(document)
	`, s.name, string(b))
	if err != nil {
		logger.Errorf("saving settings %q failed: %v", s.name, err)
	}
	return err
}

// TestConnection can be used to make sure the DSN actually works
func (s *SQLStore) TestConnection() error {
	ctx, cancel := context.WithTimeout(s.ctx, queryTimeout)
	defer cancel()

	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
