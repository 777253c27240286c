package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type mysqlStore struct {
	db *sqlx.DB
}

// NewMySQLStore returns a Store backed by the document_blob table. Documents
// are capped at 10 MiB upstream, well within LONGBLOB.
func NewMySQLStore(db *sqlx.DB) Store {
	return &mysqlStore{db: db}
}

func (s *mysqlStore) Put(ctx context.Context, key string, data []byte, mimeType string) error {
	const query = `
		INSERT INTO document_blob (blob_key, data, mime_type)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data), mime_type = VALUES(mime_type)
	`

	if _, err := s.db.ExecContext(ctx, query, key, data, mimeType); err != nil {
		return errors.Wrap(err, "put blob")
	}
	return nil
}

func (s *mysqlStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	const query = `
		SELECT data, mime_type FROM document_blob WHERE blob_key = ?
	`

	var row struct {
		Data     []byte `db:"data"`
		MimeType string `db:"mime_type"`
	}
	if err := s.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", errors.Wrap(err, "get blob")
	}

	return row.Data, row.MimeType, nil
}
