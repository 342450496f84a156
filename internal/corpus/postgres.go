package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/postgres"
	"github.com/lib/pq"
)

// PostgresStore keeps the corpus in a table ordered by an explicit position
// column, so the canonical row order survives round trips through the
// database.
type PostgresStore struct {
	client *postgres.Client
	table  string
	logger *slog.Logger
}

func NewPostgresStore(client *postgres.Client, table string) *PostgresStore {
	return &PostgresStore{
		client: client,
		table:  table,
		logger: slog.Default().With("component", "corpus-postgres", "table", table),
	}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.client.DB.QueryContext(ctx, selectSQL(s.table))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.DocID, &e.PageNumber, &e.Text); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", s.table, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", s.table, err)
	}
	s.logger.Info("corpus loaded", "entries", len(entries))
	return entries, nil
}

// Replace swaps the table contents for entries in a single transaction using
// COPY.
func (s *PostgresStore) Replace(ctx context.Context, entries []Entry) error {
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(s.table)); err != nil {
			return fmt.Errorf("clearing %s: %w", s.table, err)
		}
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn(s.table, "position", "doc_id", "page_number", "text"))
		if err != nil {
			return fmt.Errorf("preparing copy into %s: %w", s.table, err)
		}
		for i, e := range entries {
			if _, err := stmt.ExecContext(ctx, i, e.DocID, e.PageNumber, e.Text); err != nil {
				stmt.Close()
				return fmt.Errorf("copying %s: %w", e.Key(), err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("flushing copy into %s: %w", s.table, err)
		}
		return stmt.Close()
	})
	if err != nil {
		return err
	}
	s.logger.Info("corpus replaced", "entries", len(entries))
	return nil
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	position    INTEGER PRIMARY KEY,
	doc_id      TEXT    NOT NULL,
	page_number INTEGER NOT NULL CHECK (page_number > 0),
	text        TEXT    NOT NULL,
	UNIQUE (doc_id, page_number)
)`, pq.QuoteIdentifier(table))
}

func selectSQL(table string) string {
	return fmt.Sprintf("SELECT doc_id, page_number, text FROM %s ORDER BY position", pq.QuoteIdentifier(table))
}
