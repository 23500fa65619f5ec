package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// historySchema is the layout version written to schema_version. Bump it
// with every change to schema.sql.
const historySchema = 1

// ErrSchemaMismatch is returned by Open when history.db was written with a
// different layout than this build reads.
var ErrSchemaMismatch = errors.New("history database layout is incompatible")

// initSchema creates the tables in a fresh database and refuses databases
// stamped with another layout version.
func (s *Store) initSchema(ctx context.Context) error {
	stamped, found, err := s.layoutVersion(ctx)
	if err != nil {
		return err
	}
	if !found {
		return s.createSchema(ctx)
	}
	if stamped != historySchema {
		return fmt.Errorf("%w: %s uses layout %d but this build reads layout %d; move the file aside to start a fresh history",
			ErrSchemaMismatch, s.path, stamped, historySchema)
	}
	return nil
}

// layoutVersion reports the stamped version. found is false for a database
// that has never been initialised.
func (s *Store) layoutVersion(ctx context.Context) (version int, found bool, err error) {
	var name string
	err = s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`,
	).Scan(&name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("inspect history layout: %w", err)
	}

	var stamped sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&stamped); err != nil {
		return 0, false, fmt.Errorf("read history layout version: %w", err)
	}
	if !stamped.Valid {
		return 0, true, nil
	}
	return int(stamped.Int64), true, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history layout: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, historySchema); err != nil {
		return fmt.Errorf("stamp history layout: %w", err)
	}
	return tx.Commit()
}
