package storage

import (
	"context"
	"fmt"
)

// Tables created by the migration ladder.
var schemaTables = []string{"meta", "categories", "expenses", "budgets"}

// Status describes the schema state of the database.
type Status struct {
	Tables          map[string]bool
	Version         int
	ExpectedVersion int
}

// UpToDate reports whether no migration is pending.
func (st Status) UpToDate() bool {
	return st.Version == st.ExpectedVersion
}

// Status reports the recorded schema version and which tables exist. It does
// not require Init, so it can diagnose a database that failed to migrate.
func (s *SQLiteStorage) Status(ctx context.Context) (Status, error) {
	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return Status{}, err
	}

	names, err := Query(ctx, s, func(row RowScanner) (string, error) {
		var name string
		err := row.Scan(&name)
		return name, err
	}, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return Status{}, fmt.Errorf("failed to list tables: %w", err)
	}

	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}

	st := Status{
		Version:         version,
		ExpectedVersion: ExpectedSchemaVersion,
		Tables:          make(map[string]bool, len(schemaTables)),
	}
	for _, table := range schemaTables {
		st.Tables[table] = present[table]
	}
	return st, nil
}

// SchemaTables lists the tables the migration ladder creates, in creation order.
func SchemaTables() []string {
	return append([]string(nil), schemaTables...)
}
