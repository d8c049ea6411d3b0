package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name:         "sqlite",
	placeholders: questionMarks,
	contains:     "instr",
	lower:        "quire_lower",
}

func init() {
	// Unicode case folding, so search matches the other backends.
	sqlite.MustRegisterDeterministicScalarFunction("quire_lower", 1, foldLower)
}

func foldLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	case nil:
		return nil, nil
	default:
		return v, nil
	}
}

// sqlitePath strips the scheme and expands a leading ~/.
func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite://"), "sqlite3://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}

// openSQLite connects to a SQLite database using modernc.org/sqlite driver and ensures schema exists.
func openSQLite(ctx context.Context, dsn string) (Store, error) {
	path := sqlitePath(dsn)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dbh, err := sql.Open("sqlite", path+"?_time_format=sqlite")
	if err != nil {
		return nil, err
	}
	// one connection: writers are serialized and a read-then-write
	// transaction never has to upgrade its lock
	dbh.SetMaxOpenConns(1)
	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`PRAGMA foreign_keys=ON;`,
	} {
		if _, err := dbh.ExecContext(ctx, pragma); err != nil {
			_ = dbh.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, dbh, sqliteDialect.name); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqlStore{db: dbh, d: sqliteDialect}, nil
}
