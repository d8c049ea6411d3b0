package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// goose keeps its settings in package globals.
var migrateMu sync.Mutex

var gooseDialects = map[string]string{
	"sqlite":   "sqlite3",
	"postgres": "postgres",
}

// migrate applies the embedded migrations for the named dialect.
func migrate(ctx context.Context, db *sql.DB, name string) error {
	gd, ok := gooseDialects[name]
	if !ok {
		return fmt.Errorf("no migrations for %q", name)
	}
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(quietLogger{})
	if err := goose.SetDialect(gd); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations/"+name); err != nil {
		return fmt.Errorf("migrate %s: %w", name, err)
	}
	return nil
}

// quietLogger drops goose progress output; fatal conditions still surface.
type quietLogger struct{}

func (quietLogger) Printf(string, ...interface{}) {}

func (quietLogger) Fatalf(format string, v ...interface{}) {
	panic(fmt.Sprintf("goose: "+format, v...))
}
