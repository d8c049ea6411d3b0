package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresDialect = dialect{
	name:         "postgres",
	placeholders: dollarNumbers,
	contains:     "strpos",
	lower:        "lower",
	lockRow:      " FOR UPDATE",
}

// openPostgres connects through the pgx database/sql driver and runs migrations.
func openPostgres(ctx context.Context, dsn string) (Store, error) {
	dbh, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	dbh.SetMaxOpenConns(10)
	dbh.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := dbh.PingContext(pingCtx); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh, postgresDialect.name); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqlStore{db: dbh, d: postgresDialect}, nil
}
