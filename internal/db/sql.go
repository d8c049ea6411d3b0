package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mithrel/quire/pkg/api"
)

// dialect captures what differs between the SQL backends.
type dialect struct {
	name string
	// placeholders rewrites ? markers into the driver's syntax.
	placeholders func(q string) string
	// contains is the substring function: instr / strpos.
	contains string
	// lower folds case for search; SQLite's built-in lower is ASCII only.
	lower string
	// lockRow is appended to the SELECT that precedes an update.
	lockRow string
}

func questionMarks(q string) string { return q }

func dollarNumbers(q string) string {
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// sqlStore implements Store over database/sql for SQLite and Postgres.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

const entryColumns = `id, title, content_md, content_html, created_at, updated_at`

func (s *sqlStore) q(query string) string { return s.d.placeholders(query) }

func (s *sqlStore) Insert(ctx context.Context, e api.Entry) (api.Entry, error) {
	err := WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		row := tx.QueryRowContext(ctx, s.q(`INSERT INTO entries(title, content_md, content_html, created_at, updated_at) VALUES(?,?,?,?,?) RETURNING id`),
			e.Title, e.ContentMD, e.ContentHTML, e.CreatedAt.UTC(), e.UpdatedAt.UTC())
		return row.Scan(&e.ID)
	})
	if err != nil {
		return api.Entry{}, fmt.Errorf("%s insert: %w", s.d.name, err)
	}
	return e, nil
}

func (s *sqlStore) Get(ctx context.Context, id int64) (api.Entry, error) {
	return s.get(ctx, conn(ctx, s.db), id, false)
}

func (s *sqlStore) get(ctx context.Context, q DBTX, id int64, lock bool) (api.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id=?`
	if lock {
		query += s.d.lockRow
	}
	e, err := scanEntry(q.QueryRowContext(ctx, s.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return api.Entry{}, ErrNotFound
	}
	if err != nil {
		return api.Entry{}, fmt.Errorf("%s get: %w", s.d.name, err)
	}
	return e, nil
}

func (s *sqlStore) Update(ctx context.Context, id int64, fn MutateFunc) (api.Entry, error) {
	var out api.Entry
	err := WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		cur, err := s.get(ctx, tx, id, true)
		if err != nil {
			return err
		}
		next := cur
		changed, err := fn(&next)
		if err != nil {
			return err
		}
		if !changed {
			out = cur
			return nil
		}
		res, err := tx.ExecContext(ctx, s.q(`UPDATE entries SET title=?, content_md=?, content_html=?, updated_at=? WHERE id=?`),
			next.Title, next.ContentMD, next.ContentHTML, next.UpdatedAt.UTC(), id)
		if err != nil {
			return fmt.Errorf("%s update: %w", s.d.name, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		next.ID, next.CreatedAt = cur.ID, cur.CreatedAt
		out = next
		return nil
	})
	if err != nil {
		return api.Entry{}, err
	}
	return out, nil
}

func (s *sqlStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := conn(ctx, s.db).ExecContext(ctx, s.q(`DELETE FROM entries WHERE id=?`), id)
	if err != nil {
		return false, fmt.Errorf("%s delete: %w", s.d.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sqlStore) List(ctx context.Context, p api.Page) ([]api.Entry, error) {
	return s.query(ctx, `SELECT `+entryColumns+` FROM entries
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`, p.Limit, p.Offset)
}

func (s *sqlStore) Search(ctx context.Context, q string, p api.Page) ([]api.Entry, error) {
	fn, lower := s.d.contains, s.d.lower
	return s.query(ctx, `SELECT `+entryColumns+` FROM entries
WHERE `+fn+`(`+lower+`(title), `+lower+`(?)) > 0 OR `+fn+`(`+lower+`(content_md), `+lower+`(?)) > 0
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`, q, q, p.Limit, p.Offset)
}

func (s *sqlStore) query(ctx context.Context, query string, args ...any) ([]api.Entry, error) {
	rows, err := conn(ctx, s.db).QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", s.d.name, err)
	}
	defer rows.Close()
	out := []api.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqlStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := conn(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s count: %w", s.d.name, err)
	}
	return n, nil
}

func (s *sqlStore) Close() error { return s.db.Close() }

type scanner interface{ Scan(dest ...any) error }

func scanEntry(r scanner) (api.Entry, error) {
	var e api.Entry
	var created, updated time.Time
	if err := r.Scan(&e.ID, &e.Title, &e.ContentMD, &e.ContentHTML, &created, &updated); err != nil {
		return api.Entry{}, err
	}
	e.CreatedAt, e.UpdatedAt = created.UTC(), updated.UTC()
	return e, nil
}
