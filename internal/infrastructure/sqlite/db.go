package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// busyTimeout is how long a writer waits on a locked database before failing.
const busyTimeout = 5 * time.Second

// DB wraps the database/sql handle of an embedded SQLite store.
type DB struct {
	SqlDB *sql.DB
}

// DSN appends the pragmas every connection needs: WAL journaling, foreign keys
// and a busy timeout so concurrent writers queue instead of failing.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path, sep, busyTimeout.Milliseconds())
}

// Open opens a SQLite database at the given path and checks it is reachable.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer; one connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.SqlDB.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Users returns a UserRepository bound to this database.
func (d *DB) Users() *UserRepository {
	return NewUserRepository(d)
}
