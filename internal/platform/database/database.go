package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// Conn is the process-wide database session. It is created once at startup and
// passed explicitly to whoever needs it; Reconnect swaps the underlying pool in
// place so holders of the Conn keep working.
type Conn struct {
	mu   sync.RWMutex
	db   *sqlx.DB
	opts Options
}

func Open(ctx context.Context, opts Options) (*Conn, error) {
	if opts.Driver != DriverPostgres && opts.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if opts.DSN == "" {
		return nil, errors.New("database DSN is required")
	}
	db, err := connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Conn{db: db, opts: opts}, nil
}

// ErrInMemoryReconnect is returned by Reconnect on an in-memory SQLite
// database: a new pool would open a fresh, empty database.
var ErrInMemoryReconnect = errors.New("cannot reconnect an in-memory sqlite database")

// sqliteDSN makes the driver run the foreign key pragma on every connection
// it opens, not only the first.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func inMemory(dsn string) bool {
	name, query, _ := strings.Cut(dsn, "?")
	return name == "" || strings.Contains(name, ":memory:") || strings.Contains(query, "mode=memory")
}

func connect(ctx context.Context, opts Options) (*sqlx.DB, error) {
	dsn := opts.DSN
	if opts.Driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}
	db, err := sqlx.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// An in-memory database lives and dies with its only connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		maxOpen := opts.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 1
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// DB returns the current pool.
func (c *Conn) DB() *sqlx.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

func (c *Conn) Driver() string {
	return c.opts.Driver
}

func (c *Conn) Ping(ctx context.Context) error {
	return c.DB().PingContext(ctx)
}

// Reconnect opens a fresh pool and replaces the current one. The old pool is
// closed only after the new one answers a ping; on failure the old pool stays.
// In-memory SQLite cannot be reopened and yields ErrInMemoryReconnect.
func (c *Conn) Reconnect(ctx context.Context) error {
	if c.opts.Driver == DriverSQLite && inMemory(c.opts.DSN) {
		return ErrInMemoryReconnect
	}
	db, err := connect(ctx, c.opts)
	if err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}

	c.mu.Lock()
	old := c.db
	c.db = db
	c.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
