package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the journal uses.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresJournal implements Journal using pgxpool.
type PostgresJournal struct {
	pool    Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// the hot path of a tracking cycle.
var preparedStatements = map[string]string{
	"insert_cycle": `INSERT INTO cycles (id, started_at, item_count) VALUES ($1, $2, $3)`,
	"finish_cycle": `UPDATE cycles SET finished_at = $1, checked = $2, alerted = $3 WHERE id = $4`,
	"insert_check": `INSERT INTO checks (id, cycle_id, item, source, status, price, dropped, hit_target, error, checked_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
}

// NewPostgres creates a PostgresJournal with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresJournal, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "journal: parse postgres config")
	}

	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare the hot-path statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "journal: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "journal: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "journal: ping")
	}
	return &PostgresJournal{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS cycles (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ,
	item_count  INTEGER NOT NULL DEFAULT 0,
	checked     INTEGER NOT NULL DEFAULT 0,
	alerted     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS checks (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	cycle_id   TEXT NOT NULL REFERENCES cycles(id),
	item       TEXT NOT NULL,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL,
	price      DOUBLE PRECISION,
	dropped    BOOLEAN NOT NULL DEFAULT false,
	hit_target BOOLEAN NOT NULL DEFAULT false,
	error      TEXT,
	checked_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cycles_started_at ON cycles(started_at);
CREATE INDEX IF NOT EXISTS idx_checks_cycle_id ON checks(cycle_id);
CREATE INDEX IF NOT EXISTS idx_checks_item ON checks(item);
CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
`

func (j *PostgresJournal) Migrate(ctx context.Context) error {
	_, err := j.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "journal: migrate postgres")
}

func (j *PostgresJournal) Close() error {
	if j.closeFn != nil {
		j.closeFn()
	}
	return nil
}

func (j *PostgresJournal) BeginCycle(ctx context.Context, itemCount int) (string, error) {
	id := uuid.New().String()
	_, err := j.pool.Exec(ctx,
		`INSERT INTO cycles (id, started_at, item_count) VALUES ($1, $2, $3)`,
		id, time.Now().UTC(), itemCount,
	)
	if err != nil {
		return "", eris.Wrap(err, "journal: insert cycle")
	}
	return id, nil
}

func (j *PostgresJournal) FinishCycle(ctx context.Context, cycleID string, checked, alerted int) error {
	tag, err := j.pool.Exec(ctx,
		`UPDATE cycles SET finished_at = $1, checked = $2, alerted = $3 WHERE id = $4`,
		time.Now().UTC(), checked, alerted, cycleID,
	)
	if err != nil {
		return eris.Wrapf(err, "journal: finish cycle %s", cycleID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("cycle not found: %s", cycleID)
	}
	return nil
}

func (j *PostgresJournal) RecordCheck(ctx context.Context, c Check) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CheckedAt.IsZero() {
		c.CheckedAt = time.Now().UTC()
	}

	var price *float64
	if c.Status == CheckOK {
		price = &c.Price
	}
	var errMsg *string
	if c.Error != "" {
		errMsg = &c.Error
	}

	_, err := j.pool.Exec(ctx,
		`INSERT INTO checks (id, cycle_id, item, source, status, price, dropped, hit_target, error, checked_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.CycleID, c.Item, string(c.Source), string(c.Status),
		price, c.Dropped, c.HitTarget, errMsg, c.CheckedAt,
	)
	return eris.Wrapf(err, "journal: insert check for %s", c.Item)
}

func (j *PostgresJournal) RecentCycles(ctx context.Context, limit int) ([]Cycle, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.pool.Query(ctx,
		`SELECT id, started_at, finished_at, item_count, checked, alerted
		 FROM cycles ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "journal: recent cycles")
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var c Cycle
		var finished *time.Time
		if err := rows.Scan(&c.ID, &c.StartedAt, &finished, &c.ItemCount, &c.Checked, &c.Alerted); err != nil {
			return nil, eris.Wrap(err, "journal: scan cycle")
		}
		c.FinishedAt = finished
		cycles = append(cycles, c)
	}
	return cycles, eris.Wrap(rows.Err(), "journal: recent cycles iterate")
}

func (j *PostgresJournal) RecentChecks(ctx context.Context, item string, limit int) ([]Check, error) {
	query := `SELECT id, cycle_id, item, source, status, price, dropped, hit_target, error, checked_at
	          FROM checks WHERE true`
	args := []any{}
	argIdx := 1

	if item != "" {
		query += fmt.Sprintf(` AND item = $%d`, argIdx)
		args = append(args, item)
		argIdx++
	}
	query += ` ORDER BY checked_at DESC`

	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := j.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "journal: recent checks")
	}
	defer rows.Close()

	var checks []Check
	for rows.Next() {
		var c Check
		var price *float64
		var errMsg *string
		if err := rows.Scan(&c.ID, &c.CycleID, &c.Item, &c.Source, &c.Status,
			&price, &c.Dropped, &c.HitTarget, &errMsg, &c.CheckedAt); err != nil {
			return nil, eris.Wrap(err, "journal: scan check")
		}
		if price != nil {
			c.Price = *price
		}
		if errMsg != nil {
			c.Error = *errMsg
		}
		checks = append(checks, c)
	}
	return checks, eris.Wrap(rows.Err(), "journal: recent checks iterate")
}
