package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteJournal implements Journal using modernc.org/sqlite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "journal: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "journal: exec %s", pragma)
		}
	}
	return &SQLiteJournal{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS cycles (
	id          TEXT PRIMARY KEY,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME,
	item_count  INTEGER NOT NULL DEFAULT 0,
	checked     INTEGER NOT NULL DEFAULT 0,
	alerted     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS checks (
	id         TEXT PRIMARY KEY,
	cycle_id   TEXT NOT NULL REFERENCES cycles(id),
	item       TEXT NOT NULL,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL,
	price      REAL,
	dropped    INTEGER NOT NULL DEFAULT 0,
	hit_target INTEGER NOT NULL DEFAULT 0,
	error      TEXT,
	checked_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_started_at ON cycles(started_at);
CREATE INDEX IF NOT EXISTS idx_checks_cycle_id ON checks(cycle_id);
CREATE INDEX IF NOT EXISTS idx_checks_item ON checks(item);
CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
`

func (j *SQLiteJournal) Migrate(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "journal: migrate sqlite")
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func (j *SQLiteJournal) BeginCycle(ctx context.Context, itemCount int) (string, error) {
	id := uuid.New().String()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO cycles (id, started_at, item_count) VALUES (?, ?, ?)`,
		id, time.Now().UTC(), itemCount,
	)
	if err != nil {
		return "", eris.Wrap(err, "journal: insert cycle")
	}
	return id, nil
}

func (j *SQLiteJournal) FinishCycle(ctx context.Context, cycleID string, checked, alerted int) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE cycles SET finished_at = ?, checked = ?, alerted = ? WHERE id = ?`,
		time.Now().UTC(), checked, alerted, cycleID,
	)
	if err != nil {
		return eris.Wrapf(err, "journal: finish cycle %s", cycleID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "journal: rows affected")
	}
	if n == 0 {
		return eris.Errorf("cycle not found: %s", cycleID)
	}
	return nil
}

func (j *SQLiteJournal) RecordCheck(ctx context.Context, c Check) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CheckedAt.IsZero() {
		c.CheckedAt = time.Now().UTC()
	}

	price := sql.NullFloat64{Float64: c.Price, Valid: c.Status == CheckOK}
	errMsg := sql.NullString{String: c.Error, Valid: c.Error != ""}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO checks (id, cycle_id, item, source, status, price, dropped, hit_target, error, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CycleID, c.Item, string(c.Source), string(c.Status),
		price, c.Dropped, c.HitTarget, errMsg, c.CheckedAt,
	)
	return eris.Wrapf(err, "journal: insert check for %s", c.Item)
}

func (j *SQLiteJournal) RecentCycles(ctx context.Context, limit int) ([]Cycle, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, item_count, checked, alerted
		 FROM cycles ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "journal: recent cycles")
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var c Cycle
		var finished sql.NullTime
		if err := rows.Scan(&c.ID, &c.StartedAt, &finished, &c.ItemCount, &c.Checked, &c.Alerted); err != nil {
			return nil, eris.Wrap(err, "journal: scan cycle")
		}
		if finished.Valid {
			t := finished.Time
			c.FinishedAt = &t
		}
		cycles = append(cycles, c)
	}
	return cycles, eris.Wrap(rows.Err(), "journal: recent cycles iterate")
}

func (j *SQLiteJournal) RecentChecks(ctx context.Context, item string, limit int) ([]Check, error) {
	query := `SELECT id, cycle_id, item, source, status, price, dropped, hit_target, error, checked_at
	          FROM checks WHERE 1=1`
	var args []any

	if item != "" {
		query += ` AND item = ?`
		args = append(args, item)
	}
	query += ` ORDER BY checked_at DESC LIMIT ?`

	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "journal: recent checks")
	}
	defer rows.Close()

	var checks []Check
	for rows.Next() {
		var c Check
		var price sql.NullFloat64
		var errMsg sql.NullString
		if err := rows.Scan(&c.ID, &c.CycleID, &c.Item, &c.Source, &c.Status,
			&price, &c.Dropped, &c.HitTarget, &errMsg, &c.CheckedAt); err != nil {
			return nil, eris.Wrap(err, "journal: scan check")
		}
		if price.Valid {
			c.Price = price.Float64
		}
		if errMsg.Valid {
			c.Error = errMsg.String
		}
		checks = append(checks, c)
	}
	return checks, eris.Wrap(rows.Err(), "journal: recent checks iterate")
}
