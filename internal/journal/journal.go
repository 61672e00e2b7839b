// Package journal persists an audit trail of tracking cycles and the
// per-item checks inside them. It is optional: the no-op driver keeps
// the tracker fully functional without a database.
package journal

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pricedrop/tracker-cli/internal/model"
)

// CheckStatus classifies the outcome of a single item check.
type CheckStatus string

const (
	CheckOK      CheckStatus = "ok"
	CheckNoPrice CheckStatus = "no_price"
	CheckSkipped CheckStatus = "skipped"
)

// Cycle is one full pass over the tracked items.
type Cycle struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	ItemCount  int        `json:"item_count"`
	Checked    int        `json:"checked"`
	Alerted    int        `json:"alerted"`
}

// Check is the recorded outcome of checking one item in a cycle.
type Check struct {
	ID        string       `json:"id"`
	CycleID   string       `json:"cycle_id"`
	Item      string       `json:"item"`
	Source    model.Source `json:"source"`
	Status    CheckStatus  `json:"status"`
	Price     float64      `json:"price,omitempty"`
	Dropped   bool         `json:"dropped"`
	HitTarget bool         `json:"hit_target"`
	Error     string       `json:"error,omitempty"`
	CheckedAt time.Time    `json:"checked_at"`
}

// Journal defines the persistence interface for the check audit trail.
type Journal interface {
	BeginCycle(ctx context.Context, itemCount int) (string, error)
	FinishCycle(ctx context.Context, cycleID string, checked, alerted int) error
	RecordCheck(ctx context.Context, check Check) error
	RecentCycles(ctx context.Context, limit int) ([]Cycle, error)
	RecentChecks(ctx context.Context, item string, limit int) ([]Check, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Open constructs the journal for the configured driver and runs its
// migration. An empty or "none" driver yields the no-op journal.
func Open(ctx context.Context, driver, dsn string) (Journal, error) {
	switch driver {
	case "", DriverNone:
		return Nop{}, nil
	case DriverSQLite:
		j, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		if err := j.Migrate(ctx); err != nil {
			j.Close() //nolint:errcheck
			return nil, err
		}
		return j, nil
	case DriverPostgres:
		j, err := NewPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := j.Migrate(ctx); err != nil {
			j.Close() //nolint:errcheck
			return nil, err
		}
		return j, nil
	default:
		return nil, eris.Errorf("journal: unknown driver %q", driver)
	}
}

// Nop is the disabled journal. Every operation succeeds and records
// nothing.
type Nop struct{}

func (Nop) BeginCycle(context.Context, int) (string, error)          { return "", nil }
func (Nop) FinishCycle(context.Context, string, int, int) error      { return nil }
func (Nop) RecordCheck(context.Context, Check) error                 { return nil }
func (Nop) RecentCycles(context.Context, int) ([]Cycle, error)       { return nil, nil }
func (Nop) RecentChecks(context.Context, string, int) ([]Check, error) { return nil, nil }
func (Nop) Migrate(context.Context) error                            { return nil }
func (Nop) Close() error                                             { return nil }
