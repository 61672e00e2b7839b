package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenNone(t *testing.T) {
	j, err := Open(context.Background(), "none", "")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, j)

	j, err = Open(context.Background(), "", "")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, j)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestOpenSQLiteMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "j.db")
	j, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() }) //nolint:errcheck

	id, err := j.BeginCycle(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestNopJournal(t *testing.T) {
	var j Journal = Nop{}
	ctx := context.Background()

	id, err := j.BeginCycle(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, id)

	assert.NoError(t, j.FinishCycle(ctx, id, 0, 0))
	assert.NoError(t, j.RecordCheck(ctx, Check{Item: "x"}))

	cycles, err := j.RecentCycles(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, cycles)

	checks, err := j.RecentChecks(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, checks)

	assert.NoError(t, j.Migrate(ctx))
	assert.NoError(t, j.Close())
}
