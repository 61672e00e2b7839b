//go:build !integration

package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/pricedrop/tracker-cli/internal/model"
)

func sampleHistory() model.History {
	return model.History{
		"Wireless Headphones": {
			{Price: 1099, Timestamp: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)},
			{Price: 999, Timestamp: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)},
		},
		"Mechanical Keyboard": {
			{Price: 3499.50, Timestamp: time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)},
		},
	}
}

func TestFlattenHistory(t *testing.T) {
	rows := flattenHistory(sampleHistory())

	require.Len(t, rows, 3)
	// Items come out in name order, observations in recorded order.
	assert.Equal(t, "Mechanical Keyboard", rows[0].Item)
	assert.InDelta(t, 3499.50, rows[0].Price, 0.001)
	assert.Equal(t, "Wireless Headphones", rows[1].Item)
	assert.InDelta(t, 1099, rows[1].Price, 0.001)
	assert.Equal(t, "Wireless Headphones", rows[2].Item)
	assert.InDelta(t, 999, rows[2].Price, 0.001)
}

func TestFlattenHistoryEmpty(t *testing.T) {
	assert.Empty(t, flattenHistory(model.History{}))
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, exportCSV(path, flattenHistory(sampleHistory())))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"item", "price", "timestamp"}, records[0])
	assert.Equal(t, []string{"Mechanical Keyboard", "3499.5", "2026-08-01T11:00:00Z"}, records[1])
	assert.Equal(t, []string{"Wireless Headphones", "1099", "2026-08-01T10:00:00Z"}, records[2])
	assert.Equal(t, []string{"Wireless Headphones", "999", "2026-08-02T10:00:00Z"}, records[3])
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.xlsx")
	require.NoError(t, exportXLSX(path, flattenHistory(sampleHistory())))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "history", sheet.Name)
	require.Len(t, sheet.Rows, 4)

	assert.Equal(t, "item", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "Mechanical Keyboard", sheet.Rows[1].Cells[0].Value)

	price, err := sheet.Rows[1].Cells[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 3499.50, price, 0.001)

	assert.Equal(t, "2026-08-02T10:00:00Z", sheet.Rows[3].Cells[2].Value)
}
