package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistoryLast(t *testing.T) {
	h := History{}

	_, ok := h.Last("Watch")
	assert.False(t, ok)

	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	h.Append("Watch", Observation{Price: 1299, Timestamp: t0})
	h.Append("Watch", Observation{Price: 999, Timestamp: t0.Add(time.Hour)})

	last, ok := h.Last("Watch")
	assert.True(t, ok)
	assert.Equal(t, 999.0, last.Price)
	assert.Len(t, h["Watch"], 2)
}

func TestHistoryPoints(t *testing.T) {
	h := History{}
	assert.Equal(t, 0, h.Points())

	now := time.Now().UTC()
	h.Append("a", Observation{Price: 1, Timestamp: now})
	h.Append("a", Observation{Price: 2, Timestamp: now})
	h.Append("b", Observation{Price: 3, Timestamp: now})
	assert.Equal(t, 3, h.Points())
}
