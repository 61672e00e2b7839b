// Package history persists the per-item price time series as a single
// JSON snapshot with atomic replace semantics.
package history

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pricedrop/tracker-cli/internal/atomicfile"
	"github.com/pricedrop/tracker-cli/internal/model"
)

// Store reads and writes the history snapshot at Path.
type Store struct {
	Path string

	// MaxPoints caps each item's series at save time. Zero keeps every
	// observation.
	MaxPoints int
}

// NewStore creates a store for the snapshot at path.
func NewStore(path string, maxPoints int) *Store {
	return &Store{Path: path, MaxPoints: maxPoints}
}

// Load reads the snapshot. A missing file is an empty history; corrupt
// content resets to empty with a warning so one bad write never bricks
// the tracker. Other I/O failures are returned.
func (s *Store) Load() (model.History, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.History{}, nil
		}
		return nil, eris.Wrapf(err, "history: read %s", s.Path)
	}

	var h model.History
	if err := json.Unmarshal(data, &h); err != nil {
		zap.L().Warn("history file is corrupt, starting fresh",
			zap.String("path", s.Path),
			zap.Error(err),
		)
		return model.History{}, nil
	}
	if h == nil {
		h = model.History{}
	}
	return h, nil
}

// Save atomically replaces the snapshot. The previous file survives any
// failure before the final rename.
func (s *Store) Save(h model.History) error {
	if s.MaxPoints > 0 {
		h = s.trim(h)
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return eris.Wrap(err, "history: marshal snapshot")
	}
	if err := atomicfile.WriteFile(s.Path, data, 0o644); err != nil {
		return eris.Wrapf(err, "history: save %s", s.Path)
	}
	return nil
}

// trim copies h with each series cut down to the newest MaxPoints.
func (s *Store) trim(h model.History) model.History {
	out := make(model.History, len(h))
	for name, obs := range h {
		if len(obs) > s.MaxPoints {
			obs = obs[len(obs)-s.MaxPoints:]
		}
		out[name] = obs
	}
	return out
}
