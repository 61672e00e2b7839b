package model

import "time"

// Observation is one recorded price point. Immutable once recorded.
type Observation struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// History maps an item name to its chronological price observations.
// Item name, not URL, is the stable key: URLs drift (affiliate tags,
// mobile hosts) while a user's item name does not.
type History map[string][]Observation

// Last returns the most recent observation for name.
func (h History) Last(name string) (Observation, bool) {
	obs := h[name]
	if len(obs) == 0 {
		return Observation{}, false
	}
	return obs[len(obs)-1], true
}

// Append adds an observation to the end of name's series, creating the
// series on first use.
func (h History) Append(name string, obs Observation) {
	h[name] = append(h[name], obs)
}

// Points returns the total observation count across all items.
func (h History) Points() int {
	n := 0
	for _, obs := range h {
		n += len(obs)
	}
	return n
}
