// Package policy decides when a newly observed price is notable.
package policy

import (
	"time"

	"github.com/pricedrop/tracker-cli/internal/model"
)

// Verdict is the outcome of evaluating one observation.
type Verdict struct {
	Drop         bool
	ThresholdHit bool
	PrevPrice    float64
	HasPrev      bool
}

// Evaluate compares newPrice against the item's last recorded observation
// and its threshold. A drop requires at least one prior observation and a
// strictly lower price. The threshold fires at or below the target; zero
// or negative thresholds are the "no target" sentinel and never fire. The
// two signals are independent and may both be set.
func Evaluate(item model.Item, newPrice float64, h model.History) Verdict {
	var v Verdict
	if last, ok := h.Last(item.Name); ok {
		v.HasPrev = true
		v.PrevPrice = last.Price
		v.Drop = newPrice < last.Price
	}
	v.ThresholdHit = item.Threshold > 0 && newPrice <= item.Threshold
	return v
}

// Record appends the observation to the item's series, stamped with the
// current UTC time. Evaluate runs before Record so the comparison sees
// the previous observation, not the new one.
func Record(name string, newPrice float64, h model.History) {
	h.Append(name, model.Observation{Price: newPrice, Timestamp: time.Now().UTC()})
}
