// Package notify builds price alerts and delivers them to pluggable
// sinks. Delivery is best-effort: the fan-out logs sink failures and
// never surfaces them to the tracking cycle.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pricedrop/tracker-cli/internal/model"
)

// AlertKind identifies the kind of alert.
type AlertKind string

const (
	AlertPriceDrop AlertKind = "price_drop"
	AlertThreshold AlertKind = "threshold"
)

// Alert represents a single price event worth telling the user about.
type Alert struct {
	Kind      AlertKind  `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Item      model.Item `json:"item"`
	OldPrice  float64    `json:"old_price,omitempty"`
	NewPrice  float64    `json:"new_price"`
	Timestamp time.Time  `json:"timestamp"`
}

// Notifier delivers a single alert to one destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
}

// FormatPrice renders a price as plain digits, no grouping separators.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PriceDropAlert builds the alert for a price that fell below its last
// recorded observation.
func PriceDropAlert(item model.Item, oldPrice, newPrice float64) Alert {
	return Alert{
		Kind:  AlertPriceDrop,
		Title: "📉 Price Drop!",
		Body: fmt.Sprintf("%s\n₹%s -> ₹%s",
			item.Name, FormatPrice(oldPrice), FormatPrice(newPrice)),
		Item:      item,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		Timestamp: time.Now().UTC(),
	}
}

// ThresholdAlert builds the alert for a price at or below the item's
// target.
func ThresholdAlert(item model.Item, newPrice float64) Alert {
	return Alert{
		Kind:  AlertThreshold,
		Title: "🔔 Price Target Reached!",
		Body: fmt.Sprintf("%s\n₹%s (Target: ₹%s)",
			item.Name, FormatPrice(newPrice), FormatPrice(item.Threshold)),
		Item:      item,
		NewPrice:  newPrice,
		Timestamp: time.Now().UTC(),
	}
}
