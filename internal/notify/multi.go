package notify

import (
	"context"

	"go.uber.org/zap"
)

// Fanout delivers each alert to every configured sink. A failing sink
// is logged and skipped so the remaining sinks still get the alert.
type Fanout struct {
	sinks []Notifier
}

// NewFanout creates a fan-out over the given sinks.
func NewFanout(sinks ...Notifier) *Fanout {
	return &Fanout{sinks: sinks}
}

// Name implements Notifier.
func (f *Fanout) Name() string { return "fanout" }

// Send implements Notifier. It always returns nil: per-sink failures
// are logged, not propagated.
func (f *Fanout) Send(ctx context.Context, alert Alert) error {
	for _, sink := range f.sinks {
		if err := sink.Send(ctx, alert); err != nil {
			zap.L().Error("notify: sink failed",
				zap.String("sink", sink.Name()),
				zap.String("kind", string(alert.Kind)),
				zap.String("item", alert.Item.Name),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("notify: alert sent",
			zap.String("sink", sink.Name()),
			zap.String("kind", string(alert.Kind)),
			zap.String("item", alert.Item.Name),
		)
	}
	return nil
}
