package notify

import (
	"context"

	"github.com/gen2brain/beeep"
	"github.com/rotisserie/eris"
)

// Desktop shows alerts as native desktop notifications.
type Desktop struct{}

// NewDesktop creates the desktop notification sink.
func NewDesktop() Desktop { return Desktop{} }

// Name implements Notifier.
func (Desktop) Name() string { return "desktop" }

// Send implements Notifier.
func (Desktop) Send(_ context.Context, alert Alert) error {
	if err := beeep.Notify(alert.Title, alert.Body, ""); err != nil {
		return eris.Wrap(err, "notify: desktop notification")
	}
	return nil
}
