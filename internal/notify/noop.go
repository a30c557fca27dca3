package notify

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// NoopNotifier logs events without publishing them anywhere. Used in
// development and when no event channel is configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

// InvoiceReady implements port.EventNotifier.
func (n *NoopNotifier) InvoiceReady(_ context.Context, loadID, driverID uuid.UUID) {
	log.Printf("notify.NoopNotifier: invoice_ready for load %s (driver %s) dropped, no channel configured", loadID, driverID)
}
