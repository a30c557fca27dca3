package port

import (
	"context"

	"github.com/google/uuid"
)

// EventNotifier publishes pipeline events to an external channel.
// Implementations must be fire-and-forget: a publish failure is logged by the
// implementation and never propagated to the pipeline.
type EventNotifier interface {
	InvoiceReady(ctx context.Context, loadID, driverID uuid.UUID)
}
