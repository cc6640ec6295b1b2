package deposits

import (
	"context"

	"github.com/google/uuid"
)

// Confirmer represents the external payment-confirmation integration that
// gates deposit approval. A production deployment plugs in the real payment
// provider here; the state machine does not change.
type Confirmer interface {
	Confirm(ctx context.Context, dep Deposit) (Confirmation, error)
}

// Confirmation is the provider's verdict on an inbound transfer.
type Confirmation struct {
	Reference string
	Confirmed bool
}

// InstantConfirmer approves every deposit immediately with a synthetic
// reference. It stands in for a real settlement confirmation event and is the
// default wiring.
type InstantConfirmer struct{}

// Confirm approves the deposit unconditionally.
func (InstantConfirmer) Confirm(_ context.Context, _ Deposit) (Confirmation, error) {
	return Confirmation{Reference: uuid.NewString(), Confirmed: true}, nil
}
