package deposits

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// StatusCreated is the initial state of a deposit awaiting confirmation.
	StatusCreated = "created"
	// StatusApproved marks a confirmed deposit whose wallet credit happened.
	StatusApproved = "approved"
	// StatusRejected marks a deposit whose confirmation was declined.
	StatusRejected = "rejected"
)

// Deposit records an inbound credit. It transitions out of StatusCreated
// exactly once and credits the wallet exactly once on approval.
type Deposit struct {
	ID          string
	AccountID   string
	Asset       string
	Amount      decimal.Decimal
	Destination string
	Status      string
	CreatedAt   time.Time
	DecidedAt   time.Time
}
