package withdrawals

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// StatusCreated marks a withdrawal whose funds are reserved pending review.
	StatusCreated = "created"
	// StatusApproved marks a finalized withdrawal; the debit settled.
	StatusApproved = "approved"
	// StatusRejected marks a declined withdrawal; the reservation was released.
	StatusRejected = "rejected"
)

var (
	// ErrNotFound occurs when no withdrawal exists for the identifier.
	ErrNotFound = errors.New("withdrawal not found")

	// ErrAlreadyDecided occurs on an attempt to re-decide a withdrawal.
	ErrAlreadyDecided = errors.New("withdrawal already decided")

	// ErrForbidden occurs when the caller lacks the administrative capability
	// required to decide withdrawals.
	ErrForbidden = errors.New("administrator capability required")
)

// Withdrawal records an outbound debit request. Funds are reserved on
// creation and either settled (approved) or released (rejected) by a single
// administrative decision.
type Withdrawal struct {
	ID          string
	AccountID   string
	Asset       string
	Amount      decimal.Decimal
	Destination string
	Status      string
	CreatedAt   time.Time
	DecidedAt   time.Time
}
