package identity

import "time"

const (
	// StatusNew marks a freshly registered account.
	StatusNew = "new"
	// StatusKYCPending marks an account with verification under review.
	StatusKYCPending = "kyc_pending"
	// StatusKYCVerified marks an account whose verification was approved.
	StatusKYCVerified = "kyc_verified"
	// StatusFunded marks an account that holds custodial funds.
	StatusFunded = "funded"
)

// User represents a registered account holder. The ledger never sees this
// type; it only ever receives the account identifier.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Status       string
	Admin        bool
	CreatedAt    time.Time
}

// Credentials is the login request structure.
type Credentials struct {
	Email    string
	Password string
}
