package kyc

import (
	"errors"
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

var (
	ErrNotFound          = errors.New("kyc submission not found")
	ErrAlreadySubmitted  = errors.New("kyc already submitted")
	ErrIncompleteDetails = errors.New("kyc details incomplete")
)

// Submission is a customer's identity document under review. ApproveAt is the
// earliest moment the submission may flip to approved.
type Submission struct {
	ID             string
	AccountID      string
	DocumentType   string
	DocumentNumber string
	FullName       string
	DateOfBirth    string
	Address        string
	Status         string
	SubmittedAt    time.Time
	ApproveAt      time.Time
	DecidedAt      time.Time
}
