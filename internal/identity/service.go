package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/laxo-exchange/laxo/internal/ledger"
)

// Service manages account lifecycle. Registration provisions a zeroed wallet
// for every supported asset, so the wallet store's NotFound can only mean an
// invariant violation downstream.
type Service struct {
	repo    Repository
	wallets ledger.Store
}

// NewService creates an identity service.
func NewService(repo Repository, wallets ledger.Store) *Service {
	return &Service{repo: repo, wallets: wallets}
}

// RegisterInput captures the data needed to open an account.
type RegisterInput struct {
	Email    string
	Password string
	Admin    bool
}

// Register creates a new account with a hashed password and its wallets.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, errors.New("a valid email is required")
	}
	if len(input.Password) < 8 {
		return User{}, errors.New("password must be at least 8 characters")
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Name:         email[:strings.Index(email, "@")],
		Email:        email,
		PasswordHash: hash,
		Status:       StatusNew,
		Admin:        input.Admin,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	if err := s.wallets.EnsureWallets(ctx, user.ID); err != nil {
		return User{}, err
	}

	return user, nil
}

// BootstrapAdmin registers the first administrative account. It refuses to
// run once any administrator exists, so the endpoint is a one-shot first-run
// operation.
func (s *Service) BootstrapAdmin(ctx context.Context, input RegisterInput) (User, error) {
	exists, err := s.repo.HasAdmin(ctx)
	if err != nil {
		return User{}, err
	}
	if exists {
		return User{}, ErrAdminExists
	}
	input.Admin = true
	return s.Register(ctx, input)
}

// Authenticate verifies credentials.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		return User{}, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, errors.New("invalid credentials")
	}
	return user, nil
}

// Get fetches a user by identifier.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateStatus moves the account through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	return s.repo.UpdateStatus(ctx, id, status)
}

// MarkFunded promotes an account once a deposit cleared.
func (s *Service) MarkFunded(ctx context.Context, accountID string) error {
	return s.repo.UpdateStatus(ctx, accountID, StatusFunded)
}
