// Package service provides business-logic services for the account lifecycle,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ndanilin/filebox/internal/config"
	"github.com/ndanilin/filebox/internal/models"
	"github.com/ndanilin/filebox/internal/repository"
)

// activationCodeLen is the number of digits in an activation code.
const activationCodeLen = 6

// AccountRepository defines the persistence operations required by the
// account service.
type AccountRepository interface {
	// FindByUsername returns the account with the given username,
	// or (nil, nil) if no such account exists.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	// FindByID returns the account with the given id, or (nil, nil).
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	// Insert stores a new account, assigning its id. Returns
	// repository.ErrDuplicateUsername if the username is taken.
	Insert(ctx context.Context, account *models.Account) error
	// Activate atomically flips the account to activated and clears the
	// activation fields when the code matches. It reports whether a row
	// was updated.
	Activate(ctx context.Context, id int64, code string) (bool, error)
	// ClearActivation removes a stale code without activating the account.
	// A zero-row match is a silent no-op.
	ClearActivation(ctx context.Context, id int64) error
}

// AccountService implements registration, activation, and login.
type AccountService struct {
	repo AccountRepository
	// mode selects instant activation or code-required activation.
	mode string
	// codeTTL is how long an issued activation code stays valid.
	codeTTL time.Duration
	// now is the clock; injectable for tests.
	now func() time.Time
	log *zap.Logger
}

// NewAccountService constructs an AccountService.
// mode must be config.ModeInstant or config.ModeCode.
func NewAccountService(repo AccountRepository, mode string, codeTTL time.Duration, log *zap.Logger) *AccountService {
	return &AccountService{
		repo:    repo,
		mode:    mode,
		codeTTL: codeTTL,
		now:     time.Now,
		log:     log,
	}
}

// Register creates a new account. In instant mode the account is created
// already activated; in code mode it is created unactivated and the generated
// activation code is logged, standing in for an out-of-band delivery channel.
func (s *AccountService) Register(ctx context.Context, username, password, confirm string) (*models.Account, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Activated:    true,
	}
	if s.mode == config.ModeCode {
		code, err := generateActivationCode()
		if err != nil {
			return nil, fmt.Errorf("generate activation code: %w", err)
		}
		expires := s.now().Add(s.codeTTL)
		account.Activated = false
		account.ActivationCode = &code
		account.ActivationExpires = &expires
	}

	// The uniqueness check and the insert are a single atomic statement in
	// the repository, so two concurrent registrations of the same name
	// cannot both succeed.
	if err := s.repo.Insert(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if !account.Activated {
		// Stand-in for an email/SMS channel.
		s.log.Info("activation code issued",
			zap.String("username", account.Username),
			zap.Stringp("code", account.ActivationCode),
			zap.Timep("expires", account.ActivationExpires),
		)
	}

	return account, nil
}

// Login verifies credentials and, for unactivated accounts, consumes the
// activation code first. The code checks run before password verification:
// a wrong or expired code fails without revealing whether the password was
// right. On a correct code the account is activated atomically, so a code is
// consumed at most once even under concurrent logins.
func (s *AccountService) Login(ctx context.Context, username, password, activationCode string) (*models.Account, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil {
		// Logged distinctly, reported identically to a wrong password.
		s.log.Debug("login for unknown username", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	if !account.Activated {
		if account.ActivationExpires != nil && account.ActivationExpires.Before(s.now()) {
			// The code is dead either way; drop it now rather than
			// waiting for the background sweep.
			if err := s.repo.ClearActivation(ctx, account.ID); err != nil {
				s.log.Error("failed to clear expired activation code", zap.Error(err))
			}
			return nil, ErrActivationCodeExpired
		}
		if account.ActivationCode == nil || activationCode == "" || activationCode != *account.ActivationCode {
			return nil, ErrActivationCodeInvalid
		}
		ok, err := s.repo.Activate(ctx, account.ID, activationCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Consumed by a concurrent login between the read and the flip.
			return nil, ErrActivationCodeInvalid
		}
		account.Activated = true
		account.ActivationCode = nil
		account.ActivationExpires = nil
		s.log.Info("account activated", zap.Int64("id", account.ID))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.log.Debug("login with wrong password", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// FindByID exposes account lookup for the session gate's per-request re-check.
func (s *AccountService) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// generateActivationCode returns a fixed-length numeric code drawn from
// crypto/rand. Leading zeros are kept.
func generateActivationCode() (string, error) {
	var limit big.Int
	limit.SetInt64(1)
	for i := 0; i < activationCodeLen; i++ {
		limit.Mul(&limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, &limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", activationCodeLen, n), nil
}
