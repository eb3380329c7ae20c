// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scamtrace/scamtrace/internal/auth"
	"github.com/scamtrace/scamtrace/internal/metrics"
	"github.com/scamtrace/scamtrace/internal/model"
	"github.com/scamtrace/scamtrace/internal/repository"
)

// Account workflow errors.
var (
	ErrCaptchaFailed      = errors.New("captcha verification failed")
	ErrReasonRejected     = errors.New("reason not valid enough")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotApproved        = errors.New("account awaiting admin approval")
	ErrNotAdmin           = errors.New("not authorized as admin")
	ErrUserNotFound       = errors.New("user not found")
)

// reasonKeywords is the allow-list of justification terms. A registration
// reason must contain at least one, case-insensitively.
var reasonKeywords = []string{"investigation", "fraud", "scam", "cyber", "law", "p.i."}

// CaptchaVerifier checks a CAPTCHA proof with an external provider.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// AccountService orchestrates registration, login, and the admin-gated
// approval workflow.
type AccountService struct {
	repo    *repository.Repository
	captcha CaptchaVerifier
	tokens  *auth.TokenIssuer
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(repo *repository.Repository, captcha CaptchaVerifier, tokens *auth.TokenIssuer, recorder metrics.Recorder, logger *slog.Logger) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		repo:    repo,
		captcha: captcha,
		tokens:  tokens,
		metrics: recorder,
		logger:  logger,
	}
}

// RegisterInput defines input for registering an account.
type RegisterInput struct {
	Email        string
	Password     string
	Reason       string
	CaptchaToken string
}

// Register creates a new pending account. The caller must present a valid
// CAPTCHA proof and a justification containing an allow-listed keyword.
// The created user is unapproved and cannot log in until an admin approves
// it; no token is issued here.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.CaptchaToken == "" {
		s.metrics.IncRegistration("rejected")
		return nil, ErrCaptchaFailed
	}

	ok, err := s.captcha.Verify(ctx, input.CaptchaToken)
	if err != nil {
		s.logger.Warn("captcha verification unavailable", slog.String("error", err.Error()))
		s.metrics.IncRegistration("rejected")
		return nil, ErrCaptchaFailed
	}
	if !ok {
		s.metrics.IncRegistration("rejected")
		return nil, ErrCaptchaFailed
	}

	if !reasonAllowed(input.Reason) {
		s.metrics.IncRegistration("rejected")
		return nil, ErrReasonRejected
	}

	// Pre-check for a friendly error; the DB uniqueness constraint is
	// authoritative and catches the race between check and insert.
	if _, err := s.repo.GetUserByEmail(ctx, input.Email); err == nil {
		s.metrics.IncRegistration("rejected")
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        input.Email,
		PasswordHash: hash,
		Reason:       input.Reason,
		Approved:     false,
		Admin:        false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncRegistration("rejected")
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncRegistration("accepted")
	s.logger.Info("registration_pending",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login verifies credentials and returns a signed access token.
// A missing account and a wrong password produce the same
// ErrInvalidCredentials so callers cannot enumerate accounts. Credentials
// are only honored for approved accounts.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin("denied")
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLogin("denied")
		return "", ErrInvalidCredentials
	}

	if !user.Approved {
		s.metrics.IncLogin("denied")
		return "", ErrNotApproved
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLogin("success")
	s.logger.Info("login_success", slog.String("user_id", user.ID))

	return token, nil
}

// Approve marks the target account as approved. The caller identity must
// be an approved admin; the middleware enforces this, and the service
// re-checks it so the invariant does not depend on wiring. Approving an
// already-approved account is a no-op success.
func (s *AccountService) Approve(ctx context.Context, admin *model.Identity, targetID string) error {
	if admin == nil || !admin.Admin || !admin.Approved {
		return ErrNotAdmin
	}

	if err := s.repo.ApproveUser(ctx, targetID, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("approve user: %w", err)
	}

	s.metrics.IncApproval()
	s.logger.Info("user_approved",
		slog.String("user_id", targetID),
		slog.String("approved_by", admin.UserID),
	)

	return nil
}

// reasonAllowed reports whether the justification contains at least one
// allow-listed keyword, case-insensitively.
func reasonAllowed(reason string) bool {
	lowered := strings.ToLower(reason)
	for _, keyword := range reasonKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
