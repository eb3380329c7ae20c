//go:build integration

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scamtrace/scamtrace/internal/auth"
	"github.com/scamtrace/scamtrace/internal/model"
	"github.com/scamtrace/scamtrace/internal/repository"
	"github.com/scamtrace/scamtrace/internal/testutil"
)

// ============================================================================
// Account Workflow Integration Tests
// ============================================================================

func TestIntegrationAccount_RegisterLoginApproveFlow(t *testing.T) {
	ctx, repo, svc := newAccountTestEnv(t)

	email := testutil.UniqueEmail("flow")
	input := RegisterInput{
		Email:        email,
		Password:     "s3cret-Pa55word",
		Reason:       "fraud investigation",
		CaptchaToken: "proof",
	}

	user, err := svc.Register(ctx, input)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Approved {
		t.Error("new registrations must start unapproved")
	}
	if user.Admin {
		t.Error("new registrations must not be admin")
	}

	// Correct credentials are refused until approval.
	if _, err := svc.Login(ctx, email, input.Password); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved before approval, got %v", err)
	}

	admin := seedAdmin(t, ctx, repo)
	if err := svc.Approve(ctx, admin, user.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	token, err := svc.Login(ctx, email, input.Password)
	if err != nil {
		t.Fatalf("Login after approval failed: %v", err)
	}

	subject, err := svc.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if subject != email {
		t.Errorf("token subject mismatch: got %q, want %q", subject, email)
	}

	// Approval is idempotent.
	if err := svc.Approve(ctx, admin, user.ID); err != nil {
		t.Fatalf("re-approving should be a no-op success, got %v", err)
	}
}

func TestIntegrationAccount_DuplicateEmail(t *testing.T) {
	ctx, _, svc := newAccountTestEnv(t)

	email := testutil.UniqueEmail("dup")
	input := RegisterInput{
		Email:        email,
		Password:     "s3cret-Pa55word",
		Reason:       "scam report",
		CaptchaToken: "proof",
	}

	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestIntegrationAccount_LoginDoesNotEnumerate(t *testing.T) {
	ctx, _, svc := newAccountTestEnv(t)

	email := testutil.UniqueEmail("enum")
	if _, err := svc.Register(ctx, RegisterInput{
		Email:        email,
		Password:     "s3cret-Pa55word",
		Reason:       "scam report",
		CaptchaToken: "proof",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, missingErr := svc.Login(ctx, testutil.UniqueEmail("absent"), "whatever")
	_, wrongErr := svc.Login(ctx, email, "wrong-password")

	if !errors.Is(missingErr, ErrInvalidCredentials) {
		t.Errorf("missing account: expected ErrInvalidCredentials, got %v", missingErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", wrongErr)
	}
}

func TestIntegrationAccount_ApproveUnknownTarget(t *testing.T) {
	ctx, repo, svc := newAccountTestEnv(t)

	admin := seedAdmin(t, ctx, repo)
	err := svc.Approve(ctx, admin, ulid.Make().String())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newAccountTestEnv(t *testing.T) (context.Context, *repository.Repository, *AccountService) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetUsersSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset users schema: %v", err)
	}

	tokens := auth.NewTokenIssuer("integration-test-secret", time.Hour)
	svc := NewAccountService(repo, &fakeVerifier{ok: true}, tokens, nil, discardLogger())

	return ctx, repo, svc
}

func seedAdmin(t *testing.T, ctx context.Context, repo *repository.Repository) *model.Identity {
	t.Helper()

	hash, err := auth.HashPassword("admin-password")
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}

	now := time.Now().UTC()
	admin := &model.User{
		ID:           ulid.Make().String(),
		Email:        testutil.UniqueEmail("admin"),
		PasswordHash: hash,
		Reason:       "bootstrap admin",
		Approved:     true,
		Admin:        true,
		ApprovedAt:   &now,
		CreatedAt:    now,
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	return &model.Identity{
		UserID:   admin.ID,
		Email:    admin.Email,
		Admin:    true,
		Approved: true,
	}
}
