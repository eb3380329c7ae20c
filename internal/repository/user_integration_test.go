//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scamtrace/scamtrace/internal/testutil"
)

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("create"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("email mismatch: got %q, want %q", byID.Email, user.Email)
	}
	if byID.Approved || byID.Admin {
		t.Error("new users must start unapproved and non-admin")
	}
	if byID.ApprovedAt != nil {
		t.Error("approved_at should be nil before approval")
	}

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", byEmail.ID, user.ID)
	}
}

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("dup")
	first := testutil.NewTestUser(t, email)
	second := testutil.NewTestUser(t, email)

	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	if err := repo.CreateUser(ctx, second); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestIntegrationUserRepository_NotFound(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	if _, err := repo.GetUserByID(ctx, ulid.Make().String()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID: expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, testutil.UniqueEmail("missing")); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByEmail: expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationUserRepository_ApproveUser(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("approve"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	first := time.Now().UTC().Truncate(time.Millisecond)
	if err := repo.ApproveUser(ctx, user.ID, first); err != nil {
		t.Fatalf("ApproveUser failed: %v", err)
	}

	approved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if !approved.Approved {
		t.Error("user should be approved")
	}
	if approved.ApprovedAt == nil {
		t.Fatal("approved_at should be set")
	}

	// Re-approval keeps the original timestamp.
	later := first.Add(time.Hour)
	if err := repo.ApproveUser(ctx, user.ID, later); err != nil {
		t.Fatalf("ApproveUser (again) failed: %v", err)
	}

	again, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if !again.ApprovedAt.Equal(*approved.ApprovedAt) {
		t.Errorf("approved_at changed on re-approval: %v vs %v", again.ApprovedAt, approved.ApprovedAt)
	}
}

func TestIntegrationUserRepository_ApproveUnknownUser(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	err := repo.ApproveUser(ctx, ulid.Make().String(), time.Now().UTC())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newUserTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
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

	return ctx, repo
}
