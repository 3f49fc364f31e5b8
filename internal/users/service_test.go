package users

import (
	"context"
	"testing"

	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/internal/storage/memory"
	goerrors "github.com/goliatone/go-errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Dependencies{Repository: memory.NewUserRepository()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterAndLookup(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	user, err := svc.Register(ctx, RegisterInput{Username: " alice ", Nickname: "Alice"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", user.Username)
	}

	got, err := svc.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got.ID != user.ID || got.DisplayName() != "Alice" {
		t.Fatalf("unexpected user %+v", got)
	}
	if _, err := svc.GetByID(ctx, user.ID); err != nil {
		t.Fatalf("get by id: %v", err)
	}
}

func TestRegisterRejectsDuplicatesAndInvalidNames(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Register(ctx, RegisterInput{Username: "bob"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, RegisterInput{Username: "bob"})
	if !goerrors.HasCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "no spaces"}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, name := range []string{"notifications", "latest", "Latest"} {
		_, err := svc.Register(ctx, RegisterInput{Username: name})
		if !goerrors.HasCategory(err, goerrors.CategoryConflict) {
			t.Fatalf("expected reserved name %q to be rejected, got %v", name, err)
		}
	}
	if _, err := svc.GetByUsername(ctx, "nobody"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
