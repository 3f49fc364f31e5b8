package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/goliatone/go-social/pkg/interfaces/store"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestStoreMapsSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("lookup: %w", store.ErrNotFound), http.StatusNotFound},
		{"conflict", store.ErrConflict, http.StatusConflict},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Store(tc.err, "op failed")
			if got := Status(err); got != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, got)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected wrapped source to stay visible")
			}
		})
	}
	if Store(nil, "noop") != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestValidation(t *testing.T) {
	input := struct{ Body string }{}
	err := Validation(validation.ValidateStruct(&input,
		validation.Field(&input.Body, validation.Required),
	), "invalid message")
	if !IsValidation(err) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if Status(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", Status(err))
	}
	if Validation(nil, "ok") != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestStatusForCategories(t *testing.T) {
	if Status(Forbidden("no")) != http.StatusForbidden {
		t.Fatalf("expected 403")
	}
	if Status(Unauthenticated("who")) != http.StatusUnauthorized {
		t.Fatalf("expected 401")
	}
	if Status(errors.New("plain")) != http.StatusInternalServerError {
		t.Fatalf("expected 500 for plain errors")
	}
	if !IsNotFound(NotFound("gone")) {
		t.Fatalf("expected not found category")
	}
}
