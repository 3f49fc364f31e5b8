// Package apperr builds the categorised errors services return. Transport
// layers map the category to a status code.
package apperr

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-social/pkg/interfaces/store"
	goerrors "github.com/goliatone/go-errors"
)

func Invalid(message string) error {
	return goerrors.New(message, goerrors.CategoryValidation).WithCode(http.StatusBadRequest)
}

func NotFound(message string) error {
	return goerrors.New(message, goerrors.CategoryNotFound).WithCode(http.StatusNotFound)
}

func Forbidden(message string) error {
	return goerrors.New(message, goerrors.CategoryAuthz).WithCode(http.StatusForbidden)
}

func Unauthenticated(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).WithCode(http.StatusUnauthorized)
}

func Conflict(message string) error {
	return goerrors.New(message, goerrors.CategoryConflict).WithCode(http.StatusConflict)
}

// Validation converts an ozzo-validation result. A nil err stays nil.
func Validation(err error, message string) error {
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, message).WithCode(http.StatusBadRequest)
}

// Store wraps a repository error, keeping not found and conflict visible to
// callers. A nil err stays nil.
func Store(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, message).WithCode(http.StatusNotFound)
	case errors.Is(err, store.ErrConflict):
		return goerrors.Wrap(err, goerrors.CategoryConflict, message).WithCode(http.StatusConflict)
	default:
		var categorised *goerrors.Error
		if errors.As(err, &categorised) {
			return err
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, message).WithCode(http.StatusInternalServerError)
	}
}

// Status returns the HTTP status for err, 500 when uncategorised.
func Status(err error) int {
	var e *goerrors.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	if e.Code != 0 {
		return e.Code
	}
	switch e.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	return goerrors.HasCategory(err, goerrors.CategoryNotFound)
}

func IsValidation(err error) bool {
	return goerrors.HasCategory(err, goerrors.CategoryValidation)
}

func IsForbidden(err error) bool {
	return goerrors.HasCategory(err, goerrors.CategoryAuthz)
}
