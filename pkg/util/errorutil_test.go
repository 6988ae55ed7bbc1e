package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestErrorKindsAreDistinguishable(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("empty message", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewNotFound("report", nil), "NOT_FOUND", http.StatusNotFound},
		{NewUnauthorized("login required"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbidden("step-up required"), "FORBIDDEN", http.StatusForbidden},
		{NewConflict("protocol taken", nil), "CONFLICT", http.StatusConflict},
		{NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.True(t, IsKind(tc.err, tc.code), tc.code)
		domainErr := ToDomainError(tc.err)
		assert.Equal(t, tc.status, domainErr.HTTPStatus, tc.code)
	}
}

func TestIsKindSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading thread: %w", NewNotFound("report", nil))
	assert.True(t, IsKind(wrapped, "NOT_FOUND"))
	assert.False(t, IsKind(wrapped, "VALIDATION_FAILED"))
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	domainErr := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestToDomainErrorDefaultsToInternal(t *testing.T) {
	domainErr := ToDomainError(errors.New("disk on fire"))
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
