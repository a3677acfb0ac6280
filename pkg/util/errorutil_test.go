package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorNilStaysNil(t *testing.T) {
	err := MapError(nil)
	// A plain == nil check matters here: a typed-nil *DomainError boxed in
	// the interface would compare non-nil and poison every success path
	// that returns MapError(repoCall()).
	assert.True(t, err == nil, "MapError(nil) must be untyped nil, got %#v", err)
}

func TestMapErrorPassesDomainErrorsThrough(t *testing.T) {
	original := NewForbidden("nope")
	mapped := MapError(original)

	var domainErr *DomainError
	require.True(t, errors.As(mapped, &domainErr))
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	assert.Equal(t, http.StatusForbidden, domainErr.HTTPStatus)
}

func TestMapErrorWrapsNoRowsAsNotFound(t *testing.T) {
	mapped := MapError(pgx.ErrNoRows)

	var domainErr *DomainError
	require.True(t, errors.As(mapped, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestMapErrorWrapsUnknownAsInternal(t *testing.T) {
	mapped := MapError(errors.New("connection refused"))

	var domainErr *DomainError
	require.True(t, errors.As(mapped, &domainErr))
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}
