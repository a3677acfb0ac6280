package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottocrm/ottocrm/internal/domain"
	"github.com/ottocrm/ottocrm/internal/policy"
	apperrors "github.com/ottocrm/ottocrm/pkg/util"
)

type stubAccountRepo struct {
	accounts map[string]*domain.Account
}

func (r *stubAccountRepo) Create(context.Context, *domain.Account) error { return nil }

func (r *stubAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return account, nil
}

func (r *stubAccountRepo) GetByEmail(context.Context, string) (*domain.Account, error) {
	return nil, pgx.ErrNoRows
}

func (r *stubAccountRepo) UpdatePassword(context.Context, string, string) error { return nil }

func (r *stubAccountRepo) List(context.Context) ([]domain.Account, error) { return nil, nil }

type stubProfileRepo struct {
	profiles map[string]*domain.UserProfile
}

func (r *stubProfileRepo) Create(context.Context, *domain.UserProfile) error { return nil }

func (r *stubProfileRepo) Update(context.Context, *domain.UserProfile) error { return nil }

func (r *stubProfileRepo) GetByID(_ context.Context, id string) (*domain.UserProfile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return profile, nil
}

func (r *stubProfileRepo) ListByRoles(context.Context, ...domain.Role) ([]domain.UserProfile, error) {
	return nil, nil
}

func newTestApp(m *AuthMiddleware) (*fiber.App, *policy.Principal) {
	var captured policy.Principal
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Code})
		},
	})
	app.Get("/whoami", m.Handle, func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		captured = principal
		return c.SendStatus(http.StatusOK)
	})
	return app, &captured
}

func TestMiddlewareResolvesRoleFromProfile(t *testing.T) {
	tokens := NewTokenManager("secret", 60)
	accounts := &stubAccountRepo{accounts: map[string]*domain.Account{
		"acct-1": {ID: "acct-1", Email: "agent@example.com"},
	}}
	profiles := &stubProfileRepo{profiles: map[string]*domain.UserProfile{
		"acct-1": {ID: "acct-1", Role: domain.RoleAgent, FullName: "Avery Agent"},
	}}
	app, captured := newTestApp(NewAuthMiddleware(tokens, accounts, profiles))

	token, _, err := tokens.GenerateToken("acct-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "acct-1", captured.ID)
	assert.Equal(t, domain.RoleAgent, captured.Role)
	assert.Equal(t, "Avery Agent", captured.Name)
}

func TestMiddlewareMissingProfileDegradesToCustomer(t *testing.T) {
	tokens := NewTokenManager("secret", 60)
	accounts := &stubAccountRepo{accounts: map[string]*domain.Account{
		"acct-1": {ID: "acct-1", Email: "orphan@example.com"},
	}}
	profiles := &stubProfileRepo{profiles: map[string]*domain.UserProfile{}}
	app, captured := newTestApp(NewAuthMiddleware(tokens, accounts, profiles))

	token, _, err := tokens.GenerateToken("acct-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, domain.RoleCustomer, captured.Role)
	assert.Empty(t, captured.Name)
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	tokens := NewTokenManager("secret", 60)
	app, _ := newTestApp(NewAuthMiddleware(tokens,
		&stubAccountRepo{accounts: map[string]*domain.Account{}},
		&stubProfileRepo{profiles: map[string]*domain.UserProfile{}},
	))

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestMiddlewareRejectsDeletedAccount(t *testing.T) {
	tokens := NewTokenManager("secret", 60)
	app, _ := newTestApp(NewAuthMiddleware(tokens,
		&stubAccountRepo{accounts: map[string]*domain.Account{}},
		&stubProfileRepo{profiles: map[string]*domain.UserProfile{}},
	))

	token, _, err := tokens.GenerateToken("gone")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
