package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/ottocrm/ottocrm/internal/domain"
	"github.com/ottocrm/ottocrm/internal/policy"
	"github.com/ottocrm/ottocrm/internal/repository"
	apperrors "github.com/ottocrm/ottocrm/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and resolves the caller's role.
type AuthMiddleware struct {
	tokens   *TokenManager
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, accounts repository.AccountRepository, profiles repository.ProfileRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts, profiles: profiles}
}

// Handle enforces authentication for protected routes. The role resolver
// runs here: the profile row decides the role on every request. An account
// with no profile (partially failed sign-up) gets CUSTOMER-equivalent
// minimal access, never an escalation.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	account, err := m.accounts.GetByID(c.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("account not found")
		}
		return apperrors.MapError(err)
	}

	principal := policy.Principal{ID: account.ID, Role: domain.RoleCustomer}
	profile, err := m.profiles.GetByID(c.Context(), account.ID)
	switch {
	case err == nil:
		principal.Role = profile.Role
		principal.Name = profile.FullName
	case errors.Is(err, pgx.ErrNoRows):
		// no profile row; keep minimal access
	default:
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (policy.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return policy.Principal{}, false
	}
	principal, ok := val.(policy.Principal)
	return principal, ok
}
