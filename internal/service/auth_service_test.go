package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ottocrm/ottocrm/internal/config"
	"github.com/ottocrm/ottocrm/internal/domain"
	"github.com/ottocrm/ottocrm/internal/repository"
)

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
	nextID int
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.nextID++
	token.ID = fmt.Sprintf("reset-%d", r.nextID)
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.Token] = &clone
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, token string) (*repository.PasswordResetToken, error) {
	stored, ok := r.tokens[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	for _, token := range r.tokens {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func newTestAuthService(accounts *fakeAccountRepo, profiles *fakeProfileRepo, resets *fakeResetRepo) *AuthService {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              4,
		},
	}
	return NewAuthService(cfg, AuthDependencies{
		AccountRepo:       accounts,
		ProfileRepo:       profiles,
		PasswordResetRepo: resets,
		Logger:            zap.NewNop(),
	})
}

func TestSignUpCreatesAccountAndProfile(t *testing.T) {
	accounts := newFakeAccountRepo()
	profiles := newFakeProfileRepo()
	svc := newTestAuthService(accounts, profiles, newFakeResetRepo())

	account, token, exp, err := svc.SignUp(context.Background(), "casey@example.com", "hunter2pass", domain.RoleCustomer, "Casey")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	profile, err := profiles.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, profile.Role)
	assert.Equal(t, "Casey", profile.FullName)
}

func TestSignUpDefaults(t *testing.T) {
	accounts := newFakeAccountRepo()
	profiles := newFakeProfileRepo()
	svc := newTestAuthService(accounts, profiles, newFakeResetRepo())

	// Unknown role and blank name fall back to customer and the mailbox name.
	account, _, _, err := svc.SignUp(context.Background(), "drew@example.com", "hunter2pass", domain.Role("SUPERUSER"), "")
	require.NoError(t, err)

	profile, err := profiles.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, profile.Role)
	assert.Equal(t, "drew", profile.FullName)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	accounts := newFakeAccountRepo()
	svc := newTestAuthService(accounts, newFakeProfileRepo(), newFakeResetRepo())

	_, _, _, err := svc.SignUp(context.Background(), "dup@example.com", "hunter2pass", domain.RoleCustomer, "")
	require.NoError(t, err)

	_, _, _, err = svc.SignUp(context.Background(), "dup@example.com", "otherpass123", domain.RoleCustomer, "")
	assertCode(t, err, "CONFLICT")
}

func TestSignUpSurvivesProfileFailure(t *testing.T) {
	accounts := newFakeAccountRepo()
	// Pre-seeding the profile id makes the profile insert collide.
	profiles := newFakeProfileRepo(&domain.UserProfile{ID: "acct-1", Role: domain.RoleCustomer})
	svc := newTestAuthService(accounts, profiles, newFakeResetRepo())

	account, token, _, err := svc.SignUp(context.Background(), "edge@example.com", "hunter2pass", domain.RoleCustomer, "")
	require.NoError(t, err, "a failed profile insert must not fail sign-up")
	assert.NotEmpty(t, account.ID)
	assert.NotEmpty(t, token)
}

func TestSignIn(t *testing.T) {
	accounts := newFakeAccountRepo()
	svc := newTestAuthService(accounts, newFakeProfileRepo(), newFakeResetRepo())

	_, _, _, err := svc.SignUp(context.Background(), "casey@example.com", "hunter2pass", domain.RoleCustomer, "")
	require.NoError(t, err)

	_, token, _, err := svc.SignIn(context.Background(), "casey@example.com", "hunter2pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, _, err = svc.SignIn(context.Background(), "casey@example.com", "wrongpass")
	assertCode(t, err, "UNAUTHORIZED")

	_, _, _, err = svc.SignIn(context.Background(), "nobody@example.com", "hunter2pass")
	assertCode(t, err, "UNAUTHORIZED")
}

func TestPasswordResetFlow(t *testing.T) {
	accounts := newFakeAccountRepo()
	resets := newFakeResetRepo()
	svc := newTestAuthService(accounts, newFakeProfileRepo(), resets)
	ctx := context.Background()

	_, _, _, err := svc.SignUp(ctx, "casey@example.com", "hunter2pass", domain.RoleCustomer, "")
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(ctx, "casey@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token.Token, "newpass1234"))

	_, _, _, err = svc.SignIn(ctx, "casey@example.com", "hunter2pass")
	assertCode(t, err, "UNAUTHORIZED")
	_, _, _, err = svc.SignIn(ctx, "casey@example.com", "newpass1234")
	require.NoError(t, err)

	// A token is single-use.
	err = svc.ConfirmPasswordReset(ctx, token.Token, "anotherpass1")
	assertCode(t, err, "VALIDATION_FAILED")

	err = svc.ConfirmPasswordReset(ctx, "bogus-token", "anotherpass1")
	assertCode(t, err, "VALIDATION_FAILED")
}

func TestChangePassword(t *testing.T) {
	accounts := newFakeAccountRepo()
	svc := newTestAuthService(accounts, newFakeProfileRepo(), newFakeResetRepo())
	ctx := context.Background()

	account, _, _, err := svc.SignUp(ctx, "casey@example.com", "hunter2pass", domain.RoleCustomer, "")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, account.ID, "wrongpass", "newpass1234")
	assertCode(t, err, "UNAUTHORIZED")

	require.NoError(t, svc.ChangePassword(ctx, account.ID, "hunter2pass", "newpass1234"))
	_, _, _, err = svc.SignIn(ctx, "casey@example.com", "newpass1234")
	require.NoError(t, err)
}
