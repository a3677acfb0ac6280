package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ottocrm/ottocrm/internal/domain"
	"github.com/ottocrm/ottocrm/internal/policy"
	"github.com/ottocrm/ottocrm/internal/repository"
	apperrors "github.com/ottocrm/ottocrm/pkg/util"
)

// ProfileService handles profile reads, settings updates and the backfill of
// profiles left missing by partially failed sign-ups.
type ProfileService struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	tickets  repository.TicketRepository
	logger   *zap.Logger
}

// NewProfileService builds the service.
func NewProfileService(accounts repository.AccountRepository, profiles repository.ProfileRepository, tickets repository.TicketRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{accounts: accounts, profiles: profiles, tickets: tickets, logger: logger}
}

// GetOwn returns the principal's profile.
func (s *ProfileService) GetOwn(ctx context.Context, principal policy.Principal) (*domain.UserProfile, error) {
	profile, err := s.profiles.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// UpdateOwnName updates the principal's display name. Role is untouched;
// role changes go through UpdateRole.
func (s *ProfileService) UpdateOwnName(ctx context.Context, principal policy.Principal, fullName string) (*domain.UserProfile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, apperrors.NewValidationError("full_name required", nil)
	}
	profile, err := s.GetOwn(ctx, principal)
	if err != nil {
		return nil, err
	}
	profile.FullName = fullName
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// UpdateRole changes another profile's role. Admin only. Takes effect on the
// target's next request because roles resolve per request.
func (s *ProfileService) UpdateRole(ctx context.Context, principal policy.Principal, profileID string, role domain.Role) (*domain.UserProfile, error) {
	if principal.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("role change not permitted")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"profile_id": profileID})
		}
		return nil, apperrors.MapError(err)
	}
	// Demoting an agent would leave assigned_to pointing at a non-agent;
	// clear their assignments first so the invariant holds.
	if profile.Role == domain.RoleAgent && role != domain.RoleAgent {
		if err := s.tickets.ClearAssignments(ctx, profile.ID); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	profile.Role = role
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// ListCustomers returns customer-role profiles. Staff only.
func (s *ProfileService) ListCustomers(ctx context.Context, principal policy.Principal) ([]domain.UserProfile, error) {
	if !policy.CanViewCustomerList(principal) {
		return nil, apperrors.NewForbidden("customer list not permitted")
	}
	profiles, err := s.profiles.ListByRoles(ctx, domain.RoleCustomer)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return profiles, nil
}

// ListAgents returns agent-role profiles, used to populate the assignee
// selector. Staff only.
func (s *ProfileService) ListAgents(ctx context.Context, principal policy.Principal) ([]domain.UserProfile, error) {
	if !principal.IsStaff() {
		return nil, apperrors.NewForbidden("agent list not permitted")
	}
	profiles, err := s.profiles.ListByRoles(ctx, domain.RoleAgent)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return profiles, nil
}

// SyncMissingProfiles creates a profile row for every account that lacks
// one. Admin only. Each insert is best-effort: a failure is logged and
// skipped without failing the sweep. Returns the number of profiles created.
func (s *ProfileService) SyncMissingProfiles(ctx context.Context, principal policy.Principal) (int, error) {
	if principal.Role != domain.RoleAdmin {
		return 0, apperrors.NewForbidden("profile sync not permitted")
	}

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	created := 0
	for _, account := range accounts {
		_, err := s.profiles.GetByID(ctx, account.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("profile lookup failed during sync",
				zap.String("account_id", account.ID), zap.Error(err))
			continue
		}
		profile := &domain.UserProfile{
			ID:       account.ID,
			Role:     roleFromEmail(account.Email),
			FullName: nameFromEmail(account.Email),
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			s.logger.Warn("profile backfill failed",
				zap.String("account_id", account.ID), zap.Error(err))
			continue
		}
		created++
	}
	return created, nil
}

// roleFromEmail mirrors the demo-seeding convention: admin*/agent* mailbox
// prefixes map to staff roles, everything else is a customer.
func roleFromEmail(email string) domain.Role {
	local := strings.ToLower(nameFromEmail(email))
	switch {
	case strings.HasPrefix(local, "admin"):
		return domain.RoleAdmin
	case strings.HasPrefix(local, "agent"):
		return domain.RoleAgent
	default:
		return domain.RoleCustomer
	}
}
