package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ottocrm/ottocrm/internal/api/dto"
	"github.com/ottocrm/ottocrm/internal/auth"
	"github.com/ottocrm/ottocrm/internal/domain"
	"github.com/ottocrm/ottocrm/internal/service"
	apperrors "github.com/ottocrm/ottocrm/pkg/util"
)

// ProfilesHandler serves the profile, customer and agent directory endpoints.
type ProfilesHandler struct {
	service *service.ProfileService
}

// NewProfilesHandler constructs handler.
func NewProfilesHandler(profileService *service.ProfileService) *ProfilesHandler {
	return &ProfilesHandler{service: profileService}
}

// Me GET /profiles/me.
func (h *ProfilesHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	profile, err := h.service.GetOwn(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// UpdateMe PATCH /profiles/me.
func (h *ProfilesHandler) UpdateMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.service.UpdateOwnName(c.Context(), principal, req.FullName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// UpdateRole PATCH /profiles/:id/role.
func (h *ProfilesHandler) UpdateRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.service.UpdateRole(c.Context(), principal, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// ListCustomers GET /customers.
func (h *ProfilesHandler) ListCustomers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	profiles, err := h.service.ListCustomers(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponses(profiles)})
}

// ListAgents GET /agents.
func (h *ProfilesHandler) ListAgents(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	profiles, err := h.service.ListAgents(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponses(profiles)})
}

// Sync POST /profiles/sync backfills missing profile rows.
func (h *ProfilesHandler) Sync(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	created, err := h.service.SyncMissingProfiles(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"created": created}})
}

func profileResponse(profile *domain.UserProfile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        profile.ID,
		Role:      profile.Role,
		FullName:  profile.FullName,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}

func profileResponses(profiles []domain.UserProfile) []dto.ProfileResponse {
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profileResponse(&profiles[i]))
	}
	return items
}
