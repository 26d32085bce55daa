package controller

import (
	"github.com/gofiber/fiber/v2"

	"crewmatch/config"
	"crewmatch/models"
	"crewmatch/utils"
)

type UpdateProfileRequest struct {
	DisplayName       *string  `json:"display_name" validate:"omitempty,max=100"`
	ProfileType       *string  `json:"profile_type" validate:"omitempty,oneof=sailor owner both"`
	LocationText      *string  `json:"location_text"`
	HomePort          *string  `json:"home_port"`
	Roles             []string `json:"roles"`
	ExperienceLevel   *string  `json:"experience_level"`
	OffshoreQualified *bool    `json:"offshore_qualified"`
	IsAvailable       *bool    `json:"is_available"`
	WillingToTravel   *bool    `json:"willing_to_travel"`
}

// GetProfile returns the caller's own profile.
func GetProfile(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)
	return c.JSON(profile)
}

// UpdateProfile edits the caller's own profile. Trust metrics and plan tier
// are not editable here; they are derived or webhook-driven.
func UpdateProfile(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.ProfileType != nil {
		profile.ProfileType = *req.ProfileType
	}
	if req.LocationText != nil {
		profile.LocationText = *req.LocationText
	}
	if req.HomePort != nil {
		profile.HomePort = *req.HomePort
	}
	if req.Roles != nil {
		profile.Roles = req.Roles
	}
	if req.ExperienceLevel != nil {
		profile.ExperienceLevel = *req.ExperienceLevel
	}
	if req.OffshoreQualified != nil {
		profile.OffshoreQualified = *req.OffshoreQualified
	}
	if req.IsAvailable != nil {
		profile.IsAvailable = *req.IsAvailable
	}
	if req.WillingToTravel != nil {
		profile.WillingToTravel = *req.WillingToTravel
	}

	if err := config.DB.Save(profile).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to update profile", err)
	}

	return c.JSON(profile)
}

// GetProfileCompleteness exposes the onboarding predicate so the client can
// explain exactly which fields are still missing.
func GetProfileCompleteness(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)
	return c.JSON(profile.Completeness())
}
