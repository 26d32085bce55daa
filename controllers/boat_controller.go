package controller

import (
	"github.com/gofiber/fiber/v2"

	"crewmatch/config"
	"crewmatch/models"
	"crewmatch/utils"
)

type BoatRequest struct {
	Name              string  `json:"name" validate:"required,max=120"`
	BoatType          string  `json:"boat_type" validate:"omitempty,max=60"`
	Class             string  `json:"class" validate:"omitempty,max=60"`
	LengthM           float64 `json:"length_m" validate:"omitempty,gt=0"`
	HomePort          string  `json:"home_port"`
	IsOffshoreCapable bool    `json:"is_offshore_capable"`
}

func CreateBoat(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)
	if !profile.IsOwner() {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "Only owners can add boats", nil)
	}

	var req BoatRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}

	boat := models.Boat{
		OwnerID:           profile.UserID,
		Name:              req.Name,
		BoatType:          req.BoatType,
		Class:             req.Class,
		LengthM:           req.LengthM,
		HomePort:          req.HomePort,
		IsOffshoreCapable: req.IsOffshoreCapable,
	}
	if err := config.DB.Create(&boat).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to create boat", err)
	}

	return c.Status(fiber.StatusCreated).JSON(boat)
}

func GetBoats(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var boats []models.Boat
	if err := config.DB.Where("owner_id = ?", profile.UserID).Order("created_at DESC").Find(&boats).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to fetch boats", err)
	}
	return c.JSON(boats)
}

func GetBoat(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var boat models.Boat
	if err := config.DB.Where("id = ? AND owner_id = ?", c.Params("id"), profile.UserID).First(&boat).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Boat not found", nil)
	}
	return c.JSON(boat)
}

func UpdateBoat(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var boat models.Boat
	if err := config.DB.Where("id = ? AND owner_id = ?", c.Params("id"), profile.UserID).First(&boat).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Boat not found", nil)
	}

	var req BoatRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}

	boat.Name = req.Name
	boat.BoatType = req.BoatType
	boat.Class = req.Class
	boat.LengthM = req.LengthM
	boat.HomePort = req.HomePort
	boat.IsOffshoreCapable = req.IsOffshoreCapable

	if err := config.DB.Save(&boat).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to update boat", err)
	}
	return c.JSON(boat)
}

func DeleteBoat(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var boat models.Boat
	if err := config.DB.Where("id = ? AND owner_id = ?", c.Params("id"), profile.UserID).First(&boat).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Boat not found", nil)
	}

	// Refuse to orphan events still pointing at this boat
	var eventCount int64
	if err := config.DB.Model(&models.Event{}).Where("boat_id = ?", boat.ID).Count(&eventCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to check boat usage", err)
	}
	if eventCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Boat has events and cannot be deleted", nil)
	}

	if err := config.DB.Delete(&boat).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to delete boat", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
