package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"crewmatch/models"
	"crewmatch/utils"
)

type ParticipationController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewParticipationController(db *gorm.DB, logger *log.Logger) *ParticipationController {
	return &ParticipationController{
		DB:     db,
		Logger: logger,
	}
}

// GetMyParticipations returns every participation the caller is a party to,
// newest first, with the event preloaded for display.
func (pc *ParticipationController) GetMyParticipations(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var participations []models.Participation
	if err := pc.DB.Preload("Event").Preload("Event.Boat").
		Where("owner_id = ? OR sailor_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&participations).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to fetch participations", err)
	}

	return c.JSON(participations)
}

// Confirm records the caller's attestation that the sail happened. The side
// being confirmed is derived from who the caller is, never from the body.
// The write runs under a row lock so interleaved confirms cannot drop each
// other's flag, and verification is re-checked inside the same transaction.
func (pc *ParticipationController) Confirm(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	participationID := utils.ParseUint(c.Params("id"))

	participation, err := models.ConfirmParticipation(pc.DB, participationID, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Participation not found", nil)
	case errors.Is(err, models.ErrNotParticipant):
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "Not a party to this participation", nil)
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to confirm participation", err)
	}

	pc.Logger.Printf("Participation %d confirmed by user %d (verified=%t)", participation.ID, userID, participation.Verified())
	return c.JSON(participation)
}

// Complete marks the sail as completed. Only the owner can do this; the
// sailor's lever is their confirmation. Idempotent.
func (pc *ParticipationController) Complete(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	participationID := utils.ParseUint(c.Params("id"))

	participation, err := models.CompleteParticipation(pc.DB, participationID, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Participation not found", nil)
	case errors.Is(err, models.ErrNotParticipant), errors.Is(err, models.ErrNotOwner):
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "Only the owner can mark a sail completed", nil)
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to complete participation", err)
	}

	pc.Logger.Printf("Participation %d completed by owner %d (verified=%t)", participation.ID, userID, participation.Verified())
	return c.JSON(participation)
}

// CanRate tells the client whether the caller may submit a rating for this
// participation: they must be a party, the row must be verified, and they
// must not have rated it already.
func (pc *ParticipationController) CanRate(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	participationID := utils.ParseUint(c.Params("id"))

	var participation models.Participation
	if err := pc.DB.First(&participation, participationID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Participation not found", nil)
	}
	if !participation.IsParty(userID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "Not a party to this participation", nil)
	}

	if !participation.Verified() {
		return c.JSON(fiber.Map{"can_rate": false, "reason": "participation not verified"})
	}
	rated, err := models.AlreadyRated(pc.DB, participation.ID, userID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to check existing rating", err)
	}
	if rated {
		return c.JSON(fiber.Map{"can_rate": false, "reason": "already rated"})
	}
	return c.JSON(fiber.Map{"can_rate": true})
}
