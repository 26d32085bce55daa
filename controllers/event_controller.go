package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"crewmatch/models"
	"crewmatch/utils"
)

type EventController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewEventController(db *gorm.DB, logger *log.Logger) *EventController {
	return &EventController{
		DB:     db,
		Logger: logger,
	}
}

type EventRequest struct {
	BoatID                uint      `json:"boat_id" validate:"required"`
	Title                 string    `json:"title" validate:"required,max=200"`
	EventType             string    `json:"event_type" validate:"omitempty,max=60"`
	LocationText          string    `json:"location_text"`
	StartDate             time.Time `json:"start_date" validate:"required"`
	EndDate               time.Time `json:"end_date" validate:"required"`
	CrewRequired          *int      `json:"crew_required" validate:"omitempty,gt=0"`
	Paid                  bool      `json:"paid"`
	CompensationNotes     string    `json:"compensation_notes"`
	AccommodationProvided bool      `json:"accommodation_provided"`
}

func (ec *EventController) CreateEvent(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)
	if !profile.IsOwner() {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "Only owners can create events", nil)
	}

	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}
	if req.EndDate.Before(req.StartDate) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "end_date must not be before start_date", nil)
	}

	// The boat must belong to the caller
	var boat models.Boat
	if err := ec.DB.Where("id = ? AND owner_id = ?", req.BoatID, profile.UserID).First(&boat).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Boat not found", nil)
	}

	event := models.Event{
		OwnerID:               profile.UserID,
		BoatID:                boat.ID,
		Title:                 req.Title,
		EventType:             req.EventType,
		LocationText:          req.LocationText,
		StartDate:             req.StartDate,
		EndDate:               req.EndDate,
		Status:                models.EventStatusDraft,
		CrewRequired:          req.CrewRequired,
		Paid:                  req.Paid,
		CompensationNotes:     req.CompensationNotes,
		AccommodationProvided: req.AccommodationProvided,
	}
	if err := ec.DB.Create(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to create event", err)
	}

	ec.Logger.Printf("event %d created by owner %d", event.ID, profile.UserID)
	return c.Status(fiber.StatusCreated).JSON(event)
}

// GetMyEvents lists the caller's own events, newest first.
func (ec *EventController) GetMyEvents(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var events []models.Event
	if err := ec.DB.Preload("Boat").
		Where("owner_id = ?", profile.UserID).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to fetch events", err)
	}
	return c.JSON(events)
}

// GetEvent returns one event with its boat. Sailors may only see published
// events; the owner sees their own regardless of status.
func (ec *EventController) GetEvent(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var event models.Event
	if err := ec.DB.Preload("Boat").First(&event, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found", nil)
	}

	if event.OwnerID != profile.UserID && event.Status != models.EventStatusPublished {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found", nil)
	}

	filled, err := models.FilledCount(ec.DB, event.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to compute crew fill", err)
	}
	spotsLeft, capped := models.SpotsLeft(event.CrewRequired, filled)

	return c.JSON(fiber.Map{
		"event":       event,
		"crew_filled": filled,
		"spots_left":  spotsLeft,
		"capped":      capped,
	})
}

func (ec *EventController) UpdateEvent(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var event models.Event
	if err := ec.DB.Where("id = ? AND owner_id = ?", c.Params("id"), profile.UserID).First(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found", nil)
	}
	if event.Status == models.EventStatusClosed {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Closed events cannot be edited", nil)
	}

	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}
	if req.EndDate.Before(req.StartDate) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "end_date must not be before start_date", nil)
	}

	if req.BoatID != event.BoatID {
		var boat models.Boat
		if err := ec.DB.Where("id = ? AND owner_id = ?", req.BoatID, profile.UserID).First(&boat).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Boat not found", nil)
		}
		event.BoatID = boat.ID
	}

	event.Title = req.Title
	event.EventType = req.EventType
	event.LocationText = req.LocationText
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	event.CrewRequired = req.CrewRequired
	event.Paid = req.Paid
	event.CompensationNotes = req.CompensationNotes
	event.AccommodationProvided = req.AccommodationProvided

	if err := ec.DB.Save(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to update event", err)
	}
	return c.JSON(event)
}

type EventStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published closed"`
}

// SetEventStatus moves an event along its one-way lifecycle
// (draft -> published -> closed).
func (ec *EventController) SetEventStatus(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var req EventStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}

	var event models.Event
	if err := ec.DB.Where("id = ? AND owner_id = ?", c.Params("id"), profile.UserID).First(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found", nil)
	}

	if !models.CanChangeEventStatus(event.Status, req.Status) {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict,
			"Cannot move event from "+event.Status+" to "+req.Status, nil)
	}

	// Guard on current status so two racing status calls cannot both apply
	res := ec.DB.Model(&models.Event{}).
		Where("id = ? AND status = ?", event.ID, event.Status).
		Update("status", req.Status)
	if res.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to update status", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Event status changed concurrently", nil)
	}

	event.Status = req.Status
	ec.Logger.Printf("event %d status -> %s", event.ID, req.Status)
	return c.JSON(event)
}

type CrewRequiredRequest struct {
	CrewRequired *int `json:"crew_required" validate:"omitempty,gt=0"`
}

// SetCrewRequired edits the capacity target. Lowering it below the current
// accepted count just leaves the event over capacity for display; nobody is
// un-accepted.
func (ec *EventController) SetCrewRequired(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var req CrewRequiredRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}

	var event models.Event
	if err := ec.DB.Where("id = ? AND owner_id = ?", c.Params("id"), profile.UserID).First(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found", nil)
	}
	if event.Status == models.EventStatusClosed {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Closed events cannot be edited", nil)
	}

	if err := ec.DB.Model(&event).Update("crew_required", req.CrewRequired).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to update crew requirement", err)
	}
	event.CrewRequired = req.CrewRequired
	return c.JSON(event)
}

func (ec *EventController) DeleteEvent(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var event models.Event
	if err := ec.DB.Where("id = ? AND owner_id = ?", c.Params("id"), profile.UserID).First(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found", nil)
	}
	if event.Status != models.EventStatusDraft {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Only draft events can be deleted; close it instead", nil)
	}

	if err := ec.DB.Delete(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to delete event", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
