package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"crewmatch/models"
	"crewmatch/utils"
)

type DiscoveryController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDiscoveryController(db *gorm.DB, logger *log.Logger) *DiscoveryController {
	return &DiscoveryController{
		DB:     db,
		Logger: logger,
	}
}

// DiscoverEvents lists published events for sailors, soonest first, with
// fill counts so the client can show spots left (or a dash when uncapped).
func (dc *DiscoveryController) DiscoverEvents(c *fiber.Ctx) error {
	var events []models.Event
	if err := dc.DB.Preload("Boat").
		Where("status = ?", models.EventStatusPublished).
		Order("start_date ASC").
		Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to fetch events", err)
	}

	type eventWithFill struct {
		models.Event
		CrewFilled int  `json:"crew_filled"`
		SpotsLeft  int  `json:"spots_left"`
		Capped     bool `json:"capped"`
	}

	eventIDs := make([]uint, 0, len(events))
	for _, ev := range events {
		eventIDs = append(eventIDs, ev.ID)
	}
	filledByEvent, err := models.FilledCounts(dc.DB, eventIDs)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to compute crew fill", err)
	}

	out := make([]eventWithFill, 0, len(events))
	for _, ev := range events {
		filled := filledByEvent[ev.ID]
		spotsLeft, capped := models.SpotsLeft(ev.CrewRequired, filled)
		out = append(out, eventWithFill{Event: ev, CrewFilled: filled, SpotsLeft: spotsLeft, Capped: capped})
	}

	return c.JSON(out)
}

// DiscoverSailors is the owner's invite pool: available sailor profiles,
// most reliable first. Passing ?event_id=N filters out sailors who already
// have an application row for that event, so the invite modal never offers
// a duplicate invite.
func (dc *DiscoveryController) DiscoverSailors(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)
	if !profile.IsOwner() {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "Only owners can browse sailors", nil)
	}

	query := dc.DB.Model(&models.Profile{}).
		Where("profile_type IN ?", []string{models.ProfileTypeSailor, models.ProfileTypeBoth}).
		Where("is_suspended = ?", false).
		Where("is_available = ?", true).
		Order("reliability_score DESC").
		Limit(100)

	if eventID := utils.ParseUint(c.Query("event_id")); eventID != 0 {
		var event models.Event
		if err := dc.DB.Where("id = ? AND owner_id = ?", eventID, profile.UserID).First(&event).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found", nil)
		}
		query = query.Where("user_id NOT IN (?)",
			dc.DB.Model(&models.Application{}).Select("sailor_id").Where("event_id = ?", eventID))
	}

	var sailors []models.Profile
	if err := query.Find(&sailors).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to fetch sailors", err)
	}

	return c.JSON(sailors)
}
