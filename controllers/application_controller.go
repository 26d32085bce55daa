package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"crewmatch/models"
	"crewmatch/utils"
)

type ApplicationController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewApplicationController(db *gorm.DB, logger *log.Logger) *ApplicationController {
	return &ApplicationController{
		DB:     db,
		Logger: logger,
	}
}

type ApplyRequest struct {
	PreferredRole string `json:"preferred_role" validate:"omitempty,max=60"`
	Note          string `json:"note" validate:"omitempty,max=2000"`
}

type InviteRequest struct {
	SailorID      uint   `json:"sailor_id" validate:"required"`
	PreferredRole string `json:"preferred_role" validate:"omitempty,max=60"`
	Note          string `json:"note" validate:"omitempty,max=2000"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

// Apply creates a sailor-initiated application (direction=sailor,
// status=applied). Re-applying returns the existing row untouched.
func (ac *ApplicationController) Apply(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}

	if !profile.IsSailor() {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "Only sailor profiles can apply", nil)
	}
	if profile.IsSuspended {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "Your account is suspended", nil)
	}
	if completeness := profile.Completeness(); !completeness.Complete {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":        false,
			"code":           utils.CodeValidation,
			"error":          "Complete your profile to apply",
			"missing_fields": completeness.MissingFields,
		})
	}

	var event models.Event
	if err := ac.DB.First(&event, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found", nil)
	}
	if event.Status != models.EventStatusPublished {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Event is not open for applications", nil)
	}
	if event.OwnerID == profile.UserID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "You cannot apply to your own event", nil)
	}

	// Idempotent on (event, sailor): a second apply returns the existing row
	var existing models.Application
	err := ac.DB.Where("event_id = ? AND sailor_id = ?", event.ID, profile.UserID).First(&existing).Error
	if err == nil {
		return c.JSON(existing)
	}
	if err != gorm.ErrRecordNotFound {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to check existing application", err)
	}

	application := models.Application{
		EventID:       event.ID,
		SailorID:      profile.UserID,
		Status:        models.ApplicationStatusApplied,
		Direction:     models.DirectionSailor,
		PreferredRole: req.PreferredRole,
		Note:          req.Note,
	}
	if err := ac.DB.Create(&application).Error; err != nil {
		// Lost the race against a concurrent apply; the unique index held
		if ac.DB.Where("event_id = ? AND sailor_id = ?", event.ID, profile.UserID).First(&existing).Error == nil {
			return c.JSON(existing)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to create application", err)
	}

	ac.Logger.Printf("sailor %d applied to event %d", profile.UserID, event.ID)
	go ac.notifyOwner(&event, profile, req.Note)
	CrewBoardHub.Broadcast(event.ID, "application_created")

	return c.Status(fiber.StatusCreated).JSON(application)
}

// Invite creates an owner-initiated application (direction=owner,
// status=shortlisted, shown to the sailor as "Invited"). Idempotent: inviting
// a sailor who already has a row for the event returns that row.
func (ac *ApplicationController) Invite(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}

	var event models.Event
	if err := ac.DB.Where("id = ? AND owner_id = ?", c.Params("id"), profile.UserID).First(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found or you are not the owner", nil)
	}
	if event.Status == models.EventStatusClosed {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Event is closed", nil)
	}

	var sailor models.Profile
	if err := ac.DB.Where("user_id = ?", req.SailorID).First(&sailor).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Sailor not found", nil)
	}
	if !sailor.IsSailor() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Profile is not a sailor", nil)
	}
	if sailor.IsSuspended {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Sailor account is suspended", nil)
	}

	var existing models.Application
	err := ac.DB.Where("event_id = ? AND sailor_id = ?", event.ID, sailor.UserID).First(&existing).Error
	if err == nil {
		return c.JSON(existing)
	}
	if err != gorm.ErrRecordNotFound {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to check existing application", err)
	}

	application := models.Application{
		EventID:       event.ID,
		SailorID:      sailor.UserID,
		Status:        models.ApplicationStatusShortlisted,
		Direction:     models.DirectionOwner,
		PreferredRole: req.PreferredRole,
		Note:          req.Note,
	}
	if err := ac.DB.Create(&application).Error; err != nil {
		if ac.DB.Where("event_id = ? AND sailor_id = ?", event.ID, sailor.UserID).First(&existing).Error == nil {
			return c.JSON(existing)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to create invite", err)
	}

	ac.Logger.Printf("owner %d invited sailor %d to event %d", profile.UserID, sailor.UserID, event.ID)
	go ac.notifySailor(&event, profile, &sailor, req.Note)
	CrewBoardHub.Broadcast(event.ID, "invite_created")

	return c.Status(fiber.StatusCreated).JSON(application)
}

// GetMyApplications lists the caller's applications with event and boat.
func (ac *ApplicationController) GetMyApplications(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var applications []models.Application
	if err := ac.DB.Preload("Event").Preload("Event.Boat").
		Where("sailor_id = ?", profile.UserID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to fetch applications", err)
	}
	return c.JSON(applications)
}

// GetMyInvites lists pending owner-initiated invites awaiting the caller.
func (ac *ApplicationController) GetMyInvites(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var invites []models.Application
	if err := ac.DB.Preload("Event").Preload("Event.Boat").
		Where("sailor_id = ? AND direction = ? AND status = ?",
			profile.UserID, models.DirectionOwner, models.ApplicationStatusShortlisted).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to fetch invites", err)
	}
	return c.JSON(invites)
}

// SetStatus is the single decision endpoint: the owner accepts/declines an
// applied row, the sailor accepts/declines a shortlisted one, and the owner
// may decline an accepted row to remove a sailor from the crew. Transitions
// into accepted enforce the event's crew capacity atomically.
func (ac *ApplicationController) SetStatus(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var req SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}

	var application models.Application
	if err := ac.DB.Preload("Event").First(&application, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Application not found", nil)
	}
	actor, ok := actorFor(profile.UserID, &application)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "You are not a party to this application", nil)
	}

	if !application.CanTransition(req.Status, actor) {
		// Distinguish "wrong actor" from "illegal state" so the caller can
		// explain the rejection
		otherActor := models.ActorOwner
		if actor == models.ActorOwner {
			otherActor = models.ActorSailor
		}
		if application.CanTransition(req.Status, otherActor) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden,
				"The other party holds this decision", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict,
			"Cannot move application from "+application.Status+" to "+req.Status, nil)
	}

	if req.Status == models.ApplicationStatusAccepted {
		return ac.acceptWithCapacityCheck(c, &application)
	}

	// Guard the write on the status we validated against
	res := ac.DB.Model(&models.Application{}).
		Where("id = ? AND status = ?", application.ID, application.Status).
		Update("status", req.Status)
	if res.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to update application", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Application changed concurrently", nil)
	}

	application.Status = req.Status
	ac.Logger.Printf("application %d -> %s by %s %d", application.ID, req.Status, actor, profile.UserID)
	CrewBoardHub.Broadcast(application.EventID, "application_updated")
	return c.JSON(application)
}

// acceptWithCapacityCheck maps models.AcceptApplication onto HTTP: the model
// locks the event FOR UPDATE, counts accepted crew under the lock, and only
// then writes the status, so two concurrent accepts serialize and the second
// gets crew_full.
func (ac *ApplicationController) acceptWithCapacityCheck(c *fiber.Ctx, application *models.Application) error {
	err := models.AcceptApplication(ac.DB, application)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found", nil)
	case errors.Is(err, models.ErrCrewFull):
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeCrewFull,
			"Crew is full. Increase crew_required to accept more.", nil)
	case errors.Is(err, models.ErrApplicationChanged):
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Application changed concurrently", nil)
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to accept application", err)
	}

	ac.Logger.Printf("application %d accepted (event %d, sailor %d)", application.ID, application.EventID, application.SailorID)
	CrewBoardHub.Broadcast(application.EventID, "application_updated")
	return c.JSON(application)
}

// Withdraw lets the initiating party retract a still-pending request: the
// sailor withdraws their application, the owner un-invites.
func (ac *ApplicationController) Withdraw(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var application models.Application
	if err := ac.DB.Preload("Event").First(&application, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Application not found", nil)
	}

	actor, ok := actorFor(profile.UserID, &application)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "You are not a party to this application", nil)
	}

	if !application.CanTransition(models.ApplicationStatusWithdrawn, actor) {
		if actor != application.InitiatingActor() {
			return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "Only the initiating party can withdraw", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict,
			"Cannot withdraw an application in status "+application.Status, nil)
	}

	res := ac.DB.Model(&models.Application{}).
		Where("id = ? AND status = ?", application.ID, application.Status).
		Update("status", models.ApplicationStatusWithdrawn)
	if res.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to withdraw", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Application changed concurrently", nil)
	}

	application.Status = models.ApplicationStatusWithdrawn
	CrewBoardHub.Broadcast(application.EventID, "application_updated")
	return c.JSON(application)
}

// actorFor resolves which side of the application the caller is on.
func actorFor(userID uint, application *models.Application) (models.Actor, bool) {
	if application.Event != nil && userID == application.Event.OwnerID {
		return models.ActorOwner, true
	}
	if userID == application.SailorID {
		return models.ActorSailor, true
	}
	return "", false
}

func (ac *ApplicationController) notifyOwner(event *models.Event, sailor *models.Profile, note string) {
	var owner models.User
	if err := ac.DB.First(&owner, event.OwnerID).Error; err != nil {
		return
	}
	var ownerProfile models.Profile
	_ = ac.DB.Where("user_id = ?", event.OwnerID).First(&ownerProfile).Error

	_ = utils.SendCrewNotification(owner.Email, "application", utils.CrewMailData{
		Subject:    "New crew application: " + event.Title,
		OwnerName:  ownerProfile.DisplayName,
		SailorName: sailor.DisplayName,
		EventTitle: event.Title,
		Note:       note,
	})
}

func (ac *ApplicationController) notifySailor(event *models.Event, owner, sailor *models.Profile, note string) {
	var sailorUser models.User
	if err := ac.DB.First(&sailorUser, sailor.UserID).Error; err != nil {
		return
	}

	_ = utils.SendCrewNotification(sailorUser.Email, "invite", utils.CrewMailData{
		Subject:    "You've been invited to crew: " + event.Title,
		OwnerName:  owner.DisplayName,
		SailorName: sailor.DisplayName,
		EventTitle: event.Title,
		Note:       note,
	})
}
