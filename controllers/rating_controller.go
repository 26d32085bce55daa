package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"crewmatch/models"
	"crewmatch/utils"
)

type RatingController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewRatingController(db *gorm.DB, logger *log.Logger) *RatingController {
	return &RatingController{
		DB:     db,
		Logger: logger,
	}
}

type submitRatingRequest struct {
	Reliability    int  `json:"reliability" validate:"required,min=1,max=5"`
	Competence     int  `json:"competence" validate:"required,min=1,max=5"`
	Teamwork       int  `json:"teamwork" validate:"required,min=1,max=5"`
	WouldSailAgain bool `json:"would_sail_again"`

	Organisation  *int `json:"organisation" validate:"omitempty,min=1,max=5"`
	BoatReadiness *int `json:"boat_readiness" validate:"omitempty,min=1,max=5"`
	SafetyCulture *int `json:"safety_culture" validate:"omitempty,min=1,max=5"`
}

// SubmitRating records the caller's one rating for a verified participation.
// The direction and ratee are derived from which side the caller is; the body
// carries only the scores. Owner-to-sailor ratings recompute the sailor's
// trust metrics in the same transaction.
func (rc *RatingController) SubmitRating(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	participationID := utils.ParseUint(c.Params("id"))

	var req submitRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, err.Error(), nil)
	}

	var participation models.Participation
	if err := rc.DB.First(&participation, participationID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Participation not found", nil)
	}

	direction, rateeID, ok := participation.RatingDirectionFor(userID)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "Not a party to this participation", nil)
	}
	if !participation.Verified() {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Participation is not verified yet", nil)
	}

	rated, err := models.AlreadyRated(rc.DB, participation.ID, userID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to check existing rating", err)
	}
	if rated {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeAlreadyExists, "You have already rated this participation", nil)
	}

	rating := models.Rating{
		ParticipationID: participation.ID,
		RaterID:         userID,
		RateeID:         rateeID,
		Direction:       direction,
		Reliability:     req.Reliability,
		Competence:      req.Competence,
		Teamwork:        req.Teamwork,
		WouldSailAgain:  req.WouldSailAgain,
		Organisation:    req.Organisation,
		BoatReadiness:   req.BoatReadiness,
		SafetyCulture:   req.SafetyCulture,
	}

	tx := rc.DB.Begin()
	if tx.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to start transaction", tx.Error)
	}

	if err := tx.Create(&rating).Error; err != nil {
		tx.Rollback()
		// a concurrent double-submit lands on the unique index, not the pre-check
		if strings.Contains(err.Error(), "idx_ratings_participation_rater") ||
			strings.Contains(err.Error(), "duplicate key") {
			return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeAlreadyExists, "You have already rated this participation", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to save rating", err)
	}

	if direction == models.DirectionOwnerToSailor {
		if err := models.RecomputeSailorTrust(tx, rateeID); err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to update trust metrics", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to save rating", err)
	}

	rc.Logger.Printf("Rating saved: participation=%d rater=%d direction=%s", participation.ID, userID, direction)
	return c.Status(fiber.StatusCreated).JSON(rating)
}

// GetRatingsForUser lists the ratings a user has received. Used for the
// public profile page; rater identity is included since both parties to a
// sail already know each other.
func (rc *RatingController) GetRatingsForUser(c *fiber.Ctx) error {
	rateeID := utils.ParseUint(c.Params("id"))
	if rateeID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, utils.CodeValidation, "Invalid user id", nil)
	}

	var ratings []models.Rating
	if err := rc.DB.Where("ratee_id = ?", rateeID).
		Order("created_at DESC").
		Limit(50).
		Find(&ratings).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to fetch ratings", err)
	}

	return c.JSON(ratings)
}
