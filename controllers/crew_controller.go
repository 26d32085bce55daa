package controller

import (
	"log"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"crewmatch/models"
	"crewmatch/utils"
)

type CrewController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCrewController(db *gorm.DB, logger *log.Logger) *CrewController {
	return &CrewController{
		DB:     db,
		Logger: logger,
	}
}

// Applicant is one row of the owner's applicant listing. The trust metric
// fields are pointers and only populated for pro-tier callers: the free-tier
// payload simply never carries them, so the gate lives at the API boundary
// rather than in the view layer.
type Applicant struct {
	ApplicationID uint      `json:"application_id"`
	Status        string    `json:"status"`
	Direction     string    `json:"direction"`
	PreferredRole string    `json:"preferred_role,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	SailorID          uint     `json:"sailor_id"`
	DisplayName       string   `json:"display_name"`
	LocationText      string   `json:"location_text,omitempty"`
	Roles             []string `json:"roles,omitempty"`
	OffshoreQualified bool     `json:"offshore_qualified"`

	// Pro tier only
	ReliabilityScore            *int    `json:"reliability_score,omitempty"`
	WouldSailAgainPct           *int    `json:"would_sail_again_pct,omitempty"`
	VerifiedParticipationsCount *int    `json:"verified_participations_count,omitempty"`
	CompetenceBand              *string `json:"competence_band,omitempty"`
	Score                       *int    `json:"score,omitempty"`
}

// BuildApplicantList shapes applications into the listing for one tier.
// Free tier keeps arrival order and no metrics; pro tier attaches the trust
// metrics and stable-sorts descending by score, so equal scores keep arrival
// order.
func BuildApplicantList(applications []models.Application, pro bool) []Applicant {
	applicants := make([]Applicant, 0, len(applications))
	for _, a := range applications {
		applicant := Applicant{
			ApplicationID: a.ID,
			Status:        a.Status,
			Direction:     a.Direction,
			PreferredRole: a.PreferredRole,
			Note:          a.Note,
			CreatedAt:     a.CreatedAt,
			SailorID:      a.SailorID,
		}
		if a.Sailor != nil {
			applicant.DisplayName = a.Sailor.DisplayName
			applicant.LocationText = a.Sailor.LocationText
			applicant.Roles = a.Sailor.Roles
			applicant.OffshoreQualified = a.Sailor.OffshoreQualified

			if pro {
				applicant.ReliabilityScore = utils.Pointer(a.Sailor.ReliabilityScore)
				applicant.WouldSailAgainPct = utils.Pointer(a.Sailor.WouldSailAgainPct)
				applicant.VerifiedParticipationsCount = utils.Pointer(a.Sailor.VerifiedParticipationsCount)
				applicant.CompetenceBand = utils.Pointer(a.Sailor.CompetenceBand)
				applicant.Score = utils.Pointer(a.Sailor.TrustScore())
			}
		}
		applicants = append(applicants, applicant)
	}

	if pro {
		sort.SliceStable(applicants, func(i, j int) bool {
			var si, sj int
			if applicants[i].Score != nil {
				si = *applicants[i].Score
			}
			if applicants[j].Score != nil {
				sj = *applicants[j].Score
			}
			return si > sj
		})
	}
	return applicants
}

// GetEventCrew is the owner's crew board: the event with its boat, every
// application with the sailor attached, and the fill counts.
func (cc *CrewController) GetEventCrew(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var event models.Event
	if err := cc.DB.Preload("Boat").
		Where("id = ? AND owner_id = ?", c.Params("id"), profile.UserID).
		First(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found or you are not the owner", nil)
	}

	var applications []models.Application
	if err := cc.DB.Preload("Sailor").
		Where("event_id = ?", event.ID).
		Order("created_at ASC").
		Find(&applications).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to fetch applications", err)
	}

	filled, err := models.FilledCount(cc.DB, event.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to compute crew fill", err)
	}
	spotsLeft, capped := models.SpotsLeft(event.CrewRequired, filled)

	return c.JSON(fiber.Map{
		"event":        event,
		"applications": BuildApplicantList(applications, profile.IsPro()),
		"crew_filled":  filled,
		"spots_left":   spotsLeft,
		"capped":       capped,
	})
}

// GetEventApplicants is the tier-gated applicant listing. One query path for
// both tiers; the tier flag decides which fields get populated and whether
// the list is ranked.
func (cc *CrewController) GetEventApplicants(c *fiber.Ctx) error {
	profile := c.Locals("profile").(*models.Profile)

	var event models.Event
	if err := cc.DB.Where("id = ? AND owner_id = ?", c.Params("id"), profile.UserID).First(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, utils.CodeNotFound, "Event not found or you are not the owner", nil)
	}

	var applications []models.Application
	if err := cc.DB.Preload("Sailor").
		Where("event_id = ?", event.ID).
		Order("created_at ASC").
		Find(&applications).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to fetch applicants", err)
	}

	pro := profile.IsPro()
	return c.JSON(fiber.Map{
		"tier":       models.NormalizePlanTier(profile.PlanTier),
		"ranked":     pro,
		"applicants": BuildApplicantList(applications, pro),
	})
}
