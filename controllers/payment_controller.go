package controller

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"

	"crewmatch/models"
	"crewmatch/utils"
)

type PaymentController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewPaymentController(db *gorm.DB, logger *log.Logger) *PaymentController {
	return &PaymentController{
		DB:     db,
		Logger: logger,
	}
}

// CreateCheckoutSession starts a Stripe subscription checkout for the
// owner-pro plan and returns the hosted checkout URL.
func (pc *PaymentController) CreateCheckoutSession(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	profile := c.Locals("profile").(*models.Profile)

	if !profile.IsOwner() {
		return utils.ErrorResponse(c, fiber.StatusForbidden, utils.CodeForbidden, "The pro plan is for boat owners", nil)
	}
	if profile.IsPro() {
		return utils.ErrorResponse(c, fiber.StatusConflict, utils.CodeStateConflict, "Already on the pro plan", nil)
	}

	url, err := utils.CreateProCheckoutSession(user, profile)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to create checkout session", err)
	}

	return c.JSON(fiber.Map{"url": url})
}

// HandlePaymentWebhook processes Stripe webhook events. Signature
// verification happens in ConstructStripeEvent; each event id is recorded
// in plan_events so a redelivered event is acknowledged without being
// applied twice.
func (pc *PaymentController) HandlePaymentWebhook(c *fiber.Ctx) error {
	event, err := utils.ConstructStripeEvent(c)
	if err != nil {
		pc.Logger.Printf("Rejected Stripe webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			pc.Logger.Printf("Failed to parse checkout session: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Error parsing checkout session",
			})
		}
		return pc.handleCheckoutCompleted(c, event.ID, &session)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			pc.Logger.Printf("Failed to parse subscription: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Error parsing subscription",
			})
		}
		return pc.handleSubscriptionDeleted(c, event.ID, &sub)

	default:
		return c.SendStatus(fiber.StatusOK)
	}
}

// handleCheckoutCompleted upgrades the paying user to the pro tier. The user
// id comes back in client_reference_id; the Stripe customer id is stored so
// a later cancellation can be mapped back to the profile.
func (pc *PaymentController) handleCheckoutCompleted(c *fiber.Ctx, eventID string, session *stripe.CheckoutSession) error {
	userID := utils.ParseUint(session.ClientReferenceID)
	if userID == 0 {
		pc.Logger.Printf("Checkout session %s has no usable client_reference_id", session.ID)
		return c.SendStatus(fiber.StatusOK)
	}

	marker := models.PlanEvent{
		StripeEventID: eventID,
		EventType:     "checkout.session.completed",
		UserID:        &userID,
		PlanTier:      models.PlanTierPro,
	}
	updates := map[string]interface{}{"plan_tier": models.PlanTierPro}
	if session.Customer != nil {
		updates["stripe_customer_id"] = session.Customer.ID
	}

	// Marker and upgrade commit together, so a failed upgrade leaves the
	// event unmarked and Stripe's redelivery can retry it
	fresh, err := models.ApplyPlanEvent(pc.DB, &marker, func(tx *gorm.DB) error {
		return tx.Model(&models.Profile{}).
			Where("user_id = ?", userID).
			Updates(updates).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to upgrade plan", err)
	}
	if !fresh {
		return c.SendStatus(fiber.StatusOK)
	}

	pc.Logger.Printf("User %d upgraded to pro (stripe event %s)", userID, eventID)
	return c.SendStatus(fiber.StatusOK)
}

// handleSubscriptionDeleted downgrades the profile mapped to the Stripe
// customer back to the free tier.
func (pc *PaymentController) handleSubscriptionDeleted(c *fiber.Ctx, eventID string, sub *stripe.Subscription) error {
	if sub.Customer == nil {
		return c.SendStatus(fiber.StatusOK)
	}

	var profile models.Profile
	if err := pc.DB.Where("stripe_customer_id = ?", sub.Customer.ID).First(&profile).Error; err != nil {
		pc.Logger.Printf("Subscription deleted for unknown customer %s", sub.Customer.ID)
		return c.SendStatus(fiber.StatusOK)
	}

	marker := models.PlanEvent{
		StripeEventID: eventID,
		EventType:     "customer.subscription.deleted",
		UserID:        &profile.UserID,
		PlanTier:      models.PlanTierFree,
	}
	fresh, err := models.ApplyPlanEvent(pc.DB, &marker, func(tx *gorm.DB) error {
		return tx.Model(&models.Profile{}).
			Where("user_id = ?", profile.UserID).
			Update("plan_tier", models.PlanTierFree).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, utils.CodeInternal, "Failed to downgrade plan", err)
	}
	if !fresh {
		return c.SendStatus(fiber.StatusOK)
	}

	pc.Logger.Printf("User %d downgraded to free (stripe event %s)", profile.UserID, eventID)
	return c.SendStatus(fiber.StatusOK)
}
