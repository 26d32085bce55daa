package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"crewmatch/config"
	"crewmatch/models"
)

// ConstructStripeEvent securely constructs and verifies a Stripe webhook event
func ConstructStripeEvent(c *fiber.Ctx) (stripe.Event, error) {
	payload := c.Body()

	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return stripe.Event{}, fiber.NewError(fiber.StatusBadRequest, "Missing Stripe-Signature header")
	}

	// Verify the webhook signature with tolerance for clock drift
	event, err := webhook.ConstructEventWithTolerance(
		payload,
		signature,
		config.AppConfig.StripeWebhookSecret,
		5*time.Minute,
	)
	if err != nil {
		return stripe.Event{}, fiber.NewError(fiber.StatusBadRequest, "Invalid webhook signature")
	}

	return event, nil
}

// CreateProCheckoutSession starts a Stripe subscription checkout for the
// owner-pro plan. The user id rides along as client_reference_id so the
// webhook can map the completed session back to a profile.
func CreateProCheckoutSession(user *models.User, profile *models.Profile) (string, error) {
	if config.AppConfig.StripePriceOwnerPro == "" {
		return "", fmt.Errorf("STRIPE_PRICE_OWNER_PRO is not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(config.AppConfig.StripePriceOwnerPro),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(config.AppConfig.SiteURL + "/?upgrade=success"),
		CancelURL:         stripe.String(config.AppConfig.SiteURL + "/?upgrade=cancel"),
		ClientReferenceID: stripe.String(strconv.Itoa(int(user.ID))),
		CustomerEmail:     stripe.String(user.Email),
		Metadata: map[string]string{
			"user_id": strconv.Itoa(int(user.ID)),
			"plan":    "owner_pro",
		},
	}
	if profile.StripeCustomerID != nil {
		params.Customer = profile.StripeCustomerID
		params.CustomerEmail = nil
	}

	s, err := session.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}
