package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/tiersync/app/controllers"
)

const (
	WebhookPath      = "/api/webhook"
	WebhookAliasPath = "/webhooks/stripe"
)

// WebhookRouter mounts the Stripe endpoint. Every method is routed to the
// controller so non-POST requests get 405 instead of 404.
type WebhookRouter struct {
	controller *controllers.WebhookController
}

func (w WebhookRouter) InstallRouter(app *fiber.App) {
	app.All(WebhookPath, w.controller.HandleStripeWebhook)
	app.All(WebhookAliasPath, w.controller.HandleStripeWebhook)
}

func NewWebhookRouter(controller *controllers.WebhookController) *WebhookRouter {
	return &WebhookRouter{controller: controller}
}
