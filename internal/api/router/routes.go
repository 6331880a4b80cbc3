// Package router đăng ký toàn bộ route của ứng dụng.
package router

import (
	"github.com/gofiber/fiber/v3"

	"promo_notify/internal/api/middleware"
	tenanthdl "promo_notify/internal/api/tenant/handler"
	webhookhdl "promo_notify/internal/api/webhook/handler"
)

// Register đăng ký tất cả route lên app.
// Webhook routes đứng sau middleware shared secret; tenant admin routes dùng
// chung secret đó (server không có user auth riêng).
func Register(app *fiber.App, webhook *webhookhdl.WebhookHandler, tenant *tenanthdl.TenantConfigHandler, webhookSecret string) {
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1", middleware.WebhookSecret(webhookSecret))

	wh := v1.Group("/webhook")
	wh.Post("/consultation", webhook.HandleConsultation)
	wh.Post("/universal", webhook.HandleUniversal)
	wh.Post("/reminder", webhook.HandleReminder)

	v1.Get("/tenants", tenant.ListTenants)
	v1.Get("/tenants/:id/config", tenant.GetConfig)
	v1.Post("/tenants/:id/config", tenant.SaveConfig)
}
