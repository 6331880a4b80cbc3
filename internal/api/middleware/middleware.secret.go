// Package middleware - các middleware của API.
package middleware

import (
	"crypto/subtle"

	basehdl "promo_notify/internal/api/base/handler"
	"promo_notify/internal/common"
	"promo_notify/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// secretHeader là header mang shared secret của webhook caller
const secretHeader = "X-Webhook-Secret"

// WebhookSecret xác thực request bằng shared secret.
// Secret trống (server chưa cấu hình) thì từ chối mọi request - fail closed.
func WebhookSecret(secret string) fiber.Handler {
	return func(c fiber.Ctx) error {
		provided := c.Get(secretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			logger.GetAppLogger().WithFields(map[string]interface{}{
				"path": c.Path(),
				"ip":   c.IP(),
			}).Warn("🔒 [AUTH] Webhook secret không hợp lệ")
			return basehdl.Error(c, common.StatusUnauthorized, common.ErrCodeAuthSecret, "Webhook secret không hợp lệ")
		}
		return c.Next()
	}
}
