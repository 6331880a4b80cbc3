// Package handler - HTTP handlers cho quản trị tenant config.
package handler

import (
	"errors"

	basehdl "promo_notify/internal/api/base/handler"
	models "promo_notify/internal/api/tenant/models"
	"promo_notify/internal/api/tenant/service"
	"promo_notify/internal/common"
	"promo_notify/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// TenantConfigHandler - admin surface đọc/ghi tenant config
type TenantConfigHandler struct {
	configs  *service.TenantConfigService
	resolver *service.Resolver
}

// NewTenantConfigHandler tạo mới TenantConfigHandler
func NewTenantConfigHandler(configs *service.TenantConfigService, resolver *service.Resolver) *TenantConfigHandler {
	return &TenantConfigHandler{configs: configs, resolver: resolver}
}

// ListTenants trả về tóm tắt tất cả tenant.
// Route: GET /api/v1/tenants
func (h *TenantConfigHandler) ListTenants(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenants, err := h.configs.ListTenants(c.Context())
		if err != nil {
			return basehdl.Error(c, common.StatusInternalServerError, common.ErrCodeDatabaseQuery, err.Error())
		}
		return basehdl.Success(c, tenants)
	})
}

// GetConfig trả về config đầy đủ của một tenant.
// Route: GET /api/v1/tenants/:id/config
func (h *TenantConfigHandler) GetConfig(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID := c.Params("id")
		if tenantID == "" {
			return basehdl.Error(c, common.StatusBadRequest, common.ErrCodeValidationInput, "Thiếu tenant id")
		}

		cfg, err := h.configs.GetConfig(c.Context(), tenantID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return basehdl.Error(c, common.StatusNotFound, common.ErrCodeDatabaseQuery, "Không tìm thấy tenant")
			}
			return basehdl.Error(c, common.StatusInternalServerError, common.ErrCodeDatabaseQuery, err.Error())
		}
		return basehdl.Success(c, cfg)
	})
}

// SaveConfig ghi config của một tenant (upsert, last-write-wins) và rebuild
// sheet index để event tiếp theo resolve đúng tenant ngay.
// Route: POST /api/v1/tenants/:id/config
func (h *TenantConfigHandler) SaveConfig(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID := c.Params("id")
		if tenantID == "" {
			return basehdl.Error(c, common.StatusBadRequest, common.ErrCodeValidationInput, "Thiếu tenant id")
		}

		var cfg models.TenantConfig
		if err := c.Bind().Body(&cfg); err != nil {
			return basehdl.Error(c, common.StatusBadRequest, common.ErrCodeValidationFormat, "Body không đúng định dạng JSON")
		}
		cfg.ID = tenantID

		if err := h.configs.SaveConfig(c.Context(), &cfg); err != nil {
			return basehdl.Error(c, common.StatusInternalServerError, common.ErrCodeDatabaseQuery, err.Error())
		}

		// Index chỉ là accelerator - rebuild fail không làm save fail
		if err := h.resolver.RebuildIndex(c.Context()); err != nil {
			logger.GetAppLogger().WithError(err).Warn("🏷 [TENANT] Rebuild sheet index sau save thất bại")
		}

		return basehdl.Success(c, fiber.Map{"id": cfg.ID, "updatedAt": cfg.UpdatedAt})
	})
}
