// Package handler - HTTP handlers cho webhook endpoints.
package handler

import (
	"fmt"

	basehdl "promo_notify/internal/api/base/handler"
	"promo_notify/internal/api/webhook/dto"
	"promo_notify/internal/api/webhook/service"
	"promo_notify/internal/common"
	"promo_notify/internal/global"

	"github.com/gofiber/fiber/v3"
)

// WebhookHandler nhận row-event từ spreadsheet script / nguồn ngoài
type WebhookHandler struct {
	events *service.EventService
}

// NewWebhookHandler tạo mới WebhookHandler
func NewWebhookHandler(events *service.EventService) *WebhookHandler {
	return &WebhookHandler{events: events}
}

// bind parse + validate request body. Payload hỏng được report về admin room
// trước khi trả 400 - lỗi này thường do script phía spreadsheet cấu hình sai.
// ok=false nghĩa là response lỗi đã được ghi, caller chỉ cần return err.
func (h *WebhookHandler) bind(c fiber.Ctx, req *dto.WebhookRequest) (ok bool, err error) {
	if bindErr := c.Bind().Body(req); bindErr != nil {
		h.events.ReportInvalidPayload(c.Context(), fmt.Sprintf("parse body: %v", bindErr), string(c.Body()))
		return false, basehdl.Error(c, common.StatusBadRequest, common.ErrCodeValidationFormat, "Body không đúng định dạng JSON")
	}
	if validateErr := global.Validate.Struct(req); validateErr != nil {
		h.events.ReportInvalidPayload(c.Context(), fmt.Sprintf("validate: %v", validateErr), req)
		return false, basehdl.Error(c, common.StatusBadRequest, common.ErrCodeValidationInput, validateErr.Error())
	}
	return true, nil
}

// HandleConsultation xử lý event đặt lịch tư vấn.
// Route: POST /api/v1/webhook/consultation
func (h *WebhookHandler) HandleConsultation(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var req dto.WebhookRequest
		if ok, err := h.bind(c, &req); !ok {
			return err
		}
		return basehdl.Success(c, h.events.HandleConsultation(c.Context(), &req))
	})
}

// HandleUniversal xử lý event rule-driven từ sheet bất kỳ.
// Route: POST /api/v1/webhook/universal
func (h *WebhookHandler) HandleUniversal(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var req dto.WebhookRequest
		if ok, err := h.bind(c, &req); !ok {
			return err
		}
		return basehdl.Success(c, h.events.HandleUniversal(c.Context(), &req))
	})
}

// HandleReminder trigger một lượt reminder thủ công.
// Route: POST /api/v1/webhook/reminder
func (h *WebhookHandler) HandleReminder(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var req dto.WebhookRequest
		if ok, err := h.bind(c, &req); !ok {
			return err
		}

		result, err := h.events.HandleReminder(c.Context(), &req)
		if err != nil {
			return basehdl.Error(c, common.StatusInternalServerError, common.ErrCodeBusinessOperation, err.Error())
		}
		return basehdl.Success(c, result)
	})
}
