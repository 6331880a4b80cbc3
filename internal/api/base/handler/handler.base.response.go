// Package basehdl - helpers chuẩn hóa response cho mọi handler.
package basehdl

import (
	"runtime/debug"

	"promo_notify/internal/common"
	"promo_notify/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// JSONResponse trả về JSON response với charset=utf-8 (message tiếng Nhật/Việt
// cần encoding đúng)
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// Success trả về response thành công theo format thống nhất
func Success(c fiber.Ctx, data interface{}) error {
	return JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": "Thành công",
		"data":    data,
		"status":  "success",
	})
}

// Error trả về response lỗi theo format thống nhất
func Error(c fiber.Ctx, statusCode int, code common.ErrorCode, message string) error {
	return JSONResponse(c, statusCode, fiber.Map{
		"code":    code.Code,
		"message": message,
		"status":  "error",
	})
}

// SafeHandler bọc handler với recover - server luôn trả về response cho
// client kể cả khi handler panic
func SafeHandler(c fiber.Ctx, fn func() error) error {
	defer func() {
		if r := recover(); r != nil {
			debug.PrintStack()
			logger.GetErrorLogger().WithField("panic", r).Error("💥 [HANDLER] Panic trong handler")
			Error(c, common.StatusInternalServerError, common.ErrCodeInternalServer, "Lỗi hệ thống không mong muốn")
		}
	}()
	return fn()
}
