package common

import "errors"

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK      = 200 // Thành công
	StatusCreated = 201 // Tạo mới thành công

	// Client Error Codes (4xx)
	StatusBadRequest   = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized = 401 // Chưa xác thực
	StatusForbidden    = 403 // Không có quyền truy cập
	StatusNotFound     = 404 // Không tìm thấy tài nguyên

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
)

// ErrNotFound là sentinel error khi không tìm thấy document
var ErrNotFound = errors.New("document not found")

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: NOTIF_001)
	Category    string // Phân loại lỗi
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi của hệ thống
var (
	ErrCodeValidationFormat = ErrorCode{Code: "VAL_001", Category: "Validation", Description: "Dữ liệu không đúng định dạng"}
	ErrCodeValidationInput  = ErrorCode{Code: "VAL_002", Category: "Validation", Description: "Dữ liệu đầu vào không hợp lệ"}
	ErrCodeAuthSecret       = ErrorCode{Code: "AUTH_001", Category: "Authentication", Description: "Webhook secret không hợp lệ"}
	ErrCodeDatabaseQuery    = ErrorCode{Code: "DB_001", Category: "Database", Description: "Lỗi truy vấn cơ sở dữ liệu"}
	ErrCodeBusinessOperation = ErrorCode{Code: "BIZ_001", Category: "Business", Description: "Lỗi xử lý nghiệp vụ"}
	ErrCodeInternalServer   = ErrorCode{Code: "SYS_001", Category: "System", Description: "Lỗi hệ thống"}
)

// Report categories - phân loại lỗi cho error reporter (gửi về admin room).
// Các case này bám theo từng bước của dispatch pipeline để trace ngược về
// dòng spreadsheet gốc.
const (
	CategoryConfigMissing      = "configuration-missing"
	CategorySheetNotFound      = "sheet-not-found"
	CategoryStaffMatchFailed   = "staff-match-failed"
	CategoryChatIdentityMissing = "chat-identity-missing"
	CategoryTaskAssigneeInvalid = "task-assignee-invalid"
	CategoryMemberFetchFailed  = "member-fetch-failed"
	CategoryTaskCreationFailed = "task-creation-failed"
	CategoryWebhookPayloadInvalid = "webhook-payload-invalid"
	CategoryUnknown            = "unknown"
)
