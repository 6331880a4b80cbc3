// Package dto - request/response shapes của webhook endpoints.
package dto

import (
	"fmt"
	"strconv"

	"promo_notify/internal/notification"
)

// WebhookRequest là payload thô từ HTTP boundary (script trên spreadsheet
// hoặc form webhook bên ngoài)
type WebhookRequest struct {
	Type        string                 `json:"type" validate:"omitempty,event_type"`
	PromotionID string                 `json:"promotionId"`
	SheetName   string                 `json:"sheetName"`
	RowIndex    int                    `json:"rowIndex"`
	TargetDate  string                 `json:"targetDate"` // Chỉ dùng cho reminder
	Data        map[string]interface{} `json:"data"`
}

// Header aliases - các tên cột thông dụng (Nhật/Anh) để extract field tiện
// ích. Extraction là best-effort: không có alias nào match thì field để trống,
// AllFields vẫn giữ nguyên mọi key gốc.
var (
	clientNameAliases = []string{"氏名", "名前", "お名前", "クライアント名", "Name", "name", "clientName"}
	emailAliases      = []string{"メールアドレス", "メール", "Email", "email", "mail"}
	dateTimeAliases   = []string{"日時", "予約日時", "希望日時", "面談日時", "DateTime", "dateTime", "datetime"}
	staffAliases      = []string{"担当コンサルタント", "希望コンサルタント", "担当者", "担当", "Staff", "staff", "consultant"}
)

// ToEvent chuẩn hóa payload thô thành notification.Event
func (r *WebhookRequest) ToEvent() *notification.Event {
	fields := make(map[string]string, len(r.Data))
	for k, v := range r.Data {
		fields[k] = stringify(v)
	}

	ev := &notification.Event{
		SheetName:  r.SheetName,
		RowIndex:   r.RowIndex,
		ClientName: pickField(fields, clientNameAliases),
		Email:      pickField(fields, emailAliases),
		DateTime:   pickField(fields, dateTimeAliases),
		Staff:      pickField(fields, staffAliases),
		AllFields:  fields,
	}

	// Payload từ nguồn ngoài có thể mang sheetName/rowIndex trong data
	if ev.SheetName == "" {
		ev.SheetName = fields["sheetName"]
	}
	if ev.RowIndex == 0 {
		if n, err := strconv.Atoi(fields["rowIndex"]); err == nil {
			ev.RowIndex = n
		}
	}

	return ev
}

// pickField trả về giá trị đầu tiên tìm thấy theo danh sách alias
func pickField(fields map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := fields[alias]; ok && v != "" {
			return v
		}
	}
	return ""
}

// stringify đổi một giá trị JSON bất kỳ thành string, nil thành rỗng
func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
