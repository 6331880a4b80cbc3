// Package notification - dispatch engine: nhận event đã chuẩn hóa + config
// tenant, quyết định gửi gì, cho ai, render message/task từ template và gửi
// qua một hoặc nhiều kênh, chịu được partial failure.
package notification

// Event là inbound event đã được chuẩn hóa từ payload thô.
// AllFields giữ nguyên mọi cột/key gốc; các field tiện ích là kết quả
// extract best-effort từ các header alias thông dụng (tiếng Nhật và Anh).
type Event struct {
	SheetName  string            `json:"sheetName"`
	RowIndex   int               `json:"rowIndex,omitempty"` // 0 = không có (event từ nguồn ngoài)
	ClientName string            `json:"clientName,omitempty"`
	Email      string            `json:"email,omitempty"`
	DateTime   string            `json:"dateTime,omitempty"`
	Staff      string            `json:"staff,omitempty"`
	AllFields  map[string]string `json:"allFields"`
}

// TemplateData build data map cho template renderer: các field tiện ích +
// toàn bộ AllFields ở top-level (tiện cho template viết {列名} trực tiếp),
// và AllFields dưới key "allFields" cho dạng path {allFields.X}.
func (e *Event) TemplateData() map[string]interface{} {
	data := make(map[string]interface{}, len(e.AllFields)+8)

	for k, v := range e.AllFields {
		data[k] = v
	}

	// Field tiện ích ghi đè lên cột trùng tên để giữ semantics ổn định
	data["sheetName"] = e.SheetName
	data["clientName"] = e.ClientName
	data["email"] = e.Email
	data["dateTime"] = e.DateTime
	data["staff"] = e.Staff
	if e.RowIndex > 0 {
		data["rowIndex"] = e.RowIndex
	}
	data["allFields"] = e.AllFields

	return data
}
