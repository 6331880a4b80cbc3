// Package models - TenantConfig thuộc domain Tenant.
package models

// TenantConfig - cấu hình của một tenant ("promotion"/campaign).
// Mỗi tenant là một document trong collection tenant_configs, đọc fresh theo
// từng request (không cache), ghi theo last-write-wins.
type TenantConfig struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`

	// Chatwork credentials của tenant
	ChatworkToken string `json:"chatworkToken,omitempty" bson:"chatworkToken,omitempty"`

	// Spreadsheet chứa dữ liệu của tenant
	SpreadsheetID string `json:"spreadsheetId,omitempty" bson:"spreadsheetId,omitempty"`

	// Sheet names
	BookingListSheetName  string `json:"bookingListSheetName,omitempty" bson:"bookingListSheetName,omitempty"`  // Sheet danh sách đặt lịch (event loại consultation)
	RosterSheetName       string `json:"rosterSheetName,omitempty" bson:"rosterSheetName,omitempty"`            // Sheet ca trực của consultant
	StaffMappingSheetName string `json:"staffMappingSheetName,omitempty" bson:"staffMappingSheetName,omitempty"` // Sheet map tên staff → Chatwork account id

	// Admin override - ưu tiên hơn env defaults khi gửi error report
	AdminChatworkToken string `json:"adminChatworkToken,omitempty" bson:"adminChatworkToken,omitempty"`
	AdminRoomID        string `json:"adminRoomId,omitempty" bson:"adminRoomId,omitempty"`

	Reminder     *ReminderConfig     `json:"reminder,omitempty" bson:"reminder,omitempty"`
	AssignViewer *AssignViewerConfig `json:"assignViewer,omitempty" bson:"assignViewer,omitempty"`

	// NotificationRules - danh sách rule theo thứ tự cấu hình.
	// Invariant: mỗi rule phải có id duy nhất do caller gán; rule không có id
	// bị loại bỏ khi load/save (xem service sanitize).
	NotificationRules []NotificationRule `json:"notificationRules" bson:"notificationRules"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// NotificationRule - binding từ trigger sheet name → các notification + task
type NotificationRule struct {
	ID            string         `json:"id" bson:"id"`
	SheetName     string         `json:"sheetName" bson:"sheetName"` // Exact-match key với sheet name của event
	Notifications []Notification `json:"notifications" bson:"notifications"`
	Task          *TaskSpec      `json:"task,omitempty" bson:"task,omitempty"`
}

// Notification - một action gửi message tới một room
type Notification struct {
	RoomID   string   `json:"roomId" bson:"roomId"`
	Template string   `json:"template,omitempty" bson:"template,omitempty"`
	Columns  []string `json:"columns,omitempty" bson:"columns,omitempty"` // Whitelist cột hiển thị trong khối chi tiết
}

// TaskSpec - cấu hình tạo task kèm theo rule
type TaskSpec struct {
	Enabled     bool     `json:"enabled" bson:"enabled"`
	RoomID      string   `json:"roomId,omitempty" bson:"roomId,omitempty"`
	AssigneeIDs []string `json:"assigneeIds,omitempty" bson:"assigneeIds,omitempty"`
	Template    string   `json:"template,omitempty" bson:"template,omitempty"`
	Filter      *Filter  `json:"filter,omitempty" bson:"filter,omitempty"`
}

// Filter - điều kiện declarative trên field map của row.
// TargetColumn rỗng nghĩa là "luôn đúng".
type Filter struct {
	TargetColumn string `json:"targetColumn,omitempty" bson:"targetColumn,omitempty"`
	Operator     string `json:"operator,omitempty" bson:"operator,omitempty"` // equals | not_equals
	TargetValue  string `json:"targetValue,omitempty" bson:"targetValue,omitempty"`
}

// ReminderConfig - cấu hình gửi reminder trước ngày hẹn
type ReminderConfig struct {
	Enabled    bool   `json:"enabled" bson:"enabled"`
	RoomID     string `json:"roomId,omitempty" bson:"roomId,omitempty"`
	Template   string `json:"template,omitempty" bson:"template,omitempty"`
	DaysBefore int    `json:"daysBefore,omitempty" bson:"daysBefore,omitempty"` // 0 = cùng ngày, 1 = trước 1 ngày
}

// AssignViewerConfig - cấu hình ghi ngược tên staff và viewer URL vào sheet nguồn
type AssignViewerConfig struct {
	Enabled       bool   `json:"enabled" bson:"enabled"`
	ViewerBaseURL string `json:"viewerBaseUrl,omitempty" bson:"viewerBaseUrl,omitempty"`
	StaffColumn   int    `json:"staffColumn,omitempty" bson:"staffColumn,omitempty"`   // Cột (1-based) ghi tên staff đã match
	ViewerColumn  int    `json:"viewerColumn,omitempty" bson:"viewerColumn,omitempty"` // Cột (1-based) ghi viewer URL
}

// TenantSummary - bản tóm tắt tenant cho listing (không kéo cả config)
type TenantSummary struct {
	ID        string `json:"id" bson:"_id"`
	Name      string `json:"name,omitempty" bson:"name,omitempty"`
	UpdatedAt int64  `json:"updatedAt" bson:"updatedAt"`
}
