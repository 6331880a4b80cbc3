package notification

// Trạng thái của một outcome
const (
	StatusSent    = "sent"
	StatusCreated = "created"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Lý do skip/fail chuẩn hóa
const (
	ReasonFilterMismatch = "filter_mismatch"
	ReasonEmptyMessage   = "empty_message"
)

// Outcome ghi lại kết quả của một action (message hoặc task) trong một rule.
// Outcome chỉ tồn tại trong response của request, không persist.
type Outcome struct {
	RuleID  string  `json:"ruleId,omitempty"`
	Kind    string  `json:"kind"` // "message" | "task"
	RoomID  string  `json:"roomId"`
	Status  string  `json:"status"`
	Reason  string  `json:"reason,omitempty"`
	TaskIDs []int64 `json:"taskIds,omitempty"`
}

// TaskResult tách bạch hai tầng kết quả của bước tạo task: thao tác chính
// thất bại, fallback message đã được thử hay chưa, và fallback có lỗi không.
// Thay cho kiểu try/catch lồng nhau nuốt lỗi - test có thể assert từng tầng
// độc lập.
type TaskResult struct {
	Primary           error
	FallbackAttempted bool
	Fallback          error
}
