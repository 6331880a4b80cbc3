package notification

import (
	"strings"

	models "promo_notify/internal/api/tenant/models"
)

// Operators được hỗ trợ của Filter
const (
	OperatorEquals    = "equals"
	OperatorNotEquals = "not_equals"
)

// EvaluateFilter đánh giá filter trên field map của event.
// Filter nil hoặc targetColumn rỗng → luôn true. Operator không nhận diện
// được cũng trả về true (permissive fallback) để config thêm operator mới
// trong tương lai không âm thầm chặn toàn bộ dispatch.
func EvaluateFilter(f *models.Filter, fields map[string]string) bool {
	if f == nil || strings.TrimSpace(f.TargetColumn) == "" {
		return true
	}

	actual := strings.TrimSpace(fields[strings.TrimSpace(f.TargetColumn)])
	expected := strings.TrimSpace(f.TargetValue)

	switch f.Operator {
	case OperatorEquals:
		return actual == expected
	case OperatorNotEquals:
		return actual != expected
	default:
		return true
	}
}
