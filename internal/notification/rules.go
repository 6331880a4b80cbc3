package notification

import (
	models "promo_notify/internal/api/tenant/models"
)

// MatchRules trả về mọi rule có sheetName bằng đúng sheet name của event
// (exact match, không prefix/substring - sai lệch tên sheet là lỗi vận hành
// thường gặp). Trả về kèm danh sách toàn bộ sheet name đã so sánh để khi
// không match được thì diagnostics nói rõ đã so với những gì, thay vì chỉ
// "not found".
func MatchRules(cfg *models.TenantConfig, sheetName string) (matched []models.NotificationRule, compared []string) {
	seen := make(map[string]bool, len(cfg.NotificationRules))

	for _, rule := range cfg.NotificationRules {
		if !seen[rule.SheetName] {
			seen[rule.SheetName] = true
			compared = append(compared, rule.SheetName)
		}
		if rule.SheetName == sheetName {
			matched = append(matched, rule)
		}
	}

	return matched, compared
}
