package notification

import (
	"testing"

	models "promo_notify/internal/api/tenant/models"

	"github.com/stretchr/testify/assert"
)

func TestMatchRules_ExactMatchOnly(t *testing.T) {
	cfg := &models.TenantConfig{NotificationRules: []models.NotificationRule{
		{ID: "r1", SheetName: "予約一覧"},
		{ID: "r2", SheetName: "予約一覧 (コピー)"},
		{ID: "r3", SheetName: "予約"},
	}}

	matched, _ := MatchRules(cfg, "予約一覧")
	assert.Len(t, matched, 1)
	assert.Equal(t, "r1", matched[0].ID)
}

func TestMatchRules_MultipleRulesSameSheet(t *testing.T) {
	cfg := &models.TenantConfig{NotificationRules: []models.NotificationRule{
		{ID: "r1", SheetName: "予約一覧"},
		{ID: "r2", SheetName: "別シート"},
		{ID: "r3", SheetName: "予約一覧"},
	}}

	matched, _ := MatchRules(cfg, "予約一覧")
	assert.Len(t, matched, 2)
	// Thứ tự cấu hình được giữ nguyên
	assert.Equal(t, "r1", matched[0].ID)
	assert.Equal(t, "r3", matched[1].ID)
}

func TestMatchRules_ComparedDiagnostics(t *testing.T) {
	cfg := &models.TenantConfig{NotificationRules: []models.NotificationRule{
		{ID: "r1", SheetName: "シートA"},
		{ID: "r2", SheetName: "シートB"},
		{ID: "r3", SheetName: "シートA"},
	}}

	matched, compared := MatchRules(cfg, "存在しないシート")
	assert.Empty(t, matched)
	// Danh sách compared dedupe, giữ thứ tự xuất hiện
	assert.Equal(t, []string{"シートA", "シートB"}, compared)
}
