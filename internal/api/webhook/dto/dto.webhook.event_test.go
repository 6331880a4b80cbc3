package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEvent_JapaneseAliases(t *testing.T) {
	req := &WebhookRequest{
		SheetName: "予約一覧",
		RowIndex:  3,
		Data: map[string]interface{}{
			"氏名":       "山田太郎",
			"メールアドレス": "yamada@example.com",
			"予約日時":     "2026/1/31 10:00",
			"担当":       "10:00-11:00",
			"備考":       "初回",
		},
	}

	ev := req.ToEvent()

	assert.Equal(t, "予約一覧", ev.SheetName)
	assert.Equal(t, 3, ev.RowIndex)
	assert.Equal(t, "山田太郎", ev.ClientName)
	assert.Equal(t, "yamada@example.com", ev.Email)
	assert.Equal(t, "2026/1/31 10:00", ev.DateTime)
	assert.Equal(t, "10:00-11:00", ev.Staff)
	// AllFields giữ nguyên mọi key gốc
	assert.Equal(t, "初回", ev.AllFields["備考"])
}

func TestToEvent_EnglishAliases(t *testing.T) {
	req := &WebhookRequest{Data: map[string]interface{}{
		"Name":     "Tanaka",
		"Email":    "tanaka@example.com",
		"DateTime": "2026/2/1 14:00",
	}}

	ev := req.ToEvent()

	assert.Equal(t, "Tanaka", ev.ClientName)
	assert.Equal(t, "tanaka@example.com", ev.Email)
	assert.Equal(t, "2026/2/1 14:00", ev.DateTime)
}

func TestToEvent_NoAliasMatch(t *testing.T) {
	req := &WebhookRequest{Data: map[string]interface{}{"謎の列": "値"}}

	ev := req.ToEvent()

	assert.Empty(t, ev.ClientName)
	assert.Empty(t, ev.Email)
	assert.Equal(t, "値", ev.AllFields["謎の列"])
}

func TestToEvent_SheetNameAndRowFromData(t *testing.T) {
	// Nguồn ngoài có thể mang sheetName/rowIndex trong data thay vì top-level
	req := &WebhookRequest{Data: map[string]interface{}{
		"sheetName": "外部フォーム",
		"rowIndex":  "12",
	}}

	ev := req.ToEvent()

	assert.Equal(t, "外部フォーム", ev.SheetName)
	assert.Equal(t, 12, ev.RowIndex)
}

func TestToEvent_NonStringValues(t *testing.T) {
	req := &WebhookRequest{Data: map[string]interface{}{
		"count": float64(3),
		"flag":  true,
		"empty": nil,
	}}

	ev := req.ToEvent()
	require.NotNil(t, ev.AllFields)

	assert.Equal(t, "3", ev.AllFields["count"])
	assert.Equal(t, "true", ev.AllFields["flag"])
	assert.Equal(t, "", ev.AllFields["empty"])
}
