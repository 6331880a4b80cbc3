package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Basic(t *testing.T) {
	data := map[string]interface{}{"clientName": "山田", "dateTime": "2026/1/31 10:00"}
	assert.Equal(t, "山田様 2026/1/31 10:00", Render("{clientName}様 {dateTime}", data))
}

func TestRender_MissingKey(t *testing.T) {
	// Key không tồn tại render thành rỗng, không để lại token
	assert.Equal(t, "Hi ", Render("Hi {unknown}", map[string]interface{}{}))
}

func TestRender_UnclosedBrace(t *testing.T) {
	assert.Equal(t, "値: {open", Render("値: {open", map[string]interface{}{"open": "x"}))
}

func TestRender_NestedPath(t *testing.T) {
	data := map[string]interface{}{
		"allFields": map[string]string{"備考": "初回"},
	}
	assert.Equal(t, "備考=初回", Render("備考={allFields.備考}", data))
}

func TestRender_Deterministic(t *testing.T) {
	data := map[string]interface{}{"a": "1", "b": "2"}
	first := Render("{a}-{b}-{c}", data)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Render("{a}-{b}-{c}", data))
	}
}

func TestShapeValue_DateOnly(t *testing.T) {
	// Giá trị chỉ có ngày từ spreadsheet mang suffix nửa đêm
	assert.Equal(t, "2026/01/31", ShapeValue("2026/01/31 00:00:00"))
}

func TestShapeValue_TimeOnly(t *testing.T) {
	// Giá trị chỉ có giờ mang epoch 1899/12/30 của spreadsheet
	assert.Equal(t, "10:05", ShapeValue("1899/12/30 10:05:00"))
}

func TestShapeValue_Passthrough(t *testing.T) {
	assert.Equal(t, "2026/01/31 10:05:00", ShapeValue("2026/01/31 10:05:00"))
	assert.Equal(t, "", ShapeValue(nil))
	assert.Equal(t, "42", ShapeValue(42))
}

func TestShapeValue_ObjectAsJSON(t *testing.T) {
	out := ShapeValue(map[string]interface{}{"k": "v"})
	assert.JSONEq(t, `{"k":"v"}`, out)
}
