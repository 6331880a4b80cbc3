package notification

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Render thay mọi token {key} trong template bằng data[key] đã stringify.
// Dạng path {allFields.X} truy cập data["allFields"][X]. Key không tồn tại
// render thành chuỗi rỗng, không bao giờ để lại token gốc. Hàm thuần, cùng
// một cặp (template, data) luôn cho cùng một kết quả.
func Render(template string, data map[string]interface{}) string {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}

		end := strings.IndexByte(template[i+1:], '}')
		if end < 0 {
			// Dấu { không đóng - giữ nguyên phần còn lại
			b.WriteString(template[i:])
			break
		}

		key := template[i+1 : i+1+end]
		b.WriteString(lookupValue(data, key))
		i += end + 2
	}

	return b.String()
}

// lookupValue tra giá trị theo key (flat hoặc dạng allFields.X)
func lookupValue(data map[string]interface{}, key string) string {
	const nestedPrefix = "allFields."

	if strings.HasPrefix(key, nestedPrefix) {
		fieldKey := key[len(nestedPrefix):]
		switch fields := data["allFields"].(type) {
		case map[string]string:
			if v, ok := fields[fieldKey]; ok {
				return ShapeValue(v)
			}
		case map[string]interface{}:
			if v, ok := fields[fieldKey]; ok {
				return ShapeValue(v)
			}
		}
		return ""
	}

	v, ok := data[key]
	if !ok {
		return ""
	}
	return ShapeValue(v)
}

// ShapeValue stringify một giá trị trước khi thay vào template.
// Giá trị dạng object serialize thành JSON thay vì ra chuỗi vô nghĩa.
func ShapeValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return shapeTimestamp(t)
	case map[string]string, map[string]interface{}, []interface{}, []string:
		encoded, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(encoded)
	default:
		return shapeTimestamp(fmt.Sprintf("%v", t))
	}
}

// shapeTimestamp xử lý hai artifact của giá trị ngày giờ từ spreadsheet:
//   - giá trị chỉ có ngày mang suffix " 00:00:00" → bỏ suffix
//   - giá trị chỉ có giờ mang prefix "1899/12/30 " (epoch của spreadsheet
//     cho pure time value) → rút gọn còn HH:MM
func shapeTimestamp(s string) string {
	const dateOnlySuffix = " 00:00:00"
	const timeOnlyPrefix = "1899/12/30 "

	if strings.HasSuffix(s, dateOnlySuffix) {
		return strings.TrimSuffix(s, dateOnlySuffix)
	}
	if strings.HasPrefix(s, timeOnlyPrefix) {
		timePart := s[len(timeOnlyPrefix):]
		if len(timePart) >= 5 {
			return timePart[:5]
		}
		return timePart
	}
	return s
}
