package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	models "promo_notify/internal/api/tenant/models"
	"promo_notify/internal/logger"
)

// MessageSender là phần tối thiểu của chat client mà reporter cần
type MessageSender interface {
	SendMessage(ctx context.Context, token, roomID, body string) (string, error)
}

// Reporter phân loại lỗi và gửi thông báo out-of-band về admin room.
// Không bao giờ panic và không bao giờ report lỗi của chính nó (reporting
// là terminal).
type Reporter struct {
	chat MessageSender

	// Fallback khi tenant không cấu hình admin riêng
	defaultToken  string
	defaultRoomID string
}

// NewReporter tạo mới Reporter với admin credentials mặc định từ env
func NewReporter(chat MessageSender, defaultToken, defaultRoomID string) *Reporter {
	return &Reporter{
		chat:          chat,
		defaultToken:  defaultToken,
		defaultRoomID: defaultRoomID,
	}
}

// ReportContext mang thông tin trace kèm theo report
type ReportContext struct {
	TenantID string
	Row      int         // Số dòng trên sheet nguồn (0 = không có)
	Payload  interface{} // Payload liên quan, sẽ được tóm tắt khi hiển thị
}

// jstZone - timestamp của report cố định theo UTC+9
var jstZone = time.FixedZone("JST", 9*60*60)

// Report gửi một error report về admin room. Credentials lấy theo thứ tự
// ưu tiên: tenant config → env defaults; nếu cả hai đều không có thì chỉ
// log local và trả về false. Trả về việc gửi report có thành công không.
func (r *Reporter) Report(ctx context.Context, cfg *models.TenantConfig, caseName, category, detail string, rctx *ReportContext) (ok bool) {
	log := logger.GetErrorLogger()

	// Reporting là bước cuối cùng của chuỗi lỗi - mọi panic ở đây đều nuốt
	defer func() {
		if rec := recover(); rec != nil {
			log.WithFields(map[string]interface{}{
				"panic":    rec,
				"caseName": caseName,
			}).Error("🚨 [REPORTER] Panic khi gửi error report")
			ok = false
		}
	}()

	fields := map[string]interface{}{
		"caseName": caseName,
		"category": category,
		"detail":   detail,
	}
	if rctx != nil {
		if rctx.TenantID != "" {
			fields["tenantId"] = rctx.TenantID
		}
		if rctx.Row > 0 {
			fields["row"] = rctx.Row
		}
	}
	log.WithFields(fields).Error("🚨 [REPORTER] " + caseName)

	token := r.defaultToken
	roomID := r.defaultRoomID
	if cfg != nil {
		if cfg.AdminChatworkToken != "" {
			token = cfg.AdminChatworkToken
		}
		if cfg.AdminRoomID != "" {
			roomID = cfg.AdminRoomID
		}
	}
	if token == "" || roomID == "" {
		log.WithField("caseName", caseName).Warn("🚨 [REPORTER] Không có admin credentials, chỉ log local")
		return false
	}

	if _, err := r.chat.SendMessage(ctx, token, roomID, r.buildMessage(caseName, category, detail, rctx)); err != nil {
		log.WithError(err).WithField("caseName", caseName).Error("🚨 [REPORTER] Gửi error report thất bại")
		return false
	}

	return true
}

// buildMessage build khối [info] theo format cố định của admin report
func (r *Reporter) buildMessage(caseName, category, detail string, rctx *ReportContext) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[info][title]🚨 %s[/title]", caseName))
	b.WriteString(fmt.Sprintf("時刻: %s (JST)\n", time.Now().In(jstZone).Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("分類: %s\n", category))
	b.WriteString(fmt.Sprintf("内容: %s", detail))

	if rctx != nil {
		if rctx.TenantID != "" {
			b.WriteString(fmt.Sprintf("\nテナント: %s", rctx.TenantID))
		}
		if rctx.Row > 0 {
			b.WriteString(fmt.Sprintf("\n行番号: %d", rctx.Row))
		}
		if summary := payloadSummary(rctx.Payload); summary != "" {
			b.WriteString("\n対象: " + summary)
		}
	}

	b.WriteString("[/info]")
	return b.String()
}

// payloadSummary tóm tắt payload: object lấy 5 key đầu, string lấy 100 ký tự đầu
func payloadSummary(payload interface{}) string {
	const maxKeys = 5
	const maxChars = 100

	switch p := payload.(type) {
	case nil:
		return ""
	case string:
		if len(p) > maxChars {
			return p[:maxChars] + "…"
		}
		return p
	case map[string]string:
		m := make(map[string]interface{}, len(p))
		for k, v := range p {
			m[k] = v
		}
		return summarizeMap(m, maxKeys)
	case map[string]interface{}:
		return summarizeMap(p, maxKeys)
	default:
		encoded, err := json.Marshal(p)
		if err != nil {
			return fmt.Sprintf("%v", p)
		}
		s := string(encoded)
		if len(s) > maxChars {
			return s[:maxChars] + "…"
		}
		return s
	}
}

func summarizeMap(m map[string]interface{}, maxKeys int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	shown := keys
	if len(shown) > maxKeys {
		shown = shown[:maxKeys]
	}

	parts := make([]string, 0, len(shown))
	for _, k := range shown {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	summary := strings.Join(parts, ", ")
	if len(keys) > maxKeys {
		summary += fmt.Sprintf(" …(他%dキー)", len(keys)-maxKeys)
	}
	return summary
}
