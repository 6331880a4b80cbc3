package notification

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	models "promo_notify/internal/api/tenant/models"
	"promo_notify/internal/common"
	"promo_notify/internal/logger"
	"promo_notify/internal/platform/chatwork"
)

// ChatClient là collaborator chat-platform của dispatcher.
// Ba thao tác remote, idempotent theo từng call, đều có thể fail.
type ChatClient interface {
	SendMessage(ctx context.Context, token, roomID, body string) (string, error)
	CreateTask(ctx context.Context, token, roomID, body string, assigneeIDs []string, dueAt int64) ([]int64, error)
	GetRoomMembers(ctx context.Context, token, roomID string) ([]chatwork.RoomMember, error)
}

// defaultTaskTemplate dùng khi rule không khai báo template cho task body
const defaultTaskTemplate = "「{sheetName}」に新しい行が追加されました。内容をご確認ください。"

// Dispatcher orchestrate việc gửi notification và tạo task theo từng rule.
// Notifications trong một rule gửi tuần tự theo thứ tự mảng cấu hình; các
// rule cũng xử lý tuần tự theo thứ tự rule matcher trả về. Không gửi song
// song - đây là trade-off đơn giản/ordering có chủ đích, không phải thiếu
// sót về scale.
type Dispatcher struct {
	chat     ChatClient
	reporter *Reporter

	// now tách ra để test control được due time của task
	now func() time.Time
}

// NewDispatcher tạo mới Dispatcher
func NewDispatcher(chat ChatClient, reporter *Reporter) *Dispatcher {
	return &Dispatcher{
		chat:     chat,
		reporter: reporter,
		now:      time.Now,
	}
}

// Chat expose chat client cho các flow gửi message ngoài rule (reminder)
func (d *Dispatcher) Chat() ChatClient {
	return d.chat
}

// DispatchAll xử lý toàn bộ rules đã match cho một event. Lỗi (kể cả panic)
// trong một rule được bắt, report và ghi outcome failed cho rule đó; các
// rule sau vẫn chạy tiếp.
func (d *Dispatcher) DispatchAll(ctx context.Context, cfg *models.TenantConfig, rules []models.NotificationRule, ev *Event) []Outcome {
	outcomes := make([]Outcome, 0, len(rules))

	for _, rule := range rules {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logger.GetAppLogger().WithFields(map[string]interface{}{
						"panic":  rec,
						"ruleId": rule.ID,
					}).Error("📣 [DISPATCH] Panic khi xử lý rule")
					d.reporter.Report(ctx, cfg, "ルール処理エラー", common.CategoryUnknown,
						fmt.Sprintf("rule %s: panic: %v", rule.ID, rec),
						&ReportContext{TenantID: cfg.ID, Row: ev.RowIndex, Payload: ev.AllFields})
					outcomes = append(outcomes, Outcome{
						RuleID: rule.ID,
						Kind:   "message",
						Status: StatusFailed,
						Reason: common.CategoryUnknown,
					})
				}
			}()
			outcomes = append(outcomes, d.Dispatch(ctx, cfg, rule, ev)...)
		}()
	}

	return outcomes
}

// Dispatch xử lý một rule: gửi lần lượt các notification rồi đến task (nếu
// bật). Một notification fail không chặn notification sau và không chặn
// bước task.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg *models.TenantConfig, rule models.NotificationRule, ev *Event) []Outcome {
	log := logger.GetAppLogger()
	outcomes := make([]Outcome, 0, len(rule.Notifications)+1)
	data := ev.TemplateData()

	// 1. Gửi các notification theo thứ tự cấu hình
	for _, notif := range rule.Notifications {
		body := d.buildMessage(notif, ev, data)
		if strings.TrimSpace(body) == "" {
			// Message rỗng bỏ qua lặng lẽ, không phải lỗi
			outcomes = append(outcomes, Outcome{
				RuleID: rule.ID,
				Kind:   "message",
				RoomID: notif.RoomID,
				Status: StatusSkipped,
				Reason: ReasonEmptyMessage,
			})
			continue
		}

		if _, err := d.chat.SendMessage(ctx, cfg.ChatworkToken, notif.RoomID, body); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"ruleId": rule.ID,
				"roomId": notif.RoomID,
			}).Error("📣 [DISPATCH] Gửi notification thất bại")
			d.reporter.Report(ctx, cfg, "通知送信エラー", common.CategoryUnknown,
				fmt.Sprintf("rule %s room %s: %v", rule.ID, notif.RoomID, err),
				&ReportContext{TenantID: cfg.ID, Row: ev.RowIndex, Payload: ev.AllFields})
			outcomes = append(outcomes, Outcome{
				RuleID: rule.ID,
				Kind:   "message",
				RoomID: notif.RoomID,
				Status: StatusFailed,
				Reason: err.Error(),
			})
			continue
		}

		outcomes = append(outcomes, Outcome{
			RuleID: rule.ID,
			Kind:   "message",
			RoomID: notif.RoomID,
			Status: StatusSent,
		})
	}

	// 2. Tạo task nếu rule có cấu hình
	if rule.Task != nil && rule.Task.Enabled && rule.Task.RoomID != "" {
		outcome, _ := d.createTask(ctx, cfg, rule, ev, data)
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// buildMessage render template và gắn thêm khối chi tiết cho các cột whitelist
func (d *Dispatcher) buildMessage(notif models.Notification, ev *Event, data map[string]interface{}) string {
	body := Render(notif.Template, data)

	if len(notif.Columns) == 0 {
		return body
	}

	var details strings.Builder
	details.WriteString("[info][title]詳細[/title]")
	for i, col := range notif.Columns {
		if i > 0 {
			details.WriteString("\n")
		}
		details.WriteString(col)
		details.WriteString(": ")
		details.WriteString(ShapeValue(ev.AllFields[col]))
	}
	details.WriteString("[/info]")

	if body == "" {
		return details.String()
	}
	return body + "\n" + details.String()
}

// createTask xử lý bước task của một rule. Trả về outcome và TaskResult hai
// tầng (primary/fallback) để caller và test thấy được cả hai kết quả.
func (d *Dispatcher) createTask(ctx context.Context, cfg *models.TenantConfig, rule models.NotificationRule, ev *Event, data map[string]interface{}) (Outcome, TaskResult) {
	task := rule.Task

	// a. Filter gate - không match thì skip, không message, không report
	if !EvaluateFilter(task.Filter, ev.AllFields) {
		return Outcome{
			RuleID: rule.ID,
			Kind:   "task",
			RoomID: task.RoomID,
			Status: StatusSkipped,
			Reason: ReasonFilterMismatch,
		}, TaskResult{}
	}

	// b. Phải có ít nhất một assignee được cấu hình - thiếu là hard failure
	configured := make([]string, 0, len(task.AssigneeIDs))
	for _, id := range task.AssigneeIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			configured = append(configured, trimmed)
		}
	}
	if len(configured) == 0 {
		return d.failTask(ctx, cfg, rule, ev, common.CategoryTaskAssigneeInvalid,
			fmt.Sprintf("rule %s: không có assignee nào được cấu hình", rule.ID))
	}

	// c. Validate assignee với member list thực tế của room - chặn trường hợp
	// member đã rời room hoặc id gõ nhầm
	members, err := d.chat.GetRoomMembers(ctx, cfg.ChatworkToken, task.RoomID)
	if err != nil {
		return d.failTask(ctx, cfg, rule, ev, common.CategoryMemberFetchFailed,
			fmt.Sprintf("rule %s room %s: %v", rule.ID, task.RoomID, err))
	}

	valid := make(map[string]bool, len(members))
	for _, m := range members {
		valid[strconv.FormatInt(m.AccountID, 10)] = true
	}
	assignees := make([]string, 0, len(configured))
	for _, id := range configured {
		if valid[id] {
			assignees = append(assignees, id)
		}
	}
	if len(assignees) == 0 {
		return d.failTask(ctx, cfg, rule, ev, common.CategoryTaskAssigneeInvalid,
			fmt.Sprintf("rule %s room %s: không có assignee nào là member của room (cấu hình: %s)",
				rule.ID, task.RoomID, strings.Join(configured, ",")))
	}

	// d. Render body và tạo task, hạn hoàn thành 23:59:59 hôm nay (JST).
	// SLA cố định: task tự động tạo ra luôn đáo hạn trong ngày.
	template := task.Template
	if strings.TrimSpace(template) == "" {
		template = defaultTaskTemplate
	}
	body := Render(template, data)

	taskIDs, err := d.chat.CreateTask(ctx, cfg.ChatworkToken, task.RoomID, body, assignees, endOfDayJST(d.now()))
	if err != nil {
		return d.failTask(ctx, cfg, rule, ev, common.CategoryTaskCreationFailed,
			fmt.Sprintf("rule %s room %s: %v", rule.ID, task.RoomID, err))
	}

	return Outcome{
		RuleID:  rule.ID,
		Kind:    "task",
		RoomID:  task.RoomID,
		Status:  StatusCreated,
		TaskIDs: taskIDs,
	}, TaskResult{}
}

// failTask xử lý đường lỗi chung của bước task: report, ghi outcome failed,
// và gửi best-effort một message cảnh báo vào chính room đó. Lỗi của chính
// fallback message bị nuốt (chỉ ghi vào TaskResult) vì lỗi chính đã được
// report rồi.
func (d *Dispatcher) failTask(ctx context.Context, cfg *models.TenantConfig, rule models.NotificationRule, ev *Event, category, detail string) (Outcome, TaskResult) {
	primary := fmt.Errorf("%s: %s", category, detail)
	result := TaskResult{Primary: primary}

	d.reporter.Report(ctx, cfg, "タスク作成エラー", category, detail,
		&ReportContext{TenantID: cfg.ID, Row: ev.RowIndex, Payload: ev.AllFields})

	fallbackBody := fmt.Sprintf(
		"⚠️ タスクの自動作成に失敗しました。手動での対応をお願いします。\nシート: %s\n分類: %s",
		ev.SheetName, category)
	result.FallbackAttempted = true
	if _, err := d.chat.SendMessage(ctx, cfg.ChatworkToken, rule.Task.RoomID, fallbackBody); err != nil {
		result.Fallback = err
		logger.GetAppLogger().WithError(err).WithFields(map[string]interface{}{
			"ruleId": rule.ID,
			"roomId": rule.Task.RoomID,
		}).Warn("📣 [DISPATCH] Fallback message cũng thất bại")
	}

	return Outcome{
		RuleID: rule.ID,
		Kind:   "task",
		RoomID: rule.Task.RoomID,
		Status: StatusFailed,
		Reason: category,
	}, result
}

// endOfDayJST trả về unix time của 23:59:59 hôm nay theo JST
func endOfDayJST(now time.Time) int64 {
	n := now.In(jstZone)
	return time.Date(n.Year(), n.Month(), n.Day(), 23, 59, 59, 0, jstZone).Unix()
}
