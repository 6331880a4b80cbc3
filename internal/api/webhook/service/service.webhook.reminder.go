package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	models "promo_notify/internal/api/tenant/models"
	"promo_notify/internal/api/webhook/dto"
	"promo_notify/internal/common"
	"promo_notify/internal/logger"
	"promo_notify/internal/notification"
	"promo_notify/internal/roster"
)

// defaultReminderTemplate dùng khi tenant không khai báo template riêng
const defaultReminderTemplate = "【リマインド】{dateTime} に {clientName} 様のご予約があります。"

// jst - ngày đối chiếu reminder tính theo UTC+9
var jst = time.FixedZone("JST", 9*60*60)

// ReminderResult là kết quả một lượt reminder của một tenant
type ReminderResult struct {
	TenantID   string `json:"tenantId"`
	TargetDate string `json:"targetDate"`
	Scanned    int    `json:"scanned"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Skipped    bool   `json:"skipped"` // true khi tenant không bật reminder
}

// HandleReminder xử lý trigger reminder qua webhook (chạy tay hoặc từ
// scheduler bên ngoài). TargetDate trống thì tính từ hôm nay + daysBefore.
func (s *EventService) HandleReminder(ctx context.Context, req *dto.WebhookRequest) (*ReminderResult, error) {
	cfg := s.resolver.Resolve(ctx, req.PromotionID, "")
	return s.RunReminder(ctx, cfg, req.TargetDate)
}

// RunReminder quét booking list của một tenant và gửi reminder cho các dòng
// có ngày hẹn trùng ngày đối chiếu. Mỗi dòng độc lập: một dòng fail không
// chặn các dòng sau.
func (s *EventService) RunReminder(ctx context.Context, cfg *models.TenantConfig, targetDate string) (*ReminderResult, error) {
	log := logger.GetAppLogger()

	result := &ReminderResult{TenantID: cfg.ID}
	if cfg.Reminder == nil || !cfg.Reminder.Enabled || cfg.Reminder.RoomID == "" {
		result.Skipped = true
		return result, nil
	}

	if targetDate == "" {
		targetDate = time.Now().In(jst).
			AddDate(0, 0, cfg.Reminder.DaysBefore).
			Format("2006/1/2")
	}
	result.TargetDate = targetDate

	rows, err := s.sheets.ReadRange(ctx, cfg.SpreadsheetID, cfg.BookingListSheetName)
	if err != nil {
		s.reporter.Report(ctx, cfg, "リマインド対象の読み取り失敗", common.CategorySheetNotFound,
			fmt.Sprintf("booking sheet %q: %v", cfg.BookingListSheetName, err),
			&notification.ReportContext{TenantID: cfg.ID})
		return result, fmt.Errorf("read booking sheet %q: %w", cfg.BookingListSheetName, err)
	}
	if len(rows) == 0 {
		return result, nil
	}

	// 1. Tìm cột ngày giờ trong header
	header := rows[0]
	dateCol := -1
	for i, h := range header {
		if roster.IsDateTimeHeader(h) {
			dateCol = i
			break
		}
	}
	if dateCol < 0 {
		s.reporter.Report(ctx, cfg, "リマインド対象の読み取り失敗", common.CategorySheetNotFound,
			fmt.Sprintf("booking sheet %q không có cột ngày giờ", cfg.BookingListSheetName),
			&notification.ReportContext{TenantID: cfg.ID})
		return result, fmt.Errorf("booking sheet %q has no date/time column", cfg.BookingListSheetName)
	}

	template := cfg.Reminder.Template
	if strings.TrimSpace(template) == "" {
		template = defaultReminderTemplate
	}
	target := roster.NormalizeDate(targetDate)

	// 2. Quét từng dòng, so phần ngày sau khi chuẩn hóa cả hai phía
	for rowIdx, row := range rows[1:] {
		if dateCol >= len(row) {
			continue
		}
		if roster.NormalizeDate(row[dateCol]) != target {
			continue
		}
		result.Scanned++

		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				fields[h] = row[i]
			}
		}
		ev := &notification.Event{
			SheetName: cfg.BookingListSheetName,
			RowIndex:  rowIdx + 2, // +1 header, +1 vì A1 là 1-based
			DateTime:  row[dateCol],
			AllFields: fields,
		}
		ev.ClientName = firstField(fields, "氏名", "名前", "お名前", "Name")
		ev.Staff = firstField(fields, "担当者", "担当", "Staff")

		body := notification.Render(template, ev.TemplateData())
		if _, err := s.dispatcher.Chat().SendMessage(ctx, cfg.ChatworkToken, cfg.Reminder.RoomID, body); err != nil {
			result.Failed++
			log.WithError(err).WithFields(map[string]interface{}{
				"tenantId": cfg.ID,
				"row":      ev.RowIndex,
			}).Error("📣 [DISPATCH] Gửi reminder thất bại")
			s.reporter.Report(ctx, cfg, "リマインド送信失敗", common.CategoryUnknown,
				fmt.Sprintf("room %s row %d: %v", cfg.Reminder.RoomID, ev.RowIndex, err),
				&notification.ReportContext{TenantID: cfg.ID, Row: ev.RowIndex, Payload: fields})
			continue
		}
		result.Sent++
	}

	log.WithFields(map[string]interface{}{
		"tenantId":   cfg.ID,
		"targetDate": targetDate,
		"sent":       result.Sent,
		"failed":     result.Failed,
	}).Info("📣 [DISPATCH] Hoàn thành lượt reminder")
	return result, nil
}

func firstField(fields map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := fields[k]; v != "" {
			return v
		}
	}
	return ""
}
