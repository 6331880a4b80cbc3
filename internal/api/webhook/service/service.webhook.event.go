// Package service - orchestration cho các webhook event.
package service

import (
	"context"
	"fmt"
	"strings"

	models "promo_notify/internal/api/tenant/models"
	tenantservice "promo_notify/internal/api/tenant/service"
	"promo_notify/internal/api/webhook/dto"
	"promo_notify/internal/common"
	"promo_notify/internal/logger"
	"promo_notify/internal/notification"
	"promo_notify/internal/roster"

	"github.com/google/uuid"
)

// SheetStore là collaborator spreadsheet của event service
type SheetStore interface {
	ReadRange(ctx context.Context, sheetID, a1Range string) ([][]string, error)
	WriteCell(ctx context.Context, sheetID, sheetName string, row, col int, value string) error
	AppendRow(ctx context.Context, sheetID, sheetName string, values []string) (string, error)
}

// unassignedLabel hiển thị khi không match được consultant nào
const unassignedLabel = "未割当"

// DispatchResponse là kết quả xử lý một webhook event
type DispatchResponse struct {
	TenantID           string                 `json:"tenantId"`
	SheetName          string                 `json:"sheetName"`
	MatchedRules       int                    `json:"matchedRules"`
	ComparedSheetNames []string               `json:"comparedSheetNames,omitempty"` // Chỉ set khi không rule nào match
	Outcomes           []notification.Outcome `json:"outcomes"`
	MatchedStaff       string                 `json:"matchedStaff,omitempty"`
	ViewerURL          string                 `json:"viewerUrl,omitempty"`
}

// EventService xử lý ba loại event: consultation (đặt lịch tư vấn),
// universal (rule-driven) và reminder
type EventService struct {
	resolver   *tenantservice.Resolver
	dispatcher *notification.Dispatcher
	reporter   *notification.Reporter
	matcher    *roster.Matcher
	sheets     SheetStore
}

// NewEventService tạo mới EventService
func NewEventService(
	resolver *tenantservice.Resolver,
	dispatcher *notification.Dispatcher,
	reporter *notification.Reporter,
	matcher *roster.Matcher,
	sheets SheetStore,
) *EventService {
	return &EventService{
		resolver:   resolver,
		dispatcher: dispatcher,
		reporter:   reporter,
		matcher:    matcher,
		sheets:     sheets,
	}
}

// ReportInvalidPayload report một payload không parse/validate được.
// Gọi từ handler trước khi trả lỗi 400 - payload hỏng là lỗi cấu hình phía
// nguồn, admin cần biết.
func (s *EventService) ReportInvalidPayload(ctx context.Context, detail string, payload interface{}) {
	s.reporter.Report(ctx, nil, "Webhookペイロード不正", common.CategoryWebhookPayloadInvalid, detail,
		&notification.ReportContext{Payload: payload})
}

// HandleUniversal xử lý event rule-driven: resolve tenant → match rules →
// dispatch. Không rule nào match không phải là lỗi; response mang danh sách
// sheet name đã so sánh để operator debug việc cấu hình sai tên sheet.
func (s *EventService) HandleUniversal(ctx context.Context, req *dto.WebhookRequest) *DispatchResponse {
	log := logger.GetAppLogger()

	ev := req.ToEvent()
	cfg := s.resolver.Resolve(ctx, req.PromotionID, ev.SheetName)

	matched, compared := notification.MatchRules(cfg, ev.SheetName)
	if len(matched) == 0 {
		log.WithFields(map[string]interface{}{
			"tenantId":  cfg.ID,
			"sheetName": ev.SheetName,
			"compared":  compared,
		}).Warn("📣 [DISPATCH] Không rule nào match sheet name")
		return &DispatchResponse{
			TenantID:           cfg.ID,
			SheetName:          ev.SheetName,
			ComparedSheetNames: compared,
			Outcomes:           []notification.Outcome{},
		}
	}

	outcomes := s.dispatcher.DispatchAll(ctx, cfg, matched, ev)
	return &DispatchResponse{
		TenantID:     cfg.ID,
		SheetName:    ev.SheetName,
		MatchedRules: len(matched),
		Outcomes:     outcomes,
	}
}

// HandleConsultation xử lý event đặt lịch tư vấn: match consultant theo
// roster, ghi ngược kết quả vào sheet nguồn, rồi dispatch theo rules như
// universal. Mọi bước phụ (roster, mapping, write-back) đều non-fatal:
// fail thì report và flow tiếp tục với trạng thái chưa phân công.
func (s *EventService) HandleConsultation(ctx context.Context, req *dto.WebhookRequest) *DispatchResponse {
	log := logger.GetAppLogger()

	ev := req.ToEvent()
	cfg := s.resolver.Resolve(ctx, req.PromotionID, ev.SheetName)
	if ev.SheetName == "" {
		ev.SheetName = cfg.BookingListSheetName
	}

	// 1. Match consultant từ roster theo ngày giờ + slot
	staffName := s.matchStaff(ctx, cfg, ev)

	// 2. Tra Chatwork account id của consultant (best-effort)
	chatID := ""
	if staffName != "" {
		id, err := s.matcher.LookupChatIdentity(ctx, cfg.SpreadsheetID, cfg.StaffMappingSheetName, staffName)
		if err != nil {
			log.WithError(err).WithField("staff", staffName).Warn("👥 [ROSTER] Không đọc được mapping sheet")
		} else if id == "" {
			s.reporter.Report(ctx, cfg, "担当者アカウント未登録", common.CategoryChatIdentityMissing,
				fmt.Sprintf("staff %q không có trong mapping sheet %q", staffName, cfg.StaffMappingSheetName),
				&notification.ReportContext{TenantID: cfg.ID, Row: ev.RowIndex, Payload: ev.AllFields})
		} else {
			chatID = id
		}
	}

	// 3. Viewer URL cho dòng booking (nếu tenant bật)
	viewerURL := ""
	if cfg.AssignViewer != nil && cfg.AssignViewer.Enabled && cfg.AssignViewer.ViewerBaseURL != "" {
		viewerURL = fmt.Sprintf("%s?t=%s",
			strings.TrimRight(cfg.AssignViewer.ViewerBaseURL, "/"), uuid.NewString())
	}

	display := staffName
	if display == "" {
		display = unassignedLabel
	}

	// 4. Ghi ngược vào sheet nguồn: row đã có thì write-back cell, chưa có
	// (nguồn ngoài spreadsheet) thì append dòng mới
	s.writeBack(ctx, cfg, ev, display, viewerURL)

	// 5. Enrich event rồi dispatch theo rules
	ev.Staff = display
	ev.AllFields["担当者"] = display
	if chatID != "" {
		ev.AllFields["担当者アカウント"] = chatID
	}
	if viewerURL != "" {
		ev.AllFields["viewerUrl"] = viewerURL
	}

	matched, compared := notification.MatchRules(cfg, ev.SheetName)
	resp := &DispatchResponse{
		TenantID:     cfg.ID,
		SheetName:    ev.SheetName,
		MatchedRules: len(matched),
		MatchedStaff: staffName,
		ViewerURL:    viewerURL,
		Outcomes:     []notification.Outcome{},
	}
	if len(matched) == 0 {
		resp.ComparedSheetNames = compared
		return resp
	}

	resp.Outcomes = s.dispatcher.DispatchAll(ctx, cfg, matched, ev)
	return resp
}

// matchStaff chạy roster match, report khi fail. Trả về chuỗi rỗng khi không
// match được (flow vẫn tiếp tục).
func (s *EventService) matchStaff(ctx context.Context, cfg *models.TenantConfig, ev *notification.Event) string {
	if ev.DateTime == "" || ev.Staff == "" {
		return ""
	}

	staffName, err := s.matcher.MatchStaff(ctx, cfg.SpreadsheetID, cfg.RosterSheetName, ev.DateTime, ev.Staff)
	if err != nil {
		s.reporter.Report(ctx, cfg, "担当者マッチング失敗", common.CategoryStaffMatchFailed,
			fmt.Sprintf("roster %q slot %q: %v", cfg.RosterSheetName, ev.Staff, err),
			&notification.ReportContext{TenantID: cfg.ID, Row: ev.RowIndex, Payload: ev.AllFields})
		return ""
	}
	if staffName == "" {
		s.reporter.Report(ctx, cfg, "担当者未割当", common.CategoryStaffMatchFailed,
			fmt.Sprintf("roster %q không có consultant cho %q / %q", cfg.RosterSheetName, ev.DateTime, ev.Staff),
			&notification.ReportContext{TenantID: cfg.ID, Row: ev.RowIndex, Payload: ev.AllFields})
	}
	return staffName
}

// writeBack ghi kết quả phân công vào sheet nguồn (best-effort)
func (s *EventService) writeBack(ctx context.Context, cfg *models.TenantConfig, ev *notification.Event, display, viewerURL string) {
	log := logger.GetAppLogger()

	if ev.RowIndex > 0 {
		if cfg.AssignViewer == nil || !cfg.AssignViewer.Enabled {
			return
		}
		if cfg.AssignViewer.StaffColumn > 0 {
			if err := s.sheets.WriteCell(ctx, cfg.SpreadsheetID, ev.SheetName, ev.RowIndex, cfg.AssignViewer.StaffColumn, display); err != nil {
				log.WithError(err).WithField("row", ev.RowIndex).Warn("📣 [DISPATCH] Write-back tên staff thất bại")
			}
		}
		if cfg.AssignViewer.ViewerColumn > 0 && viewerURL != "" {
			if err := s.sheets.WriteCell(ctx, cfg.SpreadsheetID, ev.SheetName, ev.RowIndex, cfg.AssignViewer.ViewerColumn, viewerURL); err != nil {
				log.WithError(err).WithField("row", ev.RowIndex).Warn("📣 [DISPATCH] Write-back viewer URL thất bại")
			}
		}
		return
	}

	// Event từ nguồn ngoài spreadsheet: append thành dòng mới của booking list
	values := []string{ev.DateTime, ev.ClientName, ev.Email, display, viewerURL}
	if _, err := s.sheets.AppendRow(ctx, cfg.SpreadsheetID, cfg.BookingListSheetName, values); err != nil {
		log.WithError(err).Warn("📣 [DISPATCH] Append booking row thất bại")
		s.reporter.Report(ctx, cfg, "予約行の追記失敗", common.CategorySheetNotFound,
			fmt.Sprintf("booking sheet %q: %v", cfg.BookingListSheetName, err),
			&notification.ReportContext{TenantID: cfg.ID, Payload: ev.AllFields})
	}
}
