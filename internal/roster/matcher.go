package roster

import (
	"context"
	"fmt"
	"strings"

	"promo_notify/internal/logger"
)

// SheetReader đọc một vùng của spreadsheet theo A1 notation
type SheetReader interface {
	ReadRange(ctx context.Context, sheetID, a1Range string) ([][]string, error)
}

// Matcher tìm consultant phụ trách từ sheet ca trực
type Matcher struct {
	sheets SheetReader
}

// NewMatcher tạo mới Matcher
func NewMatcher(sheets SheetReader) *Matcher {
	return &Matcher{sheets: sheets}
}

// IsDateTimeHeader nhận diện cột ngày giờ của một sheet
func IsDateTimeHeader(header string) bool {
	return strings.Contains(header, "日時") || strings.Contains(header, "DateTime")
}

// MatchStaff tìm tên consultant trong roster theo ngày giờ + nhãn cột slot.
//
// Cột slot match bằng so sánh chuỗi chính xác với header (nhãn do event cung
// cấp); nếu operator đổi tên cột thì không match được - khi đó trả về chuỗi
// rỗng và flow đặt lịch vẫn tiếp tục với trạng thái chưa phân công.
// Roster giả định tối đa một dòng cho mỗi mốc thời gian; dòng đầu tiên match
// sẽ thắng.
func (m *Matcher) MatchStaff(ctx context.Context, sheetID, rosterSheetName, dateTimeKey, slotLabel string) (string, error) {
	rows, err := m.sheets.ReadRange(ctx, sheetID, rosterSheetName)
	if err != nil {
		return "", fmt.Errorf("read roster sheet %q: %w", rosterSheetName, err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("roster sheet %q is empty", rosterSheetName)
	}

	// 1. Tìm cột ngày giờ và cột slot trong header
	header := rows[0]
	dateCol := -1
	slotCol := -1
	for i, h := range header {
		if dateCol < 0 && IsDateTimeHeader(h) {
			dateCol = i
		}
		if slotCol < 0 && strings.TrimSpace(h) == strings.TrimSpace(slotLabel) {
			slotCol = i
		}
	}
	if dateCol < 0 {
		return "", fmt.Errorf("roster sheet %q has no date/time column", rosterSheetName)
	}
	if slotCol < 0 {
		logger.GetAppLogger().WithFields(map[string]interface{}{
			"rosterSheet": rosterSheetName,
			"slotLabel":   slotLabel,
		}).Warn("👥 [ROSTER] Không tìm thấy cột slot trong roster, bỏ qua match")
		return "", nil
	}

	// 2. So sánh ngày giờ sau khi chuẩn hóa cả hai phía
	target := NormalizeDateTime(dateTimeKey)
	for _, row := range rows[1:] {
		if dateCol >= len(row) {
			continue
		}
		if NormalizeDateTime(row[dateCol]) == target {
			if slotCol < len(row) {
				return strings.TrimSpace(row[slotCol]), nil
			}
			return "", nil
		}
	}

	// Không có dòng nào match - không phải lỗi
	return "", nil
}

// LookupChatIdentity tìm Chatwork account id của staff từ sheet mapping.
// Sheet mapping có 2 cột: tên staff, account id. Trả về chuỗi rỗng nếu
// không tìm thấy.
func (m *Matcher) LookupChatIdentity(ctx context.Context, sheetID, mappingSheetName, staffName string) (string, error) {
	if staffName == "" {
		return "", nil
	}

	rows, err := m.sheets.ReadRange(ctx, sheetID, mappingSheetName)
	if err != nil {
		return "", fmt.Errorf("read mapping sheet %q: %w", mappingSheetName, err)
	}

	target := NormalizeName(staffName)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		if NormalizeName(row[0]) == target {
			return strings.TrimSpace(row[1]), nil
		}
	}

	return "", nil
}
