package roster

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSheetReader trả về rows cố định theo range (hoặc lỗi)
type fakeSheetReader struct {
	rows map[string][][]string
	err  error
}

func (f *fakeSheetReader) ReadRange(ctx context.Context, sheetID, a1Range string) ([][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[a1Range], nil
}

func TestMatchStaff_Found(t *testing.T) {
	m := NewMatcher(&fakeSheetReader{rows: map[string][][]string{
		"面談シフト": {
			{"日時", "10:00-11:00", "11:00-12:00"},
			{"2026/1/30", "佐藤", "鈴木"},
			{"2026/1/31", "山田", "田中"},
		},
	}})

	staff, err := m.MatchStaff(context.Background(), "sheet-1", "面談シフト", "2026/1/31", "11:00-12:00")
	require.NoError(t, err)
	assert.Equal(t, "田中", staff)
}

func TestMatchStaff_NormalizedComparison(t *testing.T) {
	// Roster viết dạng 年月日 + full-width, key đến dạng slash - vẫn phải match
	m := NewMatcher(&fakeSheetReader{rows: map[string][][]string{
		"面談シフト": {
			{"日時", "10:00〜11:00"},
			{"２０２６年１月３１日", "山田"},
		},
	}})

	staff, err := m.MatchStaff(context.Background(), "sheet-1", "面談シフト", "2026/01/31", "10:00~11:00")
	require.NoError(t, err)
	assert.Equal(t, "山田", staff)
}

func TestMatchStaff_NoRowMatches(t *testing.T) {
	m := NewMatcher(&fakeSheetReader{rows: map[string][][]string{
		"面談シフト": {
			{"日時", "10:00-11:00"},
			{"2026/1/30", "佐藤"},
		},
	}})

	staff, err := m.MatchStaff(context.Background(), "sheet-1", "面談シフト", "2026/2/1", "10:00-11:00")
	require.NoError(t, err)
	assert.Empty(t, staff, "Không có dòng nào match thì trả về rỗng, không phải lỗi")
}

func TestMatchStaff_SlotColumnRenamed(t *testing.T) {
	// Operator đổi tên cột slot: không match được cột thì bỏ qua, không lỗi
	m := NewMatcher(&fakeSheetReader{rows: map[string][][]string{
		"面談シフト": {
			{"日時", "午前の部"},
			{"2026/1/31", "山田"},
		},
	}})

	staff, err := m.MatchStaff(context.Background(), "sheet-1", "面談シフト", "2026/1/31", "10:00-11:00")
	require.NoError(t, err)
	assert.Empty(t, staff)
}

func TestMatchStaff_MissingDateColumn(t *testing.T) {
	m := NewMatcher(&fakeSheetReader{rows: map[string][][]string{
		"面談シフト": {
			{"枠A", "枠B"},
			{"佐藤", "鈴木"},
		},
	}})

	_, err := m.MatchStaff(context.Background(), "sheet-1", "面談シフト", "2026/1/31", "枠A")
	assert.Error(t, err, "Thiếu cột ngày giờ là lỗi cấu trúc sheet")
}

func TestMatchStaff_ReadError(t *testing.T) {
	m := NewMatcher(&fakeSheetReader{err: fmt.Errorf("status 403")})

	_, err := m.MatchStaff(context.Background(), "sheet-1", "面談シフト", "2026/1/31", "10:00-11:00")
	assert.Error(t, err)
}

func TestLookupChatIdentity(t *testing.T) {
	m := NewMatcher(&fakeSheetReader{rows: map[string][][]string{
		"担当者マッピング": {
			{"山田 太郎", "1234567"},
			{"田中 花子", "7654321"},
		},
	}})

	// Tên trên roster không có space, mapping sheet có space - vẫn match
	id, err := m.LookupChatIdentity(context.Background(), "sheet-1", "担当者マッピング", "山田太郎")
	require.NoError(t, err)
	assert.Equal(t, "1234567", id)

	id, err = m.LookupChatIdentity(context.Background(), "sheet-1", "担当者マッピング", "不明な人")
	require.NoError(t, err)
	assert.Empty(t, id)
}
