package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	models "promo_notify/internal/api/tenant/models"
	"promo_notify/internal/common"
	"promo_notify/internal/platform/chatwork"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sentMessage ghi lại một call SendMessage
type sentMessage struct {
	RoomID string
	Body   string
}

// createdTask ghi lại một call CreateTask
type createdTask struct {
	RoomID    string
	Body      string
	Assignees []string
	DueAt     int64
}

// fakeChatClient ghi lại mọi call, có thể inject lỗi theo room
type fakeChatClient struct {
	messages []sentMessage
	tasks    []createdTask

	members      map[string][]chatwork.RoomMember
	failSendRoom string // SendMessage vào room này sẽ lỗi
	failTaskRoom string // CreateTask vào room này sẽ lỗi
	failMembers  bool
}

func (f *fakeChatClient) SendMessage(ctx context.Context, token, roomID, body string) (string, error) {
	if roomID == f.failSendRoom {
		return "", fmt.Errorf("status 403")
	}
	f.messages = append(f.messages, sentMessage{RoomID: roomID, Body: body})
	return "msg-1", nil
}

func (f *fakeChatClient) CreateTask(ctx context.Context, token, roomID, body string, assigneeIDs []string, dueAt int64) ([]int64, error) {
	if roomID == f.failTaskRoom {
		return nil, fmt.Errorf("status 500")
	}
	f.tasks = append(f.tasks, createdTask{RoomID: roomID, Body: body, Assignees: assigneeIDs, DueAt: dueAt})
	return []int64{100}, nil
}

func (f *fakeChatClient) GetRoomMembers(ctx context.Context, token, roomID string) ([]chatwork.RoomMember, error) {
	if f.failMembers {
		return nil, fmt.Errorf("status 401")
	}
	return f.members[roomID], nil
}

func newTestDispatcher(chat *fakeChatClient) *Dispatcher {
	// Reporter không có credentials - chỉ log local, không gửi gì
	d := NewDispatcher(chat, NewReporter(chat, "", ""))
	d.now = func() time.Time { return time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC) }
	return d
}

func testEvent() *Event {
	return &Event{
		SheetName:  "予約一覧",
		RowIndex:   5,
		ClientName: "山田太郎",
		AllFields:  map[string]string{"氏名": "山田太郎", "状態": "未完了"},
	}
}

func TestDispatch_SendsNotificationsInOrder(t *testing.T) {
	chat := &fakeChatClient{}
	d := newTestDispatcher(chat)

	cfg := &models.TenantConfig{ID: "t1", ChatworkToken: "tok"}
	rule := models.NotificationRule{ID: "r1", SheetName: "予約一覧", Notifications: []models.Notification{
		{RoomID: "111", Template: "A {clientName}"},
		{RoomID: "222", Template: "B {clientName}"},
	}}

	outcomes := d.Dispatch(context.Background(), cfg, rule, testEvent())

	require.Len(t, chat.messages, 2)
	assert.Equal(t, "111", chat.messages[0].RoomID)
	assert.Equal(t, "A 山田太郎", chat.messages[0].Body)
	assert.Equal(t, "222", chat.messages[1].RoomID)

	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusSent, outcomes[0].Status)
	assert.Equal(t, StatusSent, outcomes[1].Status)
}

func TestDispatch_FailureDoesNotBlockNext(t *testing.T) {
	chat := &fakeChatClient{failSendRoom: "111"}
	d := newTestDispatcher(chat)

	cfg := &models.TenantConfig{ID: "t1", ChatworkToken: "tok"}
	rule := models.NotificationRule{ID: "r1", Notifications: []models.Notification{
		{RoomID: "111", Template: "A"},
		{RoomID: "222", Template: "B"},
	}}

	outcomes := d.Dispatch(context.Background(), cfg, rule, testEvent())

	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, StatusSent, outcomes[1].Status)
	// Notification thứ hai vẫn được gửi
	require.Len(t, chat.messages, 1)
	assert.Equal(t, "222", chat.messages[0].RoomID)
}

func TestDispatch_EmptyMessageSkipped(t *testing.T) {
	chat := &fakeChatClient{}
	d := newTestDispatcher(chat)

	cfg := &models.TenantConfig{ID: "t1", ChatworkToken: "tok"}
	rule := models.NotificationRule{ID: "r1", Notifications: []models.Notification{
		{RoomID: "111", Template: "{unknown}"},
	}}

	outcomes := d.Dispatch(context.Background(), cfg, rule, testEvent())

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Equal(t, ReasonEmptyMessage, outcomes[0].Reason)
	assert.Empty(t, chat.messages)
}

func TestDispatch_ColumnsDetailBlock(t *testing.T) {
	chat := &fakeChatClient{}
	d := newTestDispatcher(chat)

	cfg := &models.TenantConfig{ID: "t1", ChatworkToken: "tok"}
	rule := models.NotificationRule{ID: "r1", Notifications: []models.Notification{
		{RoomID: "111", Template: "新規予約", Columns: []string{"氏名", "状態"}},
	}}

	d.Dispatch(context.Background(), cfg, rule, testEvent())

	require.Len(t, chat.messages, 1)
	body := chat.messages[0].Body
	assert.Contains(t, body, "[info][title]詳細[/title]")
	assert.Contains(t, body, "氏名: 山田太郎")
	assert.Contains(t, body, "状態: 未完了")
}

func TestCreateTask_Success(t *testing.T) {
	chat := &fakeChatClient{members: map[string][]chatwork.RoomMember{
		"999": {{AccountID: 111}, {AccountID: 333}},
	}}
	d := newTestDispatcher(chat)

	cfg := &models.TenantConfig{ID: "t1", ChatworkToken: "tok"}
	rule := models.NotificationRule{ID: "r1", SheetName: "予約一覧", Task: &models.TaskSpec{
		Enabled:     true,
		RoomID:      "999",
		AssigneeIDs: []string{"111", "222"},
	}}

	outcomes := d.Dispatch(context.Background(), cfg, rule, testEvent())

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusCreated, outcomes[0].Status)
	assert.Equal(t, []int64{100}, outcomes[0].TaskIDs)

	// Assignee được lọc theo member thực tế của room: 222 không phải member
	require.Len(t, chat.tasks, 1)
	assert.Equal(t, []string{"111"}, chat.tasks[0].Assignees)
	// Template mặc định nhúng sheet name
	assert.Contains(t, chat.tasks[0].Body, "予約一覧")
	// Hạn hoàn thành là 23:59:59 JST cùng ngày
	due := time.Unix(chat.tasks[0].DueAt, 0).In(time.FixedZone("JST", 9*60*60))
	assert.Equal(t, "23:59:59", due.Format("15:04:05"))
}

func TestCreateTask_FilterGate(t *testing.T) {
	chat := &fakeChatClient{members: map[string][]chatwork.RoomMember{"999": {{AccountID: 111}}}}
	d := newTestDispatcher(chat)

	cfg := &models.TenantConfig{ID: "t1", ChatworkToken: "tok"}
	rule := models.NotificationRule{ID: "r1", Task: &models.TaskSpec{
		Enabled:     true,
		RoomID:      "999",
		AssigneeIDs: []string{"111"},
		Filter:      &models.Filter{TargetColumn: "状態", Operator: OperatorEquals, TargetValue: "完了"},
	}}

	// Event có 状態=未完了 → filter không match → skip, không message, không task
	outcomes := d.Dispatch(context.Background(), cfg, rule, testEvent())

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Equal(t, ReasonFilterMismatch, outcomes[0].Reason)
	assert.Empty(t, chat.tasks)
	assert.Empty(t, chat.messages)
}

func TestCreateTask_EmptyIntersectionSendsFallbackOnce(t *testing.T) {
	chat := &fakeChatClient{members: map[string][]chatwork.RoomMember{
		"999": {{AccountID: 333}},
	}}
	d := newTestDispatcher(chat)

	cfg := &models.TenantConfig{ID: "t1", ChatworkToken: "tok"}
	rule := models.NotificationRule{ID: "r1", SheetName: "予約一覧", Task: &models.TaskSpec{
		Enabled:     true,
		RoomID:      "999",
		AssigneeIDs: []string{"111", "222"},
	}}

	outcomes := d.Dispatch(context.Background(), cfg, rule, testEvent())

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, common.CategoryTaskAssigneeInvalid, outcomes[0].Reason)
	assert.Empty(t, chat.tasks)

	// Fallback message gửi đúng một lần vào chính room của task
	require.Len(t, chat.messages, 1)
	assert.Equal(t, "999", chat.messages[0].RoomID)
	assert.Contains(t, chat.messages[0].Body, "タスクの自動作成に失敗しました")
}

func TestCreateTask_NoConfiguredAssignees(t *testing.T) {
	chat := &fakeChatClient{}
	d := newTestDispatcher(chat)

	cfg := &models.TenantConfig{ID: "t1", ChatworkToken: "tok"}
	rule := models.NotificationRule{ID: "r1", Task: &models.TaskSpec{
		Enabled:     true,
		RoomID:      "999",
		AssigneeIDs: []string{"  ", ""},
	}}

	outcomes := d.Dispatch(context.Background(), cfg, rule, testEvent())

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, common.CategoryTaskAssigneeInvalid, outcomes[0].Reason)
}

func TestCreateTask_MemberFetchFailed(t *testing.T) {
	chat := &fakeChatClient{failMembers: true}
	d := newTestDispatcher(chat)

	cfg := &models.TenantConfig{ID: "t1", ChatworkToken: "tok"}
	rule := models.NotificationRule{ID: "r1", Task: &models.TaskSpec{
		Enabled:     true,
		RoomID:      "999",
		AssigneeIDs: []string{"111"},
	}}

	outcomes := d.Dispatch(context.Background(), cfg, rule, testEvent())

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, common.CategoryMemberFetchFailed, outcomes[0].Reason)
}

func TestDispatchAll_RuleIsolation(t *testing.T) {
	chat := &fakeChatClient{failSendRoom: "111"}
	d := newTestDispatcher(chat)

	cfg := &models.TenantConfig{ID: "t1", ChatworkToken: "tok"}
	rules := []models.NotificationRule{
		{ID: "r1", Notifications: []models.Notification{{RoomID: "111", Template: "A"}}},
		{ID: "r2", Notifications: []models.Notification{{RoomID: "222", Template: "B"}}},
	}

	outcomes := d.DispatchAll(context.Background(), cfg, rules, testEvent())

	// Rule đầu fail nhưng rule sau vẫn chạy
	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, StatusSent, outcomes[1].Status)
}
