// Package chatwork - client gọi Chatwork REST API v2.
package chatwork

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"promo_notify/internal/logger"

	"github.com/go-resty/resty/v2"
)

// RoomMember - một thành viên của room
type RoomMember struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
}

// Client gọi Chatwork API. Token truyền theo từng call vì mỗi tenant có
// credentials riêng, client chỉ giữ HTTP transport dùng chung.
type Client struct {
	httpClient *resty.Client
}

// NewClient tạo mới Chatwork client
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.chatwork.com/v2"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client}
}

// NormalizeRoomID loại bỏ prefix không phải số khỏi room id.
// Cấu hình hay bị dán nguyên link dạng "#!rid123456" thay vì id thuần.
func NormalizeRoomID(roomID string) string {
	roomID = strings.TrimSpace(roomID)
	i := 0
	for i < len(roomID) {
		if roomID[i] >= '0' && roomID[i] <= '9' {
			break
		}
		i++
	}
	return roomID[i:]
}

// SendMessage gửi message vào room, trả về message_id
func (c *Client) SendMessage(ctx context.Context, token, roomID, body string) (string, error) {
	log := logger.GetAppLogger()

	roomID = NormalizeRoomID(roomID)
	if roomID == "" {
		return "", fmt.Errorf("room id is empty")
	}

	var result struct {
		MessageID string `json:"message_id"`
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-ChatWorkToken", token).
		SetFormData(map[string]string{"body": body}).
		SetResult(&result).
		Post(fmt.Sprintf("/rooms/%s/messages", roomID))
	if err != nil {
		return "", fmt.Errorf("chatwork send message: %w", err)
	}
	if resp.IsError() {
		log.WithFields(map[string]interface{}{
			"roomId":     roomID,
			"statusCode": resp.StatusCode(),
			"response":   truncate(resp.String(), 200),
		}).Error("💬 [CHATWORK] Gửi message thất bại")
		return "", fmt.Errorf("chatwork send message: status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	return result.MessageID, nil
}

// CreateTask tạo task trong room cho danh sách assignee, trả về task_ids.
// dueAt là unix seconds, limit_type cố định "time" (hạn theo thời điểm).
func (c *Client) CreateTask(ctx context.Context, token, roomID, body string, assigneeIDs []string, dueAt int64) ([]int64, error) {
	log := logger.GetAppLogger()

	roomID = NormalizeRoomID(roomID)
	if roomID == "" {
		return nil, fmt.Errorf("room id is empty")
	}
	if len(assigneeIDs) == 0 {
		return nil, fmt.Errorf("assignee ids are empty")
	}

	var result struct {
		TaskIDs []int64 `json:"task_ids"`
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-ChatWorkToken", token).
		SetFormData(map[string]string{
			"body":       body,
			"to_ids":     strings.Join(assigneeIDs, ","),
			"limit":      strconv.FormatInt(dueAt, 10),
			"limit_type": "time",
		}).
		SetResult(&result).
		Post(fmt.Sprintf("/rooms/%s/tasks", roomID))
	if err != nil {
		return nil, fmt.Errorf("chatwork create task: %w", err)
	}
	if resp.IsError() {
		log.WithFields(map[string]interface{}{
			"roomId":     roomID,
			"statusCode": resp.StatusCode(),
			"response":   truncate(resp.String(), 200),
		}).Error("💬 [CHATWORK] Tạo task thất bại")
		return nil, fmt.Errorf("chatwork create task: status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	return result.TaskIDs, nil
}

// GetRoomMembers trả về danh sách thành viên của room
func (c *Client) GetRoomMembers(ctx context.Context, token, roomID string) ([]RoomMember, error) {
	roomID = NormalizeRoomID(roomID)
	if roomID == "" {
		return nil, fmt.Errorf("room id is empty")
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-ChatWorkToken", token).
		Get(fmt.Sprintf("/rooms/%s/members", roomID))
	if err != nil {
		return nil, fmt.Errorf("chatwork get members: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("chatwork get members: status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	// Chatwork trả về mảng JSON thuần nên parse tay thay vì SetResult
	var members []RoomMember
	if err := json.Unmarshal(resp.Body(), &members); err != nil {
		return nil, fmt.Errorf("chatwork get members: parse response: %w", err)
	}

	return members, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
