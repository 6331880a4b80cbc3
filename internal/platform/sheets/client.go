// Package sheets - client gọi Google Sheets REST API (values endpoints).
package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client đọc/ghi spreadsheet qua Sheets API v4
type Client struct {
	httpClient *resty.Client
}

// NewClient tạo mới Sheets client với OAuth access token
func NewClient(baseURL, accessToken string) *Client {
	if baseURL == "" {
		baseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(20 * time.Second).
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client}
}

// valuesResponse là payload trả về của values.get
type valuesResponse struct {
	Range  string          `json:"range"`
	Values [][]interface{} `json:"values"`
}

// ReadRange đọc một vùng theo A1 notation (tên sheet trần cũng hợp lệ),
// trả về ma trận string. Cell trống trả về "".
func (c *Client) ReadRange(ctx context.Context, sheetID, a1Range string) ([][]string, error) {
	var result valuesResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/%s/values/%s", sheetID, a1Range))
	if err != nil {
		return nil, fmt.Errorf("sheets read range %q: %w", a1Range, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sheets read range %q: status %d", a1Range, resp.StatusCode())
	}

	rows := make([][]string, 0, len(result.Values))
	for _, raw := range result.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprintf("%v", cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCell ghi một giá trị vào cell (row/col 1-based)
func (c *Client) WriteCell(ctx context.Context, sheetID, sheetName string, row, col int, value string) error {
	a1 := fmt.Sprintf("%s!%s%d", sheetName, columnLetter(col), row)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("valueInputOption", "USER_ENTERED").
		SetBody(map[string]interface{}{
			"range":  a1,
			"values": [][]string{{value}},
		}).
		Put(fmt.Sprintf("/%s/values/%s", sheetID, a1))
	if err != nil {
		return fmt.Errorf("sheets write cell %q: %w", a1, err)
	}
	if resp.IsError() {
		return fmt.Errorf("sheets write cell %q: status %d", a1, resp.StatusCode())
	}
	return nil
}

// appendResponse là payload trả về của values.append
type appendResponse struct {
	Updates struct {
		UpdatedRange string `json:"updatedRange"`
	} `json:"updates"`
}

// AppendRow thêm một dòng vào cuối sheet, trả về updatedRange
func (c *Client) AppendRow(ctx context.Context, sheetID, sheetName string, values []string) (string, error) {
	var result appendResponse

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("valueInputOption", "USER_ENTERED").
		SetQueryParam("insertDataOption", "INSERT_ROWS").
		SetBody(map[string]interface{}{
			"values": [][]interface{}{row},
		}).
		SetResult(&result).
		Post(fmt.Sprintf("/%s/values/%s:append", sheetID, sheetName))
	if err != nil {
		return "", fmt.Errorf("sheets append row: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("sheets append row: status %d", resp.StatusCode())
	}

	return result.Updates.UpdatedRange, nil
}

// columnLetter đổi chỉ số cột 1-based sang ký hiệu cột A1 (1 → A, 27 → AA)
func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
