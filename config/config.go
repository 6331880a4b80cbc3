package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Các giá trị DEFAULT_* là lớp default cho tenant legacy: khi một tenant
// không khai báo giá trị riêng thì resolver sẽ lấy từ đây (xem tenant resolver).
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:":8080"`      // Địa chỉ server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"` // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`         // Tên cơ sở dữ liệu chứa tenant configs
	WebhookSecret         string `env:"WEBHOOK_SECRET,required"`         // Shared secret cho các webhook endpoints

	// Chatwork defaults - lớp default cho tenant legacy và cho error reporter
	DefaultChatworkToken string `env:"DEFAULT_CHATWORK_TOKEN"` // Token Chatwork mặc định
	AdminChatworkToken   string `env:"ADMIN_CHATWORK_TOKEN"`   // Token gửi error report (fallback khi tenant không cấu hình)
	AdminRoomID          string `env:"ADMIN_ROOM_ID"`          // Room nhận error report

	// Google Sheets
	SheetsAccessToken string `env:"SHEETS_ACCESS_TOKEN"` // OAuth access token cho Sheets API
	DefaultSheetID    string `env:"DEFAULT_SHEET_ID"`    // Spreadsheet ID mặc định cho tenant legacy

	// Sheet name defaults cho tenant legacy
	DefaultBookingSheetName string `env:"DEFAULT_BOOKING_SHEET_NAME" envDefault:"予約一覧"`
	DefaultRosterSheetName  string `env:"DEFAULT_ROSTER_SHEET_NAME" envDefault:"面談シフト"`
	DefaultMappingSheetName string `env:"DEFAULT_MAPPING_SHEET_NAME" envDefault:"担当者マッピング"`

	// Reminder worker
	ReminderCronSpec string `env:"REMINDER_CRON_SPEC" envDefault:"0 9 * * *"` // Mặc định 9:00 hàng ngày
	ReminderEnabled  bool   `env:"REMINDER_ENABLED" envDefault:"true"`
}

// LegacyTenantID là id cố định của tenant legacy (triển khai single-tenant cũ).
// Khi không resolve được tenant nào, toàn bộ pipeline chạy bằng config này.
const LegacyTenantID = "default"

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	environment := os.Getenv("GO_ENV")
	if environment == "" {
		environment = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env bằng cách đi lên từ working directory
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", environment))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc dữ liệu cấu hình từ file env và environment variables
func NewConfig() *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		// File env là optional - production thường set env variables trực tiếp
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
