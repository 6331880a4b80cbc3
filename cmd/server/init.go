package main

import (
	"context"
	"fmt"
	"time"

	"promo_notify/config"
	tenanthdl "promo_notify/internal/api/tenant/handler"
	tenantservice "promo_notify/internal/api/tenant/service"
	webhookhdl "promo_notify/internal/api/webhook/handler"
	webhookservice "promo_notify/internal/api/webhook/service"
	"promo_notify/internal/database"
	"promo_notify/internal/global"
	"promo_notify/internal/logger"
	"promo_notify/internal/notification"
	"promo_notify/internal/platform/chatwork"
	"promo_notify/internal/platform/sheets"
	"promo_notify/internal/roster"
	"promo_notify/internal/worker"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator() // Khởi tạo validator
	initConfig()    // Khởi tạo cấu hình server
	initDatabase()  // Khởi tạo kết nối database
}

// Hàm khởi tạo validator với các custom validation
func initValidator() {
	global.InitValidator()
	logger.GetAppLogger().Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.Config = config.NewConfig()
	if global.Config == nil {
		panic("Failed to load configuration")
	}
	logger.GetAppLogger().Info("Initialized configuration")
}

// Hàm khởi tạo kết nối database
func initDatabase() {
	client, err := database.GetInstance(global.Config)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
	}
	global.MongoClient = client
}

// Services gom các thành phần runtime của ứng dụng
type Services struct {
	TenantConfigs  *tenantservice.TenantConfigService
	Resolver       *tenantservice.Resolver
	Events         *webhookservice.EventService
	WebhookHandler *webhookhdl.WebhookHandler
	TenantHandler  *tenanthdl.TenantConfigHandler
	ReminderWorker *worker.ReminderWorker
}

// InitServices wiring toàn bộ services theo thứ tự dependency:
// platform clients → reporter/dispatcher/matcher → stores → orchestration
func InitServices() (*Services, error) {
	cfg := global.Config

	chatClient := chatwork.NewClient("")
	sheetClient := sheets.NewClient("", cfg.SheetsAccessToken)

	reporter := notification.NewReporter(chatClient, cfg.AdminChatworkToken, cfg.AdminRoomID)
	dispatcher := notification.NewDispatcher(chatClient, reporter)
	matcher := roster.NewMatcher(sheetClient)

	tenantConfigs, err := tenantservice.NewTenantConfigService()
	if err != nil {
		return nil, fmt.Errorf("create tenant config service: %w", err)
	}
	resolver := tenantservice.NewResolver(tenantConfigs, cfg)

	events := webhookservice.NewEventService(resolver, dispatcher, reporter, matcher, sheetClient)

	// Sheet index build lần đầu lúc start; fail không chặn start vì resolver
	// luôn có đường scan fallback
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := resolver.RebuildIndex(ctx); err != nil {
		logger.GetAppLogger().WithError(err).Warn("🏷 [TENANT] Build sheet index lúc start thất bại")
	}

	return &Services{
		TenantConfigs:  tenantConfigs,
		Resolver:       resolver,
		Events:         events,
		WebhookHandler: webhookhdl.NewWebhookHandler(events),
		TenantHandler:  tenanthdl.NewTenantConfigHandler(tenantConfigs, resolver),
		ReminderWorker: worker.NewReminderWorker(events, tenantConfigs, resolver, cfg.ReminderCronSpec),
	}, nil
}
