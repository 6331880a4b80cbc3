// Package worker - các background job chạy theo lịch.
package worker

import (
	"context"
	"time"

	tenantservice "promo_notify/internal/api/tenant/service"
	webhookservice "promo_notify/internal/api/webhook/service"
	"promo_notify/internal/logger"

	"github.com/robfig/cron/v3"
)

// runTimeout - ngân sách thời gian cho một lượt reminder toàn bộ tenant
const runTimeout = 5 * time.Minute

// ReminderWorker chạy reminder định kỳ cho mọi tenant có bật reminder.
// Mỗi tenant được isolate bằng recover riêng: một tenant panic/fail không
// chặn các tenant sau.
type ReminderWorker struct {
	engine   *cron.Cron
	events   *webhookservice.EventService
	configs  *tenantservice.TenantConfigService
	resolver *tenantservice.Resolver
	spec     string
}

// NewReminderWorker tạo mới ReminderWorker với cron spec (ví dụ "0 9 * * *")
func NewReminderWorker(
	events *webhookservice.EventService,
	configs *tenantservice.TenantConfigService,
	resolver *tenantservice.Resolver,
	spec string,
) *ReminderWorker {
	return &ReminderWorker{
		engine:   cron.New(),
		events:   events,
		configs:  configs,
		resolver: resolver,
		spec:     spec,
	}
}

// Start đăng ký job và chạy scheduler nền
func (w *ReminderWorker) Start() error {
	if _, err := w.engine.AddFunc(w.spec, w.run); err != nil {
		return err
	}
	w.engine.Start()
	logger.GetAppLogger().WithField("spec", w.spec).Info("⏰ [REMINDER] Worker đã start")
	return nil
}

// Stop dừng scheduler, chờ job đang chạy xong
func (w *ReminderWorker) Stop() {
	ctx := w.engine.Stop()
	<-ctx.Done()
	logger.GetAppLogger().Info("⏰ [REMINDER] Worker đã stop")
}

// run là một lượt reminder: duyệt mọi tenant, tenant nào bật reminder thì quét
func (w *ReminderWorker) run() {
	log := logger.GetAppLogger()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	tenants, err := w.configs.ListTenants(ctx)
	if err != nil {
		log.WithError(err).Error("⏰ [REMINDER] Không list được tenants")
		return
	}

	for _, t := range tenants {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithFields(map[string]interface{}{
						"panic":    rec,
						"tenantId": t.ID,
					}).Error("⏰ [REMINDER] Panic khi chạy reminder của tenant")
				}
			}()

			// Resolve để config đi qua chuỗi default tenant → env → library
			cfg := w.resolver.Resolve(ctx, t.ID, "")
			result, err := w.events.RunReminder(ctx, cfg, "")
			if err != nil {
				log.WithError(err).WithField("tenantId", t.ID).Error("⏰ [REMINDER] Lượt reminder thất bại")
				return
			}
			if !result.Skipped {
				log.WithFields(map[string]interface{}{
					"tenantId": t.ID,
					"sent":     result.Sent,
					"failed":   result.Failed,
				}).Info("⏰ [REMINDER] Xong tenant")
			}
		}()
	}
}
