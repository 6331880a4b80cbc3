package service

import (
	"context"
	"sync"

	"promo_notify/config"
	models "promo_notify/internal/api/tenant/models"
	"promo_notify/internal/logger"
)

// Library defaults - lớp cuối cùng của chuỗi default khi cả tenant lẫn env
// đều không khai báo
const (
	libDefaultBookingSheetName = "予約一覧"
	libDefaultRosterSheetName  = "面談シフト"
	libDefaultMappingSheetName = "担当者マッピング"
)

// ConfigStore là phần của TenantConfigService mà resolver cần
type ConfigStore interface {
	GetConfig(ctx context.Context, tenantID string) (*models.TenantConfig, error)
	ListTenants(ctx context.Context) ([]models.TenantSummary, error)
}

// Resolver xác định config tenant nào chi phối một event.
// Giữ một reverse index sheetName → tenantID để tránh scan toàn bộ tenant
// mỗi request; index chỉ là accelerator, khi miss hoặc stale thì fallback về
// scan đầy đủ (consistency check). Resolver không bao giờ fail: không resolve
// được thì trả về config legacy/default để caller luôn thử dispatch được.
type Resolver struct {
	store    ConfigStore
	defaults *config.Configuration

	mu         sync.RWMutex
	sheetIndex map[string]string
}

// NewResolver tạo mới Resolver
func NewResolver(store ConfigStore, defaults *config.Configuration) *Resolver {
	return &Resolver{
		store:      store,
		defaults:   defaults,
		sheetIndex: make(map[string]string),
	}
}

// Resolve xác định tenant config cho một event.
// Thứ tự: id tường minh → match theo sheet name (index rồi scan) → legacy.
func (r *Resolver) Resolve(ctx context.Context, tenantID, sheetName string) *models.TenantConfig {
	log := logger.GetAppLogger()

	// 1. Có id tường minh thì fetch thẳng
	if tenantID != "" {
		cfg, err := r.store.GetConfig(ctx, tenantID)
		if err == nil {
			return r.applyDefaults(cfg)
		}
		log.WithError(err).WithField("tenantId", tenantID).Warn("🏷 [TENANT] Không fetch được config theo id, fallback về legacy")
		return r.legacyConfig(ctx)
	}

	// 2. Match theo sheet name
	if sheetName != "" {
		if cfg := r.resolveBySheetName(ctx, sheetName); cfg != nil {
			return r.applyDefaults(cfg)
		}
		log.WithField("sheetName", sheetName).Warn("🏷 [TENANT] Không có tenant nào match sheet name, fallback về legacy")
	}

	// 3. Legacy fallback
	return r.legacyConfig(ctx)
}

// resolveBySheetName thử index trước, sau đó scan toàn bộ tenant
func (r *Resolver) resolveBySheetName(ctx context.Context, sheetName string) *models.TenantConfig {
	log := logger.GetAppLogger()

	// Index hit: verify config còn match thật (index có thể stale vì config
	// là eventual - last-write-wins)
	r.mu.RLock()
	indexedID, hit := r.sheetIndex[sheetName]
	r.mu.RUnlock()

	if hit {
		cfg, err := r.store.GetConfig(ctx, indexedID)
		if err == nil && configMatchesSheet(cfg, sheetName) {
			return cfg
		}
		log.WithFields(map[string]interface{}{
			"sheetName": sheetName,
			"tenantId":  indexedID,
		}).Warn("🏷 [TENANT] Sheet index stale, fallback về scan")
	}

	// Scan: duyệt mọi tenant, chọn match có updatedAt mới nhất (hòa thì
	// theo thứ tự danh sách)
	tenants, err := r.store.ListTenants(ctx)
	if err != nil {
		log.WithError(err).Error("🏷 [TENANT] Không list được tenants khi scan")
		return nil
	}

	var best *models.TenantConfig
	matchCount := 0
	for _, t := range tenants {
		cfg, err := r.store.GetConfig(ctx, t.ID)
		if err != nil {
			continue
		}
		if !configMatchesSheet(cfg, sheetName) {
			continue
		}
		matchCount++
		if best == nil || cfg.UpdatedAt > best.UpdatedAt {
			best = cfg
		}
	}

	if matchCount > 1 {
		log.WithFields(map[string]interface{}{
			"sheetName":  sheetName,
			"matchCount": matchCount,
			"tenantId":   best.ID,
		}).Warn("🏷 [TENANT] Nhiều tenant cùng match một sheet name, chọn config mới nhất")
	}

	if best != nil {
		// Cập nhật index cho lần sau
		r.mu.Lock()
		r.sheetIndex[sheetName] = best.ID
		r.mu.Unlock()
	}

	return best
}

// RebuildIndex build lại toàn bộ reverse index sheetName → tenantID.
// Gọi lúc server start và sau mỗi lần save config. Khi nhiều tenant khai báo
// cùng một sheet name thì tenant có updatedAt mới nhất thắng.
func (r *Resolver) RebuildIndex(ctx context.Context) error {
	tenants, err := r.store.ListTenants(ctx)
	if err != nil {
		return err
	}

	type entry struct {
		tenantID  string
		updatedAt int64
	}
	index := make(map[string]entry)

	for _, t := range tenants {
		cfg, err := r.store.GetConfig(ctx, t.ID)
		if err != nil {
			continue
		}
		for _, name := range configSheetNames(cfg) {
			if cur, ok := index[name]; ok && cur.updatedAt >= cfg.UpdatedAt {
				continue
			}
			index[name] = entry{tenantID: cfg.ID, updatedAt: cfg.UpdatedAt}
		}
	}

	flat := make(map[string]string, len(index))
	for name, e := range index {
		flat[name] = e.tenantID
	}

	r.mu.Lock()
	r.sheetIndex = flat
	r.mu.Unlock()

	logger.GetAppLogger().WithField("entries", len(flat)).Info("🏷 [TENANT] Đã rebuild sheet index")
	return nil
}

// legacyConfig trả về config của tenant legacy, phủ env defaults lên trên.
// Store lỗi cũng không sao - khi đó config đi ra thuần từ env defaults.
func (r *Resolver) legacyConfig(ctx context.Context) *models.TenantConfig {
	cfg, err := r.store.GetConfig(ctx, config.LegacyTenantID)
	if err != nil {
		cfg = &models.TenantConfig{ID: config.LegacyTenantID}
	}
	return r.applyDefaults(cfg)
}

// applyDefaults điền các field còn trống theo chuỗi ưu tiên:
// giá trị per-tenant → env default → library default.
func (r *Resolver) applyDefaults(cfg *models.TenantConfig) *models.TenantConfig {
	d := r.defaults

	if cfg.ChatworkToken == "" {
		cfg.ChatworkToken = d.DefaultChatworkToken
	}
	if cfg.SpreadsheetID == "" {
		cfg.SpreadsheetID = d.DefaultSheetID
	}
	cfg.BookingListSheetName = firstNonEmpty(cfg.BookingListSheetName, d.DefaultBookingSheetName, libDefaultBookingSheetName)
	cfg.RosterSheetName = firstNonEmpty(cfg.RosterSheetName, d.DefaultRosterSheetName, libDefaultRosterSheetName)
	cfg.StaffMappingSheetName = firstNonEmpty(cfg.StaffMappingSheetName, d.DefaultMappingSheetName, libDefaultMappingSheetName)

	return cfg
}

// configMatchesSheet kiểm tra một config có "sở hữu" sheet name không:
// hoặc là booking list sheet (event loại đặt lịch), hoặc là trigger của một
// notification rule bất kỳ (event loại rule-driven).
func configMatchesSheet(cfg *models.TenantConfig, sheetName string) bool {
	if cfg.BookingListSheetName != "" && cfg.BookingListSheetName == sheetName {
		return true
	}
	for _, rule := range cfg.NotificationRules {
		if rule.SheetName == sheetName {
			return true
		}
	}
	return false
}

// configSheetNames liệt kê mọi sheet name mà config tham chiếu
func configSheetNames(cfg *models.TenantConfig) []string {
	names := make([]string, 0, len(cfg.NotificationRules)+1)
	if cfg.BookingListSheetName != "" {
		names = append(names, cfg.BookingListSheetName)
	}
	for _, rule := range cfg.NotificationRules {
		if rule.SheetName != "" {
			names = append(names, rule.SheetName)
		}
	}
	return names
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
