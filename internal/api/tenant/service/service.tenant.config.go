// Package service - store và resolver cho tenant config.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	models "promo_notify/internal/api/tenant/models"
	"promo_notify/internal/common"
	"promo_notify/internal/global"
	"promo_notify/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tenantConfigCollection là tên collection chứa config của các tenant
const tenantConfigCollection = "tenant_configs"

// TenantConfigService đọc/ghi tenant config trên MongoDB.
// Config luôn được đọc fresh theo từng request, không cache; save theo
// last-write-wins (replace nguyên document).
type TenantConfigService struct {
	collection *mongo.Collection
}

// NewTenantConfigService tạo mới TenantConfigService
func NewTenantConfigService() (*TenantConfigService, error) {
	if global.MongoClient == nil {
		return nil, fmt.Errorf("mongo client is not initialized")
	}
	if global.Config == nil {
		return nil, fmt.Errorf("config is not initialized")
	}

	collection := global.MongoClient.
		Database(global.Config.MongoDB_DBName).
		Collection(tenantConfigCollection)

	return &TenantConfigService{collection: collection}, nil
}

// GetConfig đọc config của một tenant theo id
func (s *TenantConfigService) GetConfig(ctx context.Context, tenantID string) (*models.TenantConfig, error) {
	var cfg models.TenantConfig
	err := s.collection.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant config %q: %w", tenantID, err)
	}

	sanitizeRules(&cfg)
	return &cfg, nil
}

// ListTenants trả về tóm tắt của tất cả tenant (id, name, updatedAt)
func (s *TenantConfigService) ListTenants(ctx context.Context) ([]models.TenantSummary, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "name": 1, "updatedAt": 1}).
		SetSort(bson.M{"updatedAt": -1})

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer cursor.Close(ctx)

	var tenants []models.TenantSummary
	if err := cursor.All(ctx, &tenants); err != nil {
		return nil, fmt.Errorf("decode tenant list: %w", err)
	}
	return tenants, nil
}

// SaveConfig ghi config của tenant (upsert, last-write-wins)
func (s *TenantConfigService) SaveConfig(ctx context.Context, cfg *models.TenantConfig) error {
	if cfg.ID == "" {
		return fmt.Errorf("tenant id is empty")
	}

	sanitizeRules(cfg)
	cfg.UpdatedAt = time.Now().Unix()
	if cfg.CreatedAt == 0 {
		cfg.CreatedAt = cfg.UpdatedAt
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": cfg.ID}, cfg, opts); err != nil {
		return fmt.Errorf("save tenant config %q: %w", cfg.ID, err)
	}

	return nil
}

// sanitizeRules loại bỏ các rule không có id - invariant: mỗi rule phải có
// id duy nhất do caller gán, rule thiếu id bị discard cả khi load lẫn save.
func sanitizeRules(cfg *models.TenantConfig) {
	if len(cfg.NotificationRules) == 0 {
		return
	}

	kept := cfg.NotificationRules[:0]
	dropped := 0
	for _, rule := range cfg.NotificationRules {
		if rule.ID == "" {
			dropped++
			continue
		}
		kept = append(kept, rule)
	}
	cfg.NotificationRules = kept

	if dropped > 0 {
		logger.GetAppLogger().WithFields(map[string]interface{}{
			"tenantId": cfg.ID,
			"dropped":  dropped,
		}).Warn("🏷 [TENANT] Đã loại bỏ notification rule không có id")
	}
}
