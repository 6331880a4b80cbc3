package service

import (
	"context"
	"fmt"
	"testing"

	"promo_notify/config"
	models "promo_notify/internal/api/tenant/models"
	"promo_notify/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConfigStore là ConfigStore in-memory cho test
type fakeConfigStore struct {
	configs map[string]*models.TenantConfig
	listErr error
	getCall int
}

func (f *fakeConfigStore) GetConfig(ctx context.Context, tenantID string) (*models.TenantConfig, error) {
	f.getCall++
	cfg, ok := f.configs[tenantID]
	if !ok {
		return nil, common.ErrNotFound
	}
	// Copy để resolver mutate (applyDefaults) không làm bẩn store
	c := *cfg
	return &c, nil
}

func (f *fakeConfigStore) ListTenants(ctx context.Context) ([]models.TenantSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.TenantSummary
	for _, cfg := range f.configs {
		out = append(out, models.TenantSummary{ID: cfg.ID, UpdatedAt: cfg.UpdatedAt})
	}
	return out, nil
}

func envDefaults() *config.Configuration {
	return &config.Configuration{
		DefaultChatworkToken:    "env-token",
		DefaultSheetID:          "env-sheet",
		DefaultBookingSheetName: "予約一覧",
	}
}

func TestResolve_ByExplicitID(t *testing.T) {
	store := &fakeConfigStore{configs: map[string]*models.TenantConfig{
		"t1": {ID: "t1", ChatworkToken: "t1-token"},
	}}
	r := NewResolver(store, envDefaults())

	cfg := r.Resolve(context.Background(), "t1", "")

	require.NotNil(t, cfg)
	assert.Equal(t, "t1", cfg.ID)
	assert.Equal(t, "t1-token", cfg.ChatworkToken)
}

func TestResolve_BySheetName(t *testing.T) {
	store := &fakeConfigStore{configs: map[string]*models.TenantConfig{
		"t1": {ID: "t1", NotificationRules: []models.NotificationRule{{ID: "r1", SheetName: "キャンペーンA"}}},
		"t2": {ID: "t2", NotificationRules: []models.NotificationRule{{ID: "r1", SheetName: "キャンペーンB"}}},
	}}
	r := NewResolver(store, envDefaults())

	cfg := r.Resolve(context.Background(), "", "キャンペーンB")

	require.NotNil(t, cfg)
	assert.Equal(t, "t2", cfg.ID)
}

func TestResolve_SheetNameCollision_LatestWins(t *testing.T) {
	// Hai tenant cùng khai báo một sheet name - config mới nhất thắng
	store := &fakeConfigStore{configs: map[string]*models.TenantConfig{
		"old": {ID: "old", UpdatedAt: 100, NotificationRules: []models.NotificationRule{{ID: "r", SheetName: "共有シート"}}},
		"new": {ID: "new", UpdatedAt: 200, NotificationRules: []models.NotificationRule{{ID: "r", SheetName: "共有シート"}}},
	}}
	r := NewResolver(store, envDefaults())

	cfg := r.Resolve(context.Background(), "", "共有シート")

	require.NotNil(t, cfg)
	assert.Equal(t, "new", cfg.ID)
}

func TestResolve_FallbackToLegacy(t *testing.T) {
	store := &fakeConfigStore{configs: map[string]*models.TenantConfig{
		config.LegacyTenantID: {ID: config.LegacyTenantID, ChatworkToken: "legacy-token"},
	}}
	r := NewResolver(store, envDefaults())

	cfg := r.Resolve(context.Background(), "", "未知のシート")

	require.NotNil(t, cfg)
	assert.Equal(t, config.LegacyTenantID, cfg.ID)
	assert.Equal(t, "legacy-token", cfg.ChatworkToken)
}

func TestResolve_EmptyStoreUsesEnvDefaults(t *testing.T) {
	// Store trống hoàn toàn: resolver vẫn trả về config chạy được từ env
	store := &fakeConfigStore{configs: map[string]*models.TenantConfig{}}
	r := NewResolver(store, envDefaults())

	cfg := r.Resolve(context.Background(), "", "")

	require.NotNil(t, cfg)
	assert.Equal(t, config.LegacyTenantID, cfg.ID)
	assert.Equal(t, "env-token", cfg.ChatworkToken)
	assert.Equal(t, "env-sheet", cfg.SpreadsheetID)
	assert.Equal(t, "予約一覧", cfg.BookingListSheetName)
}

func TestResolve_DefaultChain(t *testing.T) {
	// Tenant có giá trị riêng thì giữ, thiếu thì env, env thiếu thì library default
	store := &fakeConfigStore{configs: map[string]*models.TenantConfig{
		"t1": {ID: "t1", BookingListSheetName: "独自の一覧"},
	}}
	r := NewResolver(store, &config.Configuration{DefaultRosterSheetName: "envシフト"})

	cfg := r.Resolve(context.Background(), "t1", "")

	assert.Equal(t, "独自の一覧", cfg.BookingListSheetName)
	assert.Equal(t, "envシフト", cfg.RosterSheetName)
	assert.Equal(t, libDefaultMappingSheetName, cfg.StaffMappingSheetName)
}

func TestRebuildIndex_ServesLookups(t *testing.T) {
	store := &fakeConfigStore{configs: map[string]*models.TenantConfig{
		"t1": {ID: "t1", NotificationRules: []models.NotificationRule{{ID: "r", SheetName: "シートX"}}},
	}}
	r := NewResolver(store, envDefaults())

	require.NoError(t, r.RebuildIndex(context.Background()))

	calls := store.getCall
	cfg := r.Resolve(context.Background(), "", "シートX")
	require.NotNil(t, cfg)
	assert.Equal(t, "t1", cfg.ID)
	// Index hit chỉ cần một lần fetch để verify, không scan toàn bộ
	assert.Equal(t, calls+1, store.getCall)
}

func TestRebuildIndex_ListError(t *testing.T) {
	store := &fakeConfigStore{listErr: fmt.Errorf("mongo down")}
	r := NewResolver(store, envDefaults())

	assert.Error(t, r.RebuildIndex(context.Background()))
}
