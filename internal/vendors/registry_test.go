package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/remitkit/remitroute/pkg/config"
	"github.com/remitkit/remitroute/pkg/db/models"
	dbtypes "github.com/remitkit/remitroute/pkg/db/types"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/remit"
)

type stubAdapter struct {
	slug string
}

func (s *stubAdapter) Name() string { return s.slug }

func (s *stubAdapter) RequestQuote(context.Context, *models.Order) (*remit.QuoteResult, error) {
	return nil, remit.ErrNotSupported
}

func (s *stubAdapter) ExecuteOrder(context.Context, *models.Order) (*remit.ExecutionResult, error) {
	return &remit.ExecutionResult{State: remit.StateProcessing}, nil
}

func (s *stubAdapter) OrderStatus(context.Context, *models.Order) (*remit.StatusResult, error) {
	return &remit.StatusResult{State: remit.StateProcessing}, nil
}

func (s *stubAdapter) CancelOrder(context.Context, *models.Order, string) (*remit.Result, error) {
	return &remit.Result{Accepted: true, State: remit.StateCancelled}, nil
}

func (s *stubAdapter) AmendOrder(context.Context, *models.Order, remit.Amendment) (*remit.Result, error) {
	return &remit.Result{Accepted: true, State: remit.StateProcessing}, nil
}

func setupVendorsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS service_vendors (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  enabled INTEGER NOT NULL DEFAULT 0,
  service_ids TEXT,
  countries TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedVendor(t *testing.T, db *gorm.DB, slug string, enabled bool, serviceIDs ...uuid.UUID) *models.ServiceVendor {
	t.Helper()

	vendor := &models.ServiceVendor{
		ID:         uuid.New(),
		Slug:       slug,
		Name:       slug,
		Enabled:    enabled,
		ServiceIDs: dbtypes.UUIDArray(serviceIDs),
		Countries:  dbtypes.StringList{"BD"},
	}
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(&stubAdapter{slug: "islami_bank"}))
	assert.Error(t, registry.Register(&stubAdapter{slug: "islami_bank"}))
	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(&stubAdapter{}))

	adapter, ok := registry.Adapter("islami_bank")
	assert.True(t, ok)
	assert.Equal(t, "islami_bank", adapter.Name())

	require.NoError(t, registry.Register(&stubAdapter{slug: "transfast"}))
	assert.Equal(t, []string{"islami_bank", "transfast"}, registry.Slugs())
}

func TestResolve(t *testing.T) {
	db := setupVendorsTestDB(t)
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubAdapter{slug: "islami_bank"}))

	resolver, err := NewResolver(NewRepository(db), registry)
	require.NoError(t, err)

	serviceID := uuid.New()
	active := seedVendor(t, db, "islami_bank", true, serviceID)
	disabled := seedVendor(t, db, "transfast", false, serviceID)
	orphan := seedVendor(t, db, "valyou", true, serviceID)

	resolved, err := resolver.Resolve(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, "islami_bank", resolved.Adapter.Name())

	_, err = resolver.Resolve(context.Background(), uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVendorNotFound))

	_, err = resolver.Resolve(context.Background(), disabled.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVendorNotActive))

	// enabled row without a wired adapter
	_, err = resolver.Resolve(context.Background(), orphan.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVendorNotFound))

	resolved, err = resolver.ResolveSlug(context.Background(), "islami_bank")
	require.NoError(t, err)
	assert.Equal(t, active.ID, resolved.Vendor.ID)
}

func TestEligible(t *testing.T) {
	db := setupVendorsTestDB(t)
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubAdapter{slug: "islami_bank"}))
	require.NoError(t, registry.Register(&stubAdapter{slug: "transfast"}))

	resolver, err := NewResolver(NewRepository(db), registry)
	require.NoError(t, err)

	serviceID := uuid.New()
	otherService := uuid.New()
	seedVendor(t, db, "islami_bank", true, serviceID)
	seedVendor(t, db, "transfast", true, otherService)
	seedVendor(t, db, "valyou", true, serviceID) // no adapter wired
	seedVendor(t, db, "emq", false, serviceID)

	eligible, err := resolver.Eligible(context.Background(), serviceID)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "islami_bank", eligible[0].Vendor.Slug)
}

func TestSeedRegistered(t *testing.T) {
	db := setupVendorsTestDB(t)
	repo := NewRepository(db)
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubAdapter{slug: "islami_bank"}))

	cfg := config.VendorsConfig{}
	cfg.IslamiBank.Countries = []string{"BD"}

	require.NoError(t, SeedRegistered(context.Background(), repo, registry, cfg))

	created, err := repo.FindBySlug(context.Background(), "islami_bank")
	require.NoError(t, err)
	assert.Equal(t, "Islami Bank", created.Name)
	assert.True(t, created.Enabled)
	assert.Equal(t, dbtypes.StringList{"BD"}, created.Countries)

	// operator state survives a reseed
	serviceID := uuid.New()
	created.Enabled = false
	created.ServiceIDs = dbtypes.UUIDArray{serviceID}
	require.NoError(t, repo.Upsert(context.Background(), created))

	require.NoError(t, SeedRegistered(context.Background(), repo, registry, cfg))

	reseeded, err := repo.FindBySlug(context.Background(), "islami_bank")
	require.NoError(t, err)
	assert.False(t, reseeded.Enabled)
	assert.True(t, reseeded.ServesService(serviceID))
}

func TestUpsert(t *testing.T) {
	db := setupVendorsTestDB(t)
	repo := NewRepository(db)

	vendor := &models.ServiceVendor{
		ID:      uuid.New(),
		Slug:    "islami_bank",
		Name:    "Islami Bank",
		Enabled: true,
	}
	require.NoError(t, repo.Upsert(context.Background(), vendor))

	update := &models.ServiceVendor{
		Slug:    "islami_bank",
		Name:    "Islami Bank Bangladesh",
		Enabled: false,
	}
	require.NoError(t, repo.Upsert(context.Background(), update))
	assert.Equal(t, vendor.ID, update.ID)

	found, err := repo.FindBySlug(context.Background(), "islami_bank")
	require.NoError(t, err)
	assert.Equal(t, "Islami Bank Bangladesh", found.Name)
	assert.False(t, found.Enabled)
}
