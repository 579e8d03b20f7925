package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/remitkit/remitroute/pkg/db/models"
	"github.com/remitkit/remitroute/pkg/enums"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  service_id TEXT NOT NULL,
  service_type TEXT NOT NULL,
  assigned_user_id TEXT,
  service_vendor_id TEXT,
  vendor TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL,
  source_country TEXT NOT NULL,
  dest_country TEXT NOT NULL,
  order_data TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, mutate func(*models.Order)) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "RR-" + uuid.NewString()[:8],
		ServiceID:     uuid.New(),
		ServiceType:   enums.ServiceTypeBankTransfer,
		Status:        enums.OrderStatusPending,
		Amount:        decimal.NewFromInt(100),
		Currency:      "USD",
		SourceCountry: "US",
		DestCountry:   "BD",
		OrderData:     types.OrderData{},
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, NewRepository(db).Create(context.Background(), order))
	return order
}

func TestFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db, nil)

	found, err := repo.Find(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)

	_, err = repo.Find(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestClaim(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db, nil)

	owner := uuid.New()
	rival := uuid.New()

	claimed, err := repo.Claim(context.Background(), order.ID, owner)
	require.NoError(t, err)
	assert.True(t, claimed)

	// re-claim by the same user is idempotent
	claimed, err = repo.Claim(context.Background(), order.ID, owner)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.Claim(context.Background(), order.ID, rival)
	require.NoError(t, err)
	assert.False(t, claimed)

	found, err := repo.Find(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, found.AssignedUserID)
	assert.Equal(t, owner, *found.AssignedUserID)
}

func TestUpdateAssignedGuardsClaim(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db, nil)

	owner := uuid.New()
	rival := uuid.New()
	_, err := repo.Claim(context.Background(), order.ID, owner)
	require.NoError(t, err)

	rows, err := repo.UpdateAssigned(context.Background(), order.ID, owner, map[string]any{"status": "processing"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.UpdateAssigned(context.Background(), order.ID, rival, map[string]any{"status": "pending"})
	require.NoError(t, err)
	assert.Zero(t, rows)

	found, err := repo.Find(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, found.Status)
}

func TestUpdatePersistsOrderData(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db, nil)

	data := types.OrderData{Queued: true}
	data.RecordInteraction(types.VendorInteraction{Vendor: "islami_bank", Operation: "execute", Reference: "REF-1"})

	require.NoError(t, repo.Update(context.Background(), order.ID, map[string]any{
		"order_data": data,
		"status":     "processing",
	}))

	found, err := repo.Find(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, found.OrderData.Queued)
	require.Len(t, found.OrderData.Interactions, 1)
	assert.Equal(t, "REF-1", found.OrderData.Interactions[0].Reference)
}

func TestRelease(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	vendorID := uuid.New()
	vendor := "islami_bank"
	userID := uuid.New()
	order := seedOrder(t, db, func(o *models.Order) {
		o.AssignedUserID = &userID
		o.ServiceVendorID = &vendorID
		o.Vendor = &vendor
		o.Status = enums.OrderStatusProcessing
	})

	require.NoError(t, repo.Release(context.Background(), order.ID))

	found, err := repo.Find(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Nil(t, found.AssignedUserID)
	assert.Nil(t, found.ServiceVendorID)
	assert.Nil(t, found.Vendor)
	// release never rewinds the lifecycle status
	assert.Equal(t, enums.OrderStatusProcessing, found.Status)
}

func TestListQueued(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	queued := seedOrder(t, db, func(o *models.Order) {
		o.Status = enums.OrderStatusProcessing
		o.OrderData = types.OrderData{Queued: true}
	})
	// settled order with the flag cleared
	seedOrder(t, db, func(o *models.Order) {
		o.Status = enums.OrderStatusProcessing
		o.OrderData = types.OrderData{Queued: false}
	})
	// queued flag without processing status
	seedOrder(t, db, func(o *models.Order) {
		o.Status = enums.OrderStatusPending
		o.OrderData = types.OrderData{Queued: true}
	})

	out, err := repo.ListQueued(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, queued.ID, out[0].ID)
}
