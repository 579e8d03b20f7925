// Package orders persists remittance orders and the claim column that
// serializes work on them.
package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/remitkit/remitroute/pkg/db"
	"github.com/remitkit/remitroute/pkg/db/models"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
)

// queuedClause matches orders whose order_data still carries the queued
// flag. The cast keeps the expression portable between Postgres jsonb and
// the sqlite used in tests.
const queuedClause = "CAST(order_data ->> 'queued' AS TEXT) IN ('true', '1')"

// Repository encapsulates order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Find loads one order by ID.
func (r *Repository) Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Claim takes exclusive ownership of the order for userID. The write only
// lands when the order is unclaimed or already held by the same user, so
// concurrent claimants race on a single row update.
func (r *Repository) Claim(ctx context.Context, orderID, userID uuid.UUID) (bool, error) {
	if orderID == uuid.Nil || userID == uuid.Nil {
		return false, gorm.ErrInvalidValue
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND (assigned_user_id IS NULL OR assigned_user_id = ?)", orderID, userID).
		Update("assigned_user_id", userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateAssigned applies fields to the order only while userID still holds
// the claim. Returns the number of rows written so callers can detect a
// lost claim.
func (r *Repository) UpdateAssigned(ctx context.Context, orderID, userID uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, gorm.ErrInvalidValue
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND assigned_user_id = ?", orderID, userID).
		Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Update applies fields to the order regardless of claim ownership. Used by
// the reconcile worker, which operates on vendor truth rather than claims.
func (r *Repository) Update(ctx context.Context, orderID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(fields).
		Error
}

// Release clears the claim and any vendor commitment on the order. The
// clear is unconditional so supervisors can unstick abandoned claims.
func (r *Repository) Release(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"assigned_user_id":  nil,
			"service_vendor_id": nil,
			"vendor":            nil,
		}).
		Error
}

// ListQueued returns dispatched orders still waiting on vendor settlement.
func (r *Repository) ListQueued(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 25
	}
	var out []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", "processing").
		Where(queuedClause).
		Order("updated_at ASC").
		Limit(limit).
		Find(&out).
		Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if order == nil {
		return gorm.ErrInvalidValue
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order number already exists")
		}
		return err
	}
	return nil
}
