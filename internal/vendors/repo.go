// Package vendors resolves payout vendors and the adapters that speak for
// them.
package vendors

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/remitkit/remitroute/pkg/db/models"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
)

// Repository encapsulates service vendor persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a vendor repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find loads one vendor by ID.
func (r *Repository) Find(ctx context.Context, vendorID uuid.UUID) (*models.ServiceVendor, error) {
	var vendor models.ServiceVendor
	err := r.db.WithContext(ctx).First(&vendor, "id = ?", vendorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeVendorNotFound, "service vendor not found")
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// FindBySlug loads one vendor by its registry slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.ServiceVendor, error) {
	var vendor models.ServiceVendor
	err := r.db.WithContext(ctx).First(&vendor, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeVendorNotFound, "service vendor not found")
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// ListEnabled returns all vendors currently enabled for dispatch.
func (r *Repository) ListEnabled(ctx context.Context) ([]models.ServiceVendor, error) {
	var out []models.ServiceVendor
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("slug ASC").
		Find(&out).
		Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes the vendor row keyed by slug.
func (r *Repository) Upsert(ctx context.Context, vendor *models.ServiceVendor) error {
	if vendor == nil {
		return gorm.ErrInvalidValue
	}
	existing, err := r.FindBySlug(ctx, vendor.Slug)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeVendorNotFound) {
			if vendor.ID == uuid.Nil {
				vendor.ID = uuid.New()
			}
			return r.db.WithContext(ctx).Create(vendor).Error
		}
		return err
	}
	vendor.ID = existing.ID
	return r.db.WithContext(ctx).Save(vendor).Error
}
