package vendors

import (
	"context"

	"github.com/remitkit/remitroute/pkg/config"
	"github.com/remitkit/remitroute/pkg/db/models"
	dbtypes "github.com/remitkit/remitroute/pkg/db/types"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/islamibank"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/transfast"
)

// BuildRegistry registers an adapter for every vendor enabled in config.
// Disabled vendors are skipped entirely so their credentials do not need to
// be present.
func BuildRegistry(cfg config.VendorsConfig, logg *logger.Logger) (*Registry, error) {
	registry := NewRegistry()

	if cfg.IslamiBank.Enabled {
		adapter, err := islamibank.New(cfg.IslamiBank, logg)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(adapter); err != nil {
			return nil, err
		}
	}

	if cfg.TransFast.Enabled {
		adapter, err := transfast.New(cfg.TransFast, logg)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(adapter); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

var displayNames = map[string]string{
	islamibank.Slug: "Islami Bank",
	transfast.Slug:  "TransFast",
}

// SeedRegistered makes sure every registered adapter has a service_vendors
// row to dispatch against. New rows start enabled with the country coverage
// from the vendor's config block; existing rows keep their enabled flag and
// service bindings.
func SeedRegistered(ctx context.Context, repo *Repository, registry *Registry, cfg config.VendorsConfig) error {
	countries := map[string][]string{
		islamibank.Slug: cfg.IslamiBank.Countries,
		transfast.Slug:  cfg.TransFast.Countries,
	}

	for _, slug := range registry.Slugs() {
		name := displayNames[slug]
		if name == "" {
			name = slug
		}
		row := &models.ServiceVendor{
			Slug:      slug,
			Name:      name,
			Enabled:   true,
			Countries: dbtypes.StringList(countries[slug]),
		}

		existing, err := repo.FindBySlug(ctx, slug)
		switch {
		case err == nil:
			row.Enabled = existing.Enabled
			row.ServiceIDs = existing.ServiceIDs
		case !pkgerrors.HasCode(err, pkgerrors.CodeVendorNotFound):
			return err
		}

		if err := repo.Upsert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
