package vendors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/remitkit/remitroute/pkg/db/models"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/remit"
)

// Registry holds the adapters wired in at process start. Registration is
// explicit, the registry never constructs adapters from names.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]remit.Adapter
}

// NewRegistry returns an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]remit.Adapter{}}
}

// Register adds an adapter under its slug. Registering the same slug twice
// is a wiring bug.
func (r *Registry) Register(adapter remit.Adapter) error {
	if adapter == nil {
		return fmt.Errorf("adapter is required")
	}
	slug := adapter.Name()
	if slug == "" {
		return fmt.Errorf("adapter slug is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[slug]; exists {
		return fmt.Errorf("adapter %q already registered", slug)
	}
	r.adapters[slug] = adapter
	return nil
}

// Adapter returns the adapter registered under slug.
func (r *Registry) Adapter(slug string) (remit.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[slug]
	return adapter, ok
}

// Slugs returns the registered slugs in stable order.
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for slug := range r.adapters {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// Resolver pairs the vendor registry with persistence so callers get a
// dispatchable vendor or a typed refusal.
type Resolver struct {
	repo     *Repository
	registry *Registry
}

// NewResolver validates dependencies and builds a resolver.
func NewResolver(repo *Repository, registry *Registry) (*Resolver, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor repo is required")
	}
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adapter registry is required")
	}
	return &Resolver{repo: repo, registry: registry}, nil
}

// ResolvedVendor is a vendor row together with its live adapter.
type ResolvedVendor struct {
	Vendor  *models.ServiceVendor
	Adapter remit.Adapter
}

// Resolve returns the vendor and its adapter, refusing vendors that are
// unknown, disabled, or lack a wired adapter.
func (s *Resolver) Resolve(ctx context.Context, vendorID uuid.UUID) (*ResolvedVendor, error) {
	vendor, err := s.repo.Find(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return s.attach(vendor)
}

// ResolveSlug is Resolve keyed by registry slug.
func (s *Resolver) ResolveSlug(ctx context.Context, slug string) (*ResolvedVendor, error) {
	vendor, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.attach(vendor)
}

func (s *Resolver) attach(vendor *models.ServiceVendor) (*ResolvedVendor, error) {
	if !vendor.Enabled {
		return nil, pkgerrors.New(pkgerrors.CodeVendorNotActive, "service vendor is disabled").
			WithDetails(map[string]any{"vendor": vendor.Slug})
	}
	adapter, ok := s.registry.Adapter(vendor.Slug)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeVendorNotFound, "no adapter registered for vendor").
			WithDetails(map[string]any{"vendor": vendor.Slug})
	}
	return &ResolvedVendor{Vendor: vendor, Adapter: adapter}, nil
}

// Eligible lists enabled vendors that serve the given service and have a
// wired adapter.
func (s *Resolver) Eligible(ctx context.Context, serviceID uuid.UUID) ([]ResolvedVendor, error) {
	enabled, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ResolvedVendor, 0, len(enabled))
	for i := range enabled {
		vendor := &enabled[i]
		if !vendor.ServesService(serviceID) {
			continue
		}
		adapter, ok := s.registry.Adapter(vendor.Slug)
		if !ok {
			continue
		}
		out = append(out, ResolvedVendor{Vendor: vendor, Adapter: adapter})
	}
	return out, nil
}
