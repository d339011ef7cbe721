package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"github.com/haulbiz/dispatch/pkg/repository"
	"gorm.io/gorm"
)

type registry struct {
	customers repository.Repository[referencedomain.Customer]
	sites     repository.Repository[referencedomain.Site]
	materials repository.Repository[referencedomain.Material]
	trucks    repository.Repository[referencedomain.Truck]
	drivers   repository.Repository[referencedomain.Driver]
	trailers  repository.Repository[referencedomain.Trailer]
}

func Provide(db *gorm.DB) referencedomain.Registry {
	return &registry{
		customers: repository.ProvideStore[referencedomain.Customer](db),
		sites:     repository.ProvideStore[referencedomain.Site](db),
		materials: repository.ProvideStore[referencedomain.Material](db),
		trucks:    repository.ProvideStore[referencedomain.Truck](db),
		drivers:   repository.ProvideStore[referencedomain.Driver](db),
		trailers:  repository.ProvideStore[referencedomain.Trailer](db),
	}
}

// scoped rejects zero IDs before they reach the struct query, where gorm
// drops zero-valued fields and the lookup would match an arbitrary row.
func scoped(orgID, id snowflake.ID) error {
	if orgID == 0 || id == 0 {
		return referencedomain.ErrNotFound
	}
	return nil
}

func (r *registry) Customer(ctx context.Context, orgID, id snowflake.ID) (*referencedomain.Customer, error) {
	if err := scoped(orgID, id); err != nil {
		return nil, err
	}
	item, err := r.customers.FindOne(ctx, &referencedomain.Customer{ID: id, OrgID: orgID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, referencedomain.ErrNotFound
	}
	return item, nil
}

func (r *registry) Site(ctx context.Context, orgID, id snowflake.ID) (*referencedomain.Site, error) {
	if err := scoped(orgID, id); err != nil {
		return nil, err
	}
	item, err := r.sites.FindOne(ctx, &referencedomain.Site{ID: id, OrgID: orgID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, referencedomain.ErrNotFound
	}
	return item, nil
}

func (r *registry) Material(ctx context.Context, orgID, id snowflake.ID) (*referencedomain.Material, error) {
	if err := scoped(orgID, id); err != nil {
		return nil, err
	}
	item, err := r.materials.FindOne(ctx, &referencedomain.Material{ID: id, OrgID: orgID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, referencedomain.ErrNotFound
	}
	return item, nil
}

func (r *registry) Truck(ctx context.Context, orgID, id snowflake.ID) (*referencedomain.Truck, error) {
	if err := scoped(orgID, id); err != nil {
		return nil, err
	}
	item, err := r.trucks.FindOne(ctx, &referencedomain.Truck{ID: id, OrgID: orgID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, referencedomain.ErrNotFound
	}
	return item, nil
}

func (r *registry) Driver(ctx context.Context, orgID, id snowflake.ID) (*referencedomain.Driver, error) {
	if err := scoped(orgID, id); err != nil {
		return nil, err
	}
	item, err := r.drivers.FindOne(ctx, &referencedomain.Driver{ID: id, OrgID: orgID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, referencedomain.ErrNotFound
	}
	return item, nil
}

func (r *registry) Trailer(ctx context.Context, orgID, id snowflake.ID) (*referencedomain.Trailer, error) {
	if err := scoped(orgID, id); err != nil {
		return nil, err
	}
	item, err := r.trailers.FindOne(ctx, &referencedomain.Trailer{ID: id, OrgID: orgID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, referencedomain.ErrNotFound
	}
	return item, nil
}
