package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound    = errors.New("not_found")
	ErrInvalidUnit = errors.New("invalid_billing_unit")
)

// Registry resolves tenant-scoped reference entities. Lookups for an ID that
// exists under another tenant behave exactly like lookups for an absent ID.
type Registry interface {
	Customer(ctx context.Context, orgID, id snowflake.ID) (*Customer, error)
	Site(ctx context.Context, orgID, id snowflake.ID) (*Site, error)
	Material(ctx context.Context, orgID, id snowflake.ID) (*Material, error)
	Truck(ctx context.Context, orgID, id snowflake.ID) (*Truck, error)
	Driver(ctx context.Context, orgID, id snowflake.ID) (*Driver, error)
	Trailer(ctx context.Context, orgID, id snowflake.ID) (*Trailer, error)
}
