package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Entry, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Entry, error)
	// Candidates returns the entries matching tenant, material, unit, customer
	// (given or general), route (exact or general) and validity window at asOf.
	// Tie-breaking is the service's concern.
	Candidates(ctx context.Context, db *gorm.DB, orgID snowflake.ID, req ResolveRequest, asOf time.Time) ([]Entry, error)
}
