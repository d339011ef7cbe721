package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	pricelistdomain "github.com/haulbiz/dispatch/internal/pricelist/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricelistdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *pricelistdomain.Entry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*pricelistdomain.Entry, error) {
	var entry pricelistdomain.Entry
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]pricelistdomain.Entry, error) {
	var items []pricelistdomain.Entry
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("valid_from DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Candidates(ctx context.Context, db *gorm.DB, orgID snowflake.ID, req pricelistdomain.ResolveRequest, asOf time.Time) ([]pricelistdomain.Entry, error) {
	stmt := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Where("material_id = ?", req.MaterialID).
		Where("billing_unit = ?", req.BillingUnit).
		Where("valid_from <= ?", asOf).
		Where("(valid_to IS NULL OR valid_to >= ?)", asOf).
		Where("(customer_id IS NULL OR customer_id = ?)", req.CustomerID)

	if req.FromSiteID != nil && req.ToSiteID != nil {
		stmt = stmt.Where(
			"((from_site_id IS NULL AND to_site_id IS NULL) OR (from_site_id = ? AND to_site_id = ?))",
			*req.FromSiteID, *req.ToSiteID,
		)
	} else {
		stmt = stmt.Where("from_site_id IS NULL AND to_site_id IS NULL")
	}

	var items []pricelistdomain.Entry
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
