package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/haulbiz/dispatch/internal/payment/domain"
	statementdomain "github.com/haulbiz/dispatch/internal/statement/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() paymentdomain.Repository {
	return &repo{}
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *paymentdomain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindPayment(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*paymentdomain.Payment, error) {
	var payment paymentdomain.Payment
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]paymentdomain.Payment, error) {
	var items []paymentdomain.Payment
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("paid_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAllocations(ctx context.Context, db *gorm.DB, orgID, paymentID snowflake.ID) ([]paymentdomain.Allocation, error) {
	var items []paymentdomain.Allocation
	err := db.WithContext(ctx).
		Where("org_id = ? AND payment_id = ?", orgID, paymentID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// LockStatement loads the statement under a row lock so the cumulative
// allocation check and the insert see a stable total. SQLite has no row
// locks; its single-writer transaction serializes the check anyway.
func (r *repo) LockStatement(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*statementdomain.Statement, error) {
	tx := db.WithContext(ctx)
	if db.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var statement statementdomain.Statement
	err := tx.
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&statement).Error
	if err != nil {
		return nil, err
	}
	if statement.ID == 0 {
		return nil, nil
	}
	return &statement, nil
}

func (r *repo) AllocatedSum(ctx context.Context, db *gorm.DB, orgID, statementID snowflake.ID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(amount), 0) FROM payment_allocations WHERE org_id = ? AND statement_id = ?", orgID, statementID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *repo) InsertAllocation(ctx context.Context, db *gorm.DB, allocation *paymentdomain.Allocation) error {
	return db.WithContext(ctx).Create(allocation).Error
}
