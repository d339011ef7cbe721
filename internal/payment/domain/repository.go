package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	statementdomain "github.com/haulbiz/dispatch/internal/statement/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindPayment(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Payment, error)
	ListPayments(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Payment, error)
	ListAllocations(ctx context.Context, db *gorm.DB, orgID, paymentID snowflake.ID) ([]Allocation, error)
	LockStatement(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*statementdomain.Statement, error)
	AllocatedSum(ctx context.Context, db *gorm.DB, orgID, statementID snowflake.ID) (decimal.Decimal, error)
	InsertAllocation(ctx context.Context, db *gorm.DB, allocation *Allocation) error
}
