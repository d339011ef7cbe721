package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Record(ctx context.Context, req RecordRequest) (*Payment, error)
	Allocate(ctx context.Context, paymentID string, req AllocateRequest) ([]Allocation, error)
	List(ctx context.Context) ([]Payment, error)
	Get(ctx context.Context, id string) (*Payment, []Allocation, error)
}

type RecordRequest struct {
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     time.Time       `json:"paid_at"`
	Method     Method          `json:"method"`
	Reference  string          `json:"reference"`
}

// AllocateRequest apportions a payment across statements. All pairs apply
// atomically; one failure rolls back every pair.
type AllocateRequest struct {
	Allocations []AllocationPair `json:"allocations"`
}

type AllocationPair struct {
	StatementID string          `json:"statement_id"`
	Amount      decimal.Decimal `json:"amount"`
}

var (
	ErrNotFound         = errors.New("not_found")
	ErrOverAllocation   = errors.New("over_allocation")
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidMethod    = errors.New("invalid_method")
	ErrInvalidPaidAt    = errors.New("invalid_paid_at")
	ErrInvalidStatement = errors.New("invalid_statement")
	ErrEmptyAllocation  = errors.New("invalid_allocation")
)
