package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*Statement, error)
	List(ctx context.Context) ([]Statement, error)
	Get(ctx context.Context, id string) (*Statement, []Line, error)
	MarkSent(ctx context.Context, id string) (*Statement, error)
}

type GenerateRequest struct {
	CustomerID  string    `json:"customer_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	// JobIDs optionally restricts generation to an explicit subset of jobs.
	JobIDs []string `json:"job_ids"`
}

var (
	ErrNotFound            = errors.New("not_found")
	ErrNoEligibleJobs      = errors.New("no_eligible_jobs")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidPeriod       = errors.New("invalid_period")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotDraft            = errors.New("statement_not_draft")
	ErrConcurrencyConflict = errors.New("concurrency_conflict")
)
