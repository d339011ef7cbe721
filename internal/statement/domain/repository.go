package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	jobdomain "github.com/haulbiz/dispatch/internal/job/domain"
	"gorm.io/gorm"
)

type Repository interface {
	// EligibleJobs returns the customer's delivered, billable jobs scheduled
	// inside the period that do not yet appear on any statement line of the
	// tenant, optionally intersected with subset.
	EligibleJobs(ctx context.Context, db *gorm.DB, orgID, customerID snowflake.ID, start, end time.Time, subset []snowflake.ID) ([]jobdomain.Job, error)
	NextNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
	Insert(ctx context.Context, db *gorm.DB, statement *Statement, lines []Line) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Statement, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Statement, error)
	Lines(ctx context.Context, db *gorm.DB, orgID, statementID snowflake.ID) ([]Line, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status Status) error
}
