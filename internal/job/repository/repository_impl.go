package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	jobdomain "github.com/haulbiz/dispatch/internal/job/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() jobdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, job *jobdomain.Job) error {
	return db.WithContext(ctx).Create(job).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*jobdomain.Job, error) {
	var job jobdomain.Job
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, nil
	}
	return &job, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, req jobdomain.ListRequest) ([]jobdomain.Job, error) {
	stmt := db.WithContext(ctx).Where("org_id = ?", orgID)
	if req.CustomerID != "" {
		customerID, err := snowflake.ParseString(req.CustomerID)
		if err != nil {
			return nil, jobdomain.ErrInvalidID
		}
		stmt = stmt.Where("customer_id = ?", customerID)
	}
	if req.Status != nil {
		stmt = stmt.Where("status = ?", *req.Status)
	}

	var items []jobdomain.Job
	if err := stmt.Order("scheduled_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, job *jobdomain.Job) error {
	// Full-row save scoped by tenant; last writer wins on the job row while
	// the event log keeps the complete history.
	return db.WithContext(ctx).
		Where("org_id = ?", job.OrgID).
		Save(job).Error
}

func (r *repo) AppendEvent(ctx context.Context, db *gorm.DB, event *jobdomain.StatusEvent) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) ListEvents(ctx context.Context, db *gorm.DB, orgID, jobID snowflake.ID) ([]jobdomain.StatusEvent, error) {
	var events []jobdomain.StatusEvent
	err := db.WithContext(ctx).
		Where("org_id = ? AND job_id = ?", orgID, jobID).
		Order("occurred_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
