package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	jobdomain "github.com/haulbiz/dispatch/internal/job/domain"
	statementdomain "github.com/haulbiz/dispatch/internal/statement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() statementdomain.Repository {
	return &repo{}
}

func (r *repo) EligibleJobs(ctx context.Context, db *gorm.DB, orgID, customerID snowflake.ID, start, end time.Time, subset []snowflake.ID) ([]jobdomain.Job, error) {
	stmt := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Where("customer_id = ?", customerID).
		Where("status IN ?", []jobdomain.Status{jobdomain.StatusDelivered, jobdomain.StatusClosed}).
		Where("billable = ?", true).
		Where("scheduled_at >= ? AND scheduled_at <= ?", start, end).
		Where("id NOT IN (SELECT job_id FROM statement_lines WHERE org_id = ?)", orgID)

	if len(subset) > 0 {
		stmt = stmt.Where("id IN ?", subset)
	}

	var jobs []jobdomain.Job
	if err := stmt.Order("scheduled_at ASC, id ASC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repo) NextNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var max int64
	err := db.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(number), 0) FROM statements WHERE org_id = ?", orgID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, statement *statementdomain.Statement, lines []statementdomain.Line) error {
	if err := db.WithContext(ctx).Create(statement).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Create(&lines).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*statementdomain.Statement, error) {
	var statement statementdomain.Statement
	err := db.WithContext(ctx).
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

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]statementdomain.Statement, error) {
	var items []statementdomain.Statement
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("number DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Lines(ctx context.Context, db *gorm.DB, orgID, statementID snowflake.ID) ([]statementdomain.Line, error) {
	var lines []statementdomain.Line
	err := db.WithContext(ctx).
		Where("org_id = ? AND statement_id = ?", orgID, statementID).
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status statementdomain.Status) error {
	return db.WithContext(ctx).
		Model(&statementdomain.Statement{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}
