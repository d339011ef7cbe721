package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, job *Job) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Job, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, req ListRequest) ([]Job, error)
	Update(ctx context.Context, db *gorm.DB, job *Job) error
	AppendEvent(ctx context.Context, db *gorm.DB, event *StatusEvent) error
	ListEvents(ctx context.Context, db *gorm.DB, orgID, jobID snowflake.ID) ([]StatusEvent, error)
}
