// Package domain contains persistence models for fleet document expiry alerts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type AlertKind string

const (
	AlertTruckInsurance  AlertKind = "TRUCK_INSURANCE_EXPIRY"
	AlertTruckInspection AlertKind = "TRUCK_INSPECTION_EXPIRY"
	AlertDriverLicense   AlertKind = "DRIVER_LICENSE_EXPIRY"
)

// Alert is one open expiry warning produced by the scanner. The scanner only
// reads fleet reference data and writes its own alert rows; it never touches
// core entities.
type Alert struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"index" json:"organization_id"`
	Kind      AlertKind    `gorm:"type:text;not null;uniqueIndex:ux_alerts_entity_kind" json:"kind"`
	EntityID  snowflake.ID `gorm:"not null;index;uniqueIndex:ux_alerts_entity_kind" json:"entity_id"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the database table name.
func (Alert) TableName() string { return "alerts" }
