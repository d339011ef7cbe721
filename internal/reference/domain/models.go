// Package domain contains persistence models for tenant reference data.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillingUnit is the quantity measure a material is priced by.
type BillingUnit string

const (
	UnitTon  BillingUnit = "TON"
	UnitM3   BillingUnit = "M3"
	UnitTrip BillingUnit = "TRIP"
	UnitKM   BillingUnit = "KM"
)

// ValidUnit reports whether u is a known billing unit.
func ValidUnit(u BillingUnit) bool {
	switch u {
	case UnitTon, UnitM3, UnitTrip, UnitKM:
		return true
	}
	return false
}

type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name      string       `gorm:"not null" json:"name"`
	Email     string       `gorm:"type:text" json:"email,omitempty"`
	Phone     string       `gorm:"type:text" json:"phone,omitempty"`
	TaxNumber string       `gorm:"type:text" json:"tax_number,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

type Site struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name      string       `gorm:"not null" json:"name"`
	Address   string       `gorm:"type:text" json:"address,omitempty"`
	Lat       *float64     `json:"lat,omitempty"`
	Lng       *float64     `json:"lng,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Site) TableName() string { return "sites" }

type Material struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name        string       `gorm:"not null" json:"name"`
	BillingUnit BillingUnit  `gorm:"type:text;not null" json:"billing_unit"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Material) TableName() string { return "materials" }

type Truck struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID             snowflake.ID `gorm:"not null;index" json:"organization_id"`
	PlateNumber       string       `gorm:"not null" json:"plate_number"`
	Model             string       `gorm:"type:text" json:"model,omitempty"`
	InsuranceExpiry   *time.Time   `json:"insurance_expiry,omitempty"`
	InspectionExpiry  *time.Time   `json:"inspection_expiry,omitempty"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Truck) TableName() string { return "trucks" }

type Driver struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name          string       `gorm:"not null" json:"name"`
	Phone         string       `gorm:"type:text" json:"phone,omitempty"`
	LicenseNumber string       `gorm:"type:text" json:"license_number,omitempty"`
	LicenseExpiry *time.Time   `json:"license_expiry,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Driver) TableName() string { return "drivers" }

type Trailer struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"organization_id"`
	PlateNumber string       `gorm:"not null" json:"plate_number"`
	Kind        string       `gorm:"type:text" json:"kind,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Trailer) TableName() string { return "trailers" }
