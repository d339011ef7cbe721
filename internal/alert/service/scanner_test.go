package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	alertdomain "github.com/haulbiz/dispatch/internal/alert/domain"
	"github.com/haulbiz/dispatch/internal/config"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupScanner(t *testing.T) (*Scanner, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&referencedomain.Truck{},
		&referencedomain.Driver{},
		&alertdomain.Alert{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	scanner := New(Params{
		Cfg:   config.Config{AlertScanIntervalMin: 0},
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	return scanner, db, node
}

func TestScanRecordsExpiringDocuments(t *testing.T) {
	scanner, db, node := setupScanner(t)
	orgID := node.Generate()

	soon := time.Now().UTC().Add(7 * 24 * time.Hour)
	far := time.Now().UTC().Add(120 * 24 * time.Hour)

	expiring := referencedomain.Truck{ID: node.Generate(), OrgID: orgID, PlateNumber: "11-111-11", InsuranceExpiry: &soon, InspectionExpiry: &far}
	healthy := referencedomain.Truck{ID: node.Generate(), OrgID: orgID, PlateNumber: "22-222-22", InsuranceExpiry: &far}
	driver := referencedomain.Driver{ID: node.Generate(), OrgID: orgID, Name: "A. Cohen", LicenseExpiry: &soon}
	require.NoError(t, db.Create(&expiring).Error)
	require.NoError(t, db.Create(&healthy).Error)
	require.NoError(t, db.Create(&driver).Error)

	require.NoError(t, scanner.Scan(context.Background()))

	var alerts []alertdomain.Alert
	require.NoError(t, db.Where("org_id = ?", orgID).Find(&alerts).Error)
	require.Len(t, alerts, 2)

	kinds := map[alertdomain.AlertKind]snowflake.ID{}
	for _, a := range alerts {
		kinds[a.Kind] = a.EntityID
	}
	assert.Equal(t, expiring.ID, kinds[alertdomain.AlertTruckInsurance])
	assert.Equal(t, driver.ID, kinds[alertdomain.AlertDriverLicense])
}

func TestScanIsIdempotent(t *testing.T) {
	scanner, db, node := setupScanner(t)
	orgID := node.Generate()

	soon := time.Now().UTC().Add(24 * time.Hour)
	truck := referencedomain.Truck{ID: node.Generate(), OrgID: orgID, PlateNumber: "33-333-33", InsuranceExpiry: &soon}
	require.NoError(t, db.Create(&truck).Error)

	require.NoError(t, scanner.Scan(context.Background()))
	require.NoError(t, scanner.Scan(context.Background()))

	var count int64
	require.NoError(t, db.Model(&alertdomain.Alert{}).Where("org_id = ?", orgID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
