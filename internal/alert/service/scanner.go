package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/haulbiz/dispatch/internal/alert/domain"
	"github.com/haulbiz/dispatch/internal/config"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"github.com/haulbiz/dispatch/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// expiry horizon for upcoming document alerts
const horizon = 30 * 24 * time.Hour

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

// Scanner periodically reads truck and driver document expiry dates and
// records alerts. It runs outside core request transactions with plain
// snapshot reads.
type Scanner struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func New(p Params) *Scanner {
	return &Scanner{
		db:       p.DB,
		log:      p.Log.Named("alert.scanner"),
		genID:    p.GenID,
		interval: time.Duration(p.Cfg.AlertScanIntervalMin) * time.Minute,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scanner) Start() {
	if s.interval <= 0 {
		close(s.done)
		return
	}
	go s.loop()
}

func (s *Scanner) Stop(ctx context.Context) error {
	close(s.stop)
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scanner) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.Scan(context.Background()); err != nil {
				s.log.Error("expiry scan failed", zap.Error(err))
			}
		}
	}
}

// Scan walks all trucks and drivers and records an alert for every document
// expiring inside the horizon. The unique index on (entity, kind) keeps
// repeated scans idempotent.
func (s *Scanner) Scan(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(horizon)

	var trucks []referencedomain.Truck
	if err := s.db.WithContext(ctx).
		Where("insurance_expiry <= ? OR inspection_expiry <= ?", cutoff, cutoff).
		Find(&trucks).Error; err != nil {
		return err
	}
	for i := range trucks {
		truck := &trucks[i]
		if truck.InsuranceExpiry != nil && truck.InsuranceExpiry.Before(cutoff) {
			if err := s.record(ctx, truck.OrgID, alertdomain.AlertTruckInsurance, truck.ID, *truck.InsuranceExpiry); err != nil {
				return err
			}
		}
		if truck.InspectionExpiry != nil && truck.InspectionExpiry.Before(cutoff) {
			if err := s.record(ctx, truck.OrgID, alertdomain.AlertTruckInspection, truck.ID, *truck.InspectionExpiry); err != nil {
				return err
			}
		}
	}

	var drivers []referencedomain.Driver
	if err := s.db.WithContext(ctx).
		Where("license_expiry <= ?", cutoff).
		Find(&drivers).Error; err != nil {
		return err
	}
	for i := range drivers {
		driver := &drivers[i]
		if driver.LicenseExpiry != nil && driver.LicenseExpiry.Before(cutoff) {
			if err := s.record(ctx, driver.OrgID, alertdomain.AlertDriverLicense, driver.ID, *driver.LicenseExpiry); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Scanner) record(ctx context.Context, orgID snowflake.ID, kind alertdomain.AlertKind, entityID snowflake.ID, expiresAt time.Time) error {
	err := s.db.WithContext(ctx).Create(&alertdomain.Alert{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Kind:      kind,
		EntityID:  entityID,
		ExpiresAt: expiresAt,
	}).Error
	if err != nil && !db.IsDuplicateKeyErr(err) {
		return err
	}
	return nil
}
