package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	jobdomain "github.com/haulbiz/dispatch/internal/job/domain"
	"github.com/haulbiz/dispatch/internal/orgcontext"
	pricelistdomain "github.com/haulbiz/dispatch/internal/pricelist/domain"
	"github.com/haulbiz/dispatch/internal/pricing"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      jobdomain.Repository
	Registry  referencedomain.Registry
	PriceList pricelistdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      jobdomain.Repository
	registry  referencedomain.Registry
	pricelist pricelistdomain.Service
}

func New(p Params) jobdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("job.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		registry:  p.Registry,
		pricelist: p.PriceList,
	}
}

func (s *Service) Create(ctx context.Context, req jobdomain.CreateRequest) (*jobdomain.Job, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}
	actorID, _ := orgcontext.ActorIDFromContext(ctx)

	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		return nil, jobdomain.ErrInvalidCustomer
	}
	if _, err := s.registry.Customer(ctx, orgID, customerID); err != nil {
		return nil, jobdomain.ErrInvalidCustomer
	}

	fromSiteID, err := snowflake.ParseString(req.FromSiteID)
	if err != nil {
		return nil, jobdomain.ErrInvalidSite
	}
	if _, err := s.registry.Site(ctx, orgID, fromSiteID); err != nil {
		return nil, jobdomain.ErrInvalidSite
	}
	toSiteID, err := snowflake.ParseString(req.ToSiteID)
	if err != nil {
		return nil, jobdomain.ErrInvalidSite
	}
	if _, err := s.registry.Site(ctx, orgID, toSiteID); err != nil {
		return nil, jobdomain.ErrInvalidSite
	}

	materialID, err := snowflake.ParseString(req.MaterialID)
	if err != nil {
		return nil, jobdomain.ErrInvalidMaterial
	}
	material, err := s.registry.Material(ctx, orgID, materialID)
	if err != nil {
		return nil, jobdomain.ErrInvalidMaterial
	}

	if req.ScheduledAt.IsZero() {
		return nil, jobdomain.ErrInvalidSchedule
	}
	if req.PlannedQty.IsNegative() || req.PlannedQty.IsZero() {
		return nil, jobdomain.ErrInvalidQuantity
	}

	unit := req.BillingUnit
	if unit == "" {
		unit = material.BillingUnit
	}
	if !referencedomain.ValidUnit(unit) {
		return nil, jobdomain.ErrInvalidUnit
	}

	priority := req.Priority
	if priority == "" {
		priority = jobdomain.PriorityNormal
	}

	now := time.Now().UTC()
	job := &jobdomain.Job{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		CustomerID:  customerID,
		FromSiteID:  fromSiteID,
		ToSiteID:    toSiteID,
		MaterialID:  materialID,
		ScheduledAt: req.ScheduledAt.UTC(),
		Priority:    priority,
		PlannedQty:  req.PlannedQty,
		BillingUnit: unit,
		Status:      jobdomain.StatusPlanned,
		Billable:    true,
		Note:        req.Note,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, job); err != nil {
			return err
		}
		return s.repo.AppendEvent(ctx, tx, s.newEvent(job, jobdomain.StatusPlanned, actorID, "", nil, nil))
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) Get(ctx context.Context, id string) (*jobdomain.Job, error) {
	_, job, err := s.load(ctx, id)
	return job, err
}

func (s *Service) List(ctx context.Context, req jobdomain.ListRequest) ([]jobdomain.Job, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, jobdomain.ErrInvalidStatus
	}
	return s.repo.List(ctx, s.db, orgID, req)
}

// Assign sets the driver and truck. The first driver assignment of a still
// PLANNED job auto-transitions it to ASSIGNED unless the caller requested an
// explicit status in the same call; re-assignment never re-fires the side
// effect.
func (s *Service) Assign(ctx context.Context, id string, req jobdomain.AssignRequest) (*jobdomain.Job, error) {
	orgID, job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	actorID, _ := orgcontext.ActorIDFromContext(ctx)

	driverID, err := snowflake.ParseString(req.DriverID)
	if err != nil {
		return nil, jobdomain.ErrInvalidDriver
	}
	if _, err := s.registry.Driver(ctx, orgID, driverID); err != nil {
		return nil, jobdomain.ErrInvalidDriver
	}

	truckID, err := snowflake.ParseString(req.TruckID)
	if err != nil {
		return nil, jobdomain.ErrInvalidTruck
	}
	if _, err := s.registry.Truck(ctx, orgID, truckID); err != nil {
		return nil, jobdomain.ErrInvalidTruck
	}

	var trailerID *snowflake.ID
	if req.TrailerID != nil {
		parsed, err := snowflake.ParseString(*req.TrailerID)
		if err != nil {
			return nil, jobdomain.ErrInvalidTrailer
		}
		if _, err := s.registry.Trailer(ctx, orgID, parsed); err != nil {
			return nil, jobdomain.ErrInvalidTrailer
		}
		trailerID = &parsed
	}

	firstAssignment := job.DriverID == nil

	job.DriverID = &driverID
	job.TruckID = &truckID
	if trailerID != nil {
		job.TrailerID = trailerID
	}

	var next *jobdomain.Status
	switch {
	case req.Status != nil:
		if !req.Status.Valid() {
			return nil, jobdomain.ErrInvalidStatus
		}
		if *req.Status != job.Status {
			if !jobdomain.CanTransition(job.Status, *req.Status) {
				return nil, jobdomain.ErrIllegalTransition
			}
			next = req.Status
		}
	case firstAssignment && job.Status == jobdomain.StatusPlanned:
		assigned := jobdomain.StatusAssigned
		next = &assigned
	}

	job.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if next != nil {
			job.Status = *next
			if err := s.repo.AppendEvent(ctx, tx, s.newEvent(job, *next, actorID, "", nil, nil)); err != nil {
				return err
			}
		}
		return s.repo.Update(ctx, tx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) SetStatus(ctx context.Context, id string, req jobdomain.SetStatusRequest) (*jobdomain.Job, error) {
	_, job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	actorID, _ := orgcontext.ActorIDFromContext(ctx)

	if !req.Status.Valid() {
		return nil, jobdomain.ErrInvalidStatus
	}
	if !jobdomain.CanTransition(job.Status, req.Status) {
		return nil, jobdomain.ErrIllegalTransition
	}

	job.Status = req.Status
	job.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.AppendEvent(ctx, tx, s.newEvent(job, req.Status, actorID, req.Note, req.Lat, req.Lng)); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateFields applies a partial update in a single merge pass. A status slot
// that differs from the current status appends exactly one event.
func (s *Service) UpdateFields(ctx context.Context, id string, patch jobdomain.Patch) (*jobdomain.Job, error) {
	_, job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	actorID, _ := orgcontext.ActorIDFromContext(ctx)

	target := job.Status
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, jobdomain.ErrInvalidStatus
		}
		if *patch.Status != job.Status && !jobdomain.CanTransition(job.Status, *patch.Status) {
			return nil, jobdomain.ErrIllegalTransition
		}
		target = *patch.Status
	}

	if patch.PlannedQty != nil {
		if patch.PlannedQty.IsNegative() || patch.PlannedQty.IsZero() {
			return nil, jobdomain.ErrInvalidQuantity
		}
		job.PlannedQty = *patch.PlannedQty
	}
	if patch.ActualQty != nil {
		// Actual quantity exists only once the load has been delivered.
		if !target.Delivered() {
			return nil, jobdomain.ErrActualQtyNotAllowed
		}
		if patch.ActualQty.IsNegative() || patch.ActualQty.IsZero() {
			return nil, jobdomain.ErrInvalidQuantity
		}
		job.ActualQty = patch.ActualQty
	}
	if patch.ManualOverrideTotal != nil {
		if patch.ManualOverrideReason == nil && job.ManualOverrideReason == nil {
			return nil, jobdomain.ErrOverrideNeedsReason
		}
		job.ManualOverrideTotal = patch.ManualOverrideTotal
	}
	if patch.ManualOverrideReason != nil {
		job.ManualOverrideReason = patch.ManualOverrideReason
	}
	if patch.ScheduledAt != nil {
		if patch.ScheduledAt.IsZero() {
			return nil, jobdomain.ErrInvalidSchedule
		}
		job.ScheduledAt = patch.ScheduledAt.UTC()
	}
	if patch.Priority != nil {
		job.Priority = *patch.Priority
	}
	if patch.Billable != nil {
		job.Billable = *patch.Billable
	}
	if patch.Note != nil {
		job.Note = *patch.Note
	}

	statusChanged := patch.Status != nil && *patch.Status != job.Status
	if statusChanged {
		job.Status = *patch.Status
	}
	job.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if statusChanged {
			if err := s.repo.AppendEvent(ctx, tx, s.newEvent(job, job.Status, actorID, "", nil, nil)); err != nil {
				return err
			}
		}
		return s.repo.Update(ctx, tx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Price resolves the applicable price list entry for the job right now and
// persists the computed breakdown and total. A manual override total on the
// job stays authoritative for billing; the computed figures are kept for
// reference.
func (s *Service) Price(ctx context.Context, id string, req jobdomain.PriceRequest) (*jobdomain.Job, error) {
	_, job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	quantity := job.PlannedQty
	if job.ActualQty != nil {
		quantity = *job.ActualQty
	}

	entry, err := s.pricelist.Resolve(ctx, pricelistdomain.ResolveRequest{
		CustomerID:  job.CustomerID,
		MaterialID:  job.MaterialID,
		BillingUnit: job.BillingUnit,
		FromSiteID:  &job.FromSiteID,
		ToSiteID:    &job.ToSiteID,
	})
	if err != nil {
		return nil, err
	}

	breakdown, err := pricing.Calculate(entry, pricing.Input{
		Quantity:  quantity,
		WaitHours: req.WaitHours,
		IsNight:   req.IsNight,
	})
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(breakdown)
	if err != nil {
		return nil, err
	}

	job.PricingTotal = &breakdown.Total
	job.PricingBreakdown = datatypes.JSON(raw)
	job.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, job); err != nil {
		return nil, err
	}

	s.log.Info("job priced",
		zap.String("job_id", job.ID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.String("total", breakdown.Total.String()),
	)
	return job, nil
}

func (s *Service) Events(ctx context.Context, id string) ([]jobdomain.StatusEvent, error) {
	orgID, job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.ListEvents(ctx, s.db, orgID, job.ID)
}

// load fetches a tenant-scoped job. A wrong ID and another tenant's ID are
// indistinguishable to the caller.
func (s *Service) load(ctx context.Context, id string) (snowflake.ID, *jobdomain.Job, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, nil, orgcontext.ErrTenantContextMissing
	}

	jobID, err := snowflake.ParseString(id)
	if err != nil {
		return 0, nil, jobdomain.ErrNotFound
	}

	job, err := s.repo.FindByID(ctx, s.db, orgID, jobID)
	if err != nil {
		return 0, nil, err
	}
	if job == nil {
		return 0, nil, jobdomain.ErrNotFound
	}
	return orgID, job, nil
}

func (s *Service) newEvent(job *jobdomain.Job, status jobdomain.Status, actorID snowflake.ID, note string, lat, lng *float64) *jobdomain.StatusEvent {
	return &jobdomain.StatusEvent{
		ID:         s.genID.Generate(),
		OrgID:      job.OrgID,
		JobID:      job.ID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		Lat:        lat,
		Lng:        lng,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
}
