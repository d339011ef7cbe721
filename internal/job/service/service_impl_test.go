package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	jobdomain "github.com/haulbiz/dispatch/internal/job/domain"
	jobrepo "github.com/haulbiz/dispatch/internal/job/repository"
	"github.com/haulbiz/dispatch/internal/orgcontext"
	pricelistdomain "github.com/haulbiz/dispatch/internal/pricelist/domain"
	pricelistrepo "github.com/haulbiz/dispatch/internal/pricelist/repository"
	pricelistservice "github.com/haulbiz/dispatch/internal/pricelist/service"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	referencerepo "github.com/haulbiz/dispatch/internal/reference/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc    jobdomain.Service
	db     *gorm.DB
	node   *snowflake.Node
	orgID  snowflake.ID
	ctx    context.Context
	actor  snowflake.ID
	cust   referencedomain.Customer
	from   referencedomain.Site
	to     referencedomain.Site
	mat    referencedomain.Material
	driver referencedomain.Driver
	truck  referencedomain.Truck
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&referencedomain.Customer{},
		&referencedomain.Site{},
		&referencedomain.Material{},
		&referencedomain.Truck{},
		&referencedomain.Driver{},
		&referencedomain.Trailer{},
		&pricelistdomain.Entry{},
		&jobdomain.Job{},
		&jobdomain.StatusEvent{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	registry := referencerepo.Provide(db)
	pricelistSvc := pricelistservice.New(pricelistservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     pricelistrepo.Provide(),
		Registry: registry,
	})
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      jobrepo.Provide(),
		Registry:  registry,
		PriceList: pricelistSvc,
	})

	f := &fixture{
		svc:   svc,
		db:    db,
		node:  node,
		orgID: node.Generate(),
		actor: node.Generate(),
	}
	f.ctx = orgcontext.WithActorID(orgcontext.WithOrgID(context.Background(), f.orgID), f.actor)

	f.cust = referencedomain.Customer{ID: node.Generate(), OrgID: f.orgID, Name: "Rockline Quarries"}
	f.from = referencedomain.Site{ID: node.Generate(), OrgID: f.orgID, Name: "North Pit"}
	f.to = referencedomain.Site{ID: node.Generate(), OrgID: f.orgID, Name: "Harbor Yard"}
	f.mat = referencedomain.Material{ID: node.Generate(), OrgID: f.orgID, Name: "Gravel", BillingUnit: referencedomain.UnitTon}
	f.driver = referencedomain.Driver{ID: node.Generate(), OrgID: f.orgID, Name: "D. Peretz"}
	f.truck = referencedomain.Truck{ID: node.Generate(), OrgID: f.orgID, PlateNumber: "123-45-678"}
	require.NoError(t, db.Create(&f.cust).Error)
	require.NoError(t, db.Create(&f.from).Error)
	require.NoError(t, db.Create(&f.to).Error)
	require.NoError(t, db.Create(&f.mat).Error)
	require.NoError(t, db.Create(&f.driver).Error)
	require.NoError(t, db.Create(&f.truck).Error)
	return f
}

func (f *fixture) createJob(t *testing.T) *jobdomain.Job {
	t.Helper()
	job, err := f.svc.Create(f.ctx, jobdomain.CreateRequest{
		CustomerID:  f.cust.ID.String(),
		FromSiteID:  f.from.ID.String(),
		ToSiteID:    f.to.ID.String(),
		MaterialID:  f.mat.ID.String(),
		ScheduledAt: time.Now().UTC().Add(24 * time.Hour),
		PlannedQty:  dec(t, "12.5"),
	})
	require.NoError(t, err)
	return job
}

func (f *fixture) assign(t *testing.T, job *jobdomain.Job) *jobdomain.Job {
	t.Helper()
	updated, err := f.svc.Assign(f.ctx, job.ID.String(), jobdomain.AssignRequest{
		DriverID: f.driver.ID.String(),
		TruckID:  f.truck.ID.String(),
	})
	require.NoError(t, err)
	return updated
}

func TestCreateJobStartsPlannedWithEvent(t *testing.T) {
	f := setup(t)

	job := f.createJob(t)
	assert.Equal(t, jobdomain.StatusPlanned, job.Status)
	assert.Equal(t, referencedomain.UnitTon, job.BillingUnit, "unit defaults from the material")
	assert.Equal(t, jobdomain.PriorityNormal, job.Priority)
	assert.True(t, job.Billable)

	events, err := f.svc.Events(f.ctx, job.ID.String())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, jobdomain.StatusPlanned, events[0].Status)
	assert.Equal(t, f.actor, events[0].ActorID)
}

func TestCreateJobRejectsUnknownReferences(t *testing.T) {
	f := setup(t)

	req := jobdomain.CreateRequest{
		CustomerID:  f.node.Generate().String(),
		FromSiteID:  f.from.ID.String(),
		ToSiteID:    f.to.ID.String(),
		MaterialID:  f.mat.ID.String(),
		ScheduledAt: time.Now().UTC(),
		PlannedQty:  dec(t, "1"),
	}
	_, err := f.svc.Create(f.ctx, req)
	assert.ErrorIs(t, err, jobdomain.ErrInvalidCustomer)

	req.CustomerID = f.cust.ID.String()
	req.PlannedQty = decimal.Zero
	_, err = f.svc.Create(f.ctx, req)
	assert.ErrorIs(t, err, jobdomain.ErrInvalidQuantity)

	req.PlannedQty = dec(t, "1")
	req.ScheduledAt = time.Time{}
	_, err = f.svc.Create(f.ctx, req)
	assert.ErrorIs(t, err, jobdomain.ErrInvalidSchedule)
}

func TestCreateJobRejectsZeroReferenceIDs(t *testing.T) {
	f := setup(t)

	// "0" parses as a valid snowflake; it must read as an unknown reference,
	// never match an arbitrary row of the tenant.
	req := jobdomain.CreateRequest{
		CustomerID:  "0",
		FromSiteID:  f.from.ID.String(),
		ToSiteID:    f.to.ID.String(),
		MaterialID:  f.mat.ID.String(),
		ScheduledAt: time.Now().UTC(),
		PlannedQty:  dec(t, "1"),
	}
	_, err := f.svc.Create(f.ctx, req)
	assert.ErrorIs(t, err, jobdomain.ErrInvalidCustomer)

	req.CustomerID = f.cust.ID.String()
	req.MaterialID = "0"
	_, err = f.svc.Create(f.ctx, req)
	assert.ErrorIs(t, err, jobdomain.ErrInvalidMaterial)
}

func TestAssignAutoTransitionFiresOnce(t *testing.T) {
	f := setup(t)
	job := f.createJob(t)

	job = f.assign(t, job)
	assert.Equal(t, jobdomain.StatusAssigned, job.Status)
	require.NotNil(t, job.DriverID)
	assert.Equal(t, f.driver.ID, *job.DriverID)

	// Re-assignment swaps the crew without another transition event.
	other := referencedomain.Driver{ID: f.node.Generate(), OrgID: f.orgID, Name: "E. Mizrahi"}
	require.NoError(t, f.db.Create(&other).Error)

	job, err := f.svc.Assign(f.ctx, job.ID.String(), jobdomain.AssignRequest{
		DriverID: other.ID.String(),
		TruckID:  f.truck.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, jobdomain.StatusAssigned, job.Status)
	assert.Equal(t, other.ID, *job.DriverID)

	events, err := f.svc.Events(f.ctx, job.ID.String())
	require.NoError(t, err)
	assert.Len(t, events, 2, "PLANNED + ASSIGNED only")
}

func TestAssignExplicitStatusSuppressesAuto(t *testing.T) {
	f := setup(t)
	job := f.createJob(t)

	explicit := jobdomain.StatusAssigned
	job, err := f.svc.Assign(f.ctx, job.ID.String(), jobdomain.AssignRequest{
		DriverID: f.driver.ID.String(),
		TruckID:  f.truck.ID.String(),
		Status:   &explicit,
	})
	require.NoError(t, err)
	assert.Equal(t, jobdomain.StatusAssigned, job.Status)

	events, err := f.svc.Events(f.ctx, job.ID.String())
	require.NoError(t, err)
	assert.Len(t, events, 2)

	// An explicit status that skips ahead is rejected outright.
	job2 := f.createJob(t)
	skip := jobdomain.StatusLoaded
	_, err = f.svc.Assign(f.ctx, job2.ID.String(), jobdomain.AssignRequest{
		DriverID: f.driver.ID.String(),
		TruckID:  f.truck.ID.String(),
		Status:   &skip,
	})
	assert.ErrorIs(t, err, jobdomain.ErrIllegalTransition)
}

func TestSetStatusEnforcesChain(t *testing.T) {
	f := setup(t)
	job := f.createJob(t)
	job = f.assign(t, job)

	for _, next := range []jobdomain.Status{
		jobdomain.StatusEnroutePickup,
		jobdomain.StatusLoaded,
		jobdomain.StatusEnrouteDropoff,
		jobdomain.StatusDelivered,
		jobdomain.StatusClosed,
	} {
		var err error
		job, err = f.svc.SetStatus(f.ctx, job.ID.String(), jobdomain.SetStatusRequest{Status: next})
		require.NoError(t, err, "transition to %s", next)
	}

	_, err := f.svc.SetStatus(f.ctx, job.ID.String(), jobdomain.SetStatusRequest{Status: jobdomain.StatusCanceled})
	assert.ErrorIs(t, err, jobdomain.ErrIllegalTransition, "CLOSED is terminal")

	events, err := f.svc.Events(f.ctx, job.ID.String())
	require.NoError(t, err)
	require.Len(t, events, 7)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].OccurredAt.Before(events[i-1].OccurredAt), "events out of order at %d", i)
	}
}

func TestSetStatusRejectsSkips(t *testing.T) {
	f := setup(t)
	job := f.createJob(t)

	_, err := f.svc.SetStatus(f.ctx, job.ID.String(), jobdomain.SetStatusRequest{Status: jobdomain.StatusLoaded})
	assert.ErrorIs(t, err, jobdomain.ErrIllegalTransition)

	_, err = f.svc.SetStatus(f.ctx, job.ID.String(), jobdomain.SetStatusRequest{Status: "TELEPORTED"})
	assert.ErrorIs(t, err, jobdomain.ErrInvalidStatus)

	// Cancellation is open from any live state.
	canceled, err := f.svc.SetStatus(f.ctx, job.ID.String(), jobdomain.SetStatusRequest{Status: jobdomain.StatusCanceled, Note: "customer called it off"})
	require.NoError(t, err)
	assert.Equal(t, jobdomain.StatusCanceled, canceled.Status)
}

func TestActualQtyOnlyAfterDelivery(t *testing.T) {
	f := setup(t)
	job := f.createJob(t)
	job = f.assign(t, job)

	qty := dec(t, "11.8")
	_, err := f.svc.UpdateFields(f.ctx, job.ID.String(), jobdomain.Patch{ActualQty: &qty})
	assert.ErrorIs(t, err, jobdomain.ErrActualQtyNotAllowed)

	for _, next := range []jobdomain.Status{
		jobdomain.StatusEnroutePickup,
		jobdomain.StatusLoaded,
		jobdomain.StatusEnrouteDropoff,
	} {
		job, err = f.svc.SetStatus(f.ctx, job.ID.String(), jobdomain.SetStatusRequest{Status: next})
		require.NoError(t, err)
	}

	// Setting DELIVERED and the actual quantity in one patch is legal; the
	// target status is checked, not the stale one.
	delivered := jobdomain.StatusDelivered
	job, err = f.svc.UpdateFields(f.ctx, job.ID.String(), jobdomain.Patch{Status: &delivered, ActualQty: &qty})
	require.NoError(t, err)
	assert.Equal(t, jobdomain.StatusDelivered, job.Status)
	require.NotNil(t, job.ActualQty)
	assert.True(t, job.ActualQty.Equal(qty))

	events, err := f.svc.Events(f.ctx, job.ID.String())
	require.NoError(t, err)
	assert.Len(t, events, 6, "the combined patch appends exactly one event")
}

func TestManualOverrideNeedsReason(t *testing.T) {
	f := setup(t)
	job := f.createJob(t)

	total := dec(t, "999")
	_, err := f.svc.UpdateFields(f.ctx, job.ID.String(), jobdomain.Patch{ManualOverrideTotal: &total})
	assert.ErrorIs(t, err, jobdomain.ErrOverrideNeedsReason)

	reason := "agreed flat rate for the pilot week"
	updated, err := f.svc.UpdateFields(f.ctx, job.ID.String(), jobdomain.Patch{ManualOverrideTotal: &total, ManualOverrideReason: &reason})
	require.NoError(t, err)
	require.NotNil(t, updated.ManualOverrideTotal)
	assert.True(t, updated.ManualOverrideTotal.Equal(total))
}

func TestWrongTenantLooksAbsent(t *testing.T) {
	f := setup(t)
	job := f.createJob(t)

	otherCtx := orgcontext.WithOrgID(context.Background(), f.node.Generate())
	_, err := f.svc.Get(otherCtx, job.ID.String())
	assert.ErrorIs(t, err, jobdomain.ErrNotFound)

	_, err = f.svc.Get(f.ctx, "not-a-snowflake")
	assert.ErrorIs(t, err, jobdomain.ErrNotFound)

	_, err = f.svc.Get(context.Background(), job.ID.String())
	assert.ErrorIs(t, err, orgcontext.ErrTenantContextMissing)
}

func TestPricePersistsBreakdown(t *testing.T) {
	f := setup(t)

	minCharge := dec(t, "200")
	entry := pricelistdomain.Entry{
		ID:          f.node.Generate(),
		OrgID:       f.orgID,
		MaterialID:  f.mat.ID,
		BillingUnit: referencedomain.UnitTon,
		BasePrice:   dec(t, "40"),
		MinCharge:   &minCharge,
		ValidFrom:   time.Now().UTC().Add(-time.Hour),
		CreatedBy:   f.actor,
	}
	require.NoError(t, f.db.Create(&entry).Error)

	job := f.createJob(t)
	priced, err := f.svc.Price(f.ctx, job.ID.String(), jobdomain.PriceRequest{})
	require.NoError(t, err)

	require.NotNil(t, priced.PricingTotal)
	assert.True(t, priced.PricingTotal.Equal(dec(t, "500")), "40 x 12.5 = %s", priced.PricingTotal)
	assert.NotEmpty(t, priced.PricingBreakdown)
}

func TestPriceWithoutEntryFails(t *testing.T) {
	f := setup(t)
	job := f.createJob(t)

	_, err := f.svc.Price(f.ctx, job.ID.String(), jobdomain.PriceRequest{})
	assert.ErrorIs(t, err, pricelistdomain.ErrNoApplicablePrice)
}
