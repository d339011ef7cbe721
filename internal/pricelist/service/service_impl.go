package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbiz/dispatch/internal/orgcontext"
	pricelistdomain "github.com/haulbiz/dispatch/internal/pricelist/domain"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     pricelistdomain.Repository
	Registry referencedomain.Registry
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     pricelistdomain.Repository
	registry referencedomain.Registry
}

func New(p Params) pricelistdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("pricelist.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		registry: p.Registry,
	}
}

func (s *Service) Create(ctx context.Context, req pricelistdomain.CreateRequest) (*pricelistdomain.Entry, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}
	actorID, _ := orgcontext.ActorIDFromContext(ctx)

	materialID, err := snowflake.ParseString(req.MaterialID)
	if err != nil {
		return nil, pricelistdomain.ErrInvalidMaterial
	}
	if _, err := s.registry.Material(ctx, orgID, materialID); err != nil {
		return nil, pricelistdomain.ErrInvalidMaterial
	}

	if !referencedomain.ValidUnit(req.BillingUnit) {
		return nil, pricelistdomain.ErrInvalidUnit
	}
	if req.BasePrice.IsNegative() || req.BasePrice.IsZero() {
		return nil, pricelistdomain.ErrInvalidBasePrice
	}
	if req.ValidFrom.IsZero() {
		return nil, pricelistdomain.ErrInvalidWindow
	}
	if req.ValidTo != nil && req.ValidTo.Before(req.ValidFrom) {
		return nil, pricelistdomain.ErrInvalidWindow
	}

	var customerID *snowflake.ID
	if req.CustomerID != nil {
		id, err := snowflake.ParseString(*req.CustomerID)
		if err != nil {
			return nil, pricelistdomain.ErrInvalidCustomer
		}
		if _, err := s.registry.Customer(ctx, orgID, id); err != nil {
			return nil, pricelistdomain.ErrInvalidCustomer
		}
		customerID = &id
	}

	fromSiteID, toSiteID, err := s.parseRoute(ctx, orgID, req.FromSiteID, req.ToSiteID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &pricelistdomain.Entry{
		ID:                s.genID.Generate(),
		OrgID:             orgID,
		CustomerID:        customerID,
		MaterialID:        materialID,
		FromSiteID:        fromSiteID,
		ToSiteID:          toSiteID,
		BillingUnit:       req.BillingUnit,
		BasePrice:         req.BasePrice,
		MinCharge:         req.MinCharge,
		TripSurcharge:     req.TripSurcharge,
		WaitFeePerHour:    req.WaitFeePerHour,
		NightSurchargePct: req.NightSurchargePct,
		ValidFrom:         req.ValidFrom.UTC(),
		ValidTo:           req.ValidTo,
		CreatedBy:         actorID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// parseRoute validates that origin and destination come as a pair and belong
// to the tenant.
func (s *Service) parseRoute(ctx context.Context, orgID snowflake.ID, from, to *string) (*snowflake.ID, *snowflake.ID, error) {
	if from == nil && to == nil {
		return nil, nil, nil
	}
	if from == nil || to == nil {
		return nil, nil, pricelistdomain.ErrInvalidSite
	}

	fromID, err := snowflake.ParseString(*from)
	if err != nil {
		return nil, nil, pricelistdomain.ErrInvalidSite
	}
	toID, err := snowflake.ParseString(*to)
	if err != nil {
		return nil, nil, pricelistdomain.ErrInvalidSite
	}
	if _, err := s.registry.Site(ctx, orgID, fromID); err != nil {
		return nil, nil, pricelistdomain.ErrInvalidSite
	}
	if _, err := s.registry.Site(ctx, orgID, toID); err != nil {
		return nil, nil, pricelistdomain.ErrInvalidSite
	}
	return &fromID, &toID, nil
}

func (s *Service) List(ctx context.Context) ([]pricelistdomain.Entry, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}
	return s.repo.List(ctx, s.db, orgID)
}

func (s *Service) Get(ctx context.Context, id string) (*pricelistdomain.Entry, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}

	entryID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, pricelistdomain.ErrInvalidID
	}

	entry, err := s.repo.FindByID(ctx, s.db, orgID, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, pricelistdomain.ErrNotFound
	}
	return entry, nil
}

// Resolve finds the single applicable entry for the request. It is a pure
// function of the request and the current price list: route-specific beats
// general, then customer-specific beats general, then the latest valid_from
// wins. Results are never cached because entries can be added after a job
// is created.
func (s *Service) Resolve(ctx context.Context, req pricelistdomain.ResolveRequest) (*pricelistdomain.Entry, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}

	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	candidates, err := s.repo.Candidates(ctx, s.db, orgID, req, asOf)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, pricelistdomain.ErrNoApplicablePrice
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]
		if a.RouteSpecific() != b.RouteSpecific() {
			return a.RouteSpecific()
		}
		if a.CustomerSpecific() != b.CustomerSpecific() {
			return a.CustomerSpecific()
		}
		if !a.ValidFrom.Equal(b.ValidFrom) {
			return a.ValidFrom.After(b.ValidFrom)
		}
		// Stable last resort so equal rules resolve identically every call.
		return a.ID > b.ID
	})

	winner := candidates[0]
	return &winner, nil
}
