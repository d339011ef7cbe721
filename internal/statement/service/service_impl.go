package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbiz/dispatch/internal/config"
	jobdomain "github.com/haulbiz/dispatch/internal/job/domain"
	"github.com/haulbiz/dispatch/internal/orgcontext"
	pricingdomain "github.com/haulbiz/dispatch/internal/pricing/domain"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	statementdomain "github.com/haulbiz/dispatch/internal/statement/domain"
	"github.com/haulbiz/dispatch/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VATRate is the fixed local VAT applied to every statement subtotal.
var VATRate = decimal.NewFromFloat(0.17)

type Params struct {
	fx.In

	Cfg      config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     statementdomain.Repository
	Registry referencedomain.Registry
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         statementdomain.Repository
	registry     referencedomain.Registry
	fallbackRate decimal.Decimal
}

func New(p Params) (statementdomain.Service, error) {
	fallback, err := decimal.NewFromString(p.Cfg.FallbackUnitRate)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback unit rate %q: %w", p.Cfg.FallbackUnitRate, err)
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("statement.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		registry:     p.Registry,
		fallbackRate: fallback,
	}, nil
}

// Generate builds one DRAFT statement from the customer's unbilled delivered
// jobs in the period. Eligibility, numbering and the line inserts run inside
// a single transaction; the unique index on statement_lines.job_id rejects a
// concurrent double-bill that slips past the eligibility read.
func (s *Service) Generate(ctx context.Context, req statementdomain.GenerateRequest) (*statementdomain.Statement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}
	actorID, _ := orgcontext.ActorIDFromContext(ctx)

	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		return nil, statementdomain.ErrInvalidCustomer
	}
	if _, err := s.registry.Customer(ctx, orgID, customerID); err != nil {
		return nil, statementdomain.ErrInvalidCustomer
	}

	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() || req.PeriodEnd.Before(req.PeriodStart) {
		return nil, statementdomain.ErrInvalidPeriod
	}

	var subset []snowflake.ID
	for _, raw := range req.JobIDs {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, statementdomain.ErrInvalidID
		}
		subset = append(subset, id)
	}

	now := time.Now().UTC()
	var statement *statementdomain.Statement

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobs, err := s.repo.EligibleJobs(ctx, tx, orgID, customerID, req.PeriodStart.UTC(), req.PeriodEnd.UTC(), subset)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return statementdomain.ErrNoEligibleJobs
		}

		number, err := s.repo.NextNumber(ctx, tx, orgID)
		if err != nil {
			return err
		}

		statementID := s.genID.Generate()
		lines := make([]statementdomain.Line, 0, len(jobs))
		subtotal := decimal.Zero
		for i := range jobs {
			line, err := s.buildLine(orgID, statementID, &jobs[i], now)
			if err != nil {
				return err
			}
			subtotal = subtotal.Add(line.LineTotal)
			lines = append(lines, *line)
		}

		tax := subtotal.Mul(VATRate).Round(2)
		statement = &statementdomain.Statement{
			ID:          statementID,
			OrgID:       orgID,
			CustomerID:  customerID,
			Number:      number,
			PeriodStart: req.PeriodStart.UTC(),
			PeriodEnd:   req.PeriodEnd.UTC(),
			Status:      statementdomain.StatusDraft,
			Subtotal:    subtotal,
			Tax:         tax,
			Total:       subtotal.Add(tax),
			CreatedBy:   actorID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		return s.repo.Insert(ctx, tx, statement, lines)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Lost the race on either the statement number or a job line.
			return nil, statementdomain.ErrConcurrencyConflict
		}
		return nil, err
	}

	s.log.Info("statement generated",
		zap.String("statement_id", statement.ID.String()),
		zap.Int64("number", statement.Number),
		zap.String("total", statement.Total.String()),
	)
	return statement, nil
}

// buildLine prices one job onto the statement. A manual override total is
// authoritative; otherwise the persisted pricing total is used; a job that
// reached billing unpriced falls back to a nominal per-unit estimate and the
// line is marked estimated for follow-up.
func (s *Service) buildLine(orgID, statementID snowflake.ID, job *jobdomain.Job, now time.Time) (*statementdomain.Line, error) {
	quantity := job.PlannedQty
	if job.ActualQty != nil {
		quantity = *job.ActualQty
	}

	var total decimal.Decimal
	breakdown := job.PricingBreakdown
	switch {
	case job.ManualOverrideTotal != nil:
		total = *job.ManualOverrideTotal
	case job.PricingTotal != nil:
		total = *job.PricingTotal
	default:
		total = quantity.Mul(s.fallbackRate).Round(2)
		raw, err := json.Marshal(pricingdomain.Breakdown{
			BaseAmount: total,
			Total:      total,
			Estimated:  true,
		})
		if err != nil {
			return nil, err
		}
		breakdown = datatypes.JSON(raw)
		s.log.Warn("statement line priced by fallback estimate",
			zap.String("job_id", job.ID.String()),
			zap.String("estimate", total.String()),
		)
	}

	// Line money is cents; overrides and older persisted totals may still
	// carry sub-cent precision.
	total = total.Round(2)

	unitPrice := decimal.Zero
	if !quantity.IsZero() {
		unitPrice = total.DivRound(quantity, 2)
	}

	return &statementdomain.Line{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		StatementID: statementID,
		JobID:       job.ID,
		Description: fmt.Sprintf("Hauling job %s (%s %s)", job.ID.String(), quantity.String(), job.BillingUnit),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   total,
		Breakdown:   breakdown,
		CreatedAt:   now,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]statementdomain.Statement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}
	return s.repo.List(ctx, s.db, orgID)
}

func (s *Service) Get(ctx context.Context, id string) (*statementdomain.Statement, []statementdomain.Line, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, nil, orgcontext.ErrTenantContextMissing
	}

	statementID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, nil, statementdomain.ErrNotFound
	}

	statement, err := s.repo.FindByID(ctx, s.db, orgID, statementID)
	if err != nil {
		return nil, nil, err
	}
	if statement == nil {
		return nil, nil, statementdomain.ErrNotFound
	}

	lines, err := s.repo.Lines(ctx, s.db, orgID, statement.ID)
	if err != nil {
		return nil, nil, err
	}
	return statement, lines, nil
}

func (s *Service) MarkSent(ctx context.Context, id string) (*statementdomain.Statement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}

	statementID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, statementdomain.ErrNotFound
	}

	statement, err := s.repo.FindByID(ctx, s.db, orgID, statementID)
	if err != nil {
		return nil, err
	}
	if statement == nil {
		return nil, statementdomain.ErrNotFound
	}
	if statement.Status != statementdomain.StatusDraft {
		return nil, statementdomain.ErrNotDraft
	}

	if err := s.repo.UpdateStatus(ctx, s.db, orgID, statement.ID, statementdomain.StatusSent); err != nil {
		return nil, err
	}
	statement.Status = statementdomain.StatusSent
	return statement, nil
}
