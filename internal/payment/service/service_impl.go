package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/haulbiz/dispatch/internal/orgcontext"
	paymentdomain "github.com/haulbiz/dispatch/internal/payment/domain"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	statementdomain "github.com/haulbiz/dispatch/internal/statement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     paymentdomain.Repository
	Registry referencedomain.Registry
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     paymentdomain.Repository
	registry referencedomain.Registry
}

func New(p Params) paymentdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		registry: p.Registry,
	}
}

func (s *Service) Record(ctx context.Context, req paymentdomain.RecordRequest) (*paymentdomain.Payment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}
	actorID, _ := orgcontext.ActorIDFromContext(ctx)

	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		return nil, paymentdomain.ErrInvalidCustomer
	}
	if _, err := s.registry.Customer(ctx, orgID, customerID); err != nil {
		return nil, paymentdomain.ErrInvalidCustomer
	}

	if req.Amount.IsNegative() || req.Amount.IsZero() {
		return nil, paymentdomain.ErrInvalidAmount
	}
	if req.PaidAt.IsZero() {
		return nil, paymentdomain.ErrInvalidPaidAt
	}
	switch req.Method {
	case paymentdomain.MethodBankTransfer, paymentdomain.MethodCash, paymentdomain.MethodCheck, paymentdomain.MethodCard:
	default:
		return nil, paymentdomain.ErrInvalidMethod
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	payment := &paymentdomain.Payment{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		CustomerID: customerID,
		Amount:     req.Amount,
		PaidAt:     req.PaidAt.UTC(),
		Method:     req.Method,
		Reference:  reference,
		CreatedBy:  actorID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.InsertPayment(ctx, s.db, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Allocate apportions the payment across statements. Every pair is verified
// against the statement's cumulative allocations under a row lock, then the
// statement's settlement status is recomputed. All pairs commit or none do.
func (s *Service) Allocate(ctx context.Context, paymentID string, req paymentdomain.AllocateRequest) ([]paymentdomain.Allocation, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}

	id, err := snowflake.ParseString(paymentID)
	if err != nil {
		return nil, paymentdomain.ErrNotFound
	}

	payment, err := s.repo.FindPayment(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, paymentdomain.ErrNotFound
	}

	if len(req.Allocations) == 0 {
		return nil, paymentdomain.ErrEmptyAllocation
	}
	for _, pair := range req.Allocations {
		if pair.Amount.IsNegative() || pair.Amount.IsZero() {
			return nil, paymentdomain.ErrInvalidAmount
		}
	}

	now := time.Now().UTC()
	var created []paymentdomain.Allocation

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, pair := range req.Allocations {
			statementID, err := snowflake.ParseString(pair.StatementID)
			if err != nil {
				return paymentdomain.ErrInvalidStatement
			}

			statement, err := s.repo.LockStatement(ctx, tx, orgID, statementID)
			if err != nil {
				return err
			}
			if statement == nil {
				return paymentdomain.ErrInvalidStatement
			}

			allocated, err := s.repo.AllocatedSum(ctx, tx, orgID, statement.ID)
			if err != nil {
				return err
			}
			cumulative := allocated.Add(pair.Amount)
			if cumulative.GreaterThan(statement.Total) {
				return paymentdomain.ErrOverAllocation
			}

			allocation := &paymentdomain.Allocation{
				ID:          s.genID.Generate(),
				OrgID:       orgID,
				PaymentID:   payment.ID,
				StatementID: statement.ID,
				Amount:      pair.Amount,
				CreatedAt:   now,
			}
			if err := s.repo.InsertAllocation(ctx, tx, allocation); err != nil {
				return err
			}

			status := statement.Status
			switch {
			case cumulative.GreaterThanOrEqual(statement.Total):
				status = statementdomain.StatusPaid
			case cumulative.IsPositive():
				status = statementdomain.StatusPartiallyPaid
			}
			if status != statement.Status {
				if err := tx.Model(&statementdomain.Statement{}).
					Where("org_id = ? AND id = ?", orgID, statement.ID).
					Updates(map[string]any{"status": status, "updated_at": now}).Error; err != nil {
					return err
				}
			}

			created = append(created, *allocation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment allocated",
		zap.String("payment_id", payment.ID.String()),
		zap.Int("pairs", len(created)),
	)
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]paymentdomain.Payment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, orgcontext.ErrTenantContextMissing
	}
	return s.repo.ListPayments(ctx, s.db, orgID)
}

func (s *Service) Get(ctx context.Context, id string) (*paymentdomain.Payment, []paymentdomain.Allocation, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, nil, orgcontext.ErrTenantContextMissing
	}

	paymentID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, nil, paymentdomain.ErrNotFound
	}

	payment, err := s.repo.FindPayment(ctx, s.db, orgID, paymentID)
	if err != nil {
		return nil, nil, err
	}
	if payment == nil {
		return nil, nil, paymentdomain.ErrNotFound
	}

	allocations, err := s.repo.ListAllocations(ctx, s.db, orgID, payment.ID)
	if err != nil {
		return nil, nil, err
	}
	return payment, allocations, nil
}
