package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/haulbiz/dispatch/internal/orgcontext"
	paymentdomain "github.com/haulbiz/dispatch/internal/payment/domain"
	paymentrepo "github.com/haulbiz/dispatch/internal/payment/repository"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	referencerepo "github.com/haulbiz/dispatch/internal/reference/repository"
	statementdomain "github.com/haulbiz/dispatch/internal/statement/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   paymentdomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	orgID snowflake.ID
	ctx   context.Context
	cust  referencedomain.Customer
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
		&statementdomain.Statement{},
		&statementdomain.Line{},
		&paymentdomain.Payment{},
		&paymentdomain.Allocation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     paymentrepo.Provide(),
		Registry: referencerepo.Provide(db),
	})

	f := &fixture{svc: svc, db: db, node: node, orgID: node.Generate()}
	f.ctx = orgcontext.WithOrgID(context.Background(), f.orgID)

	f.cust = referencedomain.Customer{ID: node.Generate(), OrgID: f.orgID, Name: "Negev Paving"}
	require.NoError(t, db.Create(&f.cust).Error)
	return f
}

func (f *fixture) seedStatement(t *testing.T, total string) statementdomain.Statement {
	t.Helper()
	amount := dec(t, total)
	statement := statementdomain.Statement{
		ID:          f.node.Generate(),
		OrgID:       f.orgID,
		CustomerID:  f.cust.ID,
		Number:      int64(f.node.Generate()),
		PeriodStart: time.Now().UTC().Add(-30 * 24 * time.Hour),
		PeriodEnd:   time.Now().UTC(),
		Status:      statementdomain.StatusSent,
		Subtotal:    amount,
		Tax:         decimal.Zero,
		Total:       amount,
	}
	require.NoError(t, f.db.Create(&statement).Error)
	return statement
}

func (f *fixture) recordPayment(t *testing.T, amount string) *paymentdomain.Payment {
	t.Helper()
	payment, err := f.svc.Record(f.ctx, paymentdomain.RecordRequest{
		CustomerID: f.cust.ID.String(),
		Amount:     dec(t, amount),
		PaidAt:     time.Now().UTC(),
		Method:     paymentdomain.MethodBankTransfer,
	})
	require.NoError(t, err)
	return payment
}

func TestRecordPaymentDefaultsReference(t *testing.T) {
	f := setup(t)

	payment := f.recordPayment(t, "1000")
	assert.NotEmpty(t, payment.Reference)

	withRef, err := f.svc.Record(f.ctx, paymentdomain.RecordRequest{
		CustomerID: f.cust.ID.String(),
		Amount:     dec(t, "50"),
		PaidAt:     time.Now().UTC(),
		Method:     paymentdomain.MethodCash,
		Reference:  "wire-4471",
	})
	require.NoError(t, err)
	assert.Equal(t, "wire-4471", withRef.Reference)
}

func TestRecordPaymentValidation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Record(f.ctx, paymentdomain.RecordRequest{
		CustomerID: f.cust.ID.String(),
		Amount:     decimal.Zero,
		PaidAt:     time.Now().UTC(),
		Method:     paymentdomain.MethodCash,
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)

	_, err = f.svc.Record(f.ctx, paymentdomain.RecordRequest{
		CustomerID: f.cust.ID.String(),
		Amount:     dec(t, "10"),
		PaidAt:     time.Now().UTC(),
		Method:     "BARTER",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidMethod)

	_, err = f.svc.Record(f.ctx, paymentdomain.RecordRequest{
		CustomerID: f.node.Generate().String(),
		Amount:     dec(t, "10"),
		PaidAt:     time.Now().UTC(),
		Method:     paymentdomain.MethodCash,
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidCustomer)
}

func TestAllocatePartialThenPaid(t *testing.T) {
	f := setup(t)
	statement := f.seedStatement(t, "1000")
	payment := f.recordPayment(t, "1000")

	_, err := f.svc.Allocate(f.ctx, payment.ID.String(), paymentdomain.AllocateRequest{
		Allocations: []paymentdomain.AllocationPair{
			{StatementID: statement.ID.String(), Amount: dec(t, "400")},
		},
	})
	require.NoError(t, err)

	var got statementdomain.Statement
	require.NoError(t, f.db.First(&got, "id = ?", statement.ID).Error)
	assert.Equal(t, statementdomain.StatusPartiallyPaid, got.Status)

	_, err = f.svc.Allocate(f.ctx, payment.ID.String(), paymentdomain.AllocateRequest{
		Allocations: []paymentdomain.AllocationPair{
			{StatementID: statement.ID.String(), Amount: dec(t, "600")},
		},
	})
	require.NoError(t, err)

	require.NoError(t, f.db.First(&got, "id = ?", statement.ID).Error)
	assert.Equal(t, statementdomain.StatusPaid, got.Status)
}

func TestOverAllocationRollsBackEveryPair(t *testing.T) {
	f := setup(t)
	statement := f.seedStatement(t, "100")
	payment := f.recordPayment(t, "500")

	// The first pair alone would fit; the second pushes past the total, so
	// neither may persist.
	_, err := f.svc.Allocate(f.ctx, payment.ID.String(), paymentdomain.AllocateRequest{
		Allocations: []paymentdomain.AllocationPair{
			{StatementID: statement.ID.String(), Amount: dec(t, "50")},
			{StatementID: statement.ID.String(), Amount: dec(t, "100")},
		},
	})
	assert.ErrorIs(t, err, paymentdomain.ErrOverAllocation)

	var count int64
	require.NoError(t, f.db.Model(&paymentdomain.Allocation{}).
		Where("org_id = ?", f.orgID).Count(&count).Error)
	assert.Zero(t, count)

	var got statementdomain.Statement
	require.NoError(t, f.db.First(&got, "id = ?", statement.ID).Error)
	assert.Equal(t, statementdomain.StatusSent, got.Status, "status recompute rolls back with the pairs")
}

func TestLateAllocatorCannotPushPastTotal(t *testing.T) {
	f := setup(t)
	statement := f.seedStatement(t, "100")
	first := f.recordPayment(t, "80")
	second := f.recordPayment(t, "80")

	_, err := f.svc.Allocate(f.ctx, first.ID.String(), paymentdomain.AllocateRequest{
		Allocations: []paymentdomain.AllocationPair{
			{StatementID: statement.ID.String(), Amount: dec(t, "80")},
		},
	})
	require.NoError(t, err)

	// The second allocator arrives after the first commits; the cumulative
	// check under the statement lock caps it at the remaining 20.
	_, err = f.svc.Allocate(f.ctx, second.ID.String(), paymentdomain.AllocateRequest{
		Allocations: []paymentdomain.AllocationPair{
			{StatementID: statement.ID.String(), Amount: dec(t, "80")},
		},
	})
	assert.ErrorIs(t, err, paymentdomain.ErrOverAllocation)

	_, err = f.svc.Allocate(f.ctx, second.ID.String(), paymentdomain.AllocateRequest{
		Allocations: []paymentdomain.AllocationPair{
			{StatementID: statement.ID.String(), Amount: dec(t, "20")},
		},
	})
	require.NoError(t, err)

	var allocated decimal.Decimal
	require.NoError(t, f.db.Raw(
		"SELECT COALESCE(SUM(amount), 0) FROM payment_allocations WHERE statement_id = ?", statement.ID,
	).Scan(&allocated).Error)
	assert.True(t, allocated.Equal(dec(t, "100")), "allocated = %s", allocated)

	var got statementdomain.Statement
	require.NoError(t, f.db.First(&got, "id = ?", statement.ID).Error)
	assert.Equal(t, statementdomain.StatusPaid, got.Status)
}

func TestAllocateExactTotalIsPaid(t *testing.T) {
	f := setup(t)
	statement := f.seedStatement(t, "250")
	payment := f.recordPayment(t, "250")

	allocations, err := f.svc.Allocate(f.ctx, payment.ID.String(), paymentdomain.AllocateRequest{
		Allocations: []paymentdomain.AllocationPair{
			{StatementID: statement.ID.String(), Amount: dec(t, "250")},
		},
	})
	require.NoError(t, err)
	require.Len(t, allocations, 1)

	var got statementdomain.Statement
	require.NoError(t, f.db.First(&got, "id = ?", statement.ID).Error)
	assert.Equal(t, statementdomain.StatusPaid, got.Status)
}

func TestAllocateValidation(t *testing.T) {
	f := setup(t)
	payment := f.recordPayment(t, "100")

	_, err := f.svc.Allocate(f.ctx, payment.ID.String(), paymentdomain.AllocateRequest{})
	assert.ErrorIs(t, err, paymentdomain.ErrEmptyAllocation)

	_, err = f.svc.Allocate(f.ctx, payment.ID.String(), paymentdomain.AllocateRequest{
		Allocations: []paymentdomain.AllocationPair{
			{StatementID: f.node.Generate().String(), Amount: dec(t, "10")},
		},
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidStatement)

	_, err = f.svc.Allocate(f.ctx, "nope", paymentdomain.AllocateRequest{
		Allocations: []paymentdomain.AllocationPair{
			{StatementID: f.node.Generate().String(), Amount: dec(t, "10")},
		},
	})
	assert.ErrorIs(t, err, paymentdomain.ErrNotFound)
}

func TestPaymentInvisibleToOtherTenant(t *testing.T) {
	f := setup(t)
	payment := f.recordPayment(t, "100")

	otherCtx := orgcontext.WithOrgID(context.Background(), f.node.Generate())
	_, _, err := f.svc.Get(otherCtx, payment.ID.String())
	assert.ErrorIs(t, err, paymentdomain.ErrNotFound)
}
