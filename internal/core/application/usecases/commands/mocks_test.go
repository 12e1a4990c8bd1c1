package commands_test

import (
	"context"
	"time"

	"escrow/internal/core/application/usecases/commands"
	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockWorkOrderRepository struct{ mock.Mock }

func (m *MockWorkOrderRepository) Add(ctx context.Context, wo *workorder.WorkOrder) error {
	args := m.Called(ctx, wo)
	return args.Error(0)
}
func (m *MockWorkOrderRepository) Update(ctx context.Context, wo *workorder.WorkOrder) error {
	args := m.Called(ctx, wo)
	return args.Error(0)
}
func (m *MockWorkOrderRepository) Get(ctx context.Context, id kernel.UUID) (*workorder.WorkOrder, error) {
	args := m.Called(ctx, id)
	wo, _ := args.Get(0).(*workorder.WorkOrder)
	return wo, args.Error(1)
}

type MockEscrowRepository struct{ mock.Mock }

func (m *MockEscrowRepository) Add(ctx context.Context, e *escrow.Escrow) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockEscrowRepository) Update(ctx context.Context, e *escrow.Escrow) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockEscrowRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*escrow.Escrow, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*escrow.Escrow)
	return e, args.Error(1)
}
func (m *MockEscrowRepository) FindDueForAutoRelease(_ context.Context, _ time.Time, _ int) ([]kernel.UUID, error) {
	return nil, nil
}
func (m *MockEscrowRepository) FindExpired(_ context.Context, _ time.Time, _ int) ([]kernel.UUID, error) {
	return nil, nil
}

type MockEventOutbox struct{ mock.Mock }

func (m *MockEventOutbox) Append(ctx context.Context, events ...event.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
func (m *MockEventOutbox) ListUnpublished(_ context.Context, _ int) ([]event.Event, error) {
	return nil, nil
}
func (m *MockEventOutbox) MarkPublished(_ context.Context, _ []kernel.UUID, _ time.Time) error {
	return nil
}

type MockLedger struct{ mock.Mock }

func (m *MockLedger) Transfer(ctx context.Context, t ports.Transfer) (ports.Receipt, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(ports.Receipt), args.Error(1)
}

type MockTreasury struct{ mock.Mock }

func (m *MockTreasury) Deposit(
	ctx context.Context,
	account string,
	asset kernel.AssetKind,
	amount kernel.Amount,
	key string,
) (ports.Receipt, error) {
	args := m.Called(ctx, account, asset, amount, key)
	return args.Get(0).(ports.Receipt), args.Error(1)
}
func (m *MockTreasury) Balance(_ context.Context, _ string, _ kernel.AssetKind) (kernel.Amount, error) {
	return kernel.ZeroAmount, nil
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) WorkOrderRepository() ports.WorkOrderRepository {
	args := m.Called()
	return args.Get(0).(ports.WorkOrderRepository)
}
func (m *MockUoW) EscrowRepository() ports.EscrowRepository {
	args := m.Called()
	return args.Get(0).(ports.EscrowRepository)
}
func (m *MockUoW) DisputeRepository() ports.DisputeRepository {
	args := m.Called()
	return args.Get(0).(ports.DisputeRepository)
}
func (m *MockUoW) EventOutbox() ports.EventOutbox {
	args := m.Called()
	return args.Get(0).(ports.EventOutbox)
}
func (m *MockUoW) Ledger() ports.Ledger {
	args := m.Called()
	return args.Get(0).(ports.Ledger)
}
func (m *MockUoW) Treasury() ports.Treasury {
	args := m.Called()
	return args.Get(0).(ports.Treasury)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOracle struct{ mock.Mock }

func (m *MockOracle) Verify(ctx context.Context, conditionID string) (ports.Attestation, error) {
	args := m.Called(ctx, conditionID)
	return args.Get(0).(ports.Attestation), args.Error(1)
}

type MockDisputeRepository struct{ mock.Mock }

func (m *MockDisputeRepository) Add(ctx context.Context, d *dispute.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *MockDisputeRepository) Update(ctx context.Context, d *dispute.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *MockDisputeRepository) Get(ctx context.Context, id kernel.UUID) (*dispute.Dispute, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*dispute.Dispute)
	return d, args.Error(1)
}
