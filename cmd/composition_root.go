package cmd

import (
	"context"
	"fmt"
	"log/slog"

	httpadapter "escrow/internal/adapters/in/http"
	"escrow/internal/adapters/out/eventbus"
	"escrow/internal/adapters/out/postgres"
	"escrow/internal/adapters/out/postgres/escrowrepo"
	"escrow/internal/adapters/out/postgres/oraclerepo"
	"escrow/internal/adapters/out/postgres/outboxrepo"
	"escrow/internal/core/application/usecases/commands"
	"escrow/internal/core/application/usecases/queries"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/services"
	"escrow/internal/core/ports"
	"escrow/internal/jobs"
	"escrow/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	logger     *slog.Logger
	registry   *prometheus.Registry
	clock      ports.Clock
	metrics    *metrics.Metrics
	uowFactory *postgres.GormUnitOfWorkFactory
	executor   *commands.ReleaseExecutor
	oracle     *oraclerepo.GormOracle
	operators  []kernel.Actor
	bus        *eventbus.Bus
	relay      *jobs.EventRelayJob
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	clock := ports.SystemClock
	m := metrics.New(registry)

	policies, err := LoadFeePolicies(cfg.FeePolicyFile)
	if err != nil {
		return nil, err
	}
	fees, err := services.NewFeeCalculator(cfg.MaxFeeBps, policies.Default, policies.PerAsset)
	if err != nil {
		return nil, fmt.Errorf("fee calculator: %w", err)
	}
	executor, err := commands.NewReleaseExecutor(fees, cfg.FeeAccount, clock, m)
	if err != nil {
		return nil, fmt.Errorf("release executor: %w", err)
	}

	operators, err := actors("LEDGER_OPERATORS", cfg.Operators)
	if err != nil {
		return nil, err
	}
	attesters, err := actors("ORACLE_ATTESTERS", cfg.Attesters)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		logger:     logger,
		registry:   registry,
		clock:      clock,
		metrics:    m,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, clock),
		executor:   executor,
		oracle:     oraclerepo.NewGormOracle(gormDB, clock, attesters),
		operators:  operators,
		bus:        eventbus.New(),
	}
	c.bus.Subscribe("log", eventbus.LogSink(logger))
	c.relay = jobs.NewEventRelayJob(cfg.EventRelaySchedule, outboxrepo.NewGormEventOutbox(gormDB), c.bus,
		clock, m, cfg.JobBatchSize, logger)
	return c, nil
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateWorkOrderCommandHandler() commands.CreateWorkOrderCommandHandler {
	return commands.NewCreateWorkOrderCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateSubmitDeliveryCommandHandler() commands.SubmitDeliveryCommandHandler {
	return commands.NewSubmitDeliveryCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateApproveDeliveryCommandHandler() commands.ApproveDeliveryCommandHandler {
	return commands.NewApproveDeliveryCommandHandler(c.uow(), c.executor, c.clock)
}

func (c *CompositionRoot) CreateRejectDeliveryCommandHandler() commands.RejectDeliveryCommandHandler {
	return commands.NewRejectDeliveryCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateCancelWorkOrderCommandHandler() commands.CancelWorkOrderCommandHandler {
	return commands.NewCancelWorkOrderCommandHandler(c.uow(), c.executor)
}

func (c *CompositionRoot) CreateReleaseEscrowCommandHandler() commands.ReleaseEscrowCommandHandler {
	return commands.NewReleaseEscrowCommandHandler(c.uow(), c.executor)
}

func (c *CompositionRoot) CreateExtendEscrowCommandHandler() commands.ExtendEscrowCommandHandler {
	return commands.NewExtendEscrowCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateOracleReleaseCommandHandler() commands.OracleReleaseCommandHandler {
	return commands.NewOracleReleaseCommandHandler(c.uow(), c.executor, c.oracle, c.clock)
}

func (c *CompositionRoot) CreateSubmitMilestoneCommandHandler() commands.SubmitMilestoneCommandHandler {
	return commands.NewSubmitMilestoneCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateApproveMilestoneCommandHandler() commands.ApproveMilestoneCommandHandler {
	return commands.NewApproveMilestoneCommandHandler(c.uow(), c.executor, c.clock)
}

func (c *CompositionRoot) CreateRequestMilestoneRevisionCommandHandler() commands.RequestMilestoneRevisionCommandHandler {
	return commands.NewRequestMilestoneRevisionCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateFileDisputeCommandHandler() commands.FileDisputeCommandHandler {
	return commands.NewFileDisputeCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateRespondToDisputeCommandHandler() commands.RespondToDisputeCommandHandler {
	return commands.NewRespondToDisputeCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateResolveDisputeCommandHandler() commands.ResolveDisputeCommandHandler {
	return commands.NewResolveDisputeCommandHandler(c.uow(), c.executor, c.clock)
}

func (c *CompositionRoot) CreateRecordAttestationCommandHandler() commands.RecordAttestationCommandHandler {
	return commands.NewRecordAttestationCommandHandler(c.oracle)
}

func (c *CompositionRoot) CreateDepositCommandHandler() commands.DepositCommandHandler {
	return commands.NewDepositCommandHandler(c.uow(), c.operators)
}

func (c *CompositionRoot) CreateAutoReleaseCommandHandler() commands.AutoReleaseCommandHandler {
	return commands.NewAutoReleaseCommandHandler(c.uow(), c.executor)
}

func (c *CompositionRoot) CreateExpireEscrowCommandHandler() commands.ExpireEscrowCommandHandler {
	return commands.NewExpireEscrowCommandHandler(c.uow(), c.executor)
}

func (c *CompositionRoot) CreateGetWorkOrderQueryHandler() queries.GetWorkOrderQueryHandler {
	return queries.NewGetWorkOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetEscrowQueryHandler() queries.GetEscrowQueryHandler {
	return queries.NewGetEscrowQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDisputeQueryHandler() queries.GetDisputeQueryHandler {
	return queries.NewGetDisputeQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListEscrowEventsQueryHandler() queries.ListEscrowEventsQueryHandler {
	return queries.NewListEscrowEventsQueryHandler(c.gormDB)
}

// CreateHTTPServer wires every use case into the echo REST surface.
func (c *CompositionRoot) CreateHTTPServer(ctx context.Context) (*echo.Echo, error) {
	server := httpadapter.NewServer(httpadapter.Handlers{
		CreateWorkOrder:          c.CreateCreateWorkOrderCommandHandler(),
		SubmitDelivery:           c.CreateSubmitDeliveryCommandHandler(),
		ApproveDelivery:          c.CreateApproveDeliveryCommandHandler(),
		RejectDelivery:           c.CreateRejectDeliveryCommandHandler(),
		CancelWorkOrder:          c.CreateCancelWorkOrderCommandHandler(),
		ReleaseEscrow:            c.CreateReleaseEscrowCommandHandler(),
		ExtendEscrow:             c.CreateExtendEscrowCommandHandler(),
		OracleRelease:            c.CreateOracleReleaseCommandHandler(),
		SubmitMilestone:          c.CreateSubmitMilestoneCommandHandler(),
		ApproveMilestone:         c.CreateApproveMilestoneCommandHandler(),
		RequestMilestoneRevision: c.CreateRequestMilestoneRevisionCommandHandler(),
		FileDispute:              c.CreateFileDisputeCommandHandler(),
		RespondToDispute:         c.CreateRespondToDisputeCommandHandler(),
		ResolveDispute:           c.CreateResolveDisputeCommandHandler(),
		RecordAttestation:        c.CreateRecordAttestationCommandHandler(),
		Deposit:                  c.CreateDepositCommandHandler(),
		GetWorkOrder:             c.CreateGetWorkOrderQueryHandler(),
		GetEscrow:                c.CreateGetEscrowQueryHandler(),
		GetDispute:               c.CreateGetDisputeQueryHandler(),
		ListEscrowEvents:         c.CreateListEscrowEventsQueryHandler(),
	}, c.logger)
	return httpadapter.NewEcho(ctx, server, c.registry)
}

// CreateJobManager wires the scheduled sweeps and the event relay.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	finder := escrowrepo.NewGormEscrowRepository(c.gormDB)
	return jobs.NewJobManager(
		jobs.NewAutoReleaseJob(c.cfg.AutoReleaseSchedule, finder, c.CreateAutoReleaseCommandHandler(),
			c.clock, c.metrics, c.cfg.JobBatchSize, c.logger),
		jobs.NewExpiryJob(c.cfg.ExpirySchedule, finder, c.CreateExpireEscrowCommandHandler(),
			c.clock, c.metrics, c.cfg.JobBatchSize, c.logger),
		c.relay,
	)
}

// EventRelay is the relay job, exposed so the NOTIFY listener can trigger it.
func (c *CompositionRoot) EventRelay() *jobs.EventRelayJob {
	return c.relay
}

func actors(name string, ids []string) ([]kernel.Actor, error) {
	out := make([]kernel.Actor, 0, len(ids))
	for _, id := range ids {
		a, err := kernel.NewActor(id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, a)
	}
	return out, nil
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
