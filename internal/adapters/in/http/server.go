package http

import (
	"log/slog"
	"net/http"
	"time"

	"escrow/internal/core/application/usecases/commands"
	"escrow/internal/core/application/usecases/queries"
	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// Handlers are the use cases exposed over HTTP.
type Handlers struct {
	CreateWorkOrder          commands.CreateWorkOrderCommandHandler
	SubmitDelivery           commands.SubmitDeliveryCommandHandler
	ApproveDelivery          commands.ApproveDeliveryCommandHandler
	RejectDelivery           commands.RejectDeliveryCommandHandler
	CancelWorkOrder          commands.CancelWorkOrderCommandHandler
	ReleaseEscrow            commands.ReleaseEscrowCommandHandler
	ExtendEscrow             commands.ExtendEscrowCommandHandler
	OracleRelease            commands.OracleReleaseCommandHandler
	SubmitMilestone          commands.SubmitMilestoneCommandHandler
	ApproveMilestone         commands.ApproveMilestoneCommandHandler
	RequestMilestoneRevision commands.RequestMilestoneRevisionCommandHandler
	FileDispute              commands.FileDisputeCommandHandler
	RespondToDispute         commands.RespondToDisputeCommandHandler
	ResolveDispute           commands.ResolveDisputeCommandHandler
	RecordAttestation        commands.RecordAttestationCommandHandler
	Deposit                  commands.DepositCommandHandler

	GetWorkOrder     queries.GetWorkOrderQueryHandler
	GetEscrow        queries.GetEscrowQueryHandler
	GetDispute       queries.GetDisputeQueryHandler
	ListEscrowEvents queries.ListEscrowEventsQueryHandler
}

// Server translates HTTP requests into commands and queries.
// Callers are identified by the ActorHeader set by the upstream gateway.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

// NewServer creates the REST adapter over the given use case handlers.
func NewServer(h Handlers, logger *slog.Logger) *Server {
	return &Server{h: h, logger: logger.With("component", "http")}
}

// Register mounts every /api/v1 route on g.
func (s *Server) Register(g *echo.Group) {
	g.POST("/work-orders", s.CreateWorkOrder)
	g.GET("/work-orders/:workOrderId", s.GetWorkOrder)
	g.POST("/work-orders/:workOrderId/submit", s.SubmitDelivery)
	g.POST("/work-orders/:workOrderId/approve", s.ApproveDelivery)
	g.POST("/work-orders/:workOrderId/reject", s.RejectDelivery)
	g.POST("/work-orders/:workOrderId/cancel", s.CancelWorkOrder)

	g.GET("/escrows/:escrowId", s.GetEscrow)
	g.POST("/escrows/:escrowId/release", s.ReleaseEscrow)
	g.POST("/escrows/:escrowId/extend", s.ExtendEscrow)
	g.POST("/escrows/:escrowId/oracle-release", s.OracleRelease)
	g.GET("/escrows/:escrowId/events", s.ListEscrowEvents)

	g.POST("/escrows/:escrowId/milestones/:milestoneId/submit", s.SubmitMilestone)
	g.POST("/escrows/:escrowId/milestones/:milestoneId/approve", s.ApproveMilestone)
	g.POST("/escrows/:escrowId/milestones/:milestoneId/revision", s.RequestMilestoneRevision)

	g.POST("/escrows/:escrowId/disputes", s.FileDispute)
	g.GET("/disputes/:disputeId", s.GetDispute)
	g.POST("/disputes/:disputeId/respond", s.RespondToDispute)
	g.POST("/disputes/:disputeId/resolve", s.ResolveDispute)
	g.POST("/disputes/:disputeId/accept", s.AcceptDisputeProposal)

	g.POST("/oracle/attestations", s.RecordAttestation)
	g.POST("/ledger/deposits", s.Deposit)
}

// CreateWorkOrder handles POST /api/v1/work-orders. The caller becomes the requester.
func (s *Server) CreateWorkOrder(ctx echo.Context) error {
	requester, err := caller(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body NewWorkOrder
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	params, err := body.toParams(requester)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	cmd, err := commands.NewCreateWorkOrderCommand(requester, params)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.CreateWorkOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, WorkOrderCreated{
		WorkOrderID: toOpenAPI(params.WorkOrderID),
		EscrowID:    toOpenAPI(params.ID),
	})
}

func (b NewWorkOrder) toParams(requester kernel.Actor) (escrow.Params, error) {
	var (
		params escrow.Params
		err    error
	)
	if params.ID, err = optionalUUID(b.EscrowID); err != nil {
		return params, err
	}
	if params.WorkOrderID, err = optionalUUID(b.WorkOrderID); err != nil {
		return params, err
	}
	if params.Recipient, err = kernel.NewActor(b.Fulfiller); err != nil {
		return params, err
	}
	if params.ReleaseAuthority, err = optionalActor(b.ReleaseAuthority); err != nil {
		return params, err
	}
	if params.Arbitrator, err = optionalActor(b.Arbitrator); err != nil {
		return params, err
	}
	if params.Asset, err = kernel.NewAssetKind(b.Asset); err != nil {
		return params, err
	}
	if params.Total, err = kernel.NewPositiveAmount("total", b.Total); err != nil {
		return params, err
	}
	for _, m := range b.Milestones {
		amount, amountErr := kernel.NewPositiveAmount("amount", m.Amount)
		if amountErr != nil {
			return params, amountErr
		}
		params.Milestones = append(params.Milestones, escrow.MilestoneSpec{
			Description: m.Description,
			Amount:      amount,
			Deadline:    m.Deadline.UTC(),
		})
	}
	params.Requester = requester
	params.ExpiresAt = b.ExpiresAt.UTC()
	params.AutoRelease = b.AutoRelease
	params.ConditionID = b.ConditionID
	return params, nil
}

// GetWorkOrder handles GET /api/v1/work-orders/{workOrderId}.
func (s *Server) GetWorkOrder(ctx echo.Context) error {
	viewer, err := caller(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	id, err := pathUUID(ctx, "workOrderId")
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetWorkOrderQuery(id, viewer)
	if err != nil {
		return s.fail(ctx, err)
	}
	wo, err := s.h.GetWorkOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, WorkOrder{
		ID:              toOpenAPI(wo.ID),
		EscrowID:        toOpenAPI(wo.EscrowID),
		Requester:       wo.Requester,
		Fulfiller:       wo.Fulfiller,
		Status:          wo.Status,
		Deliverables:    wo.Deliverables,
		SubmittedAt:     wo.SubmittedAt,
		Attempts:        wo.Attempts,
		RejectionReason: wo.RejectionReason,
		CreatedAt:       wo.CreatedAt,
		UpdatedAt:       wo.UpdatedAt,
	})
}

// SubmitDelivery handles POST /api/v1/work-orders/{workOrderId}/submit.
func (s *Server) SubmitDelivery(ctx echo.Context) error {
	actor, id, err := s.workOrderRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body Deliverables
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewSubmitDeliveryCommand(id, actor, body.Deliverables)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.SubmitDelivery.Handle(ctx.Request().Context(), cmd))
}

// ApproveDelivery handles POST /api/v1/work-orders/{workOrderId}/approve.
func (s *Server) ApproveDelivery(ctx echo.Context) error {
	actor, id, err := s.workOrderRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewApproveDeliveryCommand(id, actor)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.ApproveDelivery.Handle(ctx.Request().Context(), cmd))
}

// RejectDelivery handles POST /api/v1/work-orders/{workOrderId}/reject.
func (s *Server) RejectDelivery(ctx echo.Context) error {
	actor, id, err := s.workOrderRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body Rejection
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRejectDeliveryCommand(id, actor, body.Reason)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.RejectDelivery.Handle(ctx.Request().Context(), cmd))
}

// CancelWorkOrder handles POST /api/v1/work-orders/{workOrderId}/cancel.
func (s *Server) CancelWorkOrder(ctx echo.Context) error {
	actor, id, err := s.workOrderRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewCancelWorkOrderCommand(id, actor)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.CancelWorkOrder.Handle(ctx.Request().Context(), cmd))
}

// GetEscrow handles GET /api/v1/escrows/{escrowId}.
func (s *Server) GetEscrow(ctx echo.Context) error {
	viewer, id, err := s.escrowRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetEscrowQuery(id, viewer)
	if err != nil {
		return s.fail(ctx, err)
	}
	e, err := s.h.GetEscrow.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	resp := Escrow{
		ID:               toOpenAPI(e.ID),
		WorkOrderID:      toOpenAPI(e.WorkOrderID),
		Requester:        e.Requester,
		Recipient:        e.Recipient,
		ReleaseAuthority: e.ReleaseAuthority,
		Arbitrator:       e.Arbitrator,
		Asset:            e.Asset,
		Total:            e.Total,
		Released:         e.Released,
		Refunded:         e.Refunded,
		Remainder:        e.Remainder,
		ConditionID:      e.ConditionID,
		ExpiresAt:        e.ExpiresAt,
		AutoRelease:      e.AutoRelease,
		Status:           e.Status,
		ApprovedAt:       e.ApprovedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
		Milestones:       make([]Milestone, len(e.Milestones)),
	}
	if e.DisputeID != nil {
		disputeID := toOpenAPI(*e.DisputeID)
		resp.DisputeID = &disputeID
	}
	for i, m := range e.Milestones {
		resp.Milestones[i] = Milestone{
			ID:           toOpenAPI(m.ID),
			Position:     m.Position,
			Description:  m.Description,
			Amount:       m.Amount,
			Deadline:     m.Deadline,
			Deliverables: m.Deliverables,
			Status:       m.Status,
			Revisions:    m.Revisions,
			LastIssues:   m.LastIssues,
			Rating:       m.Rating,
			ReleasedAt:   m.ReleasedAt,
		}
	}

	return ctx.JSON(http.StatusOK, resp)
}

// ReleaseEscrow handles POST /api/v1/escrows/{escrowId}/release.
func (s *Server) ReleaseEscrow(ctx echo.Context) error {
	actor, id, err := s.escrowRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body ReleaseRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	amount, err := kernel.NewPositiveAmount("amount", body.Amount)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewReleaseEscrowCommand(id, actor, amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	out, err := s.h.ReleaseEscrow.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	resp := ReleaseOutcome{
		Sequence: out.Sequence,
		Gross:    out.Gross().Units(),
		Legs:     make([]ReleaseLeg, len(out.Legs)),
	}
	for i, leg := range out.Legs {
		resp.Legs[i] = ReleaseLeg{
			Name:        leg.Name,
			Beneficiary: leg.Beneficiary,
			Gross:       leg.Quote.Gross.Units(),
			Fee:         leg.Quote.Fee.Units(),
			Net:         leg.Quote.Net.Units(),
		}
		if leg.Receipt != nil {
			receiptID := toOpenAPI(leg.Receipt.ID)
			resp.Legs[i].ReceiptID = &receiptID
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

// ExtendEscrow handles POST /api/v1/escrows/{escrowId}/extend.
func (s *Server) ExtendEscrow(ctx echo.Context) error {
	actor, id, err := s.escrowRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body Extension
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewExtendEscrowCommand(id, actor, body.ExpiresAt.UTC())
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.ExtendEscrow.Handle(ctx.Request().Context(), cmd))
}

// OracleRelease handles POST /api/v1/escrows/{escrowId}/oracle-release.
func (s *Server) OracleRelease(ctx echo.Context) error {
	actor, id, err := s.escrowRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewOracleReleaseCommand(id, actor)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.OracleRelease.Handle(ctx.Request().Context(), cmd))
}

// ListEscrowEvents handles GET /api/v1/escrows/{escrowId}/events.
func (s *Server) ListEscrowEvents(ctx echo.Context) error {
	viewer, id, err := s.escrowRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	params, err := bindEventsParams(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var (
		after int64
		limit int
	)
	if params.After != nil {
		after = *params.After
	}
	if params.Limit != nil {
		limit = *params.Limit
	}

	query, err := queries.NewListEscrowEventsQuery(id, viewer, after, limit)
	if err != nil {
		return s.fail(ctx, err)
	}
	events, err := s.h.ListEscrowEvents.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	resp := make([]Event, len(events))
	for i, e := range events {
		resp[i] = Event{
			Sequence:    e.Sequence,
			ID:          toOpenAPI(e.ID),
			Type:        e.Type,
			EscrowID:    toOpenAPI(e.EscrowID),
			WorkOrderID: toOpenAPI(e.WorkOrderID),
			Actor:       e.Actor,
			Amount:      e.Amount,
			Attributes:  e.Attributes,
			Timestamp:   e.OccurredAt,
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

// SubmitMilestone handles POST /api/v1/escrows/{escrowId}/milestones/{milestoneId}/submit.
func (s *Server) SubmitMilestone(ctx echo.Context) error {
	actor, escrowID, milestoneID, err := s.milestoneRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body Deliverables
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewSubmitMilestoneCommand(escrowID, milestoneID, actor, body.Deliverables)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.SubmitMilestone.Handle(ctx.Request().Context(), cmd))
}

// ApproveMilestone handles POST /api/v1/escrows/{escrowId}/milestones/{milestoneId}/approve.
func (s *Server) ApproveMilestone(ctx echo.Context) error {
	actor, escrowID, milestoneID, err := s.milestoneRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body MilestoneApproval
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	var tip *kernel.Amount
	if body.Tip != nil {
		amount, amountErr := kernel.NewPositiveAmount("tip", *body.Tip)
		if amountErr != nil {
			return badRequest(ctx, amountErr.Error())
		}
		tip = &amount
	}

	cmd, err := commands.NewApproveMilestoneCommand(escrowID, milestoneID, actor, body.Rating, tip)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.ApproveMilestone.Handle(ctx.Request().Context(), cmd))
}

// RequestMilestoneRevision handles POST /api/v1/escrows/{escrowId}/milestones/{milestoneId}/revision.
func (s *Server) RequestMilestoneRevision(ctx echo.Context) error {
	actor, escrowID, milestoneID, err := s.milestoneRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body RevisionRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRequestMilestoneRevisionCommand(escrowID, milestoneID, actor, body.Issues,
		time.Duration(body.AdditionalHours)*time.Hour)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.RequestMilestoneRevision.Handle(ctx.Request().Context(), cmd))
}

// FileDispute handles POST /api/v1/escrows/{escrowId}/disputes.
func (s *Server) FileDispute(ctx echo.Context) error {
	actor, escrowID, err := s.escrowRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body NewDispute
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	disputeID, err := optionalUUID(body.DisputeID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	proposal, err := body.Proposal.toDomain()
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewFileDisputeCommand(disputeID, escrowID, actor, body.Reason, body.Evidence, proposal)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.FileDispute.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, DisputeCreated{DisputeID: toOpenAPI(disputeID)})
}

// GetDispute handles GET /api/v1/disputes/{disputeId}.
func (s *Server) GetDispute(ctx echo.Context) error {
	viewer, id, err := s.disputeRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetDisputeQuery(id, viewer)
	if err != nil {
		return s.fail(ctx, err)
	}
	d, err := s.h.GetDispute.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, Dispute{
		ID:          toOpenAPI(d.ID),
		EscrowID:    toOpenAPI(d.EscrowID),
		WorkOrderID: toOpenAPI(d.WorkOrderID),
		FiledBy:     d.FiledBy,
		Reason:      d.Reason,
		Evidence:    d.Evidence,
		Proposal:    allocationFromView(d.Proposal),
		Responder:   d.Responder,
		Statement:   d.Statement,
		Counter:     optionalAllocation(d.Counter),
		RespondedAt: d.RespondedAt,
		Resolution:  optionalAllocation(d.Resolution),
		ResolvedBy:  d.ResolvedBy,
		Mode:        d.Mode,
		Status:      d.Status,
		FiledAt:     d.FiledAt,
		ResolvedAt:  d.ResolvedAt,
	})
}

// RespondToDispute handles POST /api/v1/disputes/{disputeId}/respond.
func (s *Server) RespondToDispute(ctx echo.Context) error {
	actor, id, err := s.disputeRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body DisputeResponse
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	var counter *dispute.Allocation
	if body.Counter != nil {
		c, convErr := body.Counter.toDomain()
		if convErr != nil {
			return badRequest(ctx, convErr.Error())
		}
		counter = &c
	}

	cmd, err := commands.NewRespondToDisputeCommand(id, actor, body.Statement, counter)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.RespondToDispute.Handle(ctx.Request().Context(), cmd))
}

// ResolveDispute handles POST /api/v1/disputes/{disputeId}/resolve.
func (s *Server) ResolveDispute(ctx echo.Context) error {
	actor, id, err := s.disputeRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body Allocation
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	allocation, err := body.toDomain()
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewResolveDisputeCommand(id, actor, allocation)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.ResolveDispute.Handle(ctx.Request().Context(), cmd))
}

// AcceptDisputeProposal handles POST /api/v1/disputes/{disputeId}/accept.
func (s *Server) AcceptDisputeProposal(ctx echo.Context) error {
	actor, id, err := s.disputeRequest(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewAcceptDisputeProposalCommand(id, actor)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.ResolveDispute.HandleAccept(ctx.Request().Context(), cmd))
}

// RecordAttestation handles POST /api/v1/oracle/attestations.
func (s *Server) RecordAttestation(ctx echo.Context) error {
	attester, err := caller(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body Attestation
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRecordAttestationCommand(attester, body.ConditionID, body.Met, body.ProofRef)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.done(ctx, s.h.RecordAttestation.Handle(ctx.Request().Context(), cmd))
}

// Deposit handles POST /api/v1/ledger/deposits.
func (s *Server) Deposit(ctx echo.Context) error {
	operator, err := caller(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var body Deposit
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	account, err := kernel.NewActor(body.Account)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	asset, err := kernel.NewAssetKind(body.Asset)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	amount, err := kernel.NewPositiveAmount("amount", body.Amount)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewDepositCommand(operator, account, asset, amount, body.Key)
	if err != nil {
		return s.fail(ctx, err)
	}
	receipt, err := s.h.Deposit.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, Receipt{
		ID:         toOpenAPI(receipt.ID),
		Key:        receipt.Key,
		ExecutedAt: receipt.ExecutedAt,
	})
}

func (s *Server) done(ctx echo.Context, err error) error {
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) workOrderRequest(ctx echo.Context) (kernel.Actor, kernel.UUID, error) {
	return s.request(ctx, "workOrderId")
}

func (s *Server) escrowRequest(ctx echo.Context) (kernel.Actor, kernel.UUID, error) {
	return s.request(ctx, "escrowId")
}

func (s *Server) disputeRequest(ctx echo.Context) (kernel.Actor, kernel.UUID, error) {
	return s.request(ctx, "disputeId")
}

func (s *Server) milestoneRequest(ctx echo.Context) (kernel.Actor, kernel.UUID, kernel.UUID, error) {
	actor, escrowID, err := s.request(ctx, "escrowId")
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, kernel.UUID{}, err
	}
	milestoneID, err := pathUUID(ctx, "milestoneId")
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, kernel.UUID{}, err
	}
	return actor, escrowID, milestoneID, nil
}

func (s *Server) request(ctx echo.Context, param string) (kernel.Actor, kernel.UUID, error) {
	actor, err := caller(ctx)
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, err
	}
	id, err := pathUUID(ctx, param)
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, err
	}
	return actor, id, nil
}

func (a Allocation) toDomain() (dispute.Allocation, error) {
	toRequester, err := kernel.NewAmount(a.ToRequester)
	if err != nil {
		return dispute.Allocation{}, err
	}
	toFulfiller, err := kernel.NewAmount(a.ToFulfiller)
	if err != nil {
		return dispute.Allocation{}, err
	}
	toArbitrator, err := kernel.NewAmount(a.ToArbitrator)
	if err != nil {
		return dispute.Allocation{}, err
	}
	return dispute.NewAllocation(toRequester, toFulfiller, toArbitrator), nil
}

func allocationFromView(v queries.AllocationView) Allocation {
	return Allocation{ToRequester: v.ToRequester, ToFulfiller: v.ToFulfiller, ToArbitrator: v.ToArbitrator}
}

func optionalAllocation(v *queries.AllocationView) *Allocation {
	if v == nil {
		return nil
	}
	a := allocationFromView(*v)
	return &a
}
