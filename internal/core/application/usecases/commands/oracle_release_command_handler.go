package commands

import (
	"context"
	"fmt"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/errs"
)

// OracleReleaseCommandHandler releases an escrow on an oracle attestation.
//
// The oracle is consulted between two transactions: the first reads the
// escrow's condition id, the second locks the escrow, re-checks the condition
// and releases. No row lock is held while the oracle answers.
type OracleReleaseCommandHandler struct {
	uowFactory UoWFactory
	executor   *ReleaseExecutor
	oracle     ports.Oracle
	clock      ports.Clock
}

// NewOracleReleaseCommandHandler creates a handler that releases the remainder once
// the escrow's condition is attested as met.
func NewOracleReleaseCommandHandler(
	uowFactory UoWFactory,
	executor *ReleaseExecutor,
	oracle ports.Oracle,
	clock ports.Clock,
) OracleReleaseCommandHandler {
	return OracleReleaseCommandHandler{
		uowFactory: uowFactory,
		executor:   executor,
		oracle:     oracle,
		clock:      clock,
	}
}

// Handle verifies the condition outside the transaction, then locks the escrow,
// approves the delivery by condition and pays the remainder. The condition must
// be unchanged between verification and release.
func (h *OracleReleaseCommandHandler) Handle(ctx context.Context, cmd OracleReleaseCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	conditionID, err := h.conditionOf(ctx, cmd)
	if err != nil {
		return err
	}
	attestation, err := h.oracle.Verify(ctx, conditionID)
	if err != nil {
		return err
	}
	if !attestation.Met {
		return errs.NewInvalidStatusError("escrow condition", conditionState(false), "release before the condition is met")
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	e, wo, err := lockEscrow(ctx, uow, cmd.EscrowID())
	if err != nil {
		return err
	}
	if e.ConditionID() != conditionID {
		return errs.NewValueIsInvalidErrorWithCause("conditionId",
			fmt.Errorf("escrow %s changed its condition while it was verified", e.ID()))
	}
	if err = rejectMilestoneEscrow(e, "release"); err != nil {
		return err
	}
	if e.HasOpenDispute() {
		return errs.NewEscrowDisputedError(e.ID().String(), e.DisputeID().String())
	}

	now := h.clock.Now()
	if wo.Status() == workorder.Submitted {
		if err = wo.ApproveByCondition(now); err != nil {
			return err
		}
		if err = uow.EventOutbox().Append(ctx,
			event.New(event.DeliveryApproved, e.ID(), wo.ID(), cmd.Caller(), now).
				With("conditionId", conditionID).
				With("proofRef", attestation.ProofRef),
		); err != nil {
			return err
		}
	}

	if _, err = h.executor.Execute(ctx, uow, ReleaseRequest{
		Path:      PathOracle,
		Actor:     cmd.Caller(),
		Escrow:    e,
		WorkOrder: wo,
		ProofRef:  attestation.ProofRef,
	}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h *OracleReleaseCommandHandler) conditionOf(ctx context.Context, cmd OracleReleaseCommand) (string, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	e, err := uow.EscrowRepository().GetForUpdate(ctx, cmd.EscrowID())
	if err != nil {
		return "", err
	}
	if e.ConditionID() == "" {
		return "", errs.NewValueIsInvalidErrorWithCause("conditionId",
			fmt.Errorf("escrow %s has no release condition", e.ID()))
	}
	return e.ConditionID(), nil
}

type conditionState bool

func (s conditionState) String() string {
	if s {
		return "met"
	}
	return "not met"
}
