package commands

import (
	"errors"

	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

var (
	ErrCreateWorkOrderCommandIsNotConstructed = errors.New(
		"CreateWorkOrderCommand must be created via NewCreateWorkOrderCommand constructor",
	)
)

// CreateWorkOrderCommand represents a requester opening a work order together
// with the escrow that funds it.
//
// Example:
//
//	cmd, err := NewCreateWorkOrderCommand(requester, escrow.Params{
//	    ID:          kernel.NewUUID(),
//	    WorkOrderID: kernel.NewUUID(),
//	    Requester:   requester,
//	    Recipient:   fulfiller,
//	    Asset:       usd,
//	    Total:       hundred,
//	    ExpiresAt:   now.Add(30 * 24 * time.Hour),
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid work order: %w", err)
//	}
//	err = handler.Handle(ctx, cmd)
type CreateWorkOrderCommand struct { //nolint:recvcheck //using for validation
	caller kernel.Actor
	params escrow.Params

	guard guard.ConstructorGuard
}

// NewCreateWorkOrderCommand creates the command. Only the requester named in
// params may create it; amounts, deadlines and milestones are validated by
// the escrow itself when the handler builds it.
func NewCreateWorkOrderCommand(caller kernel.Actor, params escrow.Params) (CreateWorkOrderCommand, error) {
	cmd := CreateWorkOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		caller.Validate(),
		params.ID.Validate(),
		params.WorkOrderID.Validate(),
		params.Requester.Validate(),
	); err != nil {
		return CreateWorkOrderCommand{}, err
	}
	if !params.Requester.IsEqual(caller) {
		return CreateWorkOrderCommand{}, errs.NewUnauthorizedAccessError(caller.String(), "create a work order for another requester")
	}

	cmd.caller = caller
	cmd.params = params
	cmd.params.Milestones = append([]escrow.MilestoneSpec(nil), params.Milestones...)
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateWorkOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateWorkOrderCommandIsNotConstructed)
}

func (c CreateWorkOrderCommand) Caller() kernel.Actor { return c.caller }

// Params returns a copy of the escrow parameters.
func (c CreateWorkOrderCommand) Params() escrow.Params {
	p := c.params
	p.Milestones = append([]escrow.MilestoneSpec(nil), c.params.Milestones...)
	return p
}
