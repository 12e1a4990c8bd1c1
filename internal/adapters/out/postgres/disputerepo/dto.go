// Package disputerepo persists dispute aggregates with GORM.
package disputerepo

import (
	"time"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AllocationDTO is embedded three times in DisputeDTO under different prefixes.
type AllocationDTO struct {
	ToRequester  int64
	ToFulfiller  int64
	ToArbitrator int64
}

// DisputeDTO is the row layout of the disputes table.
type DisputeDTO struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey"`
	EscrowID      uuid.UUID     `gorm:"type:uuid;not null;index"`
	WorkOrderID   uuid.UUID     `gorm:"type:uuid;not null;index"`
	Requester     string        `gorm:"type:varchar(128);not null"`
	Fulfiller     string        `gorm:"type:varchar(128);not null"`
	Arbitrator    string        `gorm:"type:varchar(128)"`
	FiledBy       string        `gorm:"type:varchar(128);not null"`
	Reason        string        `gorm:"type:text;not null"`
	Evidence      []string      `gorm:"type:text;serializer:json"`
	Proposal      AllocationDTO `gorm:"embedded;embeddedPrefix:proposal_"`
	Responder     string        `gorm:"type:varchar(128)"`
	Statement     string        `gorm:"type:text"`
	HasCounter    bool          `gorm:"not null"`
	Counter       AllocationDTO `gorm:"embedded;embeddedPrefix:counter_"`
	RespondedAt   *time.Time
	HasResolution bool          `gorm:"not null"`
	Resolution    AllocationDTO `gorm:"embedded;embeddedPrefix:resolution_"`
	ResolvedBy    string        `gorm:"type:varchar(128)"`
	Mode          int           `gorm:"not null"`
	Status        int           `gorm:"not null;index"`
	FiledAt       time.Time     `gorm:"not null"`
	ResolvedAt    *time.Time
}

// TableName overrides GORM's default "dispute_dtos".
func (DisputeDTO) TableName() string {
	return "disputes"
}

func allocationFromDomain(a dispute.Allocation) AllocationDTO {
	return AllocationDTO{
		ToRequester:  a.ToRequester().Units(),
		ToFulfiller:  a.ToFulfiller().Units(),
		ToArbitrator: a.ToArbitrator().Units(),
	}
}

func (a AllocationDTO) toDomain() (dispute.Allocation, error) {
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

func fromDomain(d *dispute.Dispute) DisputeDTO {
	parties := d.Parties()
	dto := DisputeDTO{
		ID:          d.ID().Bytes(),
		EscrowID:    d.EscrowID().Bytes(),
		WorkOrderID: d.WorkOrderID().Bytes(),
		Requester:   parties.Requester.String(),
		Fulfiller:   parties.Fulfiller.String(),
		Arbitrator:  parties.Arbitrator.String(),
		FiledBy:     d.FiledBy().String(),
		Reason:      d.Reason(),
		Evidence:    d.Evidence(),
		Proposal:    allocationFromDomain(d.Proposal()),
		ResolvedBy:  d.ResolvedBy().String(),
		Mode:        int(d.Mode()),
		Status:      int(d.Status()),
		FiledAt:     d.FiledAt(),
		ResolvedAt:  d.ResolvedAt(),
	}

	if r := d.Response(); r != nil {
		respondedAt := r.RespondedAt
		dto.Responder = r.Responder.String()
		dto.Statement = r.Statement
		dto.RespondedAt = &respondedAt
		if r.Counter != nil {
			dto.HasCounter = true
			dto.Counter = allocationFromDomain(*r.Counter)
		}
	}
	if res := d.Resolution(); res != nil {
		dto.HasResolution = true
		dto.Resolution = allocationFromDomain(*res)
	}
	return dto
}

func toDomain(dto DisputeDTO) (*dispute.Dispute, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	escrowID, err := kernel.UUIDFromBytes(dto.EscrowID[:])
	if err != nil {
		return nil, err
	}
	workOrderID, err := kernel.UUIDFromBytes(dto.WorkOrderID[:])
	if err != nil {
		return nil, err
	}
	requester, err := kernel.NewActor(dto.Requester)
	if err != nil {
		return nil, err
	}
	fulfiller, err := kernel.NewActor(dto.Fulfiller)
	if err != nil {
		return nil, err
	}
	arbitrator, err := optionalActor(dto.Arbitrator)
	if err != nil {
		return nil, err
	}
	filedBy, err := kernel.NewActor(dto.FiledBy)
	if err != nil {
		return nil, err
	}
	resolvedBy, err := optionalActor(dto.ResolvedBy)
	if err != nil {
		return nil, err
	}
	proposal, err := dto.Proposal.toDomain()
	if err != nil {
		return nil, err
	}

	var response *dispute.Response
	if dto.RespondedAt != nil {
		responder, rErr := kernel.NewActor(dto.Responder)
		if rErr != nil {
			return nil, rErr
		}
		response = &dispute.Response{
			Responder:   responder,
			Statement:   dto.Statement,
			RespondedAt: dto.RespondedAt.UTC(),
		}
		if dto.HasCounter {
			counter, cErr := dto.Counter.toDomain()
			if cErr != nil {
				return nil, cErr
			}
			response.Counter = &counter
		}
	}

	var resolution *dispute.Allocation
	if dto.HasResolution {
		res, resErr := dto.Resolution.toDomain()
		if resErr != nil {
			return nil, resErr
		}
		resolution = &res
	}

	var resolvedAt *time.Time
	if dto.ResolvedAt != nil {
		at := dto.ResolvedAt.UTC()
		resolvedAt = &at
	}

	return dispute.RestoreDispute(dispute.Snapshot{
		ID:          id,
		EscrowID:    escrowID,
		WorkOrderID: workOrderID,
		Parties: dispute.Parties{
			Requester:  requester,
			Fulfiller:  fulfiller,
			Arbitrator: arbitrator,
		},
		FiledBy:    filedBy,
		Reason:     dto.Reason,
		Evidence:   dto.Evidence,
		Proposal:   proposal,
		Response:   response,
		Resolution: resolution,
		ResolvedBy: resolvedBy,
		Mode:       dispute.Mode(dto.Mode),
		Status:     dispute.Status(dto.Status),
		FiledAt:    dto.FiledAt.UTC(),
		ResolvedAt: resolvedAt,
	})
}

func optionalActor(id string) (kernel.Actor, error) {
	if id == "" {
		return kernel.Actor{}, nil
	}
	return kernel.NewActor(id)
}
