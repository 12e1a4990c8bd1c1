package disputerepo

import (
	"context"
	"errors"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDisputeRepository implements ports.DisputeRepository using GORM.
type GormDisputeRepository struct {
	db *gorm.DB
}

// NewGormDisputeRepository creates a repository bound to db.
func NewGormDisputeRepository(db *gorm.DB) *GormDisputeRepository {
	return &GormDisputeRepository{db: db}
}

// Add saves a newly filed dispute.
func (r *GormDisputeRepository) Add(ctx context.Context, aggregate *dispute.Dispute) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves every column of an existing dispute.
func (r *GormDisputeRepository) Update(ctx context.Context, aggregate *dispute.Dispute) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&DisputeDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("dispute", aggregate.ID().String())
	}
	return nil
}

// Get loads a dispute. Callers mutate a dispute only after locking its
// escrow, so no row lock is taken here.
func (r *GormDisputeRepository) Get(ctx context.Context, id kernel.UUID) (*dispute.Dispute, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DisputeDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("dispute", id.String())
		}
		return nil, err
	}

	d, err := toDomain(dto)
	if err != nil {
		if errors.Is(err, errs.ErrCorruptedState) {
			return nil, err
		}
		return nil, errs.NewInvariantViolationError("dispute", id.String(), err)
	}
	return d, nil
}
