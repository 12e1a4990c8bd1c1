package escrowrepo

import (
	"context"
	"errors"
	"time"

	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEscrowRepository implements ports.EscrowRepository using GORM.
type GormEscrowRepository struct {
	db *gorm.DB
}

// NewGormEscrowRepository creates a repository bound to db, usually a transaction.
func NewGormEscrowRepository(db *gorm.DB) *GormEscrowRepository {
	return &GormEscrowRepository{db: db}
}

// Add saves a new escrow together with its milestones.
func (r *GormEscrowRepository) Add(ctx context.Context, aggregate *escrow.Escrow) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves the escrow row and upserts every milestone row.
func (r *GormEscrowRepository) Update(ctx context.Context, aggregate *escrow.Escrow) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if err := aggregate.CheckInvariants(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("escrow", aggregate.ID().String())
	}
	return nil
}

// GetForUpdate loads an escrow with its milestones under a row lock.
// The lock is a no-op on SQLite, where the single writer already serialises
// transactions.
func (r *GormEscrowRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*escrow.Escrow, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto EscrowDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("escrow", id.String())
		}
		return nil, err
	}

	if err = r.db.WithContext(ctx).
		Where("escrow_id = ?", dto.ID).
		Order("position").
		Find(&dto.Milestones).Error; err != nil {
		return nil, err
	}

	e, err := toDomain(dto)
	if err != nil {
		if errors.Is(err, errs.ErrCorruptedState) {
			return nil, err
		}
		return nil, errs.NewInvariantViolationError("escrow", id.String(), err)
	}
	return e, nil
}

// FindDueForAutoRelease lists escrow ids eligible for time-based auto-release.
func (r *GormEscrowRepository) FindDueForAutoRelease(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&EscrowDTO{}).
		Where("status = ? AND auto_release = ? AND approved_at IS NOT NULL AND dispute_id IS NULL AND expires_at <= ?",
			int(escrow.Funded), true, now.UTC()).
		Order("expires_at").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return toKernelIDs(ids)
}

// FindExpired lists funded, undisputed escrow ids whose expiry has passed and
// whose work order can still expire (Created or Open). Escrows with work under
// review are never listed, so they cannot crowd refundable ones out of a batch.
func (r *GormEscrowRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&EscrowDTO{}).
		Joins("JOIN work_orders ON work_orders.id = escrows.work_order_id").
		Where("escrows.status = ? AND escrows.dispute_id IS NULL AND escrows.expires_at <= ? AND work_orders.status IN ?",
			int(escrow.Funded), now.UTC(), []int{int(workorder.Created), int(workorder.Open)}).
		Order("escrows.expires_at").
		Limit(limit).
		Pluck("escrows.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return toKernelIDs(ids)
}

func toKernelIDs(ids []uuid.UUID) ([]kernel.UUID, error) {
	out := make([]kernel.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
