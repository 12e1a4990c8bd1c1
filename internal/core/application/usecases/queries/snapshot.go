package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// readOnly runs fn inside a read-only transaction so every statement of one
// query observes the same committed state. SQLite serialises all access
// through one writer, so a plain transaction is already a snapshot there.
func readOnly(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db.Dialector.Name() == "postgres" {
		return db.WithContext(ctx).Transaction(fn, &sql.TxOptions{
			Isolation: sql.LevelRepeatableRead,
			ReadOnly:  true,
		})
	}
	return db.WithContext(ctx).Transaction(fn)
}

// participants are the actors allowed to read an escrow and everything hanging off it.
type participants struct {
	requester        string
	recipient        string
	releaseAuthority string
	arbitrator       string
}

func (p participants) allows(viewer kernel.Actor) bool {
	for _, id := range []string{p.requester, p.recipient, p.releaseAuthority, p.arbitrator} {
		if id != "" && id == viewer.String() {
			return true
		}
	}
	return false
}

func loadParticipants(tx *gorm.DB, escrowID uuid.UUID) (participants, error) {
	var p participants
	var arbitrator sql.NullString
	err := tx.Raw(`
		SELECT requester, recipient, release_authority, arbitrator
		FROM escrows
		WHERE id = ?
	`, escrowID).Row().Scan(&p.requester, &p.recipient, &p.releaseAuthority, &arbitrator)
	if errors.Is(err, sql.ErrNoRows) {
		return participants{}, errs.NewObjectNotFoundError("escrowId", escrowID.String())
	}
	if err != nil {
		return participants{}, err
	}
	p.arbitrator = arbitrator.String
	return p, nil
}

// authorize loads the escrow's participants and rejects viewers outside them.
func authorize(tx *gorm.DB, escrowID uuid.UUID, viewer kernel.Actor, action string) error {
	p, err := loadParticipants(tx, escrowID)
	if err != nil {
		return err
	}
	if !p.allows(viewer) {
		return errs.NewUnauthorizedAccessError(viewer.String(), action)
	}
	return nil
}

func toUUID(id uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	at := t.Time.UTC()
	return &at
}

func decodeList(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}
