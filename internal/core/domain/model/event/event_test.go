package event_test

import (
	"testing"
	"time"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_BuildersDoNotShareState(t *testing.T) {
	actor, _ := kernel.NewActor("requester")
	amount, err := kernel.NewAmount(40)
	require.NoError(t, err)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	base := event.New(event.MilestoneReleased, kernel.NewUUID(), kernel.NewUUID(), actor, at).
		With("milestoneId", "m-1")
	withAmount := base.WithAmount(amount).With("path", "milestone_approval")

	assert.Nil(t, base.Amount)
	assert.Len(t, base.Attributes, 1)
	assert.Equal(t, int64(40), withAmount.Amount.Units())
	assert.Equal(t, "milestone_approval", withAmount.Attributes["path"])
	assert.Equal(t, "m-1", withAmount.Attributes["milestoneId"])
	assert.Equal(t, time.UTC, base.OccurredAt.Location())
	assert.Equal(t, "milestone.released", base.Type.String())
}
