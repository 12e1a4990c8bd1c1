package escrow

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
)

const (
	milestoneEntity      = "milestone"
	maxDescriptionLength = 500
	maxIssuesLength      = 2000
	minRating            = 1
	maxRating            = 5
)

// MilestoneSpec describes a milestone requested at escrow creation.
type MilestoneSpec struct {
	Description string
	Amount      kernel.Amount
	Deadline    time.Time
}

// Milestone is a partial, independently approvable unit of work and payment.
// It is owned by its Escrow and only changes through Escrow methods.
type Milestone struct {
	id           kernel.UUID
	position     int
	description  string
	amount       kernel.Amount
	deadline     time.Time
	deliverables []string
	status       MilestoneStatus
	revisions    int
	lastIssues   string
	rating       *int
	releasedAt   *time.Time
}

// MilestoneSnapshot carries persisted milestone state into RestoreMilestone.
type MilestoneSnapshot struct {
	ID           kernel.UUID
	Position     int
	Description  string
	Amount       kernel.Amount
	Deadline     time.Time
	Deliverables []string
	Status       MilestoneStatus
	Revisions    int
	LastIssues   string
	Rating       *int
	ReleasedAt   *time.Time
}

func newMilestone(position int, spec MilestoneSpec) (*Milestone, error) {
	description := strings.TrimSpace(spec.Description)
	var descErr error
	switch {
	case description == "":
		descErr = errs.NewValueIsRequiredError(fmt.Sprintf("milestones[%d].description", position))
	case len(description) > maxDescriptionLength:
		descErr = errs.NewValueIsOutOfRangeError(fmt.Sprintf("milestones[%d].description length", position),
			len(description), 1, maxDescriptionLength)
	}
	var amountErr error
	if spec.Amount.IsZero() {
		amountErr = errs.NewValueIsOutOfRangeError(fmt.Sprintf("milestones[%d].amount", position), 0, 1, int64(math.MaxInt64))
	}
	if err := errors.Join(descErr, amountErr); err != nil {
		return nil, err
	}

	return &Milestone{
		id:          kernel.NewUUID(),
		position:    position,
		description: description,
		amount:      spec.Amount,
		deadline:    spec.Deadline.UTC(),
		status:      MilestonePending,
	}, nil
}

// RestoreMilestone rebuilds a milestone from persistence.
func RestoreMilestone(s MilestoneSnapshot) (*Milestone, error) {
	if err := errors.Join(s.ID.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}
	return &Milestone{
		id:           s.ID,
		position:     s.Position,
		description:  s.Description,
		amount:       s.Amount,
		deadline:     s.Deadline,
		deliverables: append([]string(nil), s.Deliverables...),
		status:       s.Status,
		revisions:    s.Revisions,
		lastIssues:   s.LastIssues,
		rating:       s.Rating,
		releasedAt:   s.ReleasedAt,
	}, nil
}

func (m *Milestone) ID() kernel.UUID { return m.id }
func (m *Milestone) Position() int { return m.position }
func (m *Milestone) Description() string { return m.description }
func (m *Milestone) Amount() kernel.Amount { return m.amount }
func (m *Milestone) Deadline() time.Time { return m.deadline }
func (m *Milestone) Status() MilestoneStatus { return m.status }
func (m *Milestone) Revisions() int { return m.revisions }
func (m *Milestone) LastIssues() string { return m.lastIssues }
func (m *Milestone) Rating() *int { return m.rating }
func (m *Milestone) ReleasedAt() *time.Time { return m.releasedAt }

// Deliverables returns a copy of the latest submitted deliverables.
func (m *Milestone) Deliverables() []string {
	return append([]string(nil), m.deliverables...)
}

// IsReleased reports whether the milestone amount has been paid out.
func (m *Milestone) IsReleased() bool {
	return m.status == MilestoneReleased
}

func (m *Milestone) submit(deliverables []string) error {
	if m.status == MilestoneReleased {
		return errs.NewAlreadyReleasedError("milestone", m.id.String())
	}
	if m.status != MilestonePending {
		return errs.NewInvalidStatusError(milestoneEntity, m.status, "submit")
	}
	if len(deliverables) == 0 {
		return errs.NewValueIsRequiredError("deliverables")
	}
	cleaned := make([]string, 0, len(deliverables))
	for _, d := range deliverables {
		if d = strings.TrimSpace(d); d != "" {
			cleaned = append(cleaned, d)
		}
	}
	if len(cleaned) == 0 {
		return errs.NewValueIsRequiredError("deliverables")
	}
	m.deliverables = cleaned
	m.status = MilestoneSubmitted
	return nil
}

func (m *Milestone) approve(rating *int) error {
	if m.status == MilestoneReleased {
		return errs.NewAlreadyReleasedError("milestone", m.id.String())
	}
	if m.status != MilestoneSubmitted {
		return errs.NewInvalidStatusError(milestoneEntity, m.status, "approve")
	}
	if rating != nil && (*rating < minRating || *rating > maxRating) {
		return errs.NewValueIsOutOfRangeError("rating", *rating, minRating, maxRating)
	}
	if rating != nil {
		r := *rating
		m.rating = &r
	}
	m.status = MilestoneApproved
	return nil
}

func (m *Milestone) requestRevision(issues string, additional time.Duration, expiresAt time.Time) error {
	if m.status == MilestoneReleased {
		return errs.NewAlreadyReleasedError("milestone", m.id.String())
	}
	if m.status != MilestoneSubmitted {
		return errs.NewInvalidStatusError(milestoneEntity, m.status, "request revision")
	}
	issues = strings.TrimSpace(issues)
	if issues == "" {
		return errs.NewValueIsRequiredError("issues")
	}
	if len(issues) > maxIssuesLength {
		return errs.NewValueIsOutOfRangeError("issues length", len(issues), 1, maxIssuesLength)
	}
	if additional < 0 {
		return errs.NewValueIsInvalidErrorWithCause("additionalTime", fmt.Errorf("%s is negative", additional))
	}
	deadline := m.deadline.Add(additional)
	if deadline.After(expiresAt) {
		return errs.NewValueIsInvalidErrorWithCause("additionalTime",
			fmt.Errorf("extended deadline %s is past escrow expiry %s",
				deadline.Format(time.RFC3339), expiresAt.Format(time.RFC3339)))
	}

	m.deadline = deadline
	m.lastIssues = issues
	m.revisions++
	m.status = MilestonePending
	return nil
}

func (m *Milestone) markReleased(now time.Time) error {
	if m.status == MilestoneReleased {
		return errs.NewAlreadyReleasedError("milestone", m.id.String())
	}
	if m.status != MilestoneApproved {
		return errs.NewInvalidStatusError(milestoneEntity, m.status, "release")
	}
	at := now.UTC()
	m.releasedAt = &at
	m.status = MilestoneReleased
	return nil
}

func (m *Milestone) markDisputed() {
	if m.status != MilestoneReleased {
		m.status = MilestoneDisputed
	}
}
