package errs_test

import (
	"errors"
	"testing"

	"escrow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueErrors_Messages(t *testing.T) {
	dbDown := errors.New("connection reset")

	testCases := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "escrow not found",
			err:      errs.NewObjectNotFoundError("escrowId", "e-1"),
			sentinel: errs.ErrObjectNotFound,
			message:  "object not found: e-1",
		},
		{
			name:     "dispute lookup failed",
			err:      errs.NewObjectNotFoundErrorWithCause("disputeId", "d-7", dbDown),
			sentinel: errs.ErrObjectNotFound,
			message:  "object not found: param is: disputeId, ID is: d-7 (cause: connection reset)",
		},
		{
			name:     "blank dispute reason",
			err:      errs.NewValueIsInvalidError("reason"),
			sentinel: errs.ErrValueIsInvalid,
			message:  "value is invalid: reason",
		},
		{
			name:     "unparsable asset",
			err:      errs.NewValueIsInvalidErrorWithCause("asset", dbDown),
			sentinel: errs.ErrValueIsInvalid,
			message:  "value is invalid: asset (cause: connection reset)",
		},
		{
			name:     "fee above cap",
			err:      errs.NewValueIsOutOfRangeError("bps", 900, 0, 500),
			sentinel: errs.ErrValueIsOutOfRange,
			message:  "value is invalid: 900 is bps, min value is 0, max value is 500",
		},
		{
			name:     "missing recipient",
			err:      errs.NewValueIsRequiredError("recipient"),
			sentinel: errs.ErrValueIsRequired,
			message:  "value is required: recipient",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.err, tc.sentinel)
			assert.Equal(t, tc.message, tc.err.Error())
		})
	}
}

func TestValueErrors_KeepCause(t *testing.T) {
	cause := errors.New("rating must be 1..5")

	outOfRange := errs.NewValueIsOutOfRangeErrorWithCause("rating", 9, 1, 5, cause)
	assert.Equal(t, 9, outOfRange.Value)
	assert.Equal(t, 1, outOfRange.Min)
	assert.Equal(t, 5, outOfRange.Max)
	assert.Same(t, cause, outOfRange.Cause)
	assert.Contains(t, outOfRange.Error(), "(cause: rating must be 1..5)")

	required := errs.NewValueIsRequiredErrorWithCause("deliverables", cause)
	assert.Equal(t, "deliverables", required.ParamName)
	assert.Same(t, cause, required.Cause)
}

func TestObjectNotFound_IsNotAnInvalidParameter(t *testing.T) {
	err := errs.NewObjectNotFoundError("workOrderId", "w-1")

	assert.NotErrorIs(t, err, errs.ErrInvalidParameters)
}

func TestValueIsOutOfRange_StaysOnOneLine(t *testing.T) {
	err := errs.NewValueIsOutOfRangeError("description", "logo\r\nredesign", 1, 200)

	assert.NotContains(t, err.Error(), "\n")
	assert.NotContains(t, err.Error(), "\r")
	assert.Contains(t, err.Error(), "logo redesign")
}
