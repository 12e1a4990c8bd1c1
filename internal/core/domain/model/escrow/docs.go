// Package escrow provides the Escrow aggregate: the custodied balance that backs
// a work order, together with its optional milestone ledger.
//
// The aggregate only tracks amounts and statuses. Moving value is the job of
// the release executor, which checks the aggregate first (EnsureReleasable),
// moves funds through the ledger and only then records the outcome
// (RecordRelease, RecordRefund, RecordDisputeSettlement).
//
// Key invariants:
//   - 0 <= released <= total, and released never decreases
//   - released + refunded <= total
//   - milestone amounts sum to the total whenever milestones are used
//   - a milestone reaches Released exactly once
//   - nothing but a dispute settlement moves funds while a dispute is open
package escrow
