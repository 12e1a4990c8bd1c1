// Package workorder provides the WorkOrder aggregate: the unit of work agreed
// between a requester and a fulfiller whose status gates escrow release.
//
// The package includes:
//   - WorkOrder: the aggregate root holding parties, delivery record and status
//   - Status: the lifecycle state machine
//   - Delivery: the latest submitted deliverables
//
// Lifecycle:
//
//	Created ──> Open ──> Submitted ──> Approved ──> Completed
//	  │          │        │    ▲
//	  │          │        ▼    │
//	  │          │      InProgress
//	  └──────────┴────────┴──> Cancelled
//
// Completed and Cancelled are terminal. Besides the edges above, a work order
// can be settled to Completed once milestone or authority releases drained the
// escrow, forced to Completed by a dispute resolution, and expired to Cancelled
// by the scheduler.
package workorder
