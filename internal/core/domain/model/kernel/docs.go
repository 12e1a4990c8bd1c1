// Package kernel holds the value objects shared by every escrow aggregate.
//
// The package includes:
//   - UUID: identifier for work orders, escrows, milestones, disputes and events
//   - Amount: a non-negative quantity of an asset in minor units, with checked arithmetic
//   - Actor: an already-authenticated caller identity (requester, fulfiller, arbitrator, scheduler)
//   - AssetKind: the normalised symbol of the asset held in custody
//
// All of them are immutable and safe to share between goroutines. Zero values are
// either meaningful (Amount zero) or rejected by Validate (UUID, Actor, AssetKind).
package kernel
