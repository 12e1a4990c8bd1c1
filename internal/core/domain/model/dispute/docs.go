// Package dispute provides the Dispute aggregate and the Allocation value
// object used to split a disputed escrow remainder.
//
// Lifecycle: Open -> Responded -> Resolved. Either party files; the
// counterparty may respond (repeatedly) with a statement and a counter
// proposal; the designated arbitrator, or the parties by mutual agreement,
// resolve it. A resolution must allocate exactly the disputed remainder.
package dispute
