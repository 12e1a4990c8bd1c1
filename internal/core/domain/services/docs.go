// Package services provides domain services for escrow payouts that do not
// belong to a single aggregate.
//
// The package includes:
//   - FeeCalculator: quotes the transfer fee of a payout per asset policy and
//     rejects payouts whose fee exceeds the configured slippage bound
package services
