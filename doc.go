// Package solcgt computes capital-gains-tax outcomes for a sequence of
// Solana wallet events.
//
// The package maintains per-wallet, per-mint acquisition lots and matches
// disposals against them under a configurable cost-basis method (FIFO, LIFO,
// HIFO or Specific-ID). Transfers between wallets the user controls are
// reconciled into non-taxable lot moves, and transfers to or from wallets
// outside the tracked set are parked in an external bucket so their cost
// basis survives a round trip.
//
// The entry points are DetectSelfTransfers, which pairs up self-transfers
// ahead of the accounting pass, and Engine.Process, which performs one
// chronological pass over the events and produces acquisitions, disposals,
// lot moves and warnings. All monetary values are expressed in AUD.
package solcgt
