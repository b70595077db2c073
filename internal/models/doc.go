// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - User: a person who pays for or shares expenses. Owned by the user
//     store; the ledger only ever references users by ID.
//   - Expense: an incoming expense with its split policy. Never persisted;
//     it only drives balance updates.
//   - PairwiseBalance: the single net debt between two users.
//   - Group: a named list of members, used for group balance views.
//
// # Design Principles
//
//  1. **IDs, not pointers**: relationships are canonical user ID strings.
//  2. **Exact money**: amounts are decimal.Decimal so netting compares exactly.
//  3. **One direction per pair**: at most one PairwiseBalance exists for any
//     two users, and its amount is always strictly positive.
package models
