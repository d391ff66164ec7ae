// Package credits implements the prepaid credit ledger that gates access to
// billed image generation.
//
// Every account is keyed by the verified user email and holds an integer
// credit balance plus optional subscription state. All balance mutation goes
// through Service; nothing else writes account or transaction rows.
//
// The error policy is deliberately asymmetric and must stay that way:
//
//   - Advisory reads (GetCreditBalance, HasEnoughCredits,
//     CanAccessTierFeature) never fail. They degrade to a safe default and
//     log, because a billing-check outage must never block the paid product
//     action.
//   - Money-affecting mutations (UseCredits, AddCredits) always surface
//     errors.
//   - A failure appending a transaction log row after a successful balance
//     write is logged and swallowed; the balance write defines correctness.
//
// Debits use an atomic conditional decrement at the storage layer, so two
// concurrent debits cannot both succeed against the same balance.
package credits
