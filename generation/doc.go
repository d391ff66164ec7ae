// Package generation orchestrates the billed image-generation action around
// the credit ledger.
//
// The ordering is the revenue-safety contract of the whole app:
//
//  1. authorize via the access gate (balance + tier);
//  2. call the external image API — it is slow and externally billed;
//  3. only after confirmed success, debit the ledger.
//
// A generation failure after authorization never charges the user. A debit
// failure after a successful generation still returns the image: the user got
// what the external provider already billed us for, and withholding it would
// not recover the credit. The anomaly is logged for operator follow-up.
package generation
