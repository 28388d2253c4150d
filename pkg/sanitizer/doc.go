// Package sanitizer normalizes free-text booking input before validation
// and storage.
//
// Every function is idempotent and never fails: unusable input comes back
// as an empty string and is left for the validator to reject.
package sanitizer
