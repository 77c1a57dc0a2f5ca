// Package password hashes and verifies passwords with Argon2id in a
// PHC-encoded string format.
//
// Parameters come from env-tunable Config (see FromEnv); Validate applies the
// length and weakness policy before any hashing happens. Verify treats stored
// hash strings as untrusted input: strict parsing, and parameters far above
// the configured ceiling are refused.
package password
