// Package guard holds the in-process protection primitives: request
// deduplication, rate limiting, circuit breaking for the outbound
// notification gateway, and the admin login lockout.
package guard

// Result reports a guard decision.
type Result struct {
	Allowed bool
	Reason  string
	Guard   string
}
