// Package preflight validates the daemon's external dependencies before it
// starts serving webhooks. Each check returns a Result rather than an error
// so callers can report every failure at once instead of stopping at the
// first one.
package preflight
