// Package convstore persists SMS conversation transcripts in Redis, one list
// per phone number. Each entry is a USER: or SYSTEM: prefixed line; the list
// is trimmed to a history limit and expires after a TTL so stale topics do
// not re-trigger action weeks later.
package convstore
