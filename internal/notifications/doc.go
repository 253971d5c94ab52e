// Package notifications delivers user-facing SMS messages. The service wraps
// the Twilio sender with reply-length enforcement and falls back to a noop
// implementation when Twilio is not configured, so callers never need nil
// checks.
package notifications
