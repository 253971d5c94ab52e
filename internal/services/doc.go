// Package services defines shared utilities consumed by the agent loop and
// the external integrations (LLM, TMDB, Radarr, Twilio).
//
// Key responsibilities:
//   - Context helpers that stamp conversation identifiers and message SIDs
//     for logging and tracing across a turn.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (configuration vs transient vs not-found) uniform
//     across integrations.
//
// Use these helpers when wiring new integrations so operational behaviour
// stays consistent.
package services
