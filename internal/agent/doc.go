// Package agent drives one conversation turn end to end. It re-invokes the
// engine's dispatch decision, executes each action against the collaborators
// (LLM extraction, TMDB search, Radarr status, SMS delivery), and accumulates
// the function results that serve as the engine's only memory. The loop is
// bounded so a misbehaving collaborator cannot spin a turn forever.
package agent
