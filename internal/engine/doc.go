// Package engine resolves a running SMS conversation into a single movie
// action. It extracts candidate movie mentions from the transcript, picks one
// canonical identity under a most-recent-user-utterance rule, disambiguates
// that identity against catalog search results, and decides the next dispatch
// step for the current turn.
//
// The engine is stateless between invocations. Its only memory is the list of
// function results the caller passes in, which makes it safe to invoke
// concurrently for independent conversations and safe to re-invoke after a
// crash with the same evidence.
package engine
