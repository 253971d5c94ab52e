package engine

import "errors"

// ErrExtractionFailed marks a language-capability failure (timeout, malformed
// output). It is distinct from "no movie identified", which is a valid result
// carried by MovieIdentity, so callers never mistake a broken lookup for a
// genuine empty answer.
var ErrExtractionFailed = errors.New("movie extraction failed")

// ErrInvariantViolation marks contradictory evidence from the caller, such as
// a search result with no prior successful identify. It indicates a caller
// bug and is never absorbed into a normal dispatch decision.
var ErrInvariantViolation = errors.New("dispatch evidence invariant violated")
