// Package conversation defines the immutable SMS transcript handed to the
// resolution engine. Utterances are ordered oldest first; recency is always
// derived from the index, never from position conventions upstream callers
// happen to follow.
package conversation
