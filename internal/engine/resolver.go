package engine

import (
	"context"

	"textflix/internal/conversation"
)

// ResolveIdentity runs extraction over the conversation and reduces the
// mentions to one canonical identity. Collaborator failures surface as
// ErrExtractionFailed; "no movie identified" is a valid identity, not an
// error.
func ResolveIdentity(ctx context.Context, ext Extractor, conv conversation.Conversation) (MovieIdentity, error) {
	mentions, err := ext.Extract(ctx, conv)
	if err != nil {
		return NoIdentity(), err
	}
	return ResolveMentions(mentions), nil
}

// ResolveMentions applies the recency policy: the mention with the largest
// source utterance index wins, so the user's most recent request overrides
// anything the assistant proposed or the user asked for earlier. Recency is
// re-derived from the indexes rather than trusted from slice order.
func ResolveMentions(mentions []MovieMention) MovieIdentity {
	if len(mentions) == 0 {
		return NoIdentity()
	}

	best := mentions[0]
	for _, m := range mentions[1:] {
		if m.UtteranceIndex > best.UtteranceIndex {
			best = m
		}
	}

	return MovieIdentity{
		Title:      best.Title,
		Year:       best.Year,
		Confidence: mentionConfidence(best),
	}
}

func mentionConfidence(m MovieMention) Confidence {
	switch {
	case m.Inferred:
		return ConfidenceLow
	case m.Year > 0:
		return ConfidenceHigh
	default:
		return ConfidenceMedium
	}
}
