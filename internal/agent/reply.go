package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"textflix/internal/conversation"
	"textflix/internal/engine"
	"textflix/internal/services/llm"
)

// replyPrompt is the system prompt for turning a structured outcome into a
// short SMS reply.
const replyPrompt = `You write the SMS reply for a movie-request assistant.

You receive the conversation transcript and a JSON outcome describing what the assistant did this turn. Write one short, friendly reply (under 160 characters, no emoji) that tells the user what happened.

Outcome reasons:
- "status_resolved": the movie was found. If the library status says it is downloaded, say it is ready to watch; if it is downloading or was just requested, say it is on the way.
- "no_catalog_match": no movie by that name could be found; ask the user to check the title.
- "no_movie_identified": the message contained no movie request; respond conversationally and invite one.
- "could_not_determine", "search_failed", "status_check_failed": something went wrong on our side; apologize and ask them to try again. Never claim the movie does not exist when the lookup itself failed.

Respond ONLY with JSON: {"sms_message": "..."}`

// ReplyComposer turns a dispatch outcome into user-facing SMS text.
type ReplyComposer interface {
	Compose(ctx context.Context, conv conversation.Conversation, outcome engine.Outcome) (string, error)
}

// LLMReplyComposer composes replies with the chat-completion collaborator.
type LLMReplyComposer struct {
	client engine.Completer
}

// NewLLMReplyComposer builds a composer over the given completion client.
func NewLLMReplyComposer(client engine.Completer) *LLMReplyComposer {
	return &LLMReplyComposer{client: client}
}

type replyPayload struct {
	SMSMessage string `json:"sms_message"`
}

type outcomeEnvelope struct {
	Reason  string `json:"reason"`
	Title   string `json:"title,omitempty"`
	Year    int    `json:"year,omitempty"`
	Found   *bool  `json:"found,omitempty"`
	Status  string `json:"status,omitempty"`
	HasFile *bool  `json:"has_file,omitempty"`
}

// Compose implements ReplyComposer.
func (c *LLMReplyComposer) Compose(ctx context.Context, conv conversation.Conversation, outcome engine.Outcome) (string, error) {
	envelope := outcomeEnvelope{
		Reason: outcome.Reason,
		Title:  outcome.Identity.Title,
		Year:   outcome.Identity.Year,
	}
	if outcome.Match != nil {
		envelope.Title = outcome.Match.Title
		envelope.Year = outcome.Match.Year
	}
	if outcome.Library != nil {
		envelope.Found = &outcome.Library.Found
		envelope.Status = outcome.Library.Status
		envelope.HasFile = &outcome.Library.HasFile
	}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("compose reply: encode outcome: %w", err)
	}

	userPrompt := "Transcript:\n" + conv.Render() + "\n\nOutcome:\n" + string(encoded)
	raw, err := c.client.CompleteJSON(ctx, replyPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("compose reply: %w", err)
	}
	var payload replyPayload
	if err := llm.DecodeLLMJSON(raw, &payload); err != nil {
		return "", fmt.Errorf("compose reply: decode payload: %w", err)
	}
	message := strings.TrimSpace(payload.SMSMessage)
	if message == "" {
		return "", fmt.Errorf("compose reply: empty sms_message")
	}
	return message, nil
}

// fallbackReply produces a canned reply for an outcome when the composer
// fails. The outcome still reaches the user accurately, just without the
// conversational polish.
func fallbackReply(outcome engine.Outcome) string {
	title := outcome.Identity.Query()
	if outcome.Match != nil {
		title = outcome.Match.Title
		if outcome.Match.Year > 0 {
			title = fmt.Sprintf("%s (%d)", outcome.Match.Title, outcome.Match.Year)
		}
	}
	switch outcome.Reason {
	case engine.ReasonStatusKnown:
		if outcome.Library != nil && outcome.Library.HasFile {
			return fmt.Sprintf("%s is in the library and ready to watch!", title)
		}
		return fmt.Sprintf("%s is on the way. I'll text you when it's ready.", title)
	case engine.ReasonNoMatch:
		return fmt.Sprintf("I couldn't find a movie called %s. Mind double-checking the title?", title)
	case engine.ReasonNoMovie:
		return "Hi! Text me a movie title and I'll track it down for you."
	default:
		return "Sorry, something went wrong on my end. Please try again in a bit."
	}
}
