package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"textflix/internal/conversation"
	"textflix/internal/logging"
	"textflix/internal/services/llm"
)

// Completer is the narrow slice of the LLM client the extractor needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Extractor turns a conversation into candidate movie mentions, most recent
// utterance first. A nil slice with a nil error means no movie was mentioned;
// errors wrap ErrExtractionFailed.
type Extractor interface {
	Extract(ctx context.Context, conv conversation.Conversation) ([]MovieMention, error)
}

// LLMExtractor extracts mentions with a language-capability collaborator.
type LLMExtractor struct {
	client Completer
	logger *slog.Logger
}

// NewLLMExtractor builds an extractor over the given completion client.
func NewLLMExtractor(client Completer, logger *slog.Logger) *LLMExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMExtractor{client: client, logger: logger}
}

// Extract implements Extractor. The model's output is validated against the
// transcript: out-of-range indexes, system-authored sources, and empty titles
// are dropped so the resolver only ever sees user-authored mentions.
func (e *LLMExtractor) Extract(ctx context.Context, conv conversation.Conversation) ([]MovieMention, error) {
	if !conv.HasUserUtterance() {
		return nil, nil
	}

	raw, err := e.client.CompleteJSON(ctx, mentionExtractionPrompt, conv.Render())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	var payload mentionPayload
	if err := llm.DecodeLLMJSON(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode mentions: %v", ErrExtractionFailed, err)
	}

	mentions := make([]MovieMention, 0, len(payload.Mentions))
	for _, m := range payload.Mentions {
		title := strings.TrimSpace(m.Title)
		if title == "" {
			continue
		}
		utterance, ok := conv.At(m.Utterance)
		if !ok {
			e.logger.Warn("dropping mention with out-of-range utterance index",
				logging.String("title", title),
				logging.Int("utterance", m.Utterance))
			continue
		}
		if utterance.Role != conversation.RoleUser {
			e.logger.Warn("dropping mention sourced from system utterance",
				logging.String("title", title),
				logging.Int("utterance", m.Utterance))
			continue
		}
		mentions = append(mentions, MovieMention{
			Title:          title,
			Year:           m.Year,
			UtteranceIndex: m.Utterance,
			Inferred:       m.Inferred,
		})
	}

	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].UtteranceIndex > mentions[j].UtteranceIndex
	})

	e.logger.Debug("extracted movie mentions",
		logging.Int("transcript_len", conv.Len()),
		logging.Int("mentions", len(mentions)))
	if len(mentions) == 0 {
		return nil, nil
	}
	return mentions, nil
}
