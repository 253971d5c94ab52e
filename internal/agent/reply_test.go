package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"textflix/internal/conversation"
	"textflix/internal/engine"
)

type stubCompleter struct {
	response   string
	err        error
	userPrompt string
}

func (s *stubCompleter) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.userPrompt = userPrompt
	return s.response, s.err
}

func TestComposeDecodesReply(t *testing.T) {
	completer := &stubCompleter{response: `{"sms_message": "Dune (2021) is on the way!"}`}
	composer := NewLLMReplyComposer(completer)

	conv := conversation.New(conversation.Utterance{Role: conversation.RoleUser, Text: "get me dune"})
	outcome := engine.Outcome{
		Reason: engine.ReasonStatusKnown,
		Match:  &engine.SearchCandidate{Title: "Dune", Year: 2021, TMDBID: 438631},
		Library: &engine.LibraryStatus{
			Found:  true,
			Status: "downloading",
		},
	}
	reply, err := composer.Compose(context.Background(), conv, outcome)
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if reply != "Dune (2021) is on the way!" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(completer.userPrompt, "USER: get me dune") {
		t.Fatalf("transcript missing from prompt:\n%s", completer.userPrompt)
	}
	if !strings.Contains(completer.userPrompt, `"status":"downloading"`) {
		t.Fatalf("library status missing from prompt:\n%s", completer.userPrompt)
	}
}

func TestComposeToleratesCodeFence(t *testing.T) {
	completer := &stubCompleter{response: "```json\n{\"sms_message\": \"Got it!\"}\n```"}
	composer := NewLLMReplyComposer(completer)

	reply, err := composer.Compose(context.Background(), conversation.Conversation{}, engine.Outcome{Reason: engine.ReasonNoMovie})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if reply != "Got it!" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestComposeRejectsEmptyMessage(t *testing.T) {
	completer := &stubCompleter{response: `{"sms_message": "  "}`}
	composer := NewLLMReplyComposer(completer)

	if _, err := composer.Compose(context.Background(), conversation.Conversation{}, engine.Outcome{Reason: engine.ReasonNoMovie}); err == nil {
		t.Fatal("expected error for blank sms_message")
	}
}

func TestComposePropagatesClientError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("rate limited")}
	composer := NewLLMReplyComposer(completer)

	if _, err := composer.Compose(context.Background(), conversation.Conversation{}, engine.Outcome{Reason: engine.ReasonNoMovie}); err == nil {
		t.Fatal("expected client error to propagate")
	}
}

func TestFallbackReply(t *testing.T) {
	ready := engine.Outcome{
		Reason:  engine.ReasonStatusKnown,
		Match:   &engine.SearchCandidate{Title: "Dune", Year: 2021},
		Library: &engine.LibraryStatus{Found: true, HasFile: true},
	}
	if got := fallbackReply(ready); !strings.Contains(got, "ready to watch") {
		t.Fatalf("unexpected ready reply %q", got)
	}

	pending := engine.Outcome{
		Reason:  engine.ReasonStatusKnown,
		Match:   &engine.SearchCandidate{Title: "Dune", Year: 2021},
		Library: &engine.LibraryStatus{Found: true, Status: "requested"},
	}
	if got := fallbackReply(pending); !strings.Contains(got, "on the way") {
		t.Fatalf("unexpected pending reply %q", got)
	}
	if got := fallbackReply(pending); !strings.Contains(got, "Dune (2021)") {
		t.Fatalf("pending reply missing title %q", got)
	}

	miss := engine.Outcome{
		Reason:   engine.ReasonNoMatch,
		Identity: engine.MovieIdentity{Title: "Zorblax 9", Confidence: engine.ConfidenceMedium},
	}
	if got := fallbackReply(miss); !strings.Contains(got, "Zorblax 9") {
		t.Fatalf("unexpected no-match reply %q", got)
	}

	greeting := engine.Outcome{Reason: engine.ReasonNoMovie}
	if got := fallbackReply(greeting); !strings.Contains(got, "movie title") {
		t.Fatalf("unexpected greeting reply %q", got)
	}

	failure := engine.Outcome{Reason: engine.ReasonSearchError}
	if got := fallbackReply(failure); !strings.Contains(got, "try again") {
		t.Fatalf("unexpected failure reply %q", got)
	}
}
