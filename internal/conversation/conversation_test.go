package conversation

import (
	"strings"
	"testing"
)

func TestParseTranscriptRoles(t *testing.T) {
	conv, err := ParseTranscript([]string{
		"USER: can you add breakfast at tiffany?",
		"SYSTEM: Sure, I'll add Devil Wears Prada 2",
		"USER: add devils wears prada 2",
	})
	if err != nil {
		t.Fatalf("ParseTranscript returned error: %v", err)
	}
	if conv.Len() != 3 {
		t.Fatalf("expected 3 utterances, got %d", conv.Len())
	}
	first, _ := conv.At(0)
	if first.Role != RoleUser || first.Text != "can you add breakfast at tiffany?" {
		t.Fatalf("unexpected first utterance: %+v", first)
	}
	second, _ := conv.At(1)
	if second.Role != RoleSystem {
		t.Fatalf("expected system role for second utterance, got %q", second.Role)
	}
}

func TestParseTranscriptRejectsUnprefixedLine(t *testing.T) {
	if _, err := ParseTranscript([]string{"hello there"}); err == nil {
		t.Fatal("expected error for line without role prefix")
	}
}

func TestParseTranscriptSkipsBlankLines(t *testing.T) {
	conv, err := ParseTranscript([]string{"USER: yoo", "", "  "})
	if err != nil {
		t.Fatalf("ParseTranscript returned error: %v", err)
	}
	if conv.Len() != 1 {
		t.Fatalf("expected 1 utterance, got %d", conv.Len())
	}
}

func TestLatestUserText(t *testing.T) {
	conv := New(
		Utterance{Role: RoleUser, Text: "add titane"},
		Utterance{Role: RoleSystem, Text: "Added Titane (2021)"},
	)
	text, ok := conv.LatestUserText()
	if !ok || text != "add titane" {
		t.Fatalf("LatestUserText = %q, %v", text, ok)
	}

	empty := New(Utterance{Role: RoleSystem, Text: "hi"})
	if _, ok := empty.LatestUserText(); ok {
		t.Fatal("expected no user text in system-only conversation")
	}
}

func TestRenderRoundTrip(t *testing.T) {
	conv := New(
		Utterance{Role: RoleUser, Text: "add blade runner 2017"},
		Utterance{Role: RoleSystem, Text: "Did you mean Blade Runner 2049?"},
	)
	rendered := conv.Render()
	lines := strings.Split(rendered, "\n")
	parsed, err := ParseTranscript(lines)
	if err != nil {
		t.Fatalf("ParseTranscript(Render()) returned error: %v", err)
	}
	if parsed.Len() != conv.Len() {
		t.Fatalf("round trip changed length: %d != %d", parsed.Len(), conv.Len())
	}
	for i := 0; i < conv.Len(); i++ {
		want, _ := conv.At(i)
		got, _ := parsed.At(i)
		if want != got {
			t.Fatalf("round trip mismatch at %d: %+v != %+v", i, got, want)
		}
	}
}

func TestTailRenumbers(t *testing.T) {
	conv := New(
		Utterance{Role: RoleUser, Text: "one"},
		Utterance{Role: RoleUser, Text: "two"},
		Utterance{Role: RoleUser, Text: "three"},
	)
	tail := conv.Tail(2)
	if tail.Len() != 2 {
		t.Fatalf("Tail(2) length = %d", tail.Len())
	}
	first, _ := tail.At(0)
	if first.Text != "two" {
		t.Fatalf("Tail(2) first utterance = %q", first.Text)
	}
	if conv.Len() != 3 {
		t.Fatal("Tail mutated receiver")
	}
}

func TestAppendIsImmutable(t *testing.T) {
	base := New(Utterance{Role: RoleUser, Text: "add dune"})
	grown := base.Append(Utterance{Role: RoleSystem, Text: "Added Dune (2021)"})
	if base.Len() != 1 || grown.Len() != 2 {
		t.Fatalf("lengths after append: base=%d grown=%d", base.Len(), grown.Len())
	}
}
