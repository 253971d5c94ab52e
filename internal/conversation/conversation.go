package conversation

import (
	"fmt"
	"strings"
)

// Role identifies the author of an utterance.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// Utterance is a single message in a transcript.
type Utterance struct {
	Role Role
	Text string
}

// Conversation is an ordered transcript, oldest utterance first. It is treated
// as immutable once constructed.
type Conversation struct {
	utterances []Utterance
}

// New builds a conversation from utterances in oldest-first order.
func New(utterances ...Utterance) Conversation {
	cp := make([]Utterance, len(utterances))
	copy(cp, utterances)
	return Conversation{utterances: cp}
}

// Len returns the number of utterances.
func (c Conversation) Len() int {
	return len(c.utterances)
}

// At returns the utterance at index, oldest first.
func (c Conversation) At(index int) (Utterance, bool) {
	if index < 0 || index >= len(c.utterances) {
		return Utterance{}, false
	}
	return c.utterances[index], true
}

// Append returns a new conversation with the utterance added at the end. The
// receiver is unchanged.
func (c Conversation) Append(u Utterance) Conversation {
	next := make([]Utterance, 0, len(c.utterances)+1)
	next = append(next, c.utterances...)
	next = append(next, u)
	return Conversation{utterances: next}
}

// Tail returns a conversation holding at most the last n utterances. Indexes
// are renumbered from zero; callers that need original positions must keep the
// full conversation.
func (c Conversation) Tail(n int) Conversation {
	if n <= 0 || n >= len(c.utterances) {
		return c
	}
	return New(c.utterances[len(c.utterances)-n:]...)
}

// LatestUserText returns the text of the most recent user utterance.
func (c Conversation) LatestUserText() (string, bool) {
	for i := len(c.utterances) - 1; i >= 0; i-- {
		if c.utterances[i].Role == RoleUser {
			return c.utterances[i].Text, true
		}
	}
	return "", false
}

// HasUserUtterance reports whether any utterance is user-authored.
func (c Conversation) HasUserUtterance() bool {
	_, ok := c.LatestUserText()
	return ok
}

// Render formats the transcript in the USER:/SYSTEM: wire form consumed by
// the extraction prompt, oldest first.
func (c Conversation) Render() string {
	var builder strings.Builder
	for i, u := range c.utterances {
		if i > 0 {
			builder.WriteByte('\n')
		}
		switch u.Role {
		case RoleUser:
			builder.WriteString("USER: ")
		default:
			builder.WriteString("SYSTEM: ")
		}
		builder.WriteString(u.Text)
	}
	return builder.String()
}

// ParseTranscript builds a conversation from USER:/SYSTEM:-prefixed lines,
// oldest first. Lines without a recognized prefix are rejected so malformed
// stored history surfaces instead of silently shifting roles.
func ParseTranscript(lines []string) (Conversation, error) {
	utterances := make([]Utterance, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "USER:"):
			utterances = append(utterances, Utterance{
				Role: RoleUser,
				Text: strings.TrimSpace(strings.TrimPrefix(trimmed, "USER:")),
			})
		case strings.HasPrefix(trimmed, "SYSTEM:"):
			utterances = append(utterances, Utterance{
				Role: RoleSystem,
				Text: strings.TrimSpace(strings.TrimPrefix(trimmed, "SYSTEM:")),
			})
		default:
			return Conversation{}, fmt.Errorf("transcript line %d: missing USER: or SYSTEM: prefix", i)
		}
	}
	return Conversation{utterances: utterances}, nil
}
