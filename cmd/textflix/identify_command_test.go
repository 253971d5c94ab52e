package main

import (
	"testing"

	"textflix/internal/conversation"
)

func TestParseIdentifyArgsDefaultsToUserRole(t *testing.T) {
	conv, err := parseIdentifyArgs([]string{"get me dune", "SYSTEM: Dune is on the way!", "the 2021 one"})
	if err != nil {
		t.Fatalf("parseIdentifyArgs returned error: %v", err)
	}
	if conv.Len() != 3 {
		t.Fatalf("expected 3 utterances, got %d", conv.Len())
	}

	first, _ := conv.At(0)
	if first.Role != conversation.RoleUser || first.Text != "get me dune" {
		t.Fatalf("unexpected first utterance %+v", first)
	}
	second, _ := conv.At(1)
	if second.Role != conversation.RoleSystem {
		t.Fatalf("explicit SYSTEM prefix must keep its role, got %+v", second)
	}
}

func TestParseIdentifyArgsSkipsBlankArgs(t *testing.T) {
	conv, err := parseIdentifyArgs([]string{"  ", "yoo"})
	if err != nil {
		t.Fatalf("parseIdentifyArgs returned error: %v", err)
	}
	if conv.Len() != 1 {
		t.Fatalf("expected 1 utterance, got %d", conv.Len())
	}
}
