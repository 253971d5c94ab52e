package main

import (
	"strings"
	"testing"
	"time"

	"textflix/internal/requests"
)

func TestRenderRequestsTable(t *testing.T) {
	items := []requests.Request{
		{
			ID:        1,
			Phone:     "+15555550100",
			Title:     "Titane",
			Year:      2021,
			Status:    requests.StatusDownloading,
			CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:     2,
			Phone:  "+15555550101",
			Title:  "Heat",
			Status: requests.StatusAvailable,
		},
	}

	rendered := renderRequestsTable(items)
	for _, want := range []string{"Titane", "2021", "Downloading", "+15555550100", "Heat", "Available"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("table missing %q:\n%s", want, rendered)
		}
	}
	if strings.Contains(rendered, "downloading") {
		t.Fatalf("status should be title-cased:\n%s", rendered)
	}
}

func TestYearColumnBlankForUnknown(t *testing.T) {
	if got := yearColumn(0); got != "" {
		t.Fatalf("expected blank for unknown year, got %q", got)
	}
	if got := yearColumn(1995); got != "1995" {
		t.Fatalf("expected 1995, got %q", got)
	}
}
