package services

import (
	"context"
	"testing"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports/mocks"
)

func TestProfileService_DefaultTerm(t *testing.T) {
	tracker := mocks.NewMockTrackerBackend()
	tracker.ProfileValue = &domain.TrackerProfile{MediawikiUsername: "Alice"}
	svc := NewProfileService(tracker)
	ctx := context.Background()

	tests := []struct {
		name     string
		mode     domain.SearchMode
		override string
		expected string
	}{
		{"uploader uses profile", domain.ModeByUploader, "", "Alice"},
		{"override wins", domain.ModeByUploader, "Bob", "Bob"},
		{"blank override ignored", domain.ModeByUploader, "  ", "Alice"},
		{"prefix starts empty", domain.ModeByFilenamePrefix, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.DefaultTerm(ctx, tt.mode, tt.override)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestProfileService_Load(t *testing.T) {
	tracker := mocks.NewMockTrackerBackend()
	tracker.ProfileValue = &domain.TrackerProfile{User: "alice", MediawikiUsername: "Alice"}
	tracker.LanguageMap["cs"] = "Czech"
	tracker.Prefs = []domain.TrackerPreferences{{MutedNotifications: "ticket_new"}}

	summary, err := NewProfileService(tracker).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Profile.User != "alice" || len(summary.Preferences) != 1 || summary.Languages["cs"] != "Czech" {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestLanguageName(t *testing.T) {
	langs := map[string]string{"cs": "Czech"}

	if got := LanguageName(langs, "CS"); got != "Czech" {
		t.Errorf("expected Czech, got %q", got)
	}
	if got := LanguageName(langs, "xx"); got != "English" {
		t.Errorf("expected English fallback, got %q", got)
	}
}
