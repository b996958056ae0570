package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
)

// ProfileService loads per-user tracker data
type ProfileService struct {
	tracker ports.TrackerBackend
}

// NewProfileService creates a new profile service
func NewProfileService(tracker ports.TrackerBackend) *ProfileService {
	return &ProfileService{tracker: tracker}
}

// Summary is everything `whoami` shows
type Summary struct {
	Profile     *domain.TrackerProfile
	Preferences []domain.TrackerPreferences
	Languages   map[string]string
}

// Load fetches profile, preferences and the language map
func (s *ProfileService) Load(ctx context.Context) (*Summary, error) {
	profile, err := s.tracker.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	prefs, err := s.tracker.Preferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	langs, err := s.tracker.Languages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load languages: %w", err)
	}
	return &Summary{Profile: profile, Preferences: prefs, Languages: langs}, nil
}

// DefaultTerm returns the initial search term for a mode: the profile's
// Mediawiki username for uploader searches, empty otherwise. override wins
// when set.
func (s *ProfileService) DefaultTerm(ctx context.Context, mode domain.SearchMode, override string) (string, error) {
	if mode != domain.ModeByUploader {
		return "", nil
	}
	if strings.TrimSpace(override) != "" {
		return override, nil
	}
	profile, err := s.tracker.Profile(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load profile: %w", err)
	}
	return profile.MediawikiUsername, nil
}

// LanguageName maps a language code to its display name, falling back to English
func LanguageName(langs map[string]string, code string) string {
	if name, ok := langs[strings.ToLower(code)]; ok && name != "" {
		return name
	}
	return "English"
}
