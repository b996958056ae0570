package services

import (
	"context"
	"fmt"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
)

// User-visible messages produced while searching
const (
	MsgRemoteError   = "Wikimedia Commons returned the following error"
	MsgNoUploads     = "Specified account does not have any uploads at Wikimedia Commons. Upload some files first!"
	MsgNoMatches     = "Your search does not match any files."
	MsgUnknownSearch = "Unknown error happened while fetching images you uploaded. Please contact the server admin."
)

// SearchService fetches pages of media and filters out what the ticket already has
type SearchService struct {
	media     ports.MediaRepository
	notifier  ports.Notifier
	exclusion domain.ExclusionSet
}

// NewSearchService creates a new search service
func NewSearchService(media ports.MediaRepository, notifier ports.Notifier) *SearchService {
	return &SearchService{
		media:    media,
		notifier: notifier,
	}
}

// SetExclusions replaces the set of media already attached to the ticket
func (s *SearchService) SetExclusions(records []domain.AttachedMedia) {
	s.exclusion = domain.NewExclusionSet(records)
}

// Excluded reports whether an item is hidden because it is already attached
func (s *SearchService) Excluded(item domain.MediaItem) bool {
	return s.exclusion.Contains(item)
}

// Fetch runs one page query and post-processes the result
func (s *SearchService) Fetch(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
	params, err := BuildSearchParams(q)
	if err != nil {
		return nil, err
	}

	list, err := s.media.ListImages(ctx, params)
	if err != nil {
		s.notify(ports.LevelDanger, MsgUnknownSearch)
		return nil, fmt.Errorf("failed to fetch images: %w", err)
	}

	if list.APIError != nil {
		s.notify(ports.LevelDanger, fmt.Sprintf("%s: %s", MsgRemoteError, list.APIError.Info))
		return &domain.SearchPage{Items: []domain.MediaItem{}}, nil
	}

	if len(list.Items) == 0 {
		if q.Mode == domain.ModeByUploader {
			s.notify(ports.LevelInfo, MsgNoUploads)
		} else {
			s.notify(ports.LevelInfo, MsgNoMatches)
		}
	}

	items := FilterByCategory(list.Items, q.Category)
	items = s.dropAttached(items)

	return &domain.SearchPage{
		Items:    items,
		Continue: list.Continue,
	}, nil
}

// FilterByCategory keeps items tagged with category; an empty category keeps everything
func FilterByCategory(items []domain.MediaItem, category string) []domain.MediaItem {
	if category == "" {
		return items
	}

	filtered := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		if item.HasCategory(category) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func (s *SearchService) dropAttached(items []domain.MediaItem) []domain.MediaItem {
	kept := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		if s.Excluded(item) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func (s *SearchService) notify(level ports.Level, msg string) {
	if s.notifier != nil {
		s.notifier.Notify(level, msg)
	}
}

// ResultSet is the visible list of new results across pages
type ResultSet struct {
	Items    []domain.MediaItem
	Continue string
}

// Merge applies a page: a fresh search replaces the set, a continued page appends
func (r *ResultSet) Merge(page *domain.SearchPage, continued bool) {
	if page == nil {
		return
	}
	if continued {
		r.Items = append(r.Items, page.Items...)
	} else {
		r.Items = append([]domain.MediaItem{}, page.Items...)
	}
	r.Continue = page.Continue
}

// CanLoadMore reports whether the "load more" control should be shown
func (r *ResultSet) CanLoadMore() bool {
	return r.Continue != ""
}

// Reset clears the set before a new search
func (r *ResultSet) Reset() {
	r.Items = nil
	r.Continue = ""
}
