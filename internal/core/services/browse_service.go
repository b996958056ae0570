package services

import (
	"context"
	"fmt"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
)

// Card is one rendered result: the item, its thumbnail, and for existing
// attachments the record's API URL used as the detach target
type Card struct {
	Item     domain.MediaItem
	ThumbURL string
	APIURL   string
}

// BrowseService drives one ticket's search session: exclusions, paging and cards
type BrowseService struct {
	tracker ports.TrackerBackend
	search  *SearchService
	thumbs  *ThumbnailService

	ticketID string
	existing []domain.AttachedMedia
	query    domain.SearchQuery
	results  ResultSet
}

// NewBrowseService creates a new browse service
func NewBrowseService(tracker ports.TrackerBackend, search *SearchService, thumbs *ThumbnailService) *BrowseService {
	return &BrowseService{
		tracker: tracker,
		search:  search,
		thumbs:  thumbs,
	}
}

// LoadTicket fetches the ticket's attached media once and installs them as exclusions
func (b *BrowseService) LoadTicket(ctx context.Context, ticketID string) ([]domain.AttachedMedia, error) {
	if ticketID == "" {
		return nil, domain.ErrMissingTicket
	}
	existing, err := b.tracker.ListAttached(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attached media: %w", err)
	}
	b.ticketID = ticketID
	b.existing = existing
	b.search.SetExclusions(existing)
	return existing, nil
}

// TicketID returns the loaded ticket
func (b *BrowseService) TicketID() string {
	return b.ticketID
}

// Existing returns the attached media loaded for the ticket
func (b *BrowseService) Existing() []domain.AttachedMedia {
	return b.existing
}

// Search starts a new search, replacing the visible results. A non-empty
// q.Continue resumes from that token instead of the first page.
func (b *BrowseService) Search(ctx context.Context, q domain.SearchQuery) (*ResultSet, error) {
	b.results.Reset()
	page, err := b.search.Fetch(ctx, q)
	if err != nil {
		return &b.results, err
	}
	b.query = q
	b.results.Merge(page, false)
	return &b.results, nil
}

// LoadMore fetches the next page and appends it. The returned page holds only
// the newly appended items.
func (b *BrowseService) LoadMore(ctx context.Context) (*domain.SearchPage, error) {
	if !b.results.CanLoadMore() {
		return &domain.SearchPage{}, nil
	}
	q := b.query
	q.Continue = b.results.Continue
	page, err := b.search.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	b.results.Merge(page, true)
	return page, nil
}

// Results returns the visible result set
func (b *BrowseService) Results() *ResultSet {
	return &b.results
}

// Cards resolves thumbnails for new results; items whose thumbnail cannot be
// derived are skipped
func (b *BrowseService) Cards(ctx context.Context, items []domain.MediaItem) []Card {
	cards := make([]Card, 0, len(items))
	for _, item := range items {
		res := b.thumbs.Resolve(ctx, item)
		if !res.OK() {
			continue
		}
		cards = append(cards, Card{Item: item, ThumbURL: res.URL})
	}
	return cards
}

// ExistingCards resolves thumbnails for attached records
func (b *BrowseService) ExistingCards(ctx context.Context) []Card {
	cards := make([]Card, 0, len(b.existing))
	for _, rec := range b.existing {
		res := b.thumbs.ResolveAttached(ctx, rec)
		if !res.OK() {
			continue
		}
		cards = append(cards, Card{Item: rec.AsMediaItem(), ThumbURL: res.URL, APIURL: rec.APIURL})
	}
	return cards
}
