package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports/mocks"
)

func newTestBrowse(repo *mocks.MockMediaRepository, tracker *mocks.MockTrackerBackend) *BrowseService {
	return NewBrowseService(
		tracker,
		NewSearchService(repo, mocks.NewMockNotifier()),
		NewThumbnailService(repo, 0, zerolog.Nop()),
	)
}

func TestBrowseService_LoadTicketExcludesAttached(t *testing.T) {
	repo := mocks.NewMockMediaRepository(&domain.ImageList{
		Items: []domain.MediaItem{item("A.jpg"), item("B.jpg")},
	})
	tracker := mocks.NewMockTrackerBackend()
	tracker.AttachedByID["42"] = []domain.AttachedMedia{{CanonicalTitle: "File:A.jpg", APIURL: "u/1/"}}
	b := newTestBrowse(repo, tracker)

	existing, err := b.LoadTicket(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(existing) != 1 || b.TicketID() != "42" {
		t.Fatalf("unexpected state: %v %q", existing, b.TicketID())
	}

	rs, err := b.Search(context.Background(), domain.SearchQuery{Mode: domain.ModeByUploader, Term: "Alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := titles(rs.Items); len(got) != 1 || got[0] != "File:B.jpg" {
		t.Errorf("expected only File:B.jpg, got %v", got)
	}
}

func TestBrowseService_LoadTicketRequiresID(t *testing.T) {
	b := newTestBrowse(mocks.NewMockMediaRepository(), mocks.NewMockTrackerBackend())
	if _, err := b.LoadTicket(context.Background(), ""); !errors.Is(err, domain.ErrMissingTicket) {
		t.Errorf("expected ErrMissingTicket, got %v", err)
	}
}

func TestBrowseService_LoadMore(t *testing.T) {
	repo := mocks.NewMockMediaRepository(
		&domain.ImageList{Items: []domain.MediaItem{item("A.jpg")}, Continue: "tok1"},
		&domain.ImageList{Items: []domain.MediaItem{item("B.jpg")}},
	)
	b := newTestBrowse(repo, mocks.NewMockTrackerBackend())

	if _, err := b.Search(context.Background(), domain.SearchQuery{Mode: domain.ModeByFilenamePrefix, Term: "A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	page, err := b.LoadMore(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "B.jpg" {
		t.Errorf("expected only the new page, got %v", titles(page.Items))
	}
	if len(b.Results().Items) != 2 {
		t.Errorf("expected 2 accumulated results, got %d", len(b.Results().Items))
	}
	if repo.Calls[1].Get("aicontinue") != "tok1" {
		t.Errorf("expected continuation token on second call, got %q", repo.Calls[1].Get("aicontinue"))
	}
	if repo.Calls[1].Get("aiprefix") != "A" {
		t.Error("load more must repeat the original term")
	}

	// no continuation left: no request
	page, err = b.LoadMore(context.Background())
	if err != nil || len(page.Items) != 0 {
		t.Errorf("expected empty page, got %v %v", page, err)
	}
	if len(repo.Calls) != 2 {
		t.Errorf("expected no further request, got %d calls", len(repo.Calls))
	}
}

func TestBrowseService_SearchReplacesResults(t *testing.T) {
	repo := mocks.NewMockMediaRepository(
		&domain.ImageList{Items: []domain.MediaItem{item("A.jpg")}, Continue: "x"},
		&domain.ImageList{Items: []domain.MediaItem{item("C.jpg")}},
	)
	b := newTestBrowse(repo, mocks.NewMockTrackerBackend())

	b.Search(context.Background(), domain.SearchQuery{Mode: domain.ModeByUploader, Term: "Alice"})
	rs, _ := b.Search(context.Background(), domain.SearchQuery{Mode: domain.ModeByUploader, Term: "Bob"})

	if got := titles(rs.Items); len(got) != 1 || got[0] != "File:C.jpg" {
		t.Errorf("expected replaced results, got %v", got)
	}
	if repo.Calls[1].Has("aicontinue") {
		t.Error("a fresh search must not send a continuation token")
	}
}

func TestBrowseService_CardsSkipUnresolvable(t *testing.T) {
	repo := mocks.NewMockMediaRepository()
	b := newTestBrowse(repo, mocks.NewMockTrackerBackend())

	cards := b.Cards(context.Background(), []domain.MediaItem{
		item("A.jpg"),
		{Name: "Missing.jpg", URL: "https://elsewhere.example.org/Missing.jpg"},
	})
	if len(cards) != 1 || cards[0].Item.Name != "A.jpg" {
		t.Errorf("expected one card, got %+v", cards)
	}
}

func TestBrowseService_ExistingCards(t *testing.T) {
	repo := mocks.NewMockMediaRepository()
	tracker := mocks.NewMockTrackerBackend()
	tracker.AttachedByID["7"] = []domain.AttachedMedia{
		{APIURL: "https://tracker.example.org/api/tracker/mediainfo/1/", CanonicalTitle: "File:A.jpg", ThumbURL: "https://t/a.png"},
	}
	b := newTestBrowse(repo, tracker)
	b.LoadTicket(context.Background(), "7")

	cards := b.ExistingCards(context.Background())
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].APIURL != "https://tracker.example.org/api/tracker/mediainfo/1/" {
		t.Errorf("expected detach target on card, got %q", cards[0].APIURL)
	}
	if cards[0].ThumbURL != "https://t/a.png" {
		t.Errorf("unexpected thumb %q", cards[0].ThumbURL)
	}
}
