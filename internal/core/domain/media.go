package domain

import (
	"errors"
	"fmt"
	"strings"
)

// SearchMode selects how the remote media repository is queried
type SearchMode string

const (
	// ModeByUploader lists files uploaded by an account, newest first
	ModeByUploader SearchMode = "user"
	// ModeByFilenamePrefix lists files whose name starts with a prefix
	ModeByFilenamePrefix SearchMode = "filename"
)

// DefaultPageLimit is the number of results requested per page
const DefaultPageLimit = 25

var (
	// ErrUnknownSearchMode means a caller built a query with an unsupported mode
	ErrUnknownSearchMode = errors.New("unknown search mode")

	// ErrEmptySelection is returned when a submit is attempted with nothing checked
	ErrEmptySelection = errors.New("no media selected")

	// ErrMissingTicket is returned when an operation needs a ticket id and none was given
	ErrMissingTicket = errors.New("ticket id is required")
)

// ParseSearchMode maps user input ("user", "uploader", "filename", "prefix") to a mode
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "uploader", "by-uploader":
		return ModeByUploader, nil
	case "filename", "prefix", "by-filename-prefix":
		return ModeByFilenamePrefix, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSearchMode, s)
	}
}

// Label returns the input label shown next to the search term
func (m SearchMode) Label() string {
	switch m {
	case ModeByUploader:
		return "Mediawiki username"
	case ModeByFilenamePrefix:
		return "Filename prefix"
	default:
		return string(m)
	}
}

// SearchQuery is one page request against the media repository.
// A new value is built for every page fetch.
type SearchQuery struct {
	Mode     SearchMode
	Term     string
	Limit    int
	Continue string // Opaque continuation token from the previous page
	Category string // Optional category facet
}

// MediaItem is a file as reported by the media repository
type MediaItem struct {
	CanonicalTitle  string   `json:"canonicaltitle"` // e.g. "File:Example.jpg"
	Name            string   `json:"name"`           // e.g. "Example.jpg"
	URL             string   `json:"url"`
	DescriptionURL  string   `json:"descriptionurl"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	UploadTimestamp string   `json:"timestamp"`
	Categories      []string `json:"categories,omitempty"`
}

// Key returns the identity used for deduplication and checkbox names
func (m MediaItem) Key() string {
	if m.CanonicalTitle != "" {
		return m.CanonicalTitle
	}
	return m.Name
}

// Title returns the display title, falling back to the raw name
func (m MediaItem) Title() string {
	return m.Key()
}

// HasCategory reports whether the item is tagged with the given category
func (m MediaItem) HasCategory(category string) bool {
	for _, c := range m.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// SearchPage is one page of results after post-processing
type SearchPage struct {
	Items    []MediaItem
	Continue string // Empty when there are no more pages
}

// HasMore reports whether a "load more" action is available
func (p SearchPage) HasMore() bool {
	return p.Continue != ""
}

// ImageList is the raw result of an allimages query
type ImageList struct {
	Items    []MediaItem
	Continue string
	APIError *APIError // Set when the repository answered with an error payload
}

// APIError is an error payload returned by the media repository
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Info
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Info)
}

// ImageInfo is the result of a by-name lookup
type ImageInfo struct {
	Title string
	URL   string
}

// AttachedMedia is a media record already linked to a ticket
type AttachedMedia struct {
	APIURL         string `json:"url"` // Detach target
	Name           string `json:"name"`
	CanonicalTitle string `json:"canonicaltitle"`
	ThumbURL       string `json:"thumb_url"`
	DescriptionURL string `json:"descriptionurl"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Ticket         string `json:"ticket"`
}

// Key returns the canonical title, falling back to the raw name
func (a AttachedMedia) Key() string {
	if a.CanonicalTitle != "" {
		return a.CanonicalTitle
	}
	return a.Name
}

// AsMediaItem converts the record for rendering and thumbnail resolution.
// The tracker reports the record's API URL in "url", so the file URL is left
// empty and resolution goes through the name lookup.
func (a AttachedMedia) AsMediaItem() MediaItem {
	return MediaItem{
		CanonicalTitle: a.CanonicalTitle,
		Name:           a.Name,
		URL:            a.APIURL,
		DescriptionURL: a.DescriptionURL,
		Width:          a.Width,
		Height:         a.Height,
	}
}

// ExclusionSet holds the keys of media already attached to a ticket
type ExclusionSet map[string]struct{}

// NewExclusionSet builds the set from attached records
func NewExclusionSet(records []AttachedMedia) ExclusionSet {
	set := make(ExclusionSet, len(records))
	for _, r := range records {
		set[r.Key()] = struct{}{}
	}
	return set
}

// Contains reports whether the item is already attached
func (s ExclusionSet) Contains(item MediaItem) bool {
	if s == nil {
		return false
	}
	_, ok := s[item.Key()]
	return ok
}

// AttachRequest is one entry of a batch attach request
type AttachRequest struct {
	Name   string `json:"name"`
	Ticket string `json:"ticket"`
}

// TicketAPIPath returns the tracker API reference for a ticket
func TicketAPIPath(ticketID string) string {
	return fmt.Sprintf("/api/tracker/tickets/%s/", ticketID)
}

// ManageMediaPath returns the ticket's media management page
func ManageMediaPath(ticketID string) string {
	return fmt.Sprintf("/ticket/%s/media/manage/", ticketID)
}
