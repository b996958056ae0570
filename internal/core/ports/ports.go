package ports

import (
	"context"
	"net/url"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
)

// MediaRepository defines the port for the remote media repository search API
type MediaRepository interface {
	// ListImages runs an allimages query with fully built parameters.
	// An error payload from the repository is reported in ImageList.APIError,
	// not as a returned error.
	ListImages(ctx context.Context, params url.Values) (*domain.ImageList, error)

	// LookupImage runs an imageinfo query for a single title and returns
	// its canonical file URL
	LookupImage(ctx context.Context, params url.Values) (*domain.ImageInfo, error)
}

// TrackerBackend defines the port for the ticket tracker REST API
type TrackerBackend interface {
	// Profile returns the signed-in user's tracker profile
	Profile(ctx context.Context) (*domain.TrackerProfile, error)

	// ListAttached returns media already linked to a ticket
	ListAttached(ctx context.Context, ticketID string) ([]domain.AttachedMedia, error)

	// Attach links media to tickets in a single batch request
	Attach(ctx context.Context, reqs []domain.AttachRequest) error

	// Detach deletes one media record by its API URL
	Detach(ctx context.Context, apiURL string) error

	// Languages returns the language code to language name map
	Languages(ctx context.Context) (map[string]string, error)

	// Preferences returns the user's tracker preferences
	Preferences(ctx context.Context) ([]domain.TrackerPreferences, error)
}

// AckHandler defines the port for the inline acknowledgment handlers
type AckHandler interface {
	// AddAck posts the add form to the handler URL
	AddAck(ctx context.Context, handlerPath string, form url.Values) (*domain.AckResponse, error)

	// RemoveAck posts the removal of one ack to the handler URL
	RemoveAck(ctx context.Context, handlerPath string, ackID string) (*domain.AckResponse, error)
}

// SelectionView abstracts a rendered list of checkboxes
type SelectionView interface {
	// Len returns the number of rendered entries
	Len() int

	// Checked reports the state of entry i
	Checked(i int) bool

	// SetChecked updates the state of entry i
	SetChecked(i int, checked bool)
}

// ChangeListener is notified when an entry is toggled through its thumbnail
type ChangeListener interface {
	Changed(i int, checked bool)
}

// Level is the severity of a user-visible message
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelDanger
)

// Notifier defines the port for user-visible messages
type Notifier interface {
	Notify(level Level, message string)
}
