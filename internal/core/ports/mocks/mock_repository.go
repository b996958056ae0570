package mocks

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
)

// MockMediaRepository is a mock implementation of the MediaRepository interface for testing
type MockMediaRepository struct {
	mu sync.Mutex

	// Pages are returned in order, one per ListImages call
	Pages []*domain.ImageList
	// Lookups maps a file name to the URL returned by LookupImage
	Lookups map[string]string
	// ListErr and LookupErr force failures
	ListErr   error
	LookupErr error

	Calls        []url.Values
	LookupCalls  []string
	LookupParams []url.Values
}

// NewMockMediaRepository creates a new mock media repository
func NewMockMediaRepository(pages ...*domain.ImageList) *MockMediaRepository {
	return &MockMediaRepository{
		Pages:   pages,
		Lookups: make(map[string]string),
	}
}

// ListImages returns the next queued page
func (m *MockMediaRepository) ListImages(ctx context.Context, params url.Values) (*domain.ImageList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, params)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if len(m.Pages) == 0 {
		return &domain.ImageList{}, nil
	}
	page := m.Pages[0]
	m.Pages = m.Pages[1:]
	return page, nil
}

// LookupImage resolves the queried title from the Lookups table
func (m *MockMediaRepository) LookupImage(ctx context.Context, params url.Values) (*domain.ImageInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := params.Get("titles")
	m.LookupCalls = append(m.LookupCalls, name)
	m.LookupParams = append(m.LookupParams, params)
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	u, ok := m.Lookups[name]
	if !ok {
		return nil, fmt.Errorf("image not found: %s", name)
	}
	return &domain.ImageInfo{Title: name, URL: u}, nil
}

// --- MockTrackerBackend ---

// MockTrackerBackend is a mock implementation of the TrackerBackend interface for testing
type MockTrackerBackend struct {
	mu sync.Mutex

	ProfileValue *domain.TrackerProfile
	AttachedByID map[string][]domain.AttachedMedia
	LanguageMap  map[string]string
	Prefs        []domain.TrackerPreferences

	// AttachErr fails Attach; DetachErrs fails Detach per API URL
	AttachErr  error
	DetachErrs map[string]error

	Attached [][]domain.AttachRequest
	Detached []string
}

// NewMockTrackerBackend creates a new mock tracker backend
func NewMockTrackerBackend() *MockTrackerBackend {
	return &MockTrackerBackend{
		ProfileValue: &domain.TrackerProfile{},
		AttachedByID: make(map[string][]domain.AttachedMedia),
		LanguageMap:  make(map[string]string),
		DetachErrs:   make(map[string]error),
	}
}

// Profile returns the configured profile
func (m *MockTrackerBackend) Profile(ctx context.Context) (*domain.TrackerProfile, error) {
	return m.ProfileValue, nil
}

// ListAttached returns the records stored for a ticket
func (m *MockTrackerBackend) ListAttached(ctx context.Context, ticketID string) ([]domain.AttachedMedia, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AttachedByID[ticketID], nil
}

// Attach records the batch
func (m *MockTrackerBackend) Attach(ctx context.Context, reqs []domain.AttachRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Attached = append(m.Attached, reqs)
	return m.AttachErr
}

// Detach records the API URL
func (m *MockTrackerBackend) Detach(ctx context.Context, apiURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Detached = append(m.Detached, apiURL)
	return m.DetachErrs[apiURL]
}

// Languages returns the configured language map
func (m *MockTrackerBackend) Languages(ctx context.Context) (map[string]string, error) {
	return m.LanguageMap, nil
}

// Preferences returns the configured preferences
func (m *MockTrackerBackend) Preferences(ctx context.Context) ([]domain.TrackerPreferences, error) {
	return m.Prefs, nil
}

// --- MockAckHandler ---

// MockAckHandler is a mock implementation of the AckHandler interface for testing
type MockAckHandler struct {
	Response *domain.AckResponse
	Err      error

	Paths []string
	Forms []url.Values
}

// NewMockAckHandler creates an ack handler that answers with the given response
func NewMockAckHandler(resp *domain.AckResponse) *MockAckHandler {
	return &MockAckHandler{Response: resp}
}

// AddAck records the call
func (m *MockAckHandler) AddAck(ctx context.Context, handlerPath string, form url.Values) (*domain.AckResponse, error) {
	m.Paths = append(m.Paths, handlerPath)
	m.Forms = append(m.Forms, form)
	return m.Response, m.Err
}

// RemoveAck records the call
func (m *MockAckHandler) RemoveAck(ctx context.Context, handlerPath string, ackID string) (*domain.AckResponse, error) {
	m.Paths = append(m.Paths, handlerPath)
	m.Forms = append(m.Forms, url.Values{"id": {ackID}})
	return m.Response, m.Err
}

// --- MockNotifier ---

// Message is one captured notification
type Message struct {
	Level ports.Level
	Text  string
}

// MockNotifier captures notifications
type MockNotifier struct {
	Messages []Message
}

// NewMockNotifier creates an empty notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Notify records the message
func (m *MockNotifier) Notify(level ports.Level, message string) {
	m.Messages = append(m.Messages, Message{Level: level, Text: message})
}

// Last returns the most recent message text, or "" if none
func (m *MockNotifier) Last() string {
	if len(m.Messages) == 0 {
		return ""
	}
	return m.Messages[len(m.Messages)-1].Text
}

// --- MockView ---

// MockView is a SelectionView over a plain slice of flags
type MockView struct {
	Boxes   []bool
	Changes []int
}

// NewMockView creates n unchecked boxes
func NewMockView(n int) *MockView {
	return &MockView{Boxes: make([]bool, n)}
}

func (v *MockView) Len() int                       { return len(v.Boxes) }
func (v *MockView) Checked(i int) bool             { return v.Boxes[i] }
func (v *MockView) SetChecked(i int, checked bool) { v.Boxes[i] = checked }

// Changed implements ports.ChangeListener
func (v *MockView) Changed(i int, checked bool) {
	v.Changes = append(v.Changes, i)
}
