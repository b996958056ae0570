package domain

import (
	"errors"
	"fmt"
)

// ErrAckRejected is returned when the tracker answers an ack request with success=false
var ErrAckRejected = errors.New("tracker rejected the acknowledgment")

// TrackerProfile is the signed-in user's tracker profile
type TrackerProfile struct {
	URL               string `json:"url"`
	User              string `json:"user"`
	MediawikiUsername string `json:"mediawiki_username"`
	ChapterUsername   string `json:"chapter_username"`
	DisplayItems      int    `json:"display_items"`
}

// TrackerPreferences holds the user's notification preferences
type TrackerPreferences struct {
	URL                string `json:"url"`
	User               string `json:"user"`
	MutedNotifications string `json:"muted_notifications"`
	MutedAck           string `json:"muted_ack"`
}

// AckResponse is the JSON answer of the ack add/remove handlers
type AckResponse struct {
	Success bool   `json:"success"`
	ID      int    `json:"id,omitempty"`
	Form    string `json:"form,omitempty"`
}

// StatusError is returned for tracker responses with status >= 400
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// SubmitOutcome is the terminal state of an attach or detach action
type SubmitOutcome string

const (
	OutcomeSuccess SubmitOutcome = "success"
	OutcomeError   SubmitOutcome = "error"
)

// RedirectURL returns the page the browser flow lands on after a submit
func (o SubmitOutcome) RedirectURL(managePage string) string {
	return managePage + string(o) + "/"
}
