package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
)

// Default handler paths; {ticket}, {ack_type} and {ack} are substituted
const (
	DefaultAckAddPath    = "/ticket/{ticket}/edit/{ack_type}/add/"
	DefaultAckRemovePath = "/ticket/{ticket}/edit/acks/{ack}/delete/"
)

// AckService adds and removes ticket acknowledgments
type AckService struct {
	handler    ports.AckHandler
	addPath    string
	removePath string
}

// NewAckService creates a new ack service. Empty paths use the defaults.
func NewAckService(handler ports.AckHandler, addPath, removePath string) *AckService {
	if addPath == "" {
		addPath = DefaultAckAddPath
	}
	if removePath == "" {
		removePath = DefaultAckRemovePath
	}
	return &AckService{
		handler:    handler,
		addPath:    addPath,
		removePath: removePath,
	}
}

// AddAckRequest represents a request to add an ack
type AddAckRequest struct {
	TicketID string
	AckType  string
	Comment  string
}

// Add submits the add form and returns the new ack id
func (s *AckService) Add(ctx context.Context, req AddAckRequest) (int, error) {
	if req.TicketID == "" {
		return 0, domain.ErrMissingTicket
	}
	if strings.TrimSpace(req.AckType) == "" {
		return 0, fmt.Errorf("ack type is required")
	}

	path := expandHandlerPath(s.addPath, map[string]string{
		"ticket":   req.TicketID,
		"ack_type": req.AckType,
	})

	form := url.Values{}
	form.Set("comment", req.Comment)

	resp, err := s.handler.AddAck(ctx, path, form)
	if err != nil {
		return 0, fmt.Errorf("failed to add ack: %w", err)
	}
	if !resp.Success {
		return 0, domain.ErrAckRejected
	}
	return resp.ID, nil
}

// Remove deletes one ack from a ticket
func (s *AckService) Remove(ctx context.Context, ticketID, ackID string) error {
	if ticketID == "" {
		return domain.ErrMissingTicket
	}
	if ackID == "" {
		return fmt.Errorf("ack id is required")
	}

	path := expandHandlerPath(s.removePath, map[string]string{
		"ticket": ticketID,
		"ack":    ackID,
	})

	resp, err := s.handler.RemoveAck(ctx, path, ackID)
	if err != nil {
		return fmt.Errorf("failed to remove ack: %w", err)
	}
	if !resp.Success {
		return domain.ErrAckRejected
	}
	return nil
}

func expandHandlerPath(tmpl string, vars map[string]string) string {
	out := tmpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", url.PathEscape(v))
	}
	return out
}
