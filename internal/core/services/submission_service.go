package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
)

// SubmissionService attaches and detaches media on the tracker
type SubmissionService struct {
	tracker ports.TrackerBackend
	baseURL string
}

// NewSubmissionService creates a new submission service. baseURL prefixes
// the success/error redirect pages.
func NewSubmissionService(tracker ports.TrackerBackend, baseURL string) *SubmissionService {
	return &SubmissionService{
		tracker: tracker,
		baseURL: baseURL,
	}
}

// AttachRequest represents a request to attach media to a ticket
type AttachRequest struct {
	TicketID string
	Names    []string // Canonical titles of the checked new results
}

// AttachResponse represents the response from an attach
type AttachResponse struct {
	Outcome     domain.SubmitOutcome
	RedirectURL string
	Count       int
	Error       error
}

// Attach posts every selected name as a single batch. Any failure yields the
// error outcome; the error is reported in the response, not returned.
func (s *SubmissionService) Attach(ctx context.Context, req AttachRequest) (*AttachResponse, error) {
	if req.TicketID == "" {
		return nil, domain.ErrMissingTicket
	}
	if len(req.Names) == 0 {
		return nil, domain.ErrEmptySelection
	}

	ticketRef := domain.TicketAPIPath(req.TicketID)
	batch := make([]domain.AttachRequest, 0, len(req.Names))
	for _, name := range req.Names {
		batch = append(batch, domain.AttachRequest{Name: name, Ticket: ticketRef})
	}

	resp := &AttachResponse{Count: len(batch)}
	if err := s.tracker.Attach(ctx, batch); err != nil {
		resp.Outcome = domain.OutcomeError
		resp.Error = err
	} else {
		resp.Outcome = domain.OutcomeSuccess
	}
	resp.RedirectURL = resp.Outcome.RedirectURL(s.managePage(req.TicketID))
	return resp, nil
}

// DetachRequest represents a request to detach media records
type DetachRequest struct {
	TicketID   string
	APIURLs    []string
	MaxWorkers int // Concurrent deletes; 1 keeps them strictly sequential
}

// DetachResult is the outcome for one record
type DetachResult struct {
	APIURL     string
	Success    bool
	StatusCode int
	Error      error
}

// DetachReport aggregates per-record outcomes
type DetachReport struct {
	Total       int
	Succeeded   int
	Failed      int
	Results     []DetachResult // Same order as the request
	Outcome     domain.SubmitOutcome
	RedirectURL string
}

// Failures returns the failed results
func (r *DetachReport) Failures() []DetachResult {
	var out []DetachResult
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}

// Detach deletes every record and reports each outcome. Earlier deletes are
// never rolled back; the report shows exactly what was applied.
func (s *SubmissionService) Detach(ctx context.Context, req DetachRequest) (*DetachReport, error) {
	if req.TicketID == "" {
		return nil, domain.ErrMissingTicket
	}
	if len(req.APIURLs) == 0 {
		return nil, domain.ErrEmptySelection
	}

	maxWorkers := req.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	if maxWorkers > len(req.APIURLs) {
		maxWorkers = len(req.APIURLs)
	}

	report := &DetachReport{
		Total:   len(req.APIURLs),
		Results: s.detachConcurrently(ctx, req.APIURLs, maxWorkers),
	}

	for _, res := range report.Results {
		if res.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	report.Outcome = domain.OutcomeSuccess
	if report.Failed > 0 {
		report.Outcome = domain.OutcomeError
	}
	report.RedirectURL = report.Outcome.RedirectURL(s.managePage(req.TicketID))
	return report, nil
}

type detachJob struct {
	index  int
	apiURL string
}

// detachConcurrently deletes records using a worker pool
func (s *SubmissionService) detachConcurrently(ctx context.Context, urls []string, maxWorkers int) []DetachResult {
	jobs := make(chan detachJob, len(urls))
	results := make([]DetachResult, len(urls))

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, jobs, results)
		}()
	}

	for i, u := range urls {
		jobs <- detachJob{index: i, apiURL: u}
	}
	close(jobs)

	wg.Wait()
	return results
}

// worker writes each job's result into its own slot
func (s *SubmissionService) worker(ctx context.Context, jobs <-chan detachJob, results []DetachResult) {
	for job := range jobs {
		select {
		case <-ctx.Done():
			results[job.index] = DetachResult{APIURL: job.apiURL, Error: ctx.Err()}
			continue
		default:
		}

		res := DetachResult{APIURL: job.apiURL}
		if err := s.tracker.Detach(ctx, job.apiURL); err != nil {
			res.Error = err
			var statusErr *domain.StatusError
			if errors.As(err, &statusErr) {
				res.StatusCode = statusErr.StatusCode
			}
		} else {
			res.Success = true
		}
		results[job.index] = res
	}
}

func (s *SubmissionService) managePage(ticketID string) string {
	return fmt.Sprintf("%s%s", s.baseURL, domain.ManageMediaPath(ticketID))
}
