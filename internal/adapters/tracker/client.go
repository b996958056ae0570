package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
)

const (
	profilePath     = "/api/tracker/trackerprofile/me"
	mediaInfoPath   = "/api/tracker/mediainfo/"
	languagesPath   = "/api/tracker/languages/"
	preferencesPath = "/api/tracker/trackerpreferences/"

	sessionCookie = "sessionid"
	csrfCookie    = "csrftoken"
)

// Options configures the client
type Options struct {
	BaseURL   string
	SessionID string
	UserAgent string
	Timeout   time.Duration
}

// Client implements ports.TrackerBackend and ports.AckHandler against the
// tracker's REST API using the user's session cookie
type Client struct {
	http *resty.Client
	jar  http.CookieJar
	base *url.URL
	log  zerolog.Logger
}

var (
	_ ports.TrackerBackend = (*Client)(nil)
	_ ports.AckHandler     = (*Client)(nil)
)

// NewClient creates a new tracker client
func NewClient(opts Options, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid tracker url %q", opts.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if opts.SessionID != "" {
		jar.SetCookies(base, []*http.Cookie{{Name: sessionCookie, Value: opts.SessionID, Path: "/"}})
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(base.String()).
		SetCookieJar(jar).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(0)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Client{http: client, jar: jar, base: base, log: log}, nil
}

// BaseURL returns the tracker root without a trailing slash
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Profile returns the signed-in user's tracker profile
func (c *Client) Profile(ctx context.Context) (*domain.TrackerProfile, error) {
	var profile domain.TrackerProfile
	if _, err := c.get(ctx, profilePath, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListAttached returns media already linked to a ticket
func (c *Client) ListAttached(ctx context.Context, ticketID string) ([]domain.AttachedMedia, error) {
	body, err := c.get(ctx, mediaInfoPath, map[string]string{"ticket": ticketID}, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.AttachedMedia](body)
}

// Attach links media to tickets in a single request
func (c *Client) Attach(ctx context.Context, reqs []domain.AttachRequest) error {
	req, err := c.unsafeRequest(ctx)
	if err != nil {
		return err
	}
	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(reqs).
		Post(mediaInfoPath)
	return c.check(http.MethodPost, mediaInfoPath, resp, err)
}

// Detach deletes one media record by its API URL
func (c *Client) Detach(ctx context.Context, apiURL string) error {
	req, err := c.unsafeRequest(ctx)
	if err != nil {
		return err
	}
	resp, err := req.Delete(apiURL)
	return c.check(http.MethodDelete, apiURL, resp, err)
}

// Languages returns the language code to name map
func (c *Client) Languages(ctx context.Context) (map[string]string, error) {
	langs := make(map[string]string)
	if _, err := c.get(ctx, languagesPath, nil, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// Preferences returns the user's notification preferences
func (c *Client) Preferences(ctx context.Context) ([]domain.TrackerPreferences, error) {
	body, err := c.get(ctx, preferencesPath, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.TrackerPreferences](body)
}

// AddAck posts the add form to an ack handler
func (c *Client) AddAck(ctx context.Context, handlerPath string, form url.Values) (*domain.AckResponse, error) {
	return c.postAckForm(ctx, handlerPath, form)
}

// RemoveAck posts the removal of one ack, including the form CSRF field
func (c *Client) RemoveAck(ctx context.Context, handlerPath string, ackID string) (*domain.AckResponse, error) {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("id", ackID)
	form.Set("csrfmiddlewaretoken", token)
	return c.postAckForm(ctx, handlerPath, form)
}

func (c *Client) postAckForm(ctx context.Context, handlerPath string, form url.Values) (*domain.AckResponse, error) {
	req, err := c.unsafeRequest(ctx)
	if err != nil {
		return nil, err
	}

	var result domain.AckResponse
	resp, err := req.
		SetFormDataFromValues(form).
		ForceContentType("application/json").
		SetResult(&result).
		Post(handlerPath)
	if err := c.check(http.MethodPost, handlerPath, resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

// get performs a GET and decodes into out when given; the raw body is returned
func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) ([]byte, error) {
	req := c.http.R().SetContext(ctx).ForceContentType("application/json")
	if query != nil {
		req.SetQueryParams(query)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Get(path)
	if err := c.check(http.MethodGet, path, resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// unsafeRequest prepares a state-changing request with the CSRF headers Django expects
func (c *Client) unsafeRequest(ctx context.Context) (*resty.Request, error) {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.http.R().
		SetContext(ctx).
		SetHeader("X-CSRFToken", token).
		SetHeader("Referer", c.base.String()+"/"), nil
}

// csrfToken reads the csrftoken cookie, priming the jar with a GET of the
// tracker root when it is not there yet
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	if token := c.cookie(csrfCookie); token != "" {
		return token, nil
	}

	resp, err := c.http.R().SetContext(ctx).Get("/")
	if err != nil {
		return "", fmt.Errorf("failed to obtain csrf token: %w", err)
	}
	if token := c.cookie(csrfCookie); token != "" {
		return token, nil
	}
	c.log.Error().Int("status", resp.StatusCode()).Msg("tracker did not set a csrf cookie")
	return "", fmt.Errorf("tracker did not issue a csrf token (status %d)", resp.StatusCode())
}

func (c *Client) cookie(name string) string {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// check converts transport failures and status >= 400 into errors
func (c *Client) check(method, target string, resp *resty.Response, err error) error {
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("url", target).Msg("tracker request failed")
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		c.log.Error().
			Int("status", resp.StatusCode()).
			Str("method", method).
			Str("url", target).
			Msg("tracker returned error status")
		return &domain.StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}
	return nil
}

type paginated[T any] struct {
	Results []T `json:"results"`
}

// decodeList accepts both a bare JSON array and a paginated {"results": [...]} envelope
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return items, nil
	}

	var page paginated[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	if page.Results == nil {
		return []T{}, nil
	}
	return page.Results, nil
}
