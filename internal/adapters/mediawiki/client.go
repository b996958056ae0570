package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
)

// APIPath is the tracker's proxy to the Commons API
const APIPath = "/api/mediawiki/"

// Options configures the client
type Options struct {
	BaseURL   string
	SessionID string
	UserAgent string
	Timeout   time.Duration
}

// Client implements ports.MediaRepository over the tracker's MediaWiki proxy
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

var _ ports.MediaRepository = (*Client)(nil)

// NewClient creates a new MediaWiki API client
func NewClient(opts Options, log zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(0)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.SessionID != "" {
		client.SetCookie(&http.Cookie{Name: "sessionid", Value: opts.SessionID})
	}

	return &Client{http: client, log: log}
}

type extMetadataValue struct {
	Value json.RawMessage `json:"value"`
}

type rawImage struct {
	Name           string                      `json:"name"`
	CanonicalTitle string                      `json:"canonicaltitle"`
	URL            string                      `json:"url"`
	DescriptionURL string                      `json:"descriptionurl"`
	Timestamp      string                      `json:"timestamp"`
	Width          int                         `json:"width"`
	Height         int                         `json:"height"`
	ExtMetadata    map[string]extMetadataValue `json:"extmetadata"`
}

type allImagesResponse struct {
	Continue struct {
		AIContinue string `json:"aicontinue"`
	} `json:"continue"`
	Query struct {
		AllImages []rawImage `json:"allimages"`
	} `json:"query"`
	Error *domain.APIError `json:"error"`
}

type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string  `json:"title"`
			Missing   *string `json:"missing"`
			ImageInfo []struct {
				URL string `json:"url"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
	Error *domain.APIError `json:"error"`
}

// ListImages runs an allimages query
func (c *Client) ListImages(ctx context.Context, params url.Values) (*domain.ImageList, error) {
	var result allImagesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		ForceContentType("application/json").
		SetResult(&result).
		Get(APIPath)
	if err != nil {
		c.log.Error().Err(err).Str("url", APIPath).Msg("mediawiki request failed")
		return nil, fmt.Errorf("failed to query media repository: %w", err)
	}

	if resp.IsError() {
		c.log.Error().
			Int("status", resp.StatusCode()).
			Str("url", resp.Request.URL).
			Msg("mediawiki request returned error status")
		return nil, &domain.StatusError{
			Method:     http.MethodGet,
			URL:        resp.Request.URL,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	list := &domain.ImageList{
		Items:    make([]domain.MediaItem, 0, len(result.Query.AllImages)),
		Continue: result.Continue.AIContinue,
		APIError: result.Error,
	}
	for _, img := range result.Query.AllImages {
		list.Items = append(list.Items, toMediaItem(img))
	}
	return list, nil
}

// LookupImage runs an imageinfo query and returns the first file URL found
func (c *Client) LookupImage(ctx context.Context, params url.Values) (*domain.ImageInfo, error) {
	name := params.Get("titles")

	var result imageInfoResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		ForceContentType("application/json").
		SetResult(&result).
		Get(APIPath)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", name, err)
	}

	if resp.IsError() {
		c.log.Error().
			Int("status", resp.StatusCode()).
			Str("name", name).
			Msg("image lookup returned error status")
		return nil, &domain.StatusError{
			Method:     http.MethodGet,
			URL:        resp.Request.URL,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	if result.Error != nil {
		return nil, result.Error
	}

	for _, page := range result.Query.Pages {
		if page.Missing != nil || len(page.ImageInfo) == 0 {
			continue
		}
		return &domain.ImageInfo{Title: page.Title, URL: page.ImageInfo[0].URL}, nil
	}
	return nil, fmt.Errorf("image not found: %s", name)
}

func toMediaItem(img rawImage) domain.MediaItem {
	item := domain.MediaItem{
		CanonicalTitle:  img.CanonicalTitle,
		Name:            img.Name,
		URL:             img.URL,
		DescriptionURL:  img.DescriptionURL,
		Width:           img.Width,
		Height:          img.Height,
		UploadTimestamp: img.Timestamp,
	}
	if cats, ok := img.ExtMetadata["Categories"]; ok {
		item.Categories = splitCategories(cats.Value)
	}
	return item
}

// splitCategories parses the pipe separated Categories value
func splitCategories(raw json.RawMessage) []string {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil || value == "" {
		return nil
	}
	parts := strings.Split(value, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
