package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
)

const (
	// CommonsUploadBase is the root of canonical file URLs
	CommonsUploadBase = "https://upload.wikimedia.org/wikipedia/commons/"

	// MaxThumbWidth caps the derived thumbnail width in pixels
	MaxThumbWidth = 200
)

// <base>/<h1>/<h2>/<filename>.<ext>; the extension is the last dot segment.
var fileURLPattern = regexp.MustCompile(`(?i)^https://upload\.wikimedia\.org/wikipedia/commons/([0-9a-f])/([0-9a-f]{2})/([^/]+\.([^./]+))$`)

// ThumbnailService derives thumbnail URLs from canonical file URLs
type ThumbnailService struct {
	media    ports.MediaRepository
	maxWidth int
	log      zerolog.Logger
}

// NewThumbnailService creates a resolver. maxWidth <= 0 uses MaxThumbWidth.
func NewThumbnailService(media ports.MediaRepository, maxWidth int, log zerolog.Logger) *ThumbnailService {
	if maxWidth <= 0 {
		maxWidth = MaxThumbWidth
	}
	return &ThumbnailService{
		media:    media,
		maxWidth: maxWidth,
		log:      log,
	}
}

// DeriveThumbnailURL builds the thumbnail URL for a canonical file URL.
// ok is false when the URL does not have the expected shape.
func DeriveThumbnailURL(fileURL string, width, maxWidth int) (string, bool) {
	m := fileURLPattern.FindStringSubmatch(fileURL)
	if m == nil {
		return "", false
	}
	hashFirst, hashFirstTwo, filename, ext := m[1], m[2], m[3], strings.ToLower(m[4])

	if maxWidth <= 0 {
		maxWidth = MaxThumbWidth
	}
	size := width
	if size <= 0 || size > maxWidth {
		size = maxWidth
	}

	thumbExt := "jpg"
	if ext == "png" || ext == "svg" {
		thumbExt = "png"
	}

	page := ""
	if ext == "pdf" {
		page = "page1-"
	}

	return fmt.Sprintf("%sthumb/%s/%s/%s/%s%dpx-%s.%s",
		CommonsUploadBase, hashFirst, hashFirstTwo, filename, page, size, filename, thumbExt), true
}

// Resolve returns the thumbnail for an item, doing one by-name lookup when the
// item URL is not a canonical file URL (e.g. a tracker proxy URL)
func (s *ThumbnailService) Resolve(ctx context.Context, item domain.MediaItem) domain.ThumbnailResult {
	if thumb, ok := DeriveThumbnailURL(item.URL, item.Width, s.maxWidth); ok {
		return domain.ThumbnailResult{URL: thumb}
	}

	if item.Name == "" && item.CanonicalTitle == "" {
		return s.fail(item, domain.ThumbnailUnexpectedFormat, fmt.Errorf("image url %q is not in the expected format", item.URL))
	}

	name := item.Name
	if name == "" {
		name = item.CanonicalTitle
	}

	info, err := s.media.LookupImage(ctx, BuildLookupParams(name))
	if err != nil {
		return s.fail(item, domain.ThumbnailLookupFailed, err)
	}

	if thumb, ok := DeriveThumbnailURL(info.URL, item.Width, s.maxWidth); ok {
		return domain.ThumbnailResult{URL: thumb}
	}

	return s.fail(item, domain.ThumbnailUnexpectedFormat, fmt.Errorf("image url %q is not in the expected format", info.URL))
}

// ResolveAttached prefers the tracker's stored thumbnail URL
func (s *ThumbnailService) ResolveAttached(ctx context.Context, rec domain.AttachedMedia) domain.ThumbnailResult {
	if rec.ThumbURL != "" {
		return domain.ThumbnailResult{URL: rec.ThumbURL}
	}
	return s.Resolve(ctx, rec.AsMediaItem())
}

func (s *ThumbnailService) fail(item domain.MediaItem, kind domain.ThumbnailFailure, err error) domain.ThumbnailResult {
	s.log.Warn().
		Err(err).
		Str("item", item.Key()).
		Str("failure", kind.String()).
		Msg("skipping thumbnail")
	return domain.ThumbnailResult{Failure: kind, Err: err}
}
