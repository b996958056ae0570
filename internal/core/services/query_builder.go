package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
)

var baseImageProps = []string{"timestamp", "url", "canonicaltitle", "dimensions"}

// BuildSearchParams translates a query into allimages parameters.
// Extended metadata is requested only when a category facet is set, since the
// category filter is the only consumer of it.
func BuildSearchParams(q domain.SearchQuery) (url.Values, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = domain.DefaultPageLimit
	}

	props := append([]string{}, baseImageProps...)
	if q.Category != "" {
		props = append(props, "extmetadata")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "allimages")
	params.Set("aiprop", strings.Join(props, "|"))
	params.Set("ailimit", strconv.Itoa(limit))

	switch q.Mode {
	case domain.ModeByUploader:
		params.Set("aisort", "timestamp")
		params.Set("aidir", "descending")
		params.Set("aiuser", q.Term)
	case domain.ModeByFilenamePrefix:
		params.Set("aisort", "name")
		params.Set("aiprefix", q.Term)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSearchMode, q.Mode)
	}

	if q.Continue != "" {
		params.Set("aicontinue", q.Continue)
	}

	return params, nil
}

// BuildLookupParams builds the imageinfo query used to resolve a file by name
func BuildLookupParams(name string) url.Values {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "imageinfo")
	params.Set("titles", name)
	params.Set("iiprop", "timestamp|user|url")
	return params
}
