package domain

import "fmt"

// ThumbnailFailure classifies why a thumbnail could not be derived
type ThumbnailFailure int

const (
	ThumbnailOK ThumbnailFailure = iota
	// ThumbnailUnexpectedFormat means the file URL does not have the
	// hash-directory shape, even after the fallback lookup
	ThumbnailUnexpectedFormat
	// ThumbnailLookupFailed means the fallback lookup itself errored
	ThumbnailLookupFailed
)

func (f ThumbnailFailure) String() string {
	switch f {
	case ThumbnailOK:
		return "ok"
	case ThumbnailUnexpectedFormat:
		return "unexpected url format"
	case ThumbnailLookupFailed:
		return "lookup failed"
	default:
		return fmt.Sprintf("failure(%d)", int(f))
	}
}

// ThumbnailResult is the outcome of resolving one item's thumbnail
type ThumbnailResult struct {
	URL     string
	Failure ThumbnailFailure
	Err     error // Underlying cause, if any
}

// OK reports whether a thumbnail URL was produced
func (r ThumbnailResult) OK() bool {
	return r.Failure == ThumbnailOK
}
