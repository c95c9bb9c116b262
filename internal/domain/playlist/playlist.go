// Package playlist provides the playlist domain entities.
package playlist

import (
	"regexp"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/playtime/internal/domain/video"
)

// ID identifies a playlist in the catalog.
type ID string

var (
	listParamPattern = regexp.MustCompile(`[&?]list=([^&]+)`)
	idPattern        = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ExtractID extracts the playlist ID from the "list" query parameter of a
// playlist URL. It reports false when the parameter is missing or its value
// is not a valid catalog identifier.
func ExtractID(rawURL string) (ID, bool) {
	m := listParamPattern.FindStringSubmatch(rawURL)
	if m == nil || !idPattern.MatchString(m[1]) {
		return "", false
	}
	return ID(m[1]), true
}

// Metadata represents descriptive playlist information used for display.
type Metadata struct {
	ID           ID        // Catalog playlist ID
	Title        string    // Playlist title
	Creator      string    // Channel name
	ItemCount    int64     // Declared number of items in the whole playlist
	CreatedAt    time.Time // Zero if unknown
	UpdatedAt    time.Time // Zero if unknown
	ThumbnailURL string    // High resolution thumbnail
}

// Item is one entry of a playlist page.
type Item struct {
	VideoID string
}

// Page is one page of playlist items.
type Page struct {
	Items         []Item
	NextPageToken string // Empty when the traversal is exhausted
}

// Range is a 1-based inclusive window over playlist positions.
// End == 0 means unbounded.
type Range struct {
	Start int
	End   int
}

// NewRange normalizes and validates a range.
// A zero start means the first item; a zero end means no upper bound.
func NewRange(start, end int) (Range, error) {
	if start == 0 {
		start = 1
	}
	if start < 0 {
		return Range{}, errors.Newf("start index must be positive, got %d", start)
	}
	if end < 0 {
		return Range{}, errors.Newf("end index must be positive, got %d", end)
	}
	if end != 0 && end < start {
		return Range{}, errors.Newf("end index (%d) must not be before start index (%d)", end, start)
	}
	return Range{Start: start, End: end}, nil
}

// Bounded reports whether the range has an upper bound.
func (r Range) Bounded() bool {
	return r.End > 0
}

// Contains reports whether the 1-based position falls within the range.
func (r Range) Contains(position int) bool {
	if position < r.Start {
		return false
	}
	return !r.Bounded() || position <= r.End
}

// Result is the outcome of one aggregation.
type Result struct {
	TotalSeconds  int64              // Sum over resolved in-range items
	Visited       int                // Positions seen during traversal
	Resolved      int                // Items whose duration was looked up
	Degraded      []video.Resolution // Lookups that contributed zero
	Partial       bool               // Traversal stopped early on a page failure
	PartialReason string
}

// Add accumulates one resolution.
func (r *Result) Add(res video.Resolution) {
	r.Resolved++
	if res.Degraded {
		r.Degraded = append(r.Degraded, res)
		return
	}
	r.TotalSeconds += res.Seconds
}
