// Package feed implements the gif search proxy: it resolves a (search,
// page) request against the response cache or the upstream API, normalizes
// the upstream shape, and recovers locally from token expiry and rate
// limiting.
package feed

import "fmt"

// Gif is the wire-facing, normalized representation of an upstream gif.
type Gif struct {
	ID        string   `json:"id"`
	Tags      []string `json:"tags"`
	Thumbnail string   `json:"thumbnail"`
}

// Page is the wire-facing result page. Gifs is always an array (possibly
// empty) and Next is always present (possibly null), so clients never need
// to special-case a malformed body.
type Page struct {
	Gifs  []Gif   `json:"gifs"`
	Next  *string `json:"next"`
	Total int     `json:"total"`
}

// CacheStatus labels how a page was resolved, surfaced to clients via the
// X-Cache response header.
type CacheStatus string

const (
	CacheHit      CacheStatus = "HIT"
	CacheMiss     CacheStatus = "MISS"
	CacheFallback CacheStatus = "FALLBACK"
)

// Error is a lookup failure carrying the HTTP status to surface. Details
// holds upstream error text where available; it is returned to the client in
// the details field, never as the primary message.
type Error struct {
	Code    int
	Message string
	Details string
}

func (e *Error) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

// Status implements the HTTPStatuser seam used by the HTTP handlers.
func (e *Error) Status() (int, string) {
	return e.Code, e.Message
}
