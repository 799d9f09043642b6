package feed

import (
	"fmt"
	"strconv"

	"github.com/littleslush/gifproxy/internal/redgifs"
)

// thumbnailFallbackPattern reconstructs a thumbnail URL from a gif ID when
// the upstream response carries no usable URL.
const thumbnailFallbackPattern = "https://thumbs44.redgifs.com/%s-mobile.jpg"

// Normalize converts a raw upstream search response into the wire-facing
// page shape. Every upstream field may be missing or null; each access
// defaults rather than propagating an error.
func Normalize(raw *redgifs.SearchResponse, requestedPage int) Page {
	page := Page{Gifs: []Gif{}}
	if raw == nil {
		return page
	}

	for _, g := range raw.Gifs {
		tags := g.Tags
		if tags == nil {
			tags = []string{}
		}

		page.Gifs = append(page.Gifs, Gif{
			ID:        g.ID,
			Tags:      tags,
			Thumbnail: thumbnailFor(g),
		})
	}

	page.Total = raw.Total

	totalPages := raw.Pages
	if totalPages == 0 {
		totalPages = 1
	}
	if requestedPage < totalPages {
		next := strconv.Itoa(requestedPage + 1)
		page.Next = &next
	}

	return page
}

// thumbnailFor picks the first usable thumbnail URL, preferring the static
// thumbnail over progressively heavier variants, with a constructed URL as
// the last resort.
func thumbnailFor(g redgifs.SearchGif) string {
	if u := g.URLs; u != nil {
		switch {
		case u.Thumbnail != "":
			return u.Thumbnail
		case u.Poster != "":
			return u.Poster
		case u.VThumbnail != "":
			return u.VThumbnail
		case u.SD != "":
			return u.SD
		}
	}

	return fmt.Sprintf(thumbnailFallbackPattern, g.ID)
}
