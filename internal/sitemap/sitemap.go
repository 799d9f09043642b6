// Package sitemap renders the XML sitemap for the browsing site: the root
// page, the policies page, and one entry per configured category search.
package sitemap

import (
	"encoding/xml"
	"net/url"
	"strings"
	"time"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

// Generate renders the sitemap for the given public site URL. Category
// entries point at the root page's search parameter, which is how the
// browsing UI addresses category listings.
func Generate(siteURL string, categories []string, now time.Time) ([]byte, error) {
	base := strings.TrimSuffix(siteURL, "/")
	lastMod := now.UTC().Format(time.RFC3339)

	set := urlSet{
		Xmlns: xmlns,
		URLs: []urlEntry{
			{Loc: base, LastMod: lastMod, ChangeFreq: "hourly", Priority: "1.0"},
			{Loc: base + "/policies", LastMod: lastMod, ChangeFreq: "monthly", Priority: "0.3"},
		},
	}

	for _, category := range categories {
		category = strings.TrimSpace(category)
		if category == "" {
			continue
		}
		set.URLs = append(set.URLs, urlEntry{
			Loc:        base + "/?search=" + url.QueryEscape(category),
			LastMod:    lastMod,
			ChangeFreq: "daily",
			Priority:   "0.8",
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), body...), nil
}
