package blogapp

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

func sitemapDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

// buildSitemap lists the home page, every published post and the profile
// of each author with a published post. A profile changes whenever one of
// its posts does, so it carries its newest post's date.
func buildSitemap(base string, posts []Post) sitemapURLSet {
	var newest time.Time
	authorMod := make(map[string]time.Time)
	var authors []string
	postURLs := make([]sitemapURL, 0, len(posts))

	for _, p := range posts {
		postURLs = append(postURLs, sitemapURL{
			Loc:     BuildURL(base, "posts", p.ID),
			LastMod: sitemapDate(p.UpdatedAt),
		})
		if p.UpdatedAt.After(newest) {
			newest = p.UpdatedAt
		}
		seen, ok := authorMod[p.AuthorID]
		if !ok {
			authors = append(authors, p.AuthorID)
		}
		if p.UpdatedAt.After(seen) {
			authorMod[p.AuthorID] = p.UpdatedAt
		}
	}

	urls := make([]sitemapURL, 0, 1+len(posts)+len(authors))
	urls = append(urls, sitemapURL{Loc: BuildURL(base), LastMod: sitemapDate(newest), ChangeFreq: "daily"})
	urls = append(urls, postURLs...)
	for _, id := range authors {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "users", id),
			LastMod:    sitemapDate(authorMod[id]),
			ChangeFreq: "weekly",
		})
	}
	return sitemapURLSet{XMLNS: sitemapNamespace, URLs: urls}
}

func (a *App) renderSitemap(c echo.Context, posts []Post) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(buildSitemap(a.Config.URL, posts))
}
