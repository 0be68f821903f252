// Package crawl discovers the pages of a site for --crawl mode.
// It reads sitemap.xml when the site has one and otherwise follows links
// breadth-first, staying on the start URL's host.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/htmd/core"
	"github.com/gaurav-prasanna/htmd/core/node"
	"github.com/gaurav-prasanna/htmd/core/parser"
)

// DefaultMaxPages bounds a crawl when Options.MaxPages is zero.
const DefaultMaxPages = 100

// Options configures Discover.
type Options struct {
	MaxPages int
	// Scoped keeps the crawl below the start URL's path.
	Scoped bool
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	URLs []sitemapURL `xml:"url"`
}

// Discover returns the pages to convert, starting with startURL itself.
func Discover(ctx context.Context, startURL string, fetcher core.Fetcher, opts Options) ([]string, error) {
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return nil, fmt.Errorf("invalid start URL %q", startURL)
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	rules := newRules(start, opts.Scoped)

	q := newQueue(opts.MaxPages)
	q.add(normalizeURL(start))

	sitemap := &url.URL{Scheme: start.Scheme, Host: start.Host, Path: "/sitemap.xml"}
	if locs, err := sitemapURLs(ctx, sitemap.String(), fetcher); err == nil && len(locs) > 0 {
		for _, loc := range locs {
			if u, err := url.Parse(loc); err == nil && rules.allow(u) {
				q.add(normalizeURL(u))
			}
		}
		return q.all(), nil
	}

	for q.hasNext() && !q.full() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := q.next()

		res, err := fetcher.Fetch(ctx, current)
		if err != nil {
			continue // unreachable pages do not stop the crawl
		}
		base, _ := url.Parse(current)
		for _, link := range Links(res.HTML, base) {
			if rules.allow(link) {
				q.add(normalizeURL(link))
			}
		}
	}
	return q.all(), nil
}

func sitemapURLs(ctx context.Context, sitemap string, fetcher core.Fetcher) ([]string, error) {
	res, err := fetcher.Fetch(ctx, sitemap)
	if err != nil {
		return nil, err
	}
	var set urlSet
	if err := xml.Unmarshal([]byte(res.HTML), &set); err != nil {
		return nil, fmt.Errorf("parsing sitemap: %w", err)
	}
	locs := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		locs = append(locs, strings.TrimSpace(u.Loc))
	}
	return locs, nil
}

// Links returns the absolute targets of the page's <a href> links, in
// document order. Pages the strict parser rejects are read with goquery.
func Links(html string, base *url.URL) []*url.URL {
	var hrefs []string
	if tree, err := parser.Parse(html); err == nil {
		tree.Walk(func(n *node.Node) bool {
			if n.Kind == node.A {
				if v, ok := n.Attributes.Get("href"); ok {
					hrefs = append(hrefs, v.String())
				}
			}
			return true
		})
	} else if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			hrefs = append(hrefs, href)
		})
	}

	var links []*url.URL
	for _, href := range hrefs {
		if u := resolve(href, base); u != nil {
			links = append(links, u)
		}
	}
	return links
}

// resolve makes href absolute against base. Fragment-only, mailto,
// javascript and tel links resolve to nil.
func resolve(href string, base *url.URL) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}
	for _, scheme := range []string{"mailto:", "javascript:", "tel:"} {
		if strings.HasPrefix(strings.ToLower(href), scheme) {
			return nil
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return nil
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	parsed.Fragment = ""
	return parsed
}
