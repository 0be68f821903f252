// Package crawl — URL filtering rules.
package crawl

import (
	"net/url"
	"path"
	"strings"
)

// staticExtensions are file extensions that never hold HTML.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true, ".json": true, ".xml": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// rules decides which discovered URLs belong to the crawl.
type rules struct {
	host   string
	prefix string // path prefix, empty when unscoped
}

func newRules(start *url.URL, scoped bool) rules {
	r := rules{host: start.Host}
	if scoped {
		r.prefix = strings.TrimSuffix(start.Path, "/")
	}
	return r
}

// allow reports whether u is an HTML page on the crawled site.
func (r rules) allow(u *url.URL) bool {
	if u.Host != r.host || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if r.prefix != "" && u.Path != r.prefix && !strings.HasPrefix(u.Path, r.prefix+"/") {
		return false
	}
	return !staticExtensions[strings.ToLower(path.Ext(u.Path))]
}

// normalizeURL strips the fragment and trailing slash (except for the root
// path) so that equivalent URLs deduplicate.
func normalizeURL(u *url.URL) string {
	n := *u
	n.Fragment = ""
	if n.Path != "/" {
		n.Path = strings.TrimSuffix(n.Path, "/")
	}
	return n.String()
}
