package imagesource

import (
	"net/url"
	"strings"
)

// Kind classifies an image source.
type Kind int

const (
	KindEmpty Kind = iota
	KindData
	KindRemote
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindRemote:
		return "remote"
	case KindLocal:
		return "local"
	default:
		return "empty"
	}
}

// Classify reports the kind of src. Scheme matching is case-insensitive.
func Classify(src string) Kind {
	s := strings.TrimSpace(src)
	switch {
	case s == "":
		return KindEmpty
	case hasPrefixFold(s, "data:"):
		return KindData
	case hasPrefixFold(s, "http://"), hasPrefixFold(s, "https://"):
		return KindRemote
	default:
		return KindLocal
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// DefaultProxyTemplate routes remote images through a public image proxy
// that serves permissive CORS headers and normalizes to PNG.
const DefaultProxyTemplate = "https://wsrv.nl/?url={url}&output=png"

// urlPlaceholder is replaced by the query-escaped source URL.
const urlPlaceholder = "{url}"

// Proxy rewrites remote sources through a URL template.
// The zero value disables rewriting.
type Proxy struct {
	Template string
}

// NewProxy returns a proxy for template. An empty template disables it.
func NewProxy(template string) Proxy {
	return Proxy{Template: strings.TrimSpace(template)}
}

// Enabled reports whether remote sources are rewritten.
func (p Proxy) Enabled() bool {
	return p.Template != ""
}

// Rewrite returns the URL to fetch for src. Only remote sources are
// rewritten; data URIs and local paths come back unchanged.
func (p Proxy) Rewrite(src string) string {
	if !p.Enabled() || Classify(src) != KindRemote {
		return src
	}
	escaped := url.QueryEscape(strings.TrimSpace(src))
	if !strings.Contains(p.Template, urlPlaceholder) {
		return p.Template + escaped
	}
	return strings.ReplaceAll(p.Template, urlPlaceholder, escaped)
}
