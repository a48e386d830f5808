package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// maxURLLength bounds remote image references. Inline data URIs are not
// subject to it.
const maxURLLength = 4096

// ValidateSource validates an image source reference before it is assigned
// to a cell. A source is one of:
//   - an http or https URL
//   - a data URI carrying an inline image ("data:image/png;base64,...")
//   - a local file path
//
// The validation rules are intentionally conservative:
//   - No empty sources
//   - No control characters or null bytes outside data URIs
//   - URLs must parse and carry a host
func ValidateSource(src string) error {
	if src == "" {
		return New(ErrCodeInvalidSource, "image source cannot be empty")
	}

	switch {
	case strings.HasPrefix(src, "data:"):
		return validateDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return ValidateURL(src)
	}

	for _, r := range src {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidSource, "image path contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidSource, "URL cannot be empty")
	}
	if len(rawURL) > maxURLLength {
		return New(ErrCodeInvalidSource, "URL too long (max %d characters)", maxURLLength)
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidSource, "URL must use http or https scheme")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidSource, err, "malformed URL")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidSource, "URL must include a host")
	}
	return nil
}

func validateDataURI(src string) error {
	header, _, ok := strings.Cut(src, ",")
	if !ok {
		return New(ErrCodeInvalidSource, "data URI is missing its payload")
	}
	if !strings.HasPrefix(header, "data:image/") {
		return New(ErrCodeInvalidSource, "data URI must carry an image media type")
	}
	return nil
}
