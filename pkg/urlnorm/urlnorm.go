package urlnorm

import (
	"errors"
	"net/url"
	"strings"
)

// Normalize returns the canonical form of a URL used for equality
// comparisons. The scheme and host are lower-cased, trailing slashes are
// stripped from the path (a bare root "/" is kept), and query and fragment
// survive untouched. Whitespace-only input collapses to the empty string.
// The function is idempotent and performs no I/O, so normalized values can
// be used as map and set keys everywhere.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
		u.RawPath = ""
	}
	return u.String()
}

// Origin returns the scheme and host of a URL, the two pieces needed to
// resolve root-relative references found on a page.
func Origin(raw string) (scheme, host string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", errors.New("url has no scheme or host")
	}
	return strings.ToLower(u.Scheme), strings.ToLower(u.Host), nil
}
