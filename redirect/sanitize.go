package redirect

import (
	"net/url"
	"strings"
)

// Sanitize validates candidate as a same-origin redirect target and returns
// its path plus query string. The second return is false when the candidate
// parses to a different origin, a protocol-relative URL, or not at all —
// in which case no return target should be attached to the redirect.
func Sanitize(candidate, baseOrigin string) (string, bool) {
	if candidate == "" {
		return "", false
	}
	// Protocol-relative ("//evil.example/x") and backslash-confused
	// ("/\evil.example") forms resolve cross-origin in browsers even though
	// url.Parse treats them as paths.
	if strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return "", false
	}

	base, err := url.Parse(baseOrigin)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", false
	}
	u, err := base.Parse(candidate)
	if err != nil {
		return "", false
	}
	if u.Scheme != base.Scheme || u.Host != base.Host {
		return "", false
	}

	path := u.EscapedPath()
	if path == "" || !strings.HasPrefix(path, "/") {
		return "", false
	}
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery, true
	}
	return path, true
}
