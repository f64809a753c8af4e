package app

import (
	"net/url"
	"strings"
)

// extractOriginHost reduces an Origin header value to "host[:port]".
func extractOriginHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOriginPattern checks host against an allowed-origins entry. Entries
// may be exact hosts, "*.domain" subdomain wildcards, or "host:*" to allow
// any port (useful for dev servers on the LAN).
func matchOriginPattern(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	default:
		return false
	}
}
