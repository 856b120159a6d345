package frontier

import (
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/purell"
	"golang.org/x/net/publicsuffix"
)

// deriveQueueKey computes the default queue key for a URL that did not
// arrive with an explicit one: the registrable domain (effective
// TLD+1) of the URL's host. Normalizes with purell first, so host
// extraction is stable across URL variants that differ only in scheme
// or host case, or in an explicit default port.
//
// Uses purell.NormalizeURLString rather than the Must variant: this
// runs on caller-supplied ingest, where a malformed URL is an expected
// input to reject, not a programmer error to panic on.
func deriveQueueKey(rawURL string) (string, error) {
	normalized, err := purell.NormalizeURLString(rawURL,
		purell.FlagLowercaseScheme|purell.FlagLowercaseHost|purell.FlagRemoveDefaultPort)
	if err != nil {
		return "", fmt.Errorf("frontier: malformed url %q: %w", rawURL, err)
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("frontier: malformed url %q: %w", rawURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("frontier: url %q has no host", rawURL)
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// host is itself a public suffix, an IP literal, or otherwise
		// has no registrable domain (e.g. "localhost"); fall back to
		// the bare host rather than dropping the URL; it's usually
		// exactly what the operator wants for internal crawls.
		return host, nil
	}
	return etld1, nil
}
