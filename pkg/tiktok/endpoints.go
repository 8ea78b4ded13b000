package tiktok

import (
	"fmt"
	"net/url"
	"strings"
)

// BaseURL is the public site root
const BaseURL = "https://www.tiktok.com"

// GetProfileURL constructs the canonical profile page URL for a username
func GetProfileURL(baseURL, username string) string {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return fmt.Sprintf("%s/@%s", strings.TrimRight(baseURL, "/"), username)
}

// ResolvePostURL resolves an href found on a page against the site root.
// Absolute hrefs are returned unchanged, relative ones become absolute.
func ResolvePostURL(baseURL, href string) (string, error) {
	if baseURL == "" {
		baseURL = BaseURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("invalid post link %q: %w", href, err)
	}

	return base.ResolveReference(ref).String(), nil
}
