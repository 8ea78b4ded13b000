package tiktok

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"tiktoksync/pkg/errors"
)

// VideoLinkSelector matches post links on a rendered profile page
const VideoLinkSelector = "a[href*='/video/']"

// FirstVideoLink returns the href of the first post link in document order.
// The platform renders posts newest-first, so this is taken to be the latest
// post; a pinned post would also render first.
func FirstVideoLink(doc *goquery.Document) (string, bool) {
	var href string
	doc.Find(VideoLinkSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if h, ok := s.Attr("href"); ok && strings.TrimSpace(h) != "" {
			href = h
			return false
		}
		return true
	})
	return href, href != ""
}

// LatestPostURL finds the latest post on a rendered profile page and returns
// its absolute URL
func LatestPostURL(baseURL, html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeNoPostsFound, err, "failed to parse profile page")
	}

	href, ok := FirstVideoLink(doc)
	if !ok {
		return "", errors.New(errors.ErrorTypeNoPostsFound, "no video links found on profile page")
	}

	postURL, err := ResolvePostURL(baseURL, href)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeNoPostsFound, err, fmt.Sprintf("unusable video link %q", href))
	}

	return postURL, nil
}
