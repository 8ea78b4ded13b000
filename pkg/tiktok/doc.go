// Package tiktok holds what the sync knows about the video platform's public
// pages: URL shapes, where post links sit on a profile page and the layout
// of the page-state JSON embedded in a post page.
//
// Nothing here performs network I/O; functions take rendered HTML and return
// values, which keeps them testable without a browser.
package tiktok
