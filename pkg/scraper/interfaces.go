package scraper

import (
	"context"
	"io"

	"tiktoksync/pkg/browser"
	"tiktoksync/pkg/models"
	"tiktoksync/pkg/storage"
)

// RecordStore lists and appends records in the external table
type RecordStore interface {
	ListKnownMediaURLs(ctx context.Context) ([]string, error)
	CreateRecord(ctx context.Context, rec *models.VideoRecord, media io.Reader) error
}

// ProfileBrowser is one browser session over the creator's profile
type ProfileBrowser interface {
	OpenProfile(ctx context.Context, username string) error
	ResolveLatestPostURL() (string, error)
	OpenPost(ctx context.Context, postURL string) (*browser.Snapshot, error)
	Close() error
}

// SessionFactory creates a fresh browser session for a run
type SessionFactory func() ProfileBrowser

// MediaDownloader fetches media into the scratch file
type MediaDownloader interface {
	Download(ctx context.Context, mediaSrc string, dst *storage.Scratch) (int64, error)
}
