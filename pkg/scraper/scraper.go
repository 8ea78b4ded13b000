package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"tiktoksync/internal/downloader"
	"tiktoksync/pkg/airtable"
	"tiktoksync/pkg/browser"
	"tiktoksync/pkg/config"
	"tiktoksync/pkg/errors"
	"tiktoksync/pkg/logger"
	"tiktoksync/pkg/metadata"
	"tiktoksync/pkg/models"
	"tiktoksync/pkg/storage"
	"tiktoksync/pkg/ui"
)

// Stage is a point the pipeline reached during a run
type Stage string

const (
	StageStart             Stage = "start"
	StageKnownURLsFetched  Stage = "known_urls_fetched"
	StageLatestDiscovered  Stage = "latest_discovered"
	StageSkipped           Stage = "skipped_duplicate"
	StageMetadataExtracted Stage = "metadata_extracted"
	StageMediaDownloaded   Stage = "media_downloaded"
	StageRecordCreated     Stage = "record_created"
)

// SyncResult describes what a run did
type SyncResult struct {
	RunID      string
	Username   string
	Stage      Stage
	KnownCount int
	PostURL    string
	Record     *models.VideoRecord
	Duration   time.Duration
}

// Created reports whether the run appended a new record
func (r *SyncResult) Created() bool {
	return r.Stage == StageRecordCreated
}

// Skipped reports whether the latest post was already recorded
func (r *SyncResult) Skipped() bool {
	return r.Stage == StageSkipped
}

// Scraper runs one sync of a creator's latest video into the record store
type Scraper struct {
	store      RecordStore
	newSession SessionFactory
	downloader MediaDownloader
	scratch    *storage.Scratch
	username   string
	reporter   ui.Reporter
	logger     logger.Logger
}

// Option overrides a collaborator built from config
type Option func(*Scraper)

// WithRecordStore replaces the record store client
func WithRecordStore(store RecordStore) Option {
	return func(s *Scraper) { s.store = store }
}

// WithSessionFactory replaces the browser session factory
func WithSessionFactory(f SessionFactory) Option {
	return func(s *Scraper) { s.newSession = f }
}

// WithDownloader replaces the media downloader
func WithDownloader(d MediaDownloader) Option {
	return func(s *Scraper) { s.downloader = d }
}

// WithReporter sets where progress is narrated
func WithReporter(r ui.Reporter) Option {
	return func(s *Scraper) { s.reporter = r }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// New creates a Scraper from config. Collaborators not supplied through
// options are built from cfg; cfg.Airtable.APIKey must already be resolved.
func New(cfg *config.Config, opts ...Option) (*Scraper, error) {
	s := &Scraper{username: cfg.TikTok.Username}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.GetLogger()
	}
	if s.reporter == nil {
		s.reporter = ui.NewTerminal(nil)
	}

	scratch, err := storage.NewScratch(cfg.Download.ScratchPath)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare scratch file: %w", err)
	}
	s.scratch = scratch

	if s.store == nil {
		s.store = airtable.NewClient(&cfg.Airtable, cfg.Airtable.APIKey, s.logger)
	}
	if s.downloader == nil {
		s.downloader = downloader.New(cfg.Download.Timeout, cfg.TikTok.UserAgent, cfg.TikTok.BaseURL+"/", s.logger)
	}
	if s.newSession == nil {
		launch := browser.RodLauncher(browser.RodOptions{
			Headless:          cfg.Browser.Headless,
			BinPath:           cfg.Browser.BinPath,
			UserAgent:         cfg.TikTok.UserAgent,
			IdleInterval:      cfg.Browser.IdleInterval,
			NavigationTimeout: cfg.Browser.NavigationTimeout,
		})
		baseURL := cfg.TikTok.BaseURL
		log := s.logger
		s.newSession = func() ProfileBrowser {
			return browser.NewSession(launch, baseURL, log)
		}
	}

	return s, nil
}

// SyncLatestVideo records the creator's latest video unless it is already
// in the store. Any failure aborts the run and is returned unchanged; the
// browser session is released exactly once on every path.
func (s *Scraper) SyncLatestVideo(ctx context.Context) (result *SyncResult, err error) {
	start := time.Now()
	result = &SyncResult{
		RunID:    uuid.NewString(),
		Username: s.username,
		Stage:    StageStart,
	}
	log := s.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"username": s.username,
	})

	session := s.newSession()
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("Failed to release browser session")
		}
		result.Duration = time.Since(start)
		if err != nil {
			log.WithError(err).ErrorWithFields("Sync failed", map[string]interface{}{
				"stage": string(result.Stage),
			})
			s.reporter.Error(fmt.Sprintf("Sync failed after %s", result.Stage), err)
		}
	}()

	// 1. known URLs
	s.reporter.Step("Fetching existing records")
	known, err := s.store.ListKnownMediaURLs(ctx)
	if err != nil {
		return result, err
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, u := range known {
		knownSet[u] = struct{}{}
	}
	result.KnownCount = len(knownSet)
	s.advance(log, result, StageKnownURLsFetched, map[string]interface{}{"known": result.KnownCount})
	s.reporter.Info("Existing records", fmt.Sprintf("%d", result.KnownCount))

	// 2. latest post
	s.reporter.Step(fmt.Sprintf("Opening profile @%s", s.username))
	if err = session.OpenProfile(ctx, s.username); err != nil {
		return result, err
	}
	postURL, err := session.ResolveLatestPostURL()
	if err != nil {
		return result, err
	}
	result.PostURL = postURL
	s.advance(log, result, StageLatestDiscovered, map[string]interface{}{"url": postURL})

	// 3. dedup
	if _, ok := knownSet[postURL]; ok {
		s.advance(log, result, StageSkipped, map[string]interface{}{"url": postURL})
		s.reporter.Warning("Latest video already recorded, skipping")
		return result, nil
	}
	s.reporter.Info("New video", postURL)

	// 4. metadata and media
	snap, err := session.OpenPost(ctx, postURL)
	if err != nil {
		return result, err
	}
	meta, err := metadata.Extract(snap.HTML)
	if err != nil {
		return result, err
	}
	record := meta.ToRecord(postURL)
	s.advance(log, result, StageMetadataExtracted, map[string]interface{}{
		"has_location":  meta.Location != nil,
		"has_posted_at": record.HasPostedAt(),
	})
	if !record.HasPostedAt() {
		log.Warn("Post timestamp not found, recording without date and time")
	}

	s.reporter.Step("Downloading video")
	size, err := s.downloader.Download(ctx, meta.MediaSrc, s.scratch)
	if err != nil {
		return result, err
	}
	record.MediaPath = s.scratch.Path()
	record.MediaSize = size
	s.advance(log, result, StageMediaDownloaded, map[string]interface{}{"bytes": size})

	// 5. record
	s.reporter.Step("Uploading to record store")
	if err = s.upload(ctx, record); err != nil {
		return result, err
	}
	result.Record = record
	s.advance(log, result, StageRecordCreated, nil)
	s.reporter.Success("Record created")

	return result, nil
}

func (s *Scraper) upload(ctx context.Context, record *models.VideoRecord) error {
	media, err := s.scratch.Open()
	if err != nil {
		return errors.Wrap(errors.ErrorTypeStoreWrite, err, "failed to read downloaded media")
	}
	defer media.Close()

	return s.store.CreateRecord(ctx, record, media)
}

func (s *Scraper) advance(log logger.Logger, result *SyncResult, stage Stage, fields map[string]interface{}) {
	result.Stage = stage
	logger.LogStep(log, string(stage), fields)
}
