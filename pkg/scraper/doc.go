// Package scraper sequences a single sync run.
//
// A run fetches the URLs already in the record store, opens the creator's
// profile in a browser session, and stops if the latest post is already
// recorded. Otherwise it reads the post page metadata, downloads the video
// into the scratch file and creates one record with the file attached.
//
// Nothing is retried. The first failure ends the run and is returned as-is.
//
// Usage:
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//		return err
//	}
//	result, err := s.SyncLatestVideo(ctx)
package scraper
