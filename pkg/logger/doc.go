// Package logger provides structured logging for tiktoksync.
//
// It wraps zerolog behind a small Logger interface so that components can be
// handed a logger (or a TestLogger in tests) instead of reaching for globals.
//
//	logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Found new video", map[string]interface{}{
//	    "post_url": postURL,
//	})
//
// Console output is colourised; when a log file is configured every line is
// also appended to it as JSON.
package logger
