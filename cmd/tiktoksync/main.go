package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"tiktoksync/pkg/auth"
	"tiktoksync/pkg/config"
	"tiktoksync/pkg/logger"
	"tiktoksync/pkg/scraper"
	"tiktoksync/pkg/ui"
)

func main() {
	if err := run(); err != nil {
		ui.PrintError("SYNC FAILED", err.Error())
		os.Exit(1)
	}
}

func run() error {
	ui.PrintLogo()

	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	if err := resolveAPIKey(cfg, log); err != nil {
		return err
	}

	term := ui.NewTerminal(os.Stdout)
	term.SetQuiet(cfg.Logging.Quiet())
	term.Info("Target profile", "@"+cfg.TikTok.Username)
	term.Info("Record store", cfg.Airtable.BaseID+"/"+cfg.Airtable.TableName)

	s, err := scraper.New(cfg, scraper.WithReporter(term), scraper.WithLogger(log))
	if err != nil {
		return err
	}

	result, err := s.SyncLatestVideo(context.Background())
	if err != nil {
		return err
	}

	printSummary(term, result)
	return nil
}

// resolveAPIKey fills cfg.Airtable.APIKey from the credential stores when
// neither the config file nor the environment supplied one
func resolveAPIKey(cfg *config.Config, log logger.Logger) error {
	if cfg.Airtable.APIKey != "" {
		return nil
	}

	key, source, err := auth.DefaultManager().Retrieve(cfg.Airtable.BaseID)
	if err != nil {
		return fmt.Errorf("no record store API key: set %s or store it in the system keyring as %s/%s: %w",
			auth.APIKeyEnvVar, auth.KeyringService, auth.KeyringUser(cfg.Airtable.BaseID), err)
	}

	log.WithFields(map[string]interface{}{
		"source": source,
		"key":    auth.MaskToken(key),
	}).Info("Loaded record store API key")
	cfg.Airtable.APIKey = key
	return nil
}

func printSummary(term *ui.Terminal, result *scraper.SyncResult) {
	term.Info("Run", result.RunID)
	term.Info("Latest video", result.PostURL)
	switch {
	case result.Skipped():
		term.Success("Nothing to do, latest video is already recorded")
	case result.Created():
		rec := result.Record
		term.Info("Caption", rec.Caption)
		term.Info("Location", rec.Location)
		if rec.HasPostedAt() {
			term.Info("Posted", *rec.DatePosted+" "+*rec.TimePosted+" UTC")
		}
		term.Success(fmt.Sprintf("Done in %s", result.Duration.Round(time.Millisecond)))
	}
}
