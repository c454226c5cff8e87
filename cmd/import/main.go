package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/debanik/expenses-tracker/internal/config"
	"github.com/debanik/expenses-tracker/internal/domain"
	"github.com/debanik/expenses-tracker/internal/gmail"
	"github.com/debanik/expenses-tracker/internal/googleauth"
	"github.com/debanik/expenses-tracker/internal/importer"
	"github.com/debanik/expenses-tracker/internal/logger"
	"github.com/debanik/expenses-tracker/internal/sheets"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Preview what would be appended without writing or labeling")
	onlyLabel := flag.String("label", "", "Process only this source label (default: both)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall run timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New("info")
		fallbackLog.Fatal().Err(err).Msg("Error: loading configuration")
	}

	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	sources := []importer.Source{
		{Label: cfg.Labels.CreditCard, Mode: domain.ModeCreditCard},
		{Label: cfg.Labels.UPI, Mode: domain.ModeUPI},
	}
	if *onlyLabel != "" {
		sources = filterSources(sources, *onlyLabel)
		if len(sources) == 0 {
			log.Fatal().Str("label", *onlyLabel).Msg("Error: -label matches no configured source label")
		}
	}

	gmailTS, err := googleauth.GmailTokenSource(ctx, cfg.Credentials.OAuthClient, cfg.Credentials.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: Gmail credentials")
	}
	mailbox, err := gmail.NewClient(ctx, gmailTS)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: Gmail client")
	}

	sheetsTS, err := googleauth.SheetsTokenSource(ctx, cfg.Credentials.ServiceAccount)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: Sheets credentials")
	}
	store, err := sheets.NewClient(ctx, sheetsTS, cfg.Sheet.ID, cfg.Sheet.Name, cfg.Sheet.PostReviewName)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: Sheets client")
	}

	imp := importer.New(mailbox, store, sources, cfg.Labels.Processed, *dryRun)
	summary, err := imp.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Import run failed")
	}

	fmt.Printf("Processed %d messages: %d appended, %d duplicates, %d skipped.\n",
		summary.Found, summary.Appended, summary.Duplicates, summary.Skipped)
}

func filterSources(sources []importer.Source, label string) []importer.Source {
	var out []importer.Source
	for _, s := range sources {
		if s.Label == label {
			out = append(out, s)
		}
	}
	return out
}
