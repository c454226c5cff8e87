package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/debanik/expenses-tracker/internal/config"
	"github.com/debanik/expenses-tracker/internal/googleauth"
	"github.com/debanik/expenses-tracker/internal/logger"
	"github.com/debanik/expenses-tracker/internal/review"
	"github.com/debanik/expenses-tracker/internal/sheets"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Minute, "Overall review session timeout")
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

	sheetsTS, err := googleauth.SheetsTokenSource(ctx, cfg.Credentials.ServiceAccount)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: Sheets credentials")
	}
	store, err := sheets.NewClient(ctx, sheetsTS, cfg.Sheet.ID, cfg.Sheet.Name, cfg.Sheet.PostReviewName)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: Sheets client")
	}

	svc := review.New(store, cfg.ReviewStatePath, os.Stdin, os.Stdout)
	if err := svc.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Review failed")
	}
}
