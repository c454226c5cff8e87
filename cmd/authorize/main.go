package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/debanik/expenses-tracker/internal/config"
	"github.com/debanik/expenses-tracker/internal/googleauth"
	"github.com/debanik/expenses-tracker/internal/logger"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "How long to wait for browser consent")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New("info")
		fallbackLog.Fatal().Err(err).Msg("Error: loading configuration")
	}

	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := googleauth.Authorize(ctx, cfg.Credentials.OAuthClient, cfg.Credentials.Token); err != nil {
		log.Fatal().Err(err).Msg("Authorization failed")
	}

	fmt.Printf("Gmail token saved to %s.\n", cfg.Credentials.Token)
}
