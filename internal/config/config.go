package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the binaries need: sheet coordinates, credential
// file locations and the Gmail labels that drive processing.
type Config struct {
	Sheet struct {
		ID             string `envconfig:"SHEET_ID"`
		Name           string `envconfig:"SHEET_NAME"`
		PostReviewName string `envconfig:"SHEET_NAME_POST_REVIEW"`
	}

	Credentials struct {
		Dir            string `envconfig:"CREDENTIALS_DIR" default:"credentials"`
		OAuthClient    string `envconfig:"GMAIL_OAUTH_CREDENTIALS_PATH"`
		Token          string `envconfig:"GMAIL_TOKEN_PATH"`
		ServiceAccount string `envconfig:"SERVICE_ACCOUNT_CREDENTIALS_PATH"`
	}

	Labels struct {
		CreditCard string `envconfig:"LABEL_CREDIT_CARD" default:"CreditCardTransactions"`
		UPI        string `envconfig:"LABEL_UPI" default:"UPITransactions"`
		Processed  string `envconfig:"LABEL_PROCESSED" default:"Processed"`
	}

	ReviewStatePath string `envconfig:"REVIEW_STATE_PATH" default:"review_state.json"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads <credentials dir>/.env when present, then the environment.
// Unset credential paths default to the usual files inside the dir.
func Load() (*Config, error) {
	dir := os.Getenv("CREDENTIALS_DIR")
	if dir == "" {
		dir = "credentials"
	}
	// Missing .env is fine; real deployments may set everything directly.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("Load: processing environment: %w", err)
	}

	if cfg.Credentials.OAuthClient == "" {
		cfg.Credentials.OAuthClient = filepath.Join(cfg.Credentials.Dir, "gmail_oauth_credentials.json")
	}
	if cfg.Credentials.Token == "" {
		cfg.Credentials.Token = filepath.Join(cfg.Credentials.Dir, "token.json")
	}
	if cfg.Credentials.ServiceAccount == "" {
		cfg.Credentials.ServiceAccount = filepath.Join(cfg.Credentials.Dir, "service_account_credentials.json")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Sheet.ID == "" {
		return fmt.Errorf("config: SHEET_ID is required")
	}
	if c.Sheet.Name == "" {
		return fmt.Errorf("config: SHEET_NAME is required")
	}
	if c.Sheet.PostReviewName == "" {
		return fmt.Errorf("config: SHEET_NAME_POST_REVIEW is required")
	}
	return nil
}
