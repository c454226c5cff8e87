package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SHEET_ID", "sheet-123")
	t.Setenv("SHEET_NAME", "Expenses")
	t.Setenv("SHEET_NAME_POST_REVIEW", "Reviewed")
	// Point at a directory without a .env so only the test env applies.
	t.Setenv("CREDENTIALS_DIR", t.TempDir())
}

func TestLoad(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sheet-123", cfg.Sheet.ID)
	assert.Equal(t, "Expenses", cfg.Sheet.Name)
	assert.Equal(t, "Reviewed", cfg.Sheet.PostReviewName)

	// Label and level defaults.
	assert.Equal(t, "CreditCardTransactions", cfg.Labels.CreditCard)
	assert.Equal(t, "UPITransactions", cfg.Labels.UPI)
	assert.Equal(t, "Processed", cfg.Labels.Processed)
	assert.Equal(t, "info", cfg.LogLevel)

	// Credential paths default into the credentials dir.
	assert.Equal(t, filepath.Join(cfg.Credentials.Dir, "token.json"), cfg.Credentials.Token)
	assert.Equal(t, filepath.Join(cfg.Credentials.Dir, "gmail_oauth_credentials.json"), cfg.Credentials.OAuthClient)
}

func TestLoad_ExplicitPathsWin(t *testing.T) {
	setRequired(t)
	t.Setenv("GMAIL_TOKEN_PATH", "/srv/secrets/gmail-token.json")
	t.Setenv("LABEL_PROCESSED", "Handled")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/secrets/gmail-token.json", cfg.Credentials.Token)
	assert.Equal(t, "Handled", cfg.Labels.Processed)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("SHEET_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHEET_ID")
}
