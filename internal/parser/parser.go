// Package parser classifies bank notification emails and extracts
// transaction fields from their bodies.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/debanik/expenses-tracker/internal/domain"
)

// ErrNotTransaction marks emails that match a bank but describe a reversed,
// declined or failed payment rather than a charge. Such messages are safe
// to mark processed without recording anything.
var ErrNotTransaction = errors.New("not a transaction notification")

// Fields holds what a rule extracts from an email body.
type Fields struct {
	Recipient string
	Amount    decimal.Decimal
}

// rule is one bank+mode extraction pattern pair. Group 1 of amount captures
// the numeric amount (thousands separators allowed), group 1 of recipient
// captures the merchant or payee.
type rule struct {
	amount    *regexp.Regexp
	recipient *regexp.Regexp
}

// The card-number suffixes (7883, 9339) anchor the patterns to the specific
// cards these alerts are sent for; alerts for other cards are skipped.
var creditCardRules = map[domain.Bank]rule{
	domain.BankHDFC: {
		amount:    regexp.MustCompile(`(?i)7883\s+for\s+(?:Rs\.?|INR)\s+([\d,]+(?:\.\d+)?)`),
		recipient: regexp.MustCompile(`(?i)at\s+(.*?)\s+on`),
	},
	domain.BankICICI: {
		amount:    regexp.MustCompile(`(?i)transaction\s+of\s+(?:Rs\.?|INR)\s+([\d,]+(?:\.\d+)?)`),
		recipient: regexp.MustCompile(`(?i)Info:\s+(.*?)\.`),
	},
	domain.BankHSBC: {
		amount:    regexp.MustCompile(`(?i)been\s+used\s+for\s+(?:Rs\.?|INR)\s+([\d,]+(?:\.\d+)?)`),
		recipient: regexp.MustCompile(`(?i)payment to\s+(.*?)\s+on`),
	},
	domain.BankAxis: {
		amount:    regexp.MustCompile(`(?i)9339\s+for\s+(?:Rs\.?|INR)\s+([\d,]+(?:\.\d+)?)`),
		recipient: regexp.MustCompile(`(?i)at\s+(.*?)\s+on`),
	},
	domain.BankFederal: {
		amount:    regexp.MustCompile(`(?i)txn\s+of\s+(?:₹|Rs\.?|INR)\s*([\d,]+(?:\.\d+)?)`),
		recipient: regexp.MustCompile(`(?i)at\s+(.*?)\s+on`),
	},
}

// UPI amount patterns also accept a bare three-letter currency code, so
// foreign-currency notices ("Sent USD 12.00 to ...") still extract.
var upiRules = map[domain.Bank]rule{
	domain.BankFederal: {
		amount:    regexp.MustCompile(`(?i)(?:₹|Rs\.?|INR|\b[A-Z]{3}\b)\s*([\d,]+(?:\.\d+)?)`),
		recipient: regexp.MustCompile(`(?i)to\s+(.*?)\.`),
	},
	domain.BankKotak: {
		amount:    regexp.MustCompile(`(?i)Sent\s+(?:₹|Rs\.?|INR|\b[A-Z]{3}\b)\s*([\d,]+(?:\.\d+)?)`),
		recipient: regexp.MustCompile(`(?i)to\s+(.*?)\s*on`),
	},
}

var nonTransactionPattern = regexp.MustCompile(`(?i)has\s+been\s+reversed|declined|not\s+be\s+completed`)

// bankOrder fixes detection priority so a body mentioning two banks (e.g. a
// transfer) classifies deterministically.
var bankOrder = []domain.Bank{
	domain.BankHDFC,
	domain.BankICICI,
	domain.BankHSBC,
	domain.BankAxis,
	domain.BankFederal,
	domain.BankKotak,
}

var bankHints = map[domain.Bank]struct{ sender, body string }{
	domain.BankHDFC:    {"hdfc", "hdfc bank"},
	domain.BankICICI:   {"icici", "icici bank"},
	domain.BankHSBC:    {"hsbc", "hsbc bank"},
	domain.BankAxis:    {"axis", "axis bank"},
	domain.BankFederal: {"federal", "federal bank"},
	domain.BankKotak:   {"kotak", "kotak bank"},
}

// DetectBank classifies an email by sender address, falling back to a
// "<bank> bank" mention in the body. Returns BankUnknown when nothing
// matches; unknown emails are skipped upstream, never failed.
func DetectBank(sender, body string) domain.Bank {
	lowerSender := strings.ToLower(sender)
	lowerBody := strings.ToLower(body)
	for _, bank := range bankOrder {
		hint := bankHints[bank]
		if strings.Contains(lowerSender, hint.sender) || strings.Contains(lowerBody, hint.body) {
			return bank
		}
	}
	return domain.BankUnknown
}

// Extract applies the (bank, mode) rule to the body. It returns
// ErrNotTransaction for reversal/decline notices, and a descriptive error
// when the body matches neither, leaving the message for manual review.
func Extract(bank domain.Bank, mode domain.Mode, body string) (Fields, error) {
	rules := creditCardRules
	if mode == domain.ModeUPI {
		rules = upiRules
	}

	r, ok := rules[bank]
	if !ok {
		return Fields{}, fmt.Errorf("Extract: no %s rule for bank %s", mode, bank)
	}

	amountMatch := r.amount.FindStringSubmatch(body)
	recipientMatch := r.recipient.FindStringSubmatch(body)
	if amountMatch != nil && recipientMatch != nil {
		amount, err := parseAmount(amountMatch[1])
		if err != nil {
			return Fields{}, fmt.Errorf("Extract: bank %s: %w", bank, err)
		}
		recipient := strings.TrimSpace(recipientMatch[1])
		if recipient == "" {
			return Fields{}, fmt.Errorf("Extract: bank %s: empty recipient", bank)
		}
		return Fields{Recipient: recipient, Amount: amount}, nil
	}

	if nonTransactionPattern.MatchString(body) {
		return Fields{}, ErrNotTransaction
	}

	return Fields{}, fmt.Errorf("Extract: bank %s %s: body matched no pattern", bank, mode)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if amount.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("non-positive amount %q", raw)
	}
	return amount, nil
}
