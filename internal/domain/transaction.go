package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Bank identifies the issuing bank detected from a transaction email.
type Bank string

const (
	BankHDFC    Bank = "HDFC"
	BankICICI   Bank = "ICICI"
	BankHSBC    Bank = "HSBC"
	BankAxis    Bank = "Axis"
	BankFederal Bank = "Federal"
	BankKotak   Bank = "Kotak"

	// BankUnknown means no known sender or body pattern matched.
	BankUnknown Bank = ""
)

// Mode is the payment channel a transaction came through.
type Mode string

const (
	ModeCreditCard Mode = "CreditCard"
	ModeUPI        Mode = "UPI"
)

// Transaction is one normalized expense extracted from a bank notification
// email. It maps directly onto a row of the raw worksheet and is immutable
// once appended there.
type Transaction struct {
	ID        string          // fingerprint-derived, unique across the sheet
	Date      civil.Date      // from the email's internal date, local time
	Time      civil.Time      // separate column in the sheet
	Recipient string          // merchant / payee description
	Amount    decimal.Decimal // always positive, INR
	Bank      Bank
	Mode      Mode
}

// ReviewedTransaction is a raw transaction after manual categorization.
// It is appended to the post-review worksheet.
type ReviewedTransaction struct {
	Transaction
	Category  string
	IsShared  bool
	UserShare decimal.Decimal // meaningful only when IsShared
}

// Categories is the fixed expense taxonomy used during review.
var Categories = []string{
	"Investment",
	"Home & Essentials",
	"Commute",
	"Discretionary",
	"Shopping",
	"Health & Wellbeing",
	"Miscellaneous",
}

// LookupCategory resolves a category name case-insensitively against the
// taxonomy, returning the canonical spelling.
func LookupCategory(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, trimmed) {
			return c, true
		}
	}
	return "", false
}

// Fingerprint builds the stable identity string for a transaction:
// "<date> <time>|<recipient>|<amount>|<bank>". Any change to this format
// breaks dedup against rows already in the sheet.
func Fingerprint(date civil.Date, tm civil.Time, recipient string, amount decimal.Decimal, bank Bank) string {
	return fmt.Sprintf("%s %s|%s|%s|%s", date, tm, recipient, fingerprintAmount(amount), bank)
}

// fingerprintAmount renders the amount for the fingerprint. Integral
// amounts keep an explicit decimal point ("1499.0", not "1499"); existing
// sheet rows were fingerprinted that way, and ids must keep matching them.
func fingerprintAmount(amount decimal.Decimal) string {
	if amount.IsInteger() {
		return amount.StringFixed(1)
	}
	return amount.String()
}

// TransactionID returns the lowercase hex MD5 of the fingerprint.
func TransactionID(date civil.Date, tm civil.Time, recipient string, amount decimal.Decimal, bank Bank) string {
	sum := md5.Sum([]byte(Fingerprint(date, tm, recipient, amount, bank)))
	return hex.EncodeToString(sum[:])
}
