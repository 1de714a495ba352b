package extract

import (
	"regexp"
	"strings"

	"github.com/kavinmuthu/scamlure/internal/model/intel"
)

// Known UPI handle suffixes. Specific handles are tried before the
// generic fallback so well-formed payment ids win over lookalikes.
var upiHandles = []string{
	"ybl", "paytm", "okaxis", "okicici", "oksbi", "okhdfcbank",
	"upi", "apl", "axl", "ibl", "sbi", "hdfc", "icici", "axis",
	"kotak", "phonepe", "gpay", "freecharge", "amazonpay",
}

var upiPatterns = buildUPIPatterns()

// Generic catch-all for unknown handles; matches with a dotted domain
// after @ are rejected below as emails/URLs.
var upiGenericPattern = regexp.MustCompile(`(?i)\b[a-zA-Z0-9._-]+@[a-zA-Z]{2,}\b`)

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+91[\s-]?[6-9]\d{9}`),
	regexp.MustCompile(`\b91[\s-]?[6-9]\d{9}\b`),
	regexp.MustCompile(`\b0[6-9]\d{9}\b`),
	regexp.MustCompile(`\b[6-9]\d{9}\b`),
}

var (
	digitRunPattern = regexp.MustCompile(`\b\d{9,18}\b`)
	ifscPattern     = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)
)

var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^\x60\[\]]+`),
	regexp.MustCompile(`(?i)\bwww\.[^\s<>"{}|\\^\x60\[\]]+`),
	regexp.MustCompile(`(?i)\b(?:bit\.ly|tinyurl\.com|goo\.gl|t\.co)/[a-zA-Z0-9]+`),
}

// Legitimate domains excluded from phishing-link extraction.
var safeDomains = []string{
	"google.com", "facebook.com", "youtube.com", "twitter.com",
	"linkedin.com", "instagram.com", "microsoft.com", "apple.com",
	"amazon.in", "flipkart.com", "paytm.com", "phonepe.com",
}

// Vocabulary of phrasings scammers lean on: urgency, threats, prizes,
// verification demands, payment pressure, and authority claims.
var suspiciousKeywords = []string{
	"urgent", "immediately", "now", "today", "expire", "last chance",
	"limited time", "act fast", "hurry", "quick", "asap",
	"blocked", "suspended", "deactivated", "terminated", "freeze",
	"legal action", "police", "arrest", "fine", "penalty",
	"won", "winner", "lottery", "prize", "reward", "cashback",
	"congratulations", "selected", "lucky", "claim", "free",
	"verify", "verification", "confirm", "update", "kyc",
	"otp", "password", "pin", "cvv",
	"transfer", "pay", "send money", "upi", "bank", "account",
	"click here", "click link",
	"rbi", "government", "income tax", "customs",
	"bank manager", "customer care", "support team", "official",
}

func buildUPIPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(upiHandles))
	for _, handle := range upiHandles {
		patterns = append(patterns, regexp.MustCompile(`(?i)[a-zA-Z0-9._-]+@`+handle+`\b`))
	}
	return patterns
}

// Extract runs every category grammar over the message and returns the
// normalized, per-message deduplicated findings. It never fails; the
// worst case for unusable input is an empty result.
func Extract(text string) intel.Intelligence {
	if strings.TrimSpace(text) == "" {
		return intel.Intelligence{}
	}
	return intel.Intelligence{
		BankAccounts:       extractBankAccounts(text),
		UPIIDs:             extractUPIIDs(text),
		PhishingLinks:      extractURLs(text),
		PhoneNumbers:       extractPhoneNumbers(text),
		SuspiciousKeywords: findSuspiciousKeywords(text),
	}
}

func extractUPIIDs(text string) []string {
	var ids []string
	for _, pattern := range upiPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			ids = appendUnique(ids, strings.ToLower(match))
		}
	}
	for _, loc := range upiGenericPattern.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		if isEmailLike(match, text[loc[1]:]) {
			continue
		}
		ids = appendUnique(ids, strings.ToLower(match))
	}
	return ids
}

// isEmailLike rejects generic @handle matches that are really email
// addresses or URL fragments: a dotted domain directly after the match.
// rest is the text following the match.
func isEmailLike(match, rest string) bool {
	if strings.HasSuffix(strings.ToLower(match), ".com") {
		return true
	}
	return len(rest) >= 2 && rest[0] == '.' && isLetter(rest[1])
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func extractPhoneNumbers(text string) []string {
	var phones []string
	for _, pattern := range phonePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			digits := stripNonDigits(match)
			if len(digits) < 10 {
				continue
			}
			phones = appendUnique(phones, "+91"+digits[len(digits)-10:])
		}
	}
	return phones
}

// extractBankAccounts classifies long digit runs. The phone grammar has
// precedence: a run it would accept is never reported as an account.
func extractBankAccounts(text string) []string {
	var accounts []string
	for _, match := range digitRunPattern.FindAllString(text, -1) {
		if looksLikePhone(match) {
			continue
		}
		accounts = appendUnique(accounts, match)
	}
	for _, match := range ifscPattern.FindAllString(text, -1) {
		accounts = appendUnique(accounts, match)
	}
	return accounts
}

func looksLikePhone(digits string) bool {
	switch len(digits) {
	case 10:
		return digits[0] >= '6' && digits[0] <= '9'
	case 11:
		return digits[0] == '0' && digits[1] >= '6' && digits[1] <= '9'
	case 12:
		return strings.HasPrefix(digits, "91") && digits[2] >= '6' && digits[2] <= '9'
	default:
		return false
	}
}

func extractURLs(text string) []string {
	var urls []string
	for _, pattern := range urlPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if isSafeDomain(match) {
				continue
			}
			urls = appendUnique(urls, match)
		}
	}
	return urls
}

func isSafeDomain(url string) bool {
	lowered := strings.ToLower(url)
	for _, safe := range safeDomains {
		if strings.Contains(lowered, safe) {
			return true
		}
	}
	return false
}

func findSuspiciousKeywords(text string) []string {
	lowered := strings.ToLower(text)
	var found []string
	for _, keyword := range suspiciousKeywords {
		if strings.Contains(lowered, keyword) {
			found = appendUnique(found, keyword)
		}
	}
	return found
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
