package intel

import "strings"

// Intelligence accumulates every indicator recovered from a conversation.
// Categories only ever grow; values keep their discovery order.
type Intelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// Merge unions newly extracted values into the ledger. Duplicates are
// dropped by exact string equality; extraction already normalizes values
// (case-folded identifiers, separator-free phone numbers).
func (in *Intelligence) Merge(found Intelligence) {
	in.BankAccounts = union(in.BankAccounts, found.BankAccounts)
	in.UPIIDs = union(in.UPIIDs, found.UPIIDs)
	in.PhishingLinks = union(in.PhishingLinks, found.PhishingLinks)
	in.PhoneNumbers = union(in.PhoneNumbers, found.PhoneNumbers)
	in.SuspiciousKeywords = union(in.SuspiciousKeywords, found.SuspiciousKeywords)
}

// Clone returns an independent copy with non-nil slices, so callback
// payloads marshal empty categories as [] rather than null.
func (in Intelligence) Clone() Intelligence {
	return Intelligence{
		BankAccounts:       cloneValues(in.BankAccounts),
		UPIIDs:             cloneValues(in.UPIIDs),
		PhishingLinks:      cloneValues(in.PhishingLinks),
		PhoneNumbers:       cloneValues(in.PhoneNumbers),
		SuspiciousKeywords: cloneValues(in.SuspiciousKeywords),
	}
}

// HasPaymentLead reports whether any payment-relevant category holds a
// value. Links and keywords are corroborating only.
func (in Intelligence) HasPaymentLead() bool {
	return len(in.UPIIDs) > 0 || len(in.BankAccounts) > 0 || len(in.PhoneNumbers) > 0
}

// Empty reports whether nothing has been extracted yet.
func (in Intelligence) Empty() bool {
	return len(in.BankAccounts) == 0 && len(in.UPIIDs) == 0 && len(in.PhishingLinks) == 0 &&
		len(in.PhoneNumbers) == 0 && len(in.SuspiciousKeywords) == 0
}

// Sufficient decides whether the ledger justifies reporting: a payment
// lead must exist and the conversation must have run for at least
// minTurns messages, so a single lucky disclosure does not end the
// engagement immediately.
func Sufficient(in Intelligence, turns, minTurns int) bool {
	return in.HasPaymentLead() && turns >= minTurns
}

func union(have, add []string) []string {
	for _, v := range add {
		v = strings.TrimSpace(v)
		if v == "" || contains(have, v) {
			continue
		}
		have = append(have, v)
	}
	return have
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func cloneValues(values []string) []string {
	out := make([]string, 0, len(values))
	return append(out, values...)
}
