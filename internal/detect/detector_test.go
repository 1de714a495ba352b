package detect

import (
	"strings"
	"testing"

	"github.com/kavinmuthu/scamlure/internal/extract"
	"github.com/kavinmuthu/scamlure/internal/model/intel"
)

func TestScoreThreateningMessage(t *testing.T) {
	text := "Your bank account is blocked! Share UPI ID immediately."
	verdict := Score(text, extract.Extract(text))

	if !verdict.IsScam {
		t.Fatal("expected scam verdict")
	}
	if !hasTactic(verdict.Tactics, "threat") {
		t.Fatalf("expected threat tactic, got %v", verdict.Tactics)
	}
	if !hasTactic(verdict.Tactics, "urgency") {
		t.Fatalf("expected urgency tactic, got %v", verdict.Tactics)
	}
	if verdict.ScamType != "Threat-based Scam" {
		t.Fatalf("unexpected scam type: %s", verdict.ScamType)
	}
}

func TestScoreBenignMessage(t *testing.T) {
	verdict := Score("hello, how are you doing", intel.Intelligence{})

	if verdict.IsScam {
		t.Fatalf("benign message flagged: %+v", verdict)
	}
	if verdict.ScamType != "" {
		t.Fatalf("unexpected scam type for benign message: %s", verdict.ScamType)
	}
	if verdict.Notes != "No specific scam indicators" {
		t.Fatalf("unexpected notes: %s", verdict.Notes)
	}
}

func TestIntelligenceAloneMarksScam(t *testing.T) {
	// No keywords at all, but a payment identifier was disclosed.
	found := intel.Intelligence{UPIIDs: []string{"scammer@ybl"}}
	verdict := Score("ok here it is", found)

	if !verdict.IsScam {
		t.Fatal("payment identifier alone must mark the message as scam")
	}
	if !strings.Contains(verdict.Notes, "scammer@ybl") {
		t.Fatalf("notes should mention the upi id: %s", verdict.Notes)
	}
}

func TestSingleTacticMarksScam(t *testing.T) {
	// One low-weight rule is enough for the flag; weights only shape
	// confidence.
	verdict := Score("this is urgent", intel.Intelligence{})

	if !verdict.IsScam {
		t.Fatal("single matched tactic must mark the message as scam")
	}
	if !hasTactic(verdict.Tactics, "urgency") {
		t.Fatalf("expected urgency tactic, got %v", verdict.Tactics)
	}
	if verdict.ScamType != "Urgency-based Scam" {
		t.Fatalf("unexpected scam type: %s", verdict.ScamType)
	}
}

func TestBankAccountAloneMarksScam(t *testing.T) {
	found := intel.Intelligence{BankAccounts: []string{"123456789012"}}
	verdict := Score("here 123456789012", found)

	if !verdict.IsScam {
		t.Fatal("bank account disclosure alone must mark the message as scam")
	}
}

func TestEachRuleCountedOnce(t *testing.T) {
	// Multiple urgency words must contribute the urgency weight once.
	verdict := Score("urgent! act fast, hurry, limited time", intel.Intelligence{})

	count := 0
	for _, tactic := range verdict.Tactics {
		if tactic == "urgency" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("urgency counted %d times", count)
	}
}

func TestScoreDeterministic(t *testing.T) {
	text := "Congratulations! You won a lottery prize. Pay processing fee to claim."
	found := extract.Extract(text)

	first := Score(text, found)
	for i := 0; i < 3; i++ {
		again := Score(text, found)
		if again.IsScam != first.IsScam || again.Confidence != first.Confidence ||
			again.ScamType != first.ScamType {
			t.Fatal("scoring is not deterministic")
		}
	}
	if first.ScamType != "Lottery/Prize Scam" {
		t.Fatalf("unexpected scam type: %s", first.ScamType)
	}
}

func TestConfidenceBounded(t *testing.T) {
	text := "URGENT: account blocked, verify KYC now, share OTP and PIN, " +
		"click http://fake.xyz, you won a prize, refund waiting, RBI official"
	found := extract.Extract(text)
	verdict := Score(text, found)

	if verdict.Confidence < 0 || verdict.Confidence > 1 {
		t.Fatalf("confidence out of range: %f", verdict.Confidence)
	}
	if !verdict.IsScam {
		t.Fatal("expected scam verdict")
	}
}

func hasTactic(tactics []string, name string) bool {
	for _, t := range tactics {
		if t == name {
			return true
		}
	}
	return false
}
