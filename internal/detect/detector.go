package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kavinmuthu/scamlure/internal/model/intel"
)

// Rule groups the matchers for one manipulation tactic. Each rule
// contributes its weight at most once per message.
type Rule struct {
	Name        string
	Description string
	Weight      int
	Patterns    []*regexp.Regexp
}

// Rules is the ordered scoring table. Order also settles scam-type
// naming ties: earlier rules are checked first.
var Rules = []Rule{
	{
		Name:        "urgency",
		Description: "Urgency tactics",
		Weight:      2,
		Patterns: compile(
			`\bimmediately\b`, `\burgent\b`, `\btoday\b`, `\bnow\b`, `\basap\b`,
			`\bquickly\b`, `\bexpir(e|ing|ed)\b`, `\blast chance\b`,
			`\blimited time\b`, `\bact fast\b`, `\bhurry\b`,
		),
	},
	{
		Name:        "threat",
		Description: "Threat-based manipulation",
		Weight:      3,
		Patterns: compile(
			`\bblock(ed)?\b`, `\bsuspend(ed)?\b`, `\bdeactivat(e|ed)\b`,
			`\bterminate(d)?\b`, `\bfreez(e|ing)\b`, `\blegal action\b`,
			`\bpolice\b`, `\barrest\b`, `\bfine\b`, `\bpenalty\b`,
		),
	},
	{
		Name:        "sensitive_request",
		Description: "Request for sensitive information",
		Weight:      4,
		Patterns: compile(
			`\botp\b`, `\bpin\b`, `\bpassword\b`, `\bcvv\b`, `\bcard number\b`,
			`\bexpiry\b`, `\bbank account\b`, `\baccount number\b`,
			`\bupi\s*(id|pin)?\b`, `\baadhaar\b`, `\bpan\b`,
			`\bshare\b.*\b(details|info)\b`,
		),
	},
	{
		Name:        "lottery",
		Description: "Lottery/Prize scam",
		Weight:      4,
		Patterns: compile(
			`\bwon\b`, `\bwinner\b`, `\blottery\b`, `\bprize\b`, `\bclaim\b`,
			`\bcongratulation\b`, `\blucky\b`, `\bselected\b`,
			`\bcash prize\b`, `\breward\b`,
		),
	},
	{
		Name:        "financial_bait",
		Description: "Financial bait",
		Weight:      3,
		Patterns: compile(
			`\brefund\b`, `\bcashback\b`, `\breward\b`, `\bfree\b`, `\bbonus\b`,
			`\bloan approved\b`, `\bcredit\b.*\bapproved\b`, `\bmoney\b.*\btransfer\b`,
		),
	},
	{
		Name:        "impersonation",
		Description: "Authority impersonation",
		Weight:      3,
		Patterns: compile(
			`\bbank\s*(manager|officer)\b`, `\brbi\b`, `\bgovernment\b`,
			`\bincome\s*tax\b`, `\bcustomer\s*(care|support)\b`, `\bofficial\b`,
			`\bauthorized\b`, `\bverified\b`,
		),
	},
	{
		Name:        "link_request",
		Description: "Suspicious link sharing",
		Weight:      2,
		Patterns: compile(
			`\bclick\s*(here|link|button)\b`, `\bvisit\b`, `\bopen\s*(link|url)\b`,
			`\bdownload\b`, `https?://`, `\bbit\.ly\b`, `\btinyurl\b`,
		),
	},
	{
		Name:        "kyc",
		Description: "KYC/Verification scam",
		Weight:      3,
		Patterns: compile(
			`\bkyc\b`, `\bverif(y|ication)\b`, `\bupdate\b.*\b(details|info|account)\b`,
			`\bmandatory\b`, `\bcompulsory\b`,
		),
	},
}

// Verdict is the per-message scoring outcome.
type Verdict struct {
	IsScam     bool
	Confidence float64
	Tactics    []string
	ScamType   string
	Notes      string
}

// Score evaluates a single message. Any matched tactic marks the message
// as a scam attempt; the weighted score only shapes confidence. found
// carries the extraction results for the same message, and any payment
// identifier, bank account, phone number, or link is itself sufficient
// evidence even with no tactic matched.
func Score(text string, found intel.Intelligence) Verdict {
	lowered := strings.ToLower(text)

	total := 0
	var tactics []string
	for _, rule := range Rules {
		for _, pattern := range rule.Patterns {
			if pattern.MatchString(lowered) {
				total += rule.Weight
				tactics = append(tactics, rule.Name)
				break
			}
		}
	}

	confidence := confidenceFor(total, found)
	isScam := len(tactics) > 0 || hasIntelLead(found)

	return Verdict{
		IsScam:     isScam,
		Confidence: confidence,
		Tactics:    tactics,
		ScamType:   ScamType(tactics),
		Notes:      buildNotes(tactics, found),
	}
}

func confidenceFor(total int, found intel.Intelligence) float64 {
	maxScore := 0
	for _, rule := range Rules {
		maxScore += rule.Weight
	}

	confidence := float64(total) / float64(maxScore)
	if confidence > 1 {
		confidence = 1
	}
	if len(found.UPIIDs) > 0 {
		confidence += 0.15
	}
	if len(found.PhoneNumbers) > 0 {
		confidence += 0.1
	}
	if len(found.PhishingLinks) > 0 {
		confidence += 0.2
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

func hasIntelLead(found intel.Intelligence) bool {
	return found.HasPaymentLead() || len(found.PhishingLinks) > 0
}

// ScamType names the primary scam flavor from the matched tactics.
func ScamType(tactics []string) string {
	matched := func(name string) bool {
		for _, t := range tactics {
			if t == name {
				return true
			}
		}
		return false
	}
	switch {
	case matched("lottery"):
		return "Lottery/Prize Scam"
	case matched("kyc"):
		return "KYC/Verification Scam"
	case matched("financial_bait"):
		return "Financial Fraud"
	case matched("threat"):
		return "Threat-based Scam"
	case matched("impersonation"):
		return "Impersonation Scam"
	case matched("sensitive_request"):
		return "Data Theft Scam"
	case matched("link_request"):
		return "Phishing Scam"
	case matched("urgency"):
		return "Urgency-based Scam"
	case len(tactics) > 0:
		return "General Scam"
	default:
		return ""
	}
}

func buildNotes(tactics []string, found intel.Intelligence) string {
	var notes []string
	if len(tactics) > 0 {
		descriptions := make([]string, 0, len(tactics))
		for _, rule := range Rules {
			for _, t := range tactics {
				if rule.Name == t {
					descriptions = append(descriptions, rule.Description)
				}
			}
		}
		notes = append(notes, "Detected: "+strings.Join(descriptions, ", "))
	}
	if len(found.UPIIDs) > 0 {
		notes = append(notes, fmt.Sprintf("UPI IDs found: %s", strings.Join(found.UPIIDs, ", ")))
	}
	if len(found.PhishingLinks) > 0 {
		notes = append(notes, "Suspicious URLs detected")
	}
	if len(found.PhoneNumbers) > 0 {
		notes = append(notes, fmt.Sprintf("Phone numbers found: %s", strings.Join(found.PhoneNumbers, ", ")))
	}
	if len(notes) == 0 {
		return "No specific scam indicators"
	}
	return strings.Join(notes, "; ")
}

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
