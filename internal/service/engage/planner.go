package engage

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kavinmuthu/scamlure/internal/model/chat"
	"github.com/kavinmuthu/scamlure/internal/model/persona"
	"github.com/kavinmuthu/scamlure/internal/service/ai"
)

// baseRules is the non-negotiable part of the system prompt: never break
// character, never tip off the scammer, always probe for payment details.
const baseRules = `You are playing the role of a naive, trusting person who received a suspicious message.

YOUR GOALS:
1. NEVER reveal that you suspect this is a scam
2. Act confused but willing to cooperate
3. Ask clarifying questions to extract information
4. Try to get the other side to reveal:
   - Their UPI ID or payment details
   - Bank account information
   - Phone numbers to call
   - Any links they want you to visit

IMPORTANT RULES:
- Keep responses SHORT (1-2 sentences only)
- Sound like a real person, NOT an AI
- NEVER use formal language
- NEVER mention "scam", "fraud", or "suspicious"
- Show you are willing to help/pay but confused
- Ask for specific details (UPI ID, account number, link)
- Stay consistent with everything you said earlier in the conversation`

// Engagement phases keyed by how far the conversation has run.
const (
	PhaseInitial    = "initial"
	PhaseTrust      = "building_trust"
	PhaseGathering  = "information_gathering"
	PhaseExtraction = "extraction"
)

// fallbackReplies keeps the conversation alive when the generator fails.
// Categories are picked from the scammer's message content first, then
// from the engagement phase.
var fallbackReplies = map[string][]string{
	"initial": {
		"Oh my, what is happening? Please explain.",
		"What? My account is problem? Please help!",
		"I am worried now. What should I do?",
		"Oh dear, is this real? Who are you calling from?",
	},
	"concerned": {
		"This is very concerning. What details you need?",
		"I don't want problem. How to fix this?",
		"My son is not here. Can you guide me please?",
		"I'm confused. What exactly is the issue?",
	},
	"payment": {
		"I can pay. What is your UPI ID?",
		"Should I use PhonePe or Paytm? What's your ID?",
		"I have money. Where should I send?",
		"What account number for transfer?",
		"My grandson helps with payment. What details needed?",
	},
	"link": {
		"I have phone. Can you send the link?",
		"What website should I visit? Please share.",
		"I don't know how to click. Can you resend link?",
		"Is this link safe? What will happen when I open?",
	},
	"verification": {
		"What OTP? I didn't receive anything.",
		"You need my password? Is this safe?",
		"Should I share my bank details? Which one?",
		"I have many accounts. Which one is blocked?",
	},
	"general": {
		"I don't understand these technical things.",
		"Please explain again. I'm old person.",
		"My hearing is not good. Can you repeat?",
		"You are calling from which bank?",
	},
}

// maxReplyLength truncates runaway generator output.
const maxReplyLength = 200

// Planner decides the next conversational move and assembles the
// context for the external generator.
type Planner struct {
	gen          ai.Generator
	personas     persona.Store
	historyLimit int
	timeout      time.Duration
}

// New builds a planner. gen may be nil, in which case every reply comes
// from the fallback tables.
func New(gen ai.Generator, personas persona.Store, historyLimit int, timeout time.Duration) *Planner {
	if historyLimit < 1 {
		historyLimit = 1
	}
	return &Planner{gen: gen, personas: personas, historyLimit: historyLimit, timeout: timeout}
}

// Reply produces the outbound message for the latest inbound one. The
// session snapshot already includes the latest scammer turn. Reply never
// fails; generator trouble degrades to a canned, persona-consistent stall.
func (p *Planner) Reply(ctx context.Context, s chat.Session, latest string, scamType string) string {
	turn := s.TurnCount()

	if p.gen == nil {
		return p.fallback(latest, turn)
	}

	req := ai.Request{
		System:  p.systemPrompt(turn, scamType),
		History: historyWindow(s.Turns, p.historyLimit),
		Query:   latest,
	}

	genCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	text, err := p.gen.Generate(genCtx, req)
	if err != nil {
		log.Printf("[engage] generator failed for session=%s: %v", s.ID, err)
		return p.fallback(latest, turn)
	}

	reply := postProcess(text)
	if reply == "" {
		return p.fallback(latest, turn)
	}
	return reply
}

// PhaseFor maps conversation length to an engagement phase.
func PhaseFor(turn int) string {
	switch {
	case turn <= 2:
		return PhaseInitial
	case turn <= 5:
		return PhaseTrust
	case turn <= 10:
		return PhaseGathering
	default:
		return PhaseExtraction
	}
}

// StrategyNote summarizes the tactics observed in one inbound message
// for the report's agent notes.
func StrategyNote(text string, turn int) string {
	lowered := strings.ToLower(text)
	var notes []string

	if containsAny(lowered, "urgent", "immediately", "now", "today") {
		notes = append(notes, "Scammer using urgency tactics")
	}
	if containsAny(lowered, "block", "suspend", "freeze") {
		notes = append(notes, "Threat of account action detected")
	}
	if containsAny(lowered, "upi", "paytm", "phonepe", "gpay") {
		notes = append(notes, "Payment method mentioned - extracting UPI")
	}
	if containsAny(lowered, "link", "click", "website") {
		notes = append(notes, "Phishing attempt - ask for link")
	}
	if containsAny(lowered, "otp", "password", "pin") {
		notes = append(notes, "Credential theft attempt detected")
	}

	notes = append(notes, "Engagement phase: "+PhaseFor(turn))
	return strings.Join(notes, "; ")
}

func (p *Planner) systemPrompt(turn int, scamType string) string {
	card := p.personaCard()
	if scamType == "" {
		scamType = "Unknown"
	}
	return fmt.Sprintf("%s\n\n%s\n\nCURRENT ENGAGEMENT PHASE: %s\nSCAM TYPE DETECTED: %s\n\nGenerate a SHORT reply (1-2 sentences) as this person. Try to extract: UPI ID, bank account, phone number, or link.",
		baseRules, card, PhaseFor(turn), scamType)
}

func (p *Planner) personaCard() string {
	v := p.personas.Default()
	var b strings.Builder
	b.WriteString("PERSONA:\n")
	b.WriteString(fmt.Sprintf("- Name: %s (%s)\n", v.Name, v.AgeBand))
	b.WriteString(fmt.Sprintf("- Tone: %s\n", v.Tone))
	b.WriteString(fmt.Sprintf("- Background: %s", v.PromptHint))
	for _, quirk := range v.Quirks {
		b.WriteString("\n- Quirk: " + quirk)
	}
	return b.String()
}

// fallback picks a canned reply by message content, then by phase.
// Selection rotates with the turn count so repeated failures do not
// repeat the same line.
func (p *Planner) fallback(latest string, turn int) string {
	lowered := strings.ToLower(latest)

	var category string
	switch {
	case containsAny(lowered, "upi", "pay", "transfer", "money", "send", "amount", "rs", "₹"):
		category = "payment"
	case containsAny(lowered, "link", "click", "website", "url", "download"):
		category = "link"
	case containsAny(lowered, "otp", "password", "pin", "verify", "details"):
		category = "verification"
	case turn <= 2:
		category = "initial"
	case turn <= 5:
		category = "concerned"
	default:
		category = "general"
	}

	replies := fallbackReplies[category]
	return replies[turn%len(replies)]
}

// historyWindow returns the last limit turns, excluding the final one:
// the latest scammer message travels as the query, not as history.
func historyWindow(turns []chat.Message, limit int) []chat.Message {
	if len(turns) == 0 {
		return nil
	}
	window := turns[:len(turns)-1]
	if len(window) > limit {
		window = window[len(window)-limit:]
	}
	return window
}

func postProcess(text string) string {
	reply := strings.TrimSpace(text)
	if idx := strings.IndexByte(reply, '\n'); idx >= 0 {
		reply = reply[:idx]
	}
	reply = strings.Trim(strings.TrimSpace(reply), `"'`)
	if len(reply) > maxReplyLength {
		cut := maxReplyLength
		for cut > 0 && !utf8.RuneStart(reply[cut]) {
			cut--
		}
		reply = reply[:cut] + "..."
	}
	return reply
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
