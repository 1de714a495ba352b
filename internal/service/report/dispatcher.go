package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kavinmuthu/scamlure/internal/model/chat"
	"github.com/kavinmuthu/scamlure/internal/model/intel"
	sessionstore "github.com/kavinmuthu/scamlure/internal/service/session"
)

// ErrDispatchExhausted signals that every delivery attempt failed; the
// session stays unfinalized and remains eligible for the next trigger.
var ErrDispatchExhausted = errors.New("report delivery attempts exhausted")

// Publisher mirrors finalized reports to an event stream for downstream
// consumers. Optional.
type Publisher interface {
	Publish(subject string, data any) error
}

// SubjectFinalReport is the event subject for finalized reports.
const SubjectFinalReport = "scamlure.report.final"

// Dispatcher delivers evaluation reports. Automatic dispatch is gated on
// the sufficiency predicate and fires effectively once per session;
// forced dispatch bypasses the gate but shares the retry policy.
type Dispatcher struct {
	store       *sessionstore.Store
	url         string
	client      *http.Client
	maxAttempts int
	backoffBase time.Duration
	minTurns    int
	publisher   Publisher
}

// Option tweaks dispatcher construction.
type Option func(*Dispatcher)

// WithPublisher mirrors delivered reports to an event publisher.
func WithPublisher(p Publisher) Option {
	return func(d *Dispatcher) { d.publisher = p }
}

// WithBackoffBase overrides the first retry delay (doubled per attempt).
func WithBackoffBase(base time.Duration) Option {
	return func(d *Dispatcher) { d.backoffBase = base }
}

// New builds a dispatcher posting to url with the given per-attempt
// timeout and bounded attempt count.
func New(store *sessionstore.Store, url string, timeout time.Duration, maxAttempts, minTurns int, opts ...Option) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	d := &Dispatcher{
		store:       store,
		url:         url,
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		backoffBase: 500 * time.Millisecond,
		minTurns:    minTurns,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MaybeFinalize fires the callback if the session has crossed the
// sufficiency threshold and has not been reported yet. A nil error with
// no delivery means the gate was simply not met.
func (d *Dispatcher) MaybeFinalize(ctx context.Context, sessionID string) error {
	snap, err := d.store.Snapshot(sessionID)
	if err != nil {
		return err
	}
	if snap.Finalized || !snap.ScamDetected {
		return nil
	}
	if !intel.Sufficient(snap.Intel, snap.TurnCount(), d.minTurns) {
		return nil
	}
	return d.dispatch(ctx, sessionID, false)
}

// ForceFinalize delivers the report regardless of sufficiency or prior
// finalization. Used by the operational force-report surface.
func (d *Dispatcher) ForceFinalize(ctx context.Context, sessionID string) error {
	return d.dispatch(ctx, sessionID, true)
}

func (d *Dispatcher) dispatch(ctx context.Context, sessionID string, force bool) error {
	snap, ok, err := d.store.BeginDispatch(sessionID, force)
	if err != nil {
		return err
	}
	if !ok {
		// Another dispatch is in flight or the session is finalized.
		return nil
	}

	payload := chat.BuildReport(snap)
	deliverErr := d.deliver(ctx, payload)
	d.store.FinishDispatch(sessionID, deliverErr == nil)

	if deliverErr != nil {
		log.Printf("[report] delivery failed for session=%s: %v", sessionID, deliverErr)
		return deliverErr
	}

	log.Printf("[report] delivered for session=%s, messages=%d, scam=%t",
		sessionID, payload.TotalMessagesExchanged, payload.ScamDetected)

	if d.publisher != nil {
		if err := d.publisher.Publish(SubjectFinalReport, payload); err != nil {
			// Event mirroring is best effort; the callback already landed.
			log.Printf("[report] event publish failed for session=%s: %v", sessionID, err)
		}
	}
	return nil
}

// deliver POSTs the payload, retrying transient failures with doubling
// backoff until the attempt budget runs out.
func (d *Dispatcher) deliver(ctx context.Context, payload chat.Report) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	var lastErr error
	backoff := d.backoffBase
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = d.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		log.Printf("[report] attempt %d/%d failed for session=%s: %v",
			attempt, d.maxAttempts, payload.SessionID, lastErr)

		if attempt == d.maxAttempts {
			break
		}
		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		backoff *= 2
	}

	return fmt.Errorf("%w: %v", ErrDispatchExhausted, lastErr)
}

func (d *Dispatcher) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d body=%q", resp.StatusCode, string(snippet))
	}
	return nil
}
