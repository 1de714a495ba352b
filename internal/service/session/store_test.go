package session

import (
	"sync"
	"testing"
	"time"

	"github.com/kavinmuthu/scamlure/internal/model/chat"
	"github.com/kavinmuthu/scamlure/internal/model/intel"
)

func TestGetOrCreateCreatesOnce(t *testing.T) {
	st := NewStore(0)

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			st.GetOrCreate("session-1")
		}()
	}
	wg.Wait()

	if st.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", st.Len())
	}
}

func TestConcurrentFirstMessagesLoseNothing(t *testing.T) {
	st := NewStore(0)

	var wg sync.WaitGroup
	wg.Add(2)
	for _, text := range []string{"first", "second"} {
		go func(text string) {
			defer wg.Done()
			st.GetOrCreate("session-1")
			if _, err := st.ApplyTurn("session-1", Turn{
				Message: chat.Message{Sender: chat.SenderScammer, Text: text},
			}); err != nil {
				t.Errorf("apply turn: %v", err)
			}
		}(text)
	}
	wg.Wait()

	snap, err := st.Snapshot("session-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.TurnCount() != 2 {
		t.Fatalf("expected 2 turns, got %d", snap.TurnCount())
	}
	if st.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", st.Len())
	}
}

func TestScamDetectedMonotonic(t *testing.T) {
	st := NewStore(0)
	st.GetOrCreate("s")

	if _, err := st.ApplyTurn("s", Turn{
		Message: chat.Message{Sender: chat.SenderScammer, Text: "account blocked"},
		IsScam:  true,
	}); err != nil {
		t.Fatalf("apply turn: %v", err)
	}

	// Later harmless turns must not reset the flag.
	for i := 0; i < 5; i++ {
		snap, err := st.ApplyTurn("s", Turn{
			Message: chat.Message{Sender: chat.SenderScammer, Text: "hello"},
			IsScam:  false,
		})
		if err != nil {
			t.Fatalf("apply turn: %v", err)
		}
		if !snap.ScamDetected {
			t.Fatal("scamDetected reverted to false")
		}
	}
}

func TestLedgerGrowsAcrossTurns(t *testing.T) {
	st := NewStore(0)
	st.GetOrCreate("s")

	if _, err := st.ApplyTurn("s", Turn{
		Message: chat.Message{Sender: chat.SenderScammer, Text: "x"},
		Found:   intel.Intelligence{UPIIDs: []string{"a@ybl"}},
	}); err != nil {
		t.Fatalf("apply turn: %v", err)
	}
	snap, err := st.ApplyTurn("s", Turn{
		Message: chat.Message{Sender: chat.SenderScammer, Text: "y"},
		Found:   intel.Intelligence{UPIIDs: []string{"a@ybl", "b@paytm"}, PhoneNumbers: []string{"+919876543210"}},
	})
	if err != nil {
		t.Fatalf("apply turn: %v", err)
	}

	if len(snap.Intel.UPIIDs) != 2 {
		t.Fatalf("expected 2 upi ids, got %v", snap.Intel.UPIIDs)
	}
	if len(snap.Intel.PhoneNumbers) != 1 {
		t.Fatalf("expected 1 phone, got %v", snap.Intel.PhoneNumbers)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	st := NewStore(0)
	st.GetOrCreate("s")
	if _, err := st.ApplyTurn("s", Turn{
		Message: chat.Message{Sender: chat.SenderScammer, Text: "x"},
		Found:   intel.Intelligence{UPIIDs: []string{"a@ybl"}},
	}); err != nil {
		t.Fatalf("apply turn: %v", err)
	}

	snap, _ := st.Snapshot("s")
	snap.Intel.UPIIDs[0] = "tampered"
	snap.Turns[0].Text = "tampered"

	fresh, _ := st.Snapshot("s")
	if fresh.Intel.UPIIDs[0] != "a@ybl" || fresh.Turns[0].Text != "x" {
		t.Fatal("snapshot shares state with the store")
	}
}

func TestSnapshotUnknownSession(t *testing.T) {
	st := NewStore(0)
	if _, err := st.Snapshot("missing"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDispatchClaim(t *testing.T) {
	st := NewStore(0)
	st.GetOrCreate("s")

	_, ok, err := st.BeginDispatch("s", false)
	if err != nil || !ok {
		t.Fatalf("first claim failed: ok=%t err=%v", ok, err)
	}
	if _, ok, _ := st.BeginDispatch("s", false); ok {
		t.Fatal("second claim succeeded while first in flight")
	}
	if _, ok, _ := st.BeginDispatch("s", true); ok {
		t.Fatal("forced claim must also respect in-flight dispatch")
	}

	st.FinishDispatch("s", true)

	if _, ok, _ := st.BeginDispatch("s", false); ok {
		t.Fatal("claim succeeded on finalized session without force")
	}
	if _, ok, _ := st.BeginDispatch("s", true); !ok {
		t.Fatal("forced claim must work on finalized session")
	}
	st.FinishDispatch("s", true)

	snap, _ := st.Snapshot("s")
	if !snap.Finalized {
		t.Fatal("session not finalized after successful dispatch")
	}
}

func TestFailedDispatchLeavesSessionEligible(t *testing.T) {
	st := NewStore(0)
	st.GetOrCreate("s")

	if _, ok, _ := st.BeginDispatch("s", false); !ok {
		t.Fatal("claim failed")
	}
	st.FinishDispatch("s", false)

	snap, _ := st.Snapshot("s")
	if snap.Finalized {
		t.Fatal("failed dispatch must not finalize")
	}
	if _, ok, _ := st.BeginDispatch("s", false); !ok {
		t.Fatal("session not eligible for re-dispatch after failure")
	}
}

func TestMaxTurnsMarksExhausted(t *testing.T) {
	st := NewStore(3)
	st.GetOrCreate("s")

	var snap chat.Session
	for i := 0; i < 3; i++ {
		var err error
		snap, err = st.Append("s", chat.Message{Sender: chat.SenderScammer, Text: "hi"})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if !snap.Exhausted {
		t.Fatal("session should be exhausted at max turns")
	}
}

func TestWatchReceivesAppendedTurns(t *testing.T) {
	st := NewStore(0)
	st.GetOrCreate("s")

	turns, cancel, err := st.Watch("s")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer cancel()

	if _, err := st.Append("s", chat.Message{Sender: chat.SenderUser, Text: "reply"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	select {
	case msg := <-turns:
		if msg.Text != "reply" {
			t.Fatalf("unexpected watched message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher never notified")
	}
}

func TestCleanupExpired(t *testing.T) {
	st := NewStore(0)
	st.GetOrCreate("stale")

	time.Sleep(20 * time.Millisecond)
	st.GetOrCreate("fresh")

	removed := st.CleanupExpired(10 * time.Millisecond)
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := st.Snapshot("stale"); err != ErrSessionNotFound {
		t.Fatal("stale session survived cleanup")
	}
	if _, err := st.Snapshot("fresh"); err != nil {
		t.Fatal("fresh session removed by cleanup")
	}
}
