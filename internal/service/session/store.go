package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kavinmuthu/scamlure/internal/model/chat"
	"github.com/kavinmuthu/scamlure/internal/model/intel"
)

var ErrSessionNotFound = errors.New("session not found")

// Turn carries everything a processed inbound message contributes to a
// session: the message itself, its extraction results, and the detector
// verdict for that message.
type Turn struct {
	Message    chat.Message
	Found      intel.Intelligence
	IsScam     bool
	Confidence float64
	ScamType   string
	Notes      []string
}

// entry pairs a session with its own mutex so distinct conversations
// never contend with each other. The registry lock guards only map
// lookup/insert and is never held across an entry mutation.
type entry struct {
	mu       sync.Mutex
	session  chat.Session
	dispatch bool
	watchers map[int]chan chat.Message
	nextID   int
}

// Store owns the lifecycle of all in-memory conversation state.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	maxTurns int
}

// NewStore builds an empty store. maxTurns caps how long one session is
// engaged; sessions past the cap are marked exhausted but still accept
// turns. A cap of 0 disables exhaustion.
func NewStore(maxTurns int) *Store {
	return &Store{
		entries:  make(map[string]*entry),
		maxTurns: maxTurns,
	}
}

// GetOrCreate returns a snapshot of the session, creating it on first
// sight. Creation happens at most once per id regardless of concurrent
// callers.
func (st *Store) GetOrCreate(id string) chat.Session {
	e := st.entryFor(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.LastActivityAt = time.Now().UTC()
	return snapshot(e.session)
}

// Snapshot returns a deep copy of the session state, or
// ErrSessionNotFound for an unknown id.
func (st *Store) Snapshot(id string) (chat.Session, error) {
	e, ok := st.lookup(id)
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.session), nil
}

// ApplyTurn records an inbound message together with its extraction and
// scoring outcome. The merge, flags, and history append are atomic per
// session; scamDetected never reverts once set.
func (st *Store) ApplyTurn(id string, t Turn) (chat.Session, error) {
	e, ok := st.lookup(id)
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s := &e.session
	msg := stampMessage(id, t.Message)
	s.Turns = append(s.Turns, msg)
	s.Intel.Merge(t.Found)

	if t.IsScam {
		s.ScamDetected = true
	}
	if t.Confidence > s.ScamConfidence {
		s.ScamConfidence = t.Confidence
	}
	if t.ScamType != "" {
		s.ScamType = t.ScamType
	}
	for _, note := range t.Notes {
		s.AgentNotes = appendNote(s.AgentNotes, note)
	}

	s.LastActivityAt = time.Now().UTC()
	if st.maxTurns > 0 && len(s.Turns) >= st.maxTurns {
		s.Exhausted = true
	}

	e.notify(msg)
	return snapshot(*s), nil
}

// Append records an outbound reply (or any message that needs no
// extraction) in the turn history.
func (st *Store) Append(id string, msg chat.Message) (chat.Session, error) {
	e, ok := st.lookup(id)
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	stamped := stampMessage(id, msg)
	e.session.Turns = append(e.session.Turns, stamped)
	e.session.LastActivityAt = time.Now().UTC()
	if st.maxTurns > 0 && len(e.session.Turns) >= st.maxTurns {
		e.session.Exhausted = true
	}

	e.notify(stamped)
	return snapshot(e.session), nil
}

// BeginDispatch claims the session for callback delivery. It returns
// ok=false when another dispatch is in flight, or when the session is
// already finalized and force is unset. The claim must be released with
// FinishDispatch.
func (st *Store) BeginDispatch(id string, force bool) (chat.Session, bool, error) {
	e, ok := st.lookup(id)
	if !ok {
		return chat.Session{}, false, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dispatch {
		return chat.Session{}, false, nil
	}
	if e.session.Finalized && !force {
		return chat.Session{}, false, nil
	}
	e.dispatch = true
	return snapshot(e.session), true, nil
}

// FinishDispatch releases the dispatch claim; delivered marks the
// session finalized so automatic dispatch never fires again.
func (st *Store) FinishDispatch(id string, delivered bool) {
	e, ok := st.lookup(id)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dispatch = false
	if delivered {
		e.session.Finalized = true
	}
}

// Watch subscribes to turns appended to a session. The returned cancel
// function must be called to release the subscription.
func (st *Store) Watch(id string) (<-chan chat.Message, func(), error) {
	e, ok := st.lookup(id)
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan chat.Message, 16)
	watchID := e.nextID
	e.nextID++
	e.watchers[watchID] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.watchers[watchID]; ok {
			delete(e.watchers, watchID)
			close(ch)
		}
	}
	return ch, cancel, nil
}

// CleanupExpired drops sessions idle longer than ttl and returns how
// many were removed.
func (st *Store) CleanupExpired(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().Add(-ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, e := range st.entries {
		e.mu.Lock()
		idle := e.session.LastActivityAt.Before(cutoff) && !e.dispatch
		if idle {
			for watchID, ch := range e.watchers {
				delete(e.watchers, watchID)
				close(ch)
			}
		}
		e.mu.Unlock()
		if idle {
			delete(st.entries, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[session] cleaned up %d expired session(s)", removed)
	}
	return removed
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.entries)
}

func (st *Store) entryFor(id string) *entry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[id]
	if !ok {
		now := time.Now().UTC()
		e = &entry{
			session: chat.Session{
				ID:             id,
				CreatedAt:      now,
				LastActivityAt: now,
			},
			watchers: make(map[int]chan chat.Message),
		}
		st.entries[id] = e
	}
	return e
}

func (st *Store) lookup(id string) (*entry, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.entries[id]
	return e, ok
}

// notify fans a new turn out to watchers without blocking turn
// application; slow watchers miss messages rather than stall the session.
func (e *entry) notify(msg chat.Message) {
	for _, ch := range e.watchers {
		select {
		case ch <- msg:
		default:
		}
	}
}

func stampMessage(sessionID string, msg chat.Message) chat.Message {
	msg.ID = uuid.NewString()
	msg.SessionID = sessionID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return msg
}

func appendNote(notes []string, note string) []string {
	if note == "" {
		return notes
	}
	for _, existing := range notes {
		if existing == note {
			return notes
		}
	}
	return append(notes, note)
}

func snapshot(s chat.Session) chat.Session {
	out := s
	out.Turns = append([]chat.Message(nil), s.Turns...)
	out.AgentNotes = append([]string(nil), s.AgentNotes...)
	out.Intel = s.Intel.Clone()
	return out
}
