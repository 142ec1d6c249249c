package ledger

import (
	"sync"
	"time"
)

// Session is a caller-owned buffer of temporal entries tied to one view
// session. Nothing in it is ever persisted; Discard ends its lifetime.
type Session struct {
	ID string

	mu         sync.Mutex
	temporales []Entry
	lastStamp  int64
	lastUsed   time.Time
	discarded  bool
}

func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, lastUsed: now}
}

// AddTemporal stores e as a Temporal entry and returns it with its assigned
// "temporal-<millis>" id. Stamps are strictly increasing within a session.
func (s *Session) AddTemporal(e Entry, now time.Time) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return Entry{}, false
	}
	stamp := now.UnixMilli()
	if stamp <= s.lastStamp {
		stamp = s.lastStamp + 1
	}
	s.lastStamp = stamp
	s.lastUsed = now

	e.ID = TemporalEntryID(stamp)
	e.Kind = KindTemporal
	e.Valor = e.Valor.Abs()
	if e.Estado == "" {
		e.Estado = StatusCompletada
	}
	s.temporales = append(s.temporales, e)
	return e, true
}

// Remove drops one temporal entry by id.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.temporales {
		if e.ID == id {
			s.temporales = append(s.temporales[:i:i], s.temporales[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns a copy of the session's temporal entries.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.temporales...)
}

func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temporales = nil
	s.discarded = true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SessionStore keeps live sessions in memory and expires idle ones.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
}

func NewSessionStore(idle time.Duration) *SessionStore {
	return &SessionStore{
		sessions: map[string]*Session{},
		idle:     idle,
		now:      time.Now,
	}
}

// Open registers a new session under id, replacing any previous one.
func (st *SessionStore) Open(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if old, ok := st.sessions[id]; ok {
		old.Discard()
	}
	s := NewSession(id, st.now())
	st.sessions[id] = s
	return s
}

// Get returns the live session under id. The expiry check and the removal
// happen under one lock so a concurrent Open is never undone.
func (st *SessionStore) Get(id string) (*Session, bool) {
	now := st.now()
	st.mu.Lock()
	s, ok := st.sessions[id]
	if !ok {
		st.mu.Unlock()
		return nil, false
	}
	if st.idle > 0 && now.Sub(s.idleSince()) > st.idle {
		delete(st.sessions, id)
		st.mu.Unlock()
		s.Discard()
		return nil, false
	}
	s.touch(now)
	st.mu.Unlock()
	return s, true
}

func (st *SessionStore) Close(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.Discard()
	}
	return ok
}

// Sweep discards every session idle for longer than the store's timeout and
// returns how many were dropped.
func (st *SessionStore) Sweep() int {
	if st.idle <= 0 {
		return 0
	}
	now := st.now()
	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if now.Sub(s.idleSince()) > st.idle {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()
	for _, s := range expired {
		s.Discard()
	}
	return len(expired)
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
