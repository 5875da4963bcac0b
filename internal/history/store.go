package history

import (
	"sync"
	"time"

	"github.com/askdoc-io/askdoc/internal/model"
)

// Store keeps per-session conversation history in memory. Sessions are
// created on first reference and live until swept. Appends on the same
// session are serialized by a per-session lock; unrelated sessions do not
// contend.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*session
	maxMessages int
	now         func() time.Time
}

type session struct {
	mu         sync.Mutex
	messages   []model.Message
	lastActive time.Time
	// gone marks a session the sweeper removed from the map. A caller that
	// fetched the pointer before the removal must not touch it; re-fetching
	// yields a live session.
	gone bool
}

// NewStore creates a store. maxMessages <= 0 means unbounded history.
func NewStore(maxMessages int) *Store {
	return &Store{
		sessions:    make(map[string]*session),
		maxMessages: maxMessages,
		now:         time.Now,
	}
}

func (s *Store) get(sessionID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[sessionID]
	if sess == nil {
		sess = &session{lastActive: s.now()}
		s.sessions[sessionID] = sess
	}
	return sess
}

// Append adds messages to the session in one atomic step, so a question and
// its answer can never be interleaved with another caller's pair.
func (s *Store) Append(sessionID string, msgs ...model.Message) {
	if len(msgs) == 0 {
		return
	}
	for {
		sess := s.get(sessionID)
		sess.mu.Lock()
		if sess.gone {
			sess.mu.Unlock()
			continue
		}
		sess.messages = append(sess.messages, msgs...)
		if s.maxMessages > 0 && len(sess.messages) > s.maxMessages {
			drop := len(sess.messages) - s.maxMessages
			sess.messages = append([]model.Message(nil), sess.messages[drop:]...)
		}
		sess.lastActive = s.now()
		sess.mu.Unlock()
		return
	}
}

// History returns a copy of the session's ordered messages.
func (s *Store) History(sessionID string) []model.Message {
	for {
		sess := s.get(sessionID)
		sess.mu.Lock()
		if sess.gone {
			sess.mu.Unlock()
			continue
		}
		out := make([]model.Message, len(sess.messages))
		copy(out, sess.messages)
		sess.mu.Unlock()
		return out
	}
}

// SweepIdle drops sessions with no activity for at least maxIdle and reports
// how many were removed.
func (s *Store) SweepIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.lastActive.Before(cutoff) {
			sess.gone = true
			delete(s.sessions, id)
			removed++
		}
		sess.mu.Unlock()
	}
	return removed
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
