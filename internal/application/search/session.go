package search

import (
	"context"
	"time"

	"github.com/jhyland87/chem-crawler/internal/infrastructure/cache"
)

const sessionKeyPrefix = "session:"

// Session is the persisted record of one completed search: the merged
// result set a UI can restore after a reload.  The sink is write-through;
// the aggregator itself never reads sessions back.
type Session struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Suppliers   []string  `json:"suppliers"`
	Results     []Result  `json:"results"`
	CompletedAt time.Time `json:"completed_at"`
}

// SessionSink persists completed search sessions to a cache store.
type SessionSink struct {
	store cache.Store
	ttl   time.Duration
}

// NewSessionSink builds a sink over store with the given retention.
func NewSessionSink(store cache.Store, ttl time.Duration) *SessionSink {
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	return &SessionSink{store: store, ttl: ttl}
}

// Save persists the session under its ID.  Persistence failures are
// swallowed: a lost session costs a UI reload, never a search.
func (s *SessionSink) Save(ctx context.Context, session Session) {
	if s == nil || s.store == nil {
		return
	}
	_ = s.store.Set(ctx, sessionKeyPrefix+session.ID, session, s.ttl)
}

// Load restores a previously saved session.
func (s *SessionSink) Load(ctx context.Context, id string) (*Session, error) {
	var session Session
	if err := s.store.Get(ctx, sessionKeyPrefix+id, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
