package service

import (
	"sync"
	"time"

	"github.com/dyadlab/chat-logger-go/internal/model"
)

// UserTimeline is the append-only sequence of rows for one user, the
// unit of export. Rows are never removed or edited in place.
type UserTimeline struct {
	mu   sync.RWMutex
	rows []model.TimelineRow
}

// Append stamps the row with the current process time at millisecond
// resolution and appends it. Caller-supplied time fields populate only
// the named start/end/duration columns; the authoritative timestamp is
// never backdated.
func (t *UserTimeline) Append(row model.TimelineRow) {
	row.Timestamp = time.Now().Format(model.TimestampLayout)
	t.mu.Lock()
	t.rows = append(t.rows, row)
	t.mu.Unlock()
}

// Rows returns the rows in insertion order. The returned slice is a
// copy and safe to iterate repeatedly.
func (t *UserTimeline) Rows() []model.TimelineRow {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.TimelineRow, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *UserTimeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *UserTimeline) IsEmpty() bool {
	return t.Len() == 0
}

// TimelineStore owns the user -> timeline map. Timelines are created on
// first use and survive re-pairing; only guard and export-dedup state
// is reset when a fresh token is issued.
type TimelineStore struct {
	mu        sync.Mutex
	timelines map[string]*UserTimeline
}

func NewTimelineStore() *TimelineStore {
	return &TimelineStore{timelines: make(map[string]*UserTimeline)}
}

// Get returns the timeline for a user, creating it on first access.
func (s *TimelineStore) Get(userID string) *UserTimeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	tl, ok := s.timelines[userID]
	if !ok {
		tl = &UserTimeline{}
		s.timelines[userID] = tl
	}
	return tl
}

// UserIDs returns the ids of all users with a timeline.
func (s *TimelineStore) UserIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.timelines))
	for id := range s.timelines {
		ids = append(ids, id)
	}
	return ids
}
