package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type waiter struct {
	userID   string
	username string
	enqueued time.Time
}

// JoinResult reports the outcome of a join attempt. When Paired is
// false the caller has been queued and should wait for a partner.
type JoinResult struct {
	Paired      bool
	Token       string
	PartnerID   string
	PartnerName string
}

// Matchmaker pairs users first-come-first-served. A joining user is
// matched with the longest-waiting candidate, or queued when nobody is
// waiting.
type Matchmaker struct {
	directory *SessionDirectory

	mu    sync.Mutex
	queue []waiter
}

func NewMatchmaker(directory *SessionDirectory) *Matchmaker {
	return &Matchmaker{directory: directory}
}

// Join matches the user with the head of the waiting queue, or
// enqueues them. Joining twice while waiting refreshes the queue entry
// instead of duplicating it.
func (m *Matchmaker) Join(userID, username string) JoinResult {
	m.directory.SetDisplayName(userID, username)

	m.mu.Lock()

	for i := range m.queue {
		if m.queue[i].userID == userID {
			m.queue[i].username = username
			m.queue[i].enqueued = time.Now()
			m.mu.Unlock()
			log.Debug().Str("userId", userID).Msg("already waiting, refreshed queue entry")
			return JoinResult{}
		}
	}

	if len(m.queue) == 0 {
		m.queue = append(m.queue, waiter{userID: userID, username: username, enqueued: time.Now()})
		m.mu.Unlock()
		log.Info().Str("userId", userID).Msg("user queued for pairing")
		return JoinResult{}
	}

	head := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()

	token := m.directory.Pair(head.userID, head.username, userID, username)

	return JoinResult{
		Paired:      true,
		Token:       token,
		PartnerID:   head.userID,
		PartnerName: head.username,
	}
}

// Leave removes the user from the waiting queue if present.
func (m *Matchmaker) Leave(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.queue {
		if m.queue[i].userID == userID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			log.Debug().Str("userId", userID).Msg("user left the waiting queue")
			return true
		}
	}
	return false
}

// PruneStale drops waiters older than ttl and returns how many were
// removed. Called by the cleanup job.
func (m *Matchmaker) PruneStale(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.queue[:0]
	removed := 0
	for _, w := range m.queue {
		if w.enqueued.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, w)
	}
	m.queue = kept
	return removed
}

// Waiting reports the current queue depth.
func (m *Matchmaker) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
