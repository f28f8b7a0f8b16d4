package service

import (
	"sync"
	"time"
)

const (
	throttleMaxEntries = 10000
	throttleEntryTTL   = 5 * time.Minute
)

// FrameThrottle drops frames arriving faster than a minimum interval
// per user, keeping emotion inference from falling behind the camera.
type FrameThrottle struct {
	minInterval time.Duration

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

func NewFrameThrottle(minInterval time.Duration) *FrameThrottle {
	return &FrameThrottle{
		minInterval: minInterval,
		lastSeen:    make(map[string]time.Time),
	}
}

// Allow reports whether the user's frame should be processed now.
// Accepted frames advance the user's clock; dropped frames do not.
func (t *FrameThrottle) Allow(userID string) bool {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.lastSeen[userID]; ok && now.Sub(last) < t.minInterval {
		return false
	}

	if len(t.lastSeen) >= throttleMaxEntries {
		t.evictStaleLocked(now)
	}

	t.lastSeen[userID] = now
	return true
}

// PruneIdle drops users not seen within the TTL and returns how many
// were removed. Called by the cleanup job.
func (t *FrameThrottle) PruneIdle() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.evictStaleLocked(time.Now())
}

func (t *FrameThrottle) evictStaleLocked(now time.Time) int {
	removed := 0
	for userID, last := range t.lastSeen {
		if now.Sub(last) > throttleEntryTTL {
			delete(t.lastSeen, userID)
			removed++
		}
	}
	return removed
}

// Reset forgets the user's clock so their next frame is processed
// immediately. Implements Resetter.
func (t *FrameThrottle) Reset(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.lastSeen, userID)
}
