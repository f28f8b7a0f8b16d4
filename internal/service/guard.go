package service

import "sync"

// ActivityGuard tracks per-user "currently sending" and "currently
// viewing" flags. Start/stop signals may be delivered more than once
// (retransmission, duplicate UI events); the guard makes duplicate
// starts harmless without losing the event itself. The row is still
// appended, only the start timestamp that would conflict with an
// already-open interval is dropped.
type ActivityGuard struct {
	mu      sync.Mutex
	sending map[string]bool
	viewing map[string]bool
}

func NewActivityGuard() *ActivityGuard {
	return &ActivityGuard{
		sending: make(map[string]bool),
		viewing: make(map[string]bool),
	}
}

// OnSendStart marks the user as sending. Returns true when the user was
// already sending, in which case the caller must suppress the start
// timestamp field.
func (g *ActivityGuard) OnSendStart(userID string) (suppress bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sending[userID] {
		return true
	}
	g.sending[userID] = true
	return false
}

// OnSendEnd clears the sending flag unconditionally.
func (g *ActivityGuard) OnSendEnd(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sending, userID)
}

// OnViewStart marks the user as viewing. Independent of the sending
// flag; a user may be sending and viewing at the same time.
func (g *ActivityGuard) OnViewStart(userID string) (suppress bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.viewing[userID] {
		return true
	}
	g.viewing[userID] = true
	return false
}

// OnViewEnd clears the viewing flag unconditionally.
func (g *ActivityGuard) OnViewEnd(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.viewing, userID)
}

// Reset clears both flags. Implements Resetter.
func (g *ActivityGuard) Reset(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sending, userID)
	delete(g.viewing, userID)
}
