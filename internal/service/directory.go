package service

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Resetter clears per-user state when a fresh pairing token is issued,
// so a reconnect does not inherit stale flags from a previous pairing.
type Resetter interface {
	Reset(userID string)
}

// SessionDirectory owns the user -> partner, display-name and pairing
// token maps. One instance per process, passed by reference to every
// consumer.
type SessionDirectory struct {
	mu        sync.RWMutex
	names     map[string]string
	partners  map[string]string
	tokens    map[string]string
	resetters []Resetter
}

func NewSessionDirectory() *SessionDirectory {
	return &SessionDirectory{
		names:    make(map[string]string),
		partners: make(map[string]string),
		tokens:   make(map[string]string),
	}
}

// AddResetter registers state to clear on every fresh pairing.
// Call during wiring, before the first Pair.
func (d *SessionDirectory) AddResetter(r Resetter) {
	d.resetters = append(d.resetters, r)
}

// Pair establishes mutual partner links between two users, records
// their display names and issues a fresh opaque pairing token shared by
// both sides. Guard and export-dedup state for both users is reset.
func (d *SessionDirectory) Pair(userA, nameA, userB, nameB string) string {
	token := uuid.NewString()

	d.mu.Lock()
	d.partners[userA] = userB
	d.partners[userB] = userA
	d.names[userA] = nameA
	d.names[userB] = nameB
	d.tokens[userA] = token
	d.tokens[userB] = token
	d.mu.Unlock()

	for _, r := range d.resetters {
		r.Reset(userA)
		r.Reset(userB)
	}

	log.Info().
		Str("userA", userA).
		Str("userB", userB).
		Str("token", token).
		Msg("users paired")

	return token
}

// PartnerOf returns the active partner of a user, if any.
func (d *SessionDirectory) PartnerOf(userID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	partner, ok := d.partners[userID]
	return partner, ok
}

// DisplayName returns the recorded display name, empty when unknown.
func (d *SessionDirectory) DisplayName(userID string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.names[userID]
}

// SetDisplayName records a name for a user seen before pairing.
func (d *SessionDirectory) SetDisplayName(userID, name string) {
	if strings.TrimSpace(name) == "" {
		return
	}
	d.mu.Lock()
	d.names[userID] = name
	d.mu.Unlock()
}

// PairingKey returns the dedup key for a user's current session: the
// active pairing token when assigned, else a canonical key built from
// both user ids when a partner exists, else a solo key. Every user has
// some key even before pairing completes.
func (d *SessionDirectory) PairingKey(userID string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if token := d.tokens[userID]; token != "" {
		return token
	}
	if partner, ok := d.partners[userID]; ok {
		return canonicalPairKey(userID, partner)
	}
	return soloKey(userID)
}

// canonicalPairKey is identical regardless of which side asks.
func canonicalPairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s_%s", a, b)
}

func soloKey(userID string) string {
	return fmt.Sprintf("solo_%s", userID)
}
