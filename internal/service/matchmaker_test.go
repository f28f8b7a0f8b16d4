package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchmaker(t *testing.T) {
	t.Run("first user waits", func(t *testing.T) {
		m := NewMatchmaker(NewSessionDirectory())

		result := m.Join("alice", "Alice")
		assert.False(t, result.Paired)
		assert.Equal(t, 1, m.Waiting())
	})

	t.Run("second user pairs with the waiter", func(t *testing.T) {
		directory := NewSessionDirectory()
		m := NewMatchmaker(directory)

		m.Join("alice", "Alice")
		result := m.Join("bob", "Bob")

		require.True(t, result.Paired)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "alice", result.PartnerID)
		assert.Equal(t, "Alice", result.PartnerName)
		assert.Equal(t, 0, m.Waiting())

		partner, ok := directory.PartnerOf("bob")
		require.True(t, ok)
		assert.Equal(t, "alice", partner)
	})

	t.Run("pairing is first come first served", func(t *testing.T) {
		m := NewMatchmaker(NewSessionDirectory())

		m.Join("alice", "Alice")
		m.Join("bob", "Bob")
		result := m.Join("carol", "Carol")

		assert.False(t, result.Paired)

		result = m.Join("dave", "Dave")
		require.True(t, result.Paired)
		assert.Equal(t, "carol", result.PartnerID)
	})

	t.Run("join records the display name before pairing", func(t *testing.T) {
		directory := NewSessionDirectory()
		m := NewMatchmaker(directory)

		m.Join("alice", "Alice")

		assert.Equal(t, "Alice", directory.DisplayName("alice"))
	})

	t.Run("joining twice while waiting does not duplicate", func(t *testing.T) {
		m := NewMatchmaker(NewSessionDirectory())

		m.Join("alice", "Alice")
		result := m.Join("alice", "Alice Updated")

		assert.False(t, result.Paired)
		assert.Equal(t, 1, m.Waiting())
	})

	t.Run("leave removes a waiter", func(t *testing.T) {
		m := NewMatchmaker(NewSessionDirectory())

		m.Join("alice", "Alice")
		assert.True(t, m.Leave("alice"))
		assert.False(t, m.Leave("alice"))
		assert.Equal(t, 0, m.Waiting())
	})

	t.Run("prune keeps fresh waiters", func(t *testing.T) {
		m := NewMatchmaker(NewSessionDirectory())

		m.Join("alice", "Alice")

		removed := m.PruneStale(5 * time.Minute)
		assert.Equal(t, 0, removed)
		assert.Equal(t, 1, m.Waiting())
	})

	t.Run("prune drops stale waiters", func(t *testing.T) {
		m := NewMatchmaker(NewSessionDirectory())

		m.Join("old", "Old")
		m.queue[0].enqueued = time.Now().Add(-10 * time.Minute)

		removed := m.PruneStale(5 * time.Minute)
		assert.Equal(t, 1, removed)
		assert.Equal(t, 0, m.Waiting())
	})
}
