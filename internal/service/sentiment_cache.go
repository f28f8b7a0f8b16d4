package service

import (
	"sync"

	"github.com/dyadlab/chat-logger-go/internal/model"
)

// SentimentCache remembers each user's most recent sentiment scores so
// later rows can carry them even when no fresh analysis ran.
type SentimentCache struct {
	mu     sync.RWMutex
	latest map[string]model.SentimentVector
}

func NewSentimentCache() *SentimentCache {
	return &SentimentCache{latest: make(map[string]model.SentimentVector)}
}

func (c *SentimentCache) Update(userID string, s model.SentimentVector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest[userID] = s
}

// GetSentiment returns the cached vector for the user, or false when
// nothing has been analyzed yet. Implements SentimentSource.
func (c *SentimentCache) GetSentiment(userID string) (model.SentimentVector, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.latest[userID]
	return s, ok
}

// Reset drops the user's cached scores. Implements Resetter.
func (c *SentimentCache) Reset(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.latest, userID)
}
