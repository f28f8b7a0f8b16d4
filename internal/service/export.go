package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "github.com/dyadlab/chat-logger-go/internal/errors"
	"github.com/dyadlab/chat-logger-go/internal/export"
)

// ExportOptions makes the two deliberately configurable behaviors
// explicit: whether a stop persists one shared artifact per pairing or
// one artifact per side, and whether a failed export may be retried on
// a later stop.
type ExportOptions struct {
	// BothSides exports the partner's timeline too on the first stop.
	// When false, the first side to stop wins and the pairing is done.
	BothSides bool
	// RetryFailed unmarks the pairing key when the sink write fails.
	// When false a failed export still counts as attempted, preventing
	// retry storms.
	RetryFailed bool
}

// ExportCoordinator flushes timelines to the export sink exactly once
// per pairing key.
type ExportCoordinator struct {
	directory *SessionDirectory
	timelines *TimelineStore
	sink      export.Sink
	opts      ExportOptions

	mu       sync.Mutex
	exported map[string]bool
}

func NewExportCoordinator(
	directory *SessionDirectory,
	timelines *TimelineStore,
	sink export.Sink,
	opts ExportOptions,
) *ExportCoordinator {
	return &ExportCoordinator{
		directory: directory,
		timelines: timelines,
		sink:      sink,
		opts:      opts,
		exported:  make(map[string]bool),
	}
}

// ExportOnce persists the timeline(s) behind a user's pairing key at
// most once. A second termination request for the same key returns an
// empty artifact list without error.
func (c *ExportCoordinator) ExportOnce(ctx context.Context, userID string) ([]string, error) {
	key := c.directory.PairingKey(userID)

	c.mu.Lock()
	if c.exported[key] {
		c.mu.Unlock()
		log.Debug().Str("pairingKey", key).Msg("already saved, skipping export")
		return nil, nil
	}
	c.exported[key] = true
	c.mu.Unlock()

	var artifacts []string
	fail := func(err error) ([]string, error) {
		if c.opts.RetryFailed {
			c.mu.Lock()
			delete(c.exported, key)
			c.mu.Unlock()
		}
		return artifacts, apperrors.ExportFailed(err)
	}

	artifact, err := c.ExportUser(ctx, userID)
	if err != nil {
		return fail(err)
	}
	if artifact != "" {
		artifacts = append(artifacts, artifact)
	}

	if c.opts.BothSides {
		if partnerID, ok := c.directory.PartnerOf(userID); ok {
			partnerArtifact, err := c.ExportUser(ctx, partnerID)
			if err != nil {
				return fail(err)
			}
			if partnerArtifact != "" {
				artifacts = append(artifacts, partnerArtifact)
			}
		}
	}

	log.Info().
		Str("userId", userID).
		Str("pairingKey", key).
		Strs("artifacts", artifacts).
		Msg("session exported")

	return artifacts, nil
}

// ExportUser hands one user's rows to the sink directly, without the
// dedup check. An empty timeline is a no-op.
func (c *ExportCoordinator) ExportUser(ctx context.Context, userID string) (string, error) {
	tl := c.timelines.Get(userID)
	if tl.IsEmpty() {
		log.Debug().Str("userId", userID).Msg("no rows to export")
		return "", nil
	}

	username := c.directory.DisplayName(userID)
	if username == "" {
		username = "user-" + userID
	}

	var partnerName string
	if partnerID, ok := c.directory.PartnerOf(userID); ok {
		partnerName = c.directory.DisplayName(partnerID)
	}

	return c.sink.Write(ctx, tl.Rows(), username, partnerName)
}

// Reset clears the dedup marks a user's key could fall back to, so a
// re-pairing of the same two users can export again. The previous
// token's mark is left in place; tokens are never reissued. Implements
// Resetter.
func (c *ExportCoordinator) Reset(userID string) {
	keys := []string{soloKey(userID)}
	if partnerID, ok := c.directory.PartnerOf(userID); ok {
		keys = append(keys, canonicalPairKey(userID, partnerID))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.exported, k)
	}
}
