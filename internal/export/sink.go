// Package export persists timeline snapshots. A sink writes one
// complete snapshot per call and must be safe to call with an empty row
// set, which is a no-op.
package export

import (
	"context"

	"github.com/dyadlab/chat-logger-go/internal/model"
)

// Sink writes a complete timeline snapshot and returns the artifact
// identifier.
type Sink interface {
	Write(ctx context.Context, rows []model.TimelineRow, username, partnerName string) (string, error)
}
