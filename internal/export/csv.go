package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dyadlab/chat-logger-go/internal/model"
)

const artifactTimeLayout = "2006-01-02_15-04-05"

// CSVSink writes one flat spreadsheet file per exported timeline under
// a fixed directory, named {username}_{partner}_{timestamp}.csv, or
// without the partner segment for solo sessions.
type CSVSink struct {
	dir string
}

func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{dir: dir}
}

func (s *CSVSink) Write(ctx context.Context, rows []model.TimelineRow, username, partnerName string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	stamp := time.Now().Format(artifactTimeLayout)
	var name string
	if partnerName != "" {
		name = fmt.Sprintf("%s_%s_%s.csv", username, partnerName, stamp)
	} else {
		name = fmt.Sprintf("%s_%s.csv", username, stamp)
	}
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(model.Columns()); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for i := range rows {
		if err := w.Write(rows[i].Record()); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush export file: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("rows", len(rows)).
		Msg("timeline exported")

	return path, nil
}
