package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/dyadlab/chat-logger-go/internal/database"
	"github.com/dyadlab/chat-logger-go/internal/model"
)

// PostgresSink writes each snapshot as one export header plus its rows
// in a single transaction, so a failed write leaves no partial
// artifact behind.
type PostgresSink struct {
	db *database.DB
}

func NewPostgresSink(db *database.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// EnsureSchema creates the export tables if they do not exist. Rows are
// stored as JSON documents; the fixed column set lives in the row
// payload, not the table schema.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS timeline_exports (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			partner_name TEXT NOT NULL DEFAULT '',
			row_count INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS timeline_export_rows (
			export_id TEXT NOT NULL REFERENCES timeline_exports(id),
			seq INT NOT NULL,
			row JSONB NOT NULL,
			PRIMARY KEY (export_id, seq)
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure export schema: %w", err)
	}
	return nil
}

func (s *PostgresSink) Write(ctx context.Context, rows []model.TimelineRow, username, partnerName string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	exportID := uuid.NewString()

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO timeline_exports (id, username, partner_name, row_count)
			VALUES ($1, $2, $3, $4)
		`, exportID, username, partnerName, len(rows)); err != nil {
			return fmt.Errorf("insert export: %w", err)
		}

		for i := range rows {
			data, err := json.Marshal(&rows[i])
			if err != nil {
				return fmt.Errorf("marshal row %d: %w", i, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO timeline_export_rows (export_id, seq, row)
				VALUES ($1, $2, $3)
			`, exportID, i, data); err != nil {
				return fmt.Errorf("insert row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Info().
		Str("exportId", exportID).
		Str("username", username).
		Int("rows", len(rows)).
		Msg("timeline exported to postgres")

	return "postgres:timeline_exports/" + exportID, nil
}
