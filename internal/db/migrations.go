package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS reports (
		id                 UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		media_url          TEXT NOT NULL,
		violation_type     TEXT NOT NULL DEFAULT 'Pending Selection',
		status             TEXT NOT NULL DEFAULT 'submitted',
		evidence_hash      TEXT,
		metadata           JSONB NOT NULL DEFAULT '{}'::jsonb,
		user_comment       TEXT,
		authenticity_score DOUBLE PRECISION,
		plate_number       TEXT,
		extracted_data     JSONB,
		validity_score     DOUBLE PRECISION,
		priority_score     DOUBLE PRECISION,
		ai_explanation     TEXT,
		reviewed_by        TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'reports_status_check') THEN
			ALTER TABLE reports ADD CONSTRAINT reports_status_check
				CHECK (status IN ('submitted', 'ai_processed', 'pending_review', 'approved', 'rejected'));
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_queue ON reports(priority_score DESC NULLS LAST, created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_plate_number ON reports(plate_number);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
