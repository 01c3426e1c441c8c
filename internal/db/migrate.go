package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent so the full
// list is replayed on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form in SQLite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Hour columns are stored as decimal strings; sums are computed in Go so no
// precision is lost to REAL arithmetic.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS consultants (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_consultants_email ON consultants(email) WHERE email != ''`,

	`CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS phases (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_phases_project ON phases(project_id)`,

	`CREATE TABLE IF NOT EXISTS phase_allocations (
		id                       TEXT PRIMARY KEY,
		consultant_id            TEXT NOT NULL REFERENCES consultants(id),
		phase_id                 TEXT NOT NULL REFERENCES phases(id) ON DELETE CASCADE,
		total_hours              TEXT NOT NULL,
		approval_status          TEXT NOT NULL DEFAULT 'PENDING'
		                         CHECK(approval_status IN ('PENDING','APPROVED','REJECTED','DELETION_PENDING','EXPIRED','FORFEITED')),
		rejection_reason         TEXT,
		modification_reason      TEXT,
		is_composite             INTEGER NOT NULL DEFAULT 0,
		parent_allocation_id     TEXT REFERENCES phase_allocations(id) ON DELETE SET NULL,
		realloc_from_phase_id    TEXT,
		realloc_unplanned_hours  TEXT,
		realloc_notes            TEXT,
		approved_at              TEXT,
		created_at               TEXT NOT NULL,
		updated_at               TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_phase_allocations_consultant_phase ON phase_allocations(consultant_id, phase_id)`,
	`CREATE INDEX IF NOT EXISTS idx_phase_allocations_status ON phase_allocations(approval_status)`,

	// Append-only composition log, ordered by seq within an allocation.
	`CREATE TABLE IF NOT EXISTS allocation_compositions (
		phase_allocation_id       TEXT NOT NULL REFERENCES phase_allocations(id) ON DELETE CASCADE,
		seq                       INTEGER NOT NULL,
		original_hours            TEXT,
		reallocated_hours         TEXT,
		reallocated_from_phase_id TEXT,
		source_allocation_id      TEXT,
		created_at                TEXT NOT NULL,
		PRIMARY KEY (phase_allocation_id, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS weekly_allocations (
		id                     TEXT PRIMARY KEY,
		phase_allocation_id    TEXT NOT NULL REFERENCES phase_allocations(id) ON DELETE CASCADE,
		week_start_date        TEXT NOT NULL,
		week_end_date          TEXT NOT NULL,
		week_number            INTEGER NOT NULL,
		year                   INTEGER NOT NULL,
		proposed_hours         TEXT,
		approved_hours         TEXT,
		planning_status        TEXT NOT NULL DEFAULT 'PENDING'
		                       CHECK(planning_status IN ('PENDING','APPROVED','MODIFIED','REJECTED')),
		rejection_reason       TEXT,
		consultant_description TEXT NOT NULL DEFAULT '',
		submission_batch_id    TEXT NOT NULL DEFAULT '',
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL,
		UNIQUE (phase_allocation_id, week_start_date)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_weekly_allocations_week ON weekly_allocations(week_start_date)`,
	`CREATE INDEX IF NOT EXISTS idx_weekly_allocations_status ON weekly_allocations(planning_status)`,
	`CREATE INDEX IF NOT EXISTS idx_weekly_allocations_batch ON weekly_allocations(submission_batch_id)`,

	// Audit rows outlive the allocations they describe, so no foreign key.
	`CREATE TABLE IF NOT EXISTS allocation_audit (
		id                  TEXT PRIMARY KEY,
		phase_allocation_id TEXT NOT NULL,
		action              TEXT NOT NULL,
		detail              TEXT NOT NULL DEFAULT '',
		created_at          TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_allocation_audit_allocation ON allocation_audit(phase_allocation_id)`,

	`CREATE TABLE IF NOT EXISTS hour_change_requests (
		id                  TEXT PRIMARY KEY,
		phase_allocation_id TEXT NOT NULL REFERENCES phase_allocations(id) ON DELETE CASCADE,
		change_type         TEXT NOT NULL CHECK(change_type IN ('ADJUSTMENT','SHIFT')),
		requested_hours     TEXT NOT NULL,
		from_week_start     TEXT,
		to_week_start       TEXT,
		reason              TEXT NOT NULL,
		status              TEXT NOT NULL DEFAULT 'PENDING'
		                    CHECK(status IN ('PENDING','APPROVED','REJECTED')),
		rejection_reason    TEXT,
		decided_at          TEXT,
		created_at          TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_hour_change_requests_status ON hour_change_requests(status)`,

	`CREATE TABLE IF NOT EXISTS approval_batches (
		id            TEXT PRIMARY KEY,
		action        TEXT NOT NULL,
		item_count    INTEGER NOT NULL,
		updated_count INTEGER NOT NULL,
		failed_count  INTEGER NOT NULL,
		created_at    TEXT NOT NULL
	)`,
}
