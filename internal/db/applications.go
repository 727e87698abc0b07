package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ApplicationInput holds the fields of a new application.
type ApplicationInput struct {
	JobID       uuid.UUID
	UserID      uuid.UUID
	ResumeID    uuid.UUID
	Score       int
	Eligibility string
}

const applicationColumns = `a.id, a.job_id, a.user_id, a.resume_id, a.status, a.hr_notes, a.score, a.eligibility, a.created_at, j.title, u.name`

const applicationJoins = `FROM applications a
	JOIN jobs j ON j.id = a.job_id
	JOIN users u ON u.id = a.user_id`

func scanApplication(row interface{ Scan(...any) error }) (*Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.JobID, &a.UserID, &a.ResumeID, &a.Status, &a.HRNotes,
		&a.Score, &a.Eligibility, &a.CreatedAt, &a.JobTitle, &a.UserName)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplication records an application. A user may apply to a job once;
// a second attempt returns ErrDuplicate.
func (db *DB) CreateApplication(ctx context.Context, in ApplicationInput) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, user_id, resume_id, score, eligibility)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		in.JobID, in.UserID, in.ResumeID, in.Score, in.Eligibility,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("failed to create application: %w", ErrDuplicate)
		}
		return uuid.Nil, fmt.Errorf("failed to create application: %w", err)
	}
	return id, nil
}

// GetApplication returns the application with id, or nil if none exists.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` `+applicationJoins+` WHERE a.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

func (db *DB) listApplications(ctx context.Context, tail string, args ...any) ([]Application, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+applicationColumns+` `+applicationJoins+` `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// ListApplicationsByUser returns a user's applications, newest first.
func (db *DB) ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]Application, error) {
	return db.listApplications(ctx, `WHERE a.user_id = $1 ORDER BY a.created_at DESC`, userID)
}

// ListApplicationsByJob returns a job's applications, highest score first.
func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]Application, error) {
	return db.listApplications(ctx, `WHERE a.job_id = $1 ORDER BY a.score DESC, a.created_at ASC`, jobID)
}

// UpdateApplicationStatus sets an application's status and replaces its notes.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status, notes string) error {
	return db.execOne(ctx, "update application",
		`UPDATE applications SET status = $1, hr_notes = $2, updated_at = NOW() WHERE id = $3`,
		status, notes, id,
	)
}

// BulkUpdateApplications sets status on every listed application, appending a
// timestamped justification to each one's notes. Returns the number updated.
func (db *DB) BulkUpdateApplications(ctx context.Context, ids []uuid.UUID, status, justification string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT id, hr_notes FROM applications WHERE id = ANY($1) FOR UPDATE`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to load applications: %w", err)
	}
	notes := map[uuid.UUID]string{}
	for rows.Next() {
		var id uuid.UUID
		var current string
		if err := rows.Scan(&id, &current); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan application: %w", err)
		}
		notes[id] = current
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to load applications: %w", err)
	}

	now := time.Now()
	batch := &pgx.Batch{}
	for id, current := range notes {
		batch.Queue(`UPDATE applications SET status = $1, hr_notes = $2, updated_at = NOW() WHERE id = $3`,
			status, AppendJustification(current, status, justification, now), id)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("failed to update applications: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(notes), nil
}

// AppendJustification appends "[YYYY-MM-DD HH:MM] status: justification" to
// existing notes, separated by " | ".
func AppendJustification(current, status, justification string, at time.Time) string {
	entry := fmt.Sprintf("[%s] %s: %s", at.Format("2006-01-02 15:04"), status, justification)
	return strings.Trim(current+" | "+entry, " |")
}
