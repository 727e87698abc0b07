package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const jobColumns = `id, hr_id, title, description, skills_required, vacancies, status, source_url, created_at`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.HRID, &j.Title, &j.Description, &j.SkillsRequired,
		&j.Vacancies, &j.Status, &j.SourceURL, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// JobInput holds the fields of a new job.
type JobInput struct {
	HRID           uuid.UUID
	Title          string
	Description    string
	SkillsRequired string
	Vacancies      int
	SourceURL      string
}

// CreateJob inserts an open job. Vacancies below 1 are stored as 1.
func (db *DB) CreateJob(ctx context.Context, in JobInput) (*Job, error) {
	if in.Vacancies < 1 {
		in.Vacancies = 1
	}
	j, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO jobs (hr_id, title, description, skills_required, vacancies, source_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+jobColumns,
		in.HRID, in.Title, in.Description, in.SkillsRequired, in.Vacancies, in.SourceURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return j, nil
}

// GetJob returns the job with id, or nil if none exists.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// listJobs returns jobs matching where, newest first. A positive limit caps the result.
func (db *DB) listJobs(ctx context.Context, where string, limit int, args ...any) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ` + where + ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// ListJobs returns every job, newest first.
func (db *DB) ListJobs(ctx context.Context) ([]Job, error) {
	return db.listJobs(ctx, "", 0)
}

// ListOpenJobs returns jobs accepting applications.
func (db *DB) ListOpenJobs(ctx context.Context) ([]Job, error) {
	return db.listJobs(ctx, "WHERE status = $1", 0, JobOpen)
}

// ListJobsByHR returns the jobs posted by one HR user.
func (db *DB) ListJobsByHR(ctx context.Context, hrID uuid.UUID) ([]Job, error) {
	return db.listJobs(ctx, "WHERE hr_id = $1", 0, hrID)
}

// UpdateJobStatus sets a job Open or Closed.
func (db *DB) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status != JobOpen && status != JobClosed {
		return fmt.Errorf("invalid job status %q", status)
	}
	return db.execOne(ctx, "update job status",
		`UPDATE jobs SET status = $1 WHERE id = $2`,
		status, id,
	)
}

// DeleteJob removes a job with its applications and candidate pool.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	return db.execOne(ctx, "delete job", `DELETE FROM jobs WHERE id = $1`, id)
}

// ToggledStatus returns the status a toggle moves a job to.
func ToggledStatus(current string) string {
	if current == JobOpen {
		return JobClosed
	}
	return JobOpen
}
