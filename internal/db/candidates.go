package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-screener/internal/types"
)

// Candidate decisions
const (
	DecisionSelected = "Selected"
	DecisionRejected = "Rejected"
	DecisionReview   = "Review"
)

const candidateColumns = `id, job_id, filename, content_text, score, recommendation, justification, hr_decision, file_key, uploaded_at`

func scanCandidate(row interface{ Scan(...any) error }) (*Candidate, error) {
	var c Candidate
	err := row.Scan(&c.ID, &c.JobID, &c.Filename, &c.ContentText, &c.Score,
		&c.Recommendation, &c.Justification, &c.HRDecision, &c.FileKey, &c.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCandidates adds a ranked batch to a job's pool in one transaction.
// Each record's FileKey, if set, links its stored original.
func (db *DB) SaveCandidates(ctx context.Context, jobID uuid.UUID, records []types.CandidateRecord) ([]uuid.UUID, error) {
	if len(records) == 0 {
		return []uuid.UUID{}, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO candidate_pool (job_id, filename, content_text, score, recommendation, justification, file_key)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			jobID, rec.Filename, rec.Content, rec.Score, rec.Recommendation, rec.Justification, rec.FileKey,
		)
	}

	ids := make([]uuid.UUID, 0, len(records))
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		defer func() { _ = results.Close() }()
		for range records {
			var id uuid.UUID
			if err := results.QueryRow().Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return results.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save candidates: %w", err)
	}
	return ids, nil
}

// GetCandidate returns the pooled candidate with id, or nil if none exists.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	c, err := scanCandidate(db.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidate_pool WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidatesByJob returns a job's pool, highest score first.
func (db *DB) ListCandidatesByJob(ctx context.Context, jobID uuid.UUID) ([]Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidate_pool WHERE job_id = $1 ORDER BY score DESC, uploaded_at ASC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

// UpdateCandidateDecision records an HR decision. Non-empty notes are appended
// to the justification as " | HR: <notes>".
func (db *DB) UpdateCandidateDecision(ctx context.Context, id uuid.UUID, decision, notes string) error {
	return db.execOne(ctx, "update candidate decision",
		`UPDATE candidate_pool
		 SET hr_decision = $1,
		     justification = CASE WHEN $2::text = '' THEN justification ELSE justification || ' | HR: ' || $2::text END
		 WHERE id = $3`,
		decision, notes, id,
	)
}

// AppendHRNote mirrors the justification update done by UpdateCandidateDecision.
func AppendHRNote(justification, notes string) string {
	if notes == "" {
		return justification
	}
	return justification + " | HR: " + notes
}
