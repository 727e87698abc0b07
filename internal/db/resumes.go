package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const resumeColumns = `id, user_id, filename, content_text, content_hash, file_key, uploaded_at`

func scanResume(row interface{ Scan(...any) error }) (*Resume, error) {
	var r Resume
	err := row.Scan(&r.ID, &r.UserID, &r.Filename, &r.ContentText, &r.ContentHash, &r.FileKey, &r.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateResume stores an uploaded résumé's text and file key.
func (db *DB) CreateResume(ctx context.Context, r *Resume) (*Resume, error) {
	created, err := scanResume(db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, filename, content_text, content_hash, file_key)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+resumeColumns,
		r.UserID, r.Filename, r.ContentText, r.ContentHash, r.FileKey,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return created, nil
}

// GetResume returns the résumé with id, or nil if none exists.
func (db *DB) GetResume(ctx context.Context, id uuid.UUID) (*Resume, error) {
	r, err := scanResume(db.pool.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return r, nil
}

// ListResumesByUser returns a user's résumés in upload order.
func (db *DB) ListResumesByUser(ctx context.Context, userID uuid.UUID) ([]Resume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY uploaded_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []Resume{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, *r)
	}
	return resumes, rows.Err()
}
