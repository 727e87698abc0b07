package db

import (
	"context"
	"fmt"
	"math"
)

// Limits for RecentActivity and SystemMetrics
const (
	recentApplications = 10
	recentResumes      = 10
	recentJobs         = 5
	topActiveJobs      = 5
)

// SystemStats counts users, jobs and applications and lists every user.
func (db *DB) SystemStats(ctx context.Context) (*SystemStats, error) {
	var stats SystemStats
	err := db.pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM users),
		        (SELECT COUNT(*) FROM jobs),
		        (SELECT COUNT(*) FROM applications)`,
	).Scan(&stats.Users, &stats.Jobs, &stats.Applications)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	stats.UserList, err = db.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// SystemMetrics reports the average application score, the most applied-to
// jobs and the number of open positions.
func (db *DB) SystemMetrics(ctx context.Context) (*SystemMetrics, error) {
	var m SystemMetrics
	var avg float64
	err := db.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(score), 0)::float8,
		        COUNT(*),
		        (SELECT COUNT(*) FROM jobs WHERE status = $1)
		 FROM applications`,
		JobOpen,
	).Scan(&avg, &m.TotalApplications, &m.OpenPositions)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}
	m.AvgApplicationScore = RoundTenth(avg)

	rows, err := db.pool.Query(ctx,
		`SELECT j.title, COUNT(*) AS n
		 FROM applications a JOIN jobs j ON j.id = a.job_id
		 GROUP BY j.id, j.title
		 ORDER BY n DESC, j.title ASC
		 LIMIT $1`,
		topActiveJobs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active jobs: %w", err)
	}
	defer rows.Close()

	m.ActiveJobs = []JobActivity{}
	for rows.Next() {
		var ja JobActivity
		if err := rows.Scan(&ja.Title, &ja.Count); err != nil {
			return nil, fmt.Errorf("failed to scan active job: %w", err)
		}
		m.ActiveJobs = append(m.ActiveJobs, ja)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list active jobs: %w", err)
	}
	return &m, nil
}

// RecentActivity returns the latest applications, résumé uploads and jobs.
func (db *DB) RecentActivity(ctx context.Context) (*RecentActivity, error) {
	apps, err := db.listApplications(ctx, `ORDER BY a.created_at DESC LIMIT $1`, recentApplications)
	if err != nil {
		return nil, err
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes ORDER BY uploaded_at DESC LIMIT $1`,
		recentResumes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent resumes: %w", err)
	}
	defer rows.Close()

	resumes := []Resume{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		// Listings do not carry full text
		r.ContentText = ""
		resumes = append(resumes, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recent resumes: %w", err)
	}

	jobs, err := db.listJobs(ctx, "", recentJobs)
	if err != nil {
		return nil, err
	}

	return &RecentActivity{Applications: apps, Resumes: resumes, Jobs: jobs}, nil
}

// RoundTenth rounds to one decimal place.
func RoundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
