package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/types"
)

// DBClient is the record store used by the server. *db.DB implements it.
type DBClient interface {
	// Users
	CreateUser(ctx context.Context, name, email, passwordHash string, role types.Role) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	HasAdmin(ctx context.Context) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Jobs
	CreateJob(ctx context.Context, in db.JobInput) (*db.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error)
	ListJobs(ctx context.Context) ([]db.Job, error)
	ListOpenJobs(ctx context.Context) ([]db.Job, error)
	ListJobsByHR(ctx context.Context, hrID uuid.UUID) ([]db.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteJob(ctx context.Context, id uuid.UUID) error

	// Résumés
	CreateResume(ctx context.Context, r *db.Resume) (*db.Resume, error)
	GetResume(ctx context.Context, id uuid.UUID) (*db.Resume, error)
	ListResumesByUser(ctx context.Context, userID uuid.UUID) ([]db.Resume, error)

	// Applications
	CreateApplication(ctx context.Context, in db.ApplicationInput) (uuid.UUID, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*db.Application, error)
	ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]db.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]db.Application, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status, notes string) error
	BulkUpdateApplications(ctx context.Context, ids []uuid.UUID, status, justification string) (int, error)

	// Candidate pool
	SaveCandidates(ctx context.Context, jobID uuid.UUID, records []types.CandidateRecord) ([]uuid.UUID, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*db.Candidate, error)
	ListCandidatesByJob(ctx context.Context, jobID uuid.UUID) ([]db.Candidate, error)
	UpdateCandidateDecision(ctx context.Context, id uuid.UUID, decision, notes string) error

	// Admin
	SystemStats(ctx context.Context) (*db.SystemStats, error)
	SystemMetrics(ctx context.Context) (*db.SystemMetrics, error)
	RecentActivity(ctx context.Context) (*db.RecentActivity, error)
	Ping(ctx context.Context) error
}

var _ DBClient = (*db.DB)(nil)
