package db

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-screener/internal/types"
)

// Job statuses
const (
	JobOpen   = "Open"
	JobClosed = "Closed"
)

// Application statuses
const (
	ApplicationApplied  = "Applied"
	ApplicationSelected = "Selected"
	ApplicationRejected = "Rejected"
)

// User is an account row. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         types.Role `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Job is a posted opening.
type Job struct {
	ID             uuid.UUID `json:"id"`
	HRID           uuid.UUID `json:"hr_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	SkillsRequired string    `json:"skills_required"`
	Vacancies      int       `json:"vacancies"`
	Status         string    `json:"status"`
	SourceURL      string    `json:"source_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Opening converts the row into the ranking input.
func (j *Job) Opening() types.JobOpening {
	return types.JobOpening{
		Title:          j.Title,
		Description:    j.Description,
		SkillsRequired: j.SkillsRequired,
		Vacancies:      strconv.Itoa(j.Vacancies),
	}
}

// Resume is an uploaded résumé with its extracted text.
type Resume struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Filename    string    `json:"filename"`
	ContentText string    `json:"content_text"`
	ContentHash string    `json:"content_hash"`
	FileKey     string    `json:"file_key,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Application links a user's résumé to a job.
type Application struct {
	ID          uuid.UUID              `json:"id"`
	JobID       uuid.UUID              `json:"job_id"`
	UserID      uuid.UUID              `json:"user_id"`
	ResumeID    uuid.UUID              `json:"resume_id"`
	Status      string                 `json:"status"`
	HRNotes     string                 `json:"hr_notes"`
	Score       int                    `json:"score"`
	Eligibility types.EligibilityLevel `json:"eligibility"`
	CreatedAt   time.Time              `json:"created_at"`

	// Joined for listings
	JobTitle string `json:"job_title,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// Candidate is a bulk-screened résumé in a job's candidate pool.
type Candidate struct {
	ID             uuid.UUID            `json:"id"`
	JobID          uuid.UUID            `json:"job_id"`
	Filename       string               `json:"filename"`
	ContentText    string               `json:"content_text,omitempty"`
	Score          int                  `json:"score"`
	Recommendation types.Recommendation `json:"recommendation"`
	Justification  string               `json:"justification"`
	HRDecision     string               `json:"hr_decision"`
	FileKey        string               `json:"file_key,omitempty"`
	UploadedAt     time.Time            `json:"uploaded_at"`
}

// SystemStats counts rows for the admin dashboard.
type SystemStats struct {
	Users        int    `json:"users"`
	Jobs         int    `json:"jobs"`
	Applications int    `json:"applications"`
	UserList     []User `json:"user_list"`
}

// JobActivity is an application count for one job.
type JobActivity struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// SystemMetrics summarizes application health.
type SystemMetrics struct {
	AvgApplicationScore float64       `json:"avg_application_score"`
	TotalApplications   int           `json:"total_applications"`
	ActiveJobs          []JobActivity `json:"active_jobs"`
	OpenPositions       int           `json:"open_positions"`
}

// RecentActivity lists the newest applications, résumés and jobs.
type RecentActivity struct {
	Applications []Application `json:"applications"`
	Resumes      []Resume      `json:"resumes"`
	Jobs         []Job         `json:"jobs"`
}
