package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MatchRequest asks for a compatibility score between raw texts.
type MatchRequest struct {
	ResumeText string `json:"resume_text"`
	JobText    string `json:"job_text"`
	Detailed   bool   `json:"detailed"`
}

// QualityRequest asks for a structural quality analysis of a résumé.
type QualityRequest struct {
	ResumeText string `json:"resume_text"`
}

// ScreenRequest ranks a batch of documents against a job without persisting anything.
type ScreenRequest struct {
	Job       JobOpening `json:"job"`
	Documents []Document `json:"documents" validate:"dive"`
}

// SatisfactionRequest scores a stored résumé against a pasted job
// description. A nil ResumeID selects the caller's latest upload.
type SatisfactionRequest struct {
	JobDescription string     `json:"job_description" validate:"required"`
	ResumeID       *uuid.UUID `json:"resume_id,omitempty"`
}

// ImportJobRequest creates a job from a posting page.
type ImportJobRequest struct {
	URL            string `json:"url" validate:"required,url"`
	SkillsRequired string `json:"skills_required"`
	Vacancies      int    `json:"vacancies" validate:"gte=0"`
}

// CreateJobRequest posts a new job opening.
type CreateJobRequest struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description" validate:"required"`
	SkillsRequired string `json:"skills_required"`
	Vacancies      int    `json:"vacancies" validate:"gte=0"`
}

// ResumeRef selects a stored résumé.
type ResumeRef struct {
	ResumeID uuid.UUID `json:"resume_id" validate:"required"`
}

// UpdateApplicationRequest records an HR decision on one application.
type UpdateApplicationRequest struct {
	Status string `json:"status" validate:"required,oneof=Selected Rejected"`
	Notes  string `json:"notes"`
}

// BulkUpdateApplicationsRequest records one HR decision across several applications.
type BulkUpdateApplicationsRequest struct {
	IDs           []uuid.UUID `json:"ids" validate:"required,min=1"`
	Status        string      `json:"status" validate:"required,oneof=Selected Rejected"`
	Justification string      `json:"justification"`
}

// CandidateDecisionRequest records an HR decision on a pooled candidate.
type CandidateDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=Selected Rejected Review"`
	Notes    string `json:"notes"`
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	return validator.New().Struct(r)
}
