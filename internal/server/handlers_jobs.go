package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/metrics"
	"github.com/jonathan/resume-screener/internal/storage"
	"github.com/jonathan/resume-screener/internal/types"
)

// untitledJob names imported postings whose page has no usable title.
const untitledJob = "Untitled position"

type screenUploadResponse struct {
	screenResponse
	Message string `json:"message"`
}

// handleListJobs lists open jobs for job seekers, own jobs for HR and every job for admins.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	userID, role := caller(r)

	var (
		jobs []db.Job
		err  error
	)
	switch role {
	case types.RoleHR:
		jobs, err = s.db.ListJobsByHR(r.Context(), userID)
	case types.RoleAdmin:
		jobs, err = s.db.ListJobs(r.Context())
	default:
		jobs, err = s.db.ListOpenJobs(r.Context())
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.loadJob(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	userID, _ := caller(r)
	job, err := s.db.CreateJob(r.Context(), db.JobInput{
		HRID:           userID,
		Title:          req.Title,
		Description:    req.Description,
		SkillsRequired: req.SkillsRequired,
		Vacancies:      req.Vacancies,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, job)
}

// handleImportJob creates a job from a posting page on a careers site or ATS.
func (s *Server) handleImportJob(w http.ResponseWriter, r *http.Request) {
	var req types.ImportJobRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	opening, _, err := ingestion.IngestJobURL(r.Context(), req.URL, s.fetchOpts, s.logger)
	if err != nil {
		s.fail(w, importError(err))
		return
	}

	title := opening.Title
	if title == "" {
		title = untitledJob
	}

	userID, _ := caller(r)
	job, err := s.db.CreateJob(r.Context(), db.JobInput{
		HRID:           userID,
		Title:          title,
		Description:    opening.Description,
		SkillsRequired: req.SkillsRequired,
		Vacancies:      req.Vacancies,
		SourceURL:      req.URL,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, job)
}

// importError reports unusable URLs as validation errors.
func importError(err error) error {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) && fetchErr.Message == "invalid URL" {
		return &ErrValidation{Field: "url", Message: "invalid URL"}
	}
	return err
}

// loadOwnedJob returns the job at {id} if the caller posted it.
func (s *Server) loadOwnedJob(r *http.Request) (*db.Job, error) {
	job, err := s.loadJob(r)
	if err != nil {
		return nil, err
	}
	return job, s.checkOwner(r, job)
}

func (s *Server) checkOwner(r *http.Request, job *db.Job) error {
	userID, _ := caller(r)
	if job.HRID != userID {
		return &ErrForbidden{Action: "manage this job"}
	}
	return nil
}

func (s *Server) handleToggleJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.loadOwnedJob(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	status := db.ToggledStatus(job.Status)
	if err := s.db.UpdateJobStatus(r.Context(), job.ID, status); err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  status,
		"message": fmt.Sprintf("Job status updated to %s.", status),
	})
}

func (s *Server) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	job, err := s.loadOwnedJob(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	apps, err := s.db.ListApplicationsByJob(r.Context(), job.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, apps)
}

// loadOwnedApplication returns an application for one of the caller's jobs.
func (s *Server) loadOwnedApplication(r *http.Request, id string) (*db.Application, error) {
	ctx := r.Context()
	appID, err := parseID("application", id)
	if err != nil {
		return nil, err
	}
	app, err := s.db.GetApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, &ErrNotFound{Kind: "application", ID: id}
	}

	job, err := s.db.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &ErrNotFound{Kind: "job", ID: app.JobID.String()}
	}
	if err := s.checkOwner(r, job); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateApplicationRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	app, err := s.loadOwnedApplication(r, r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.db.UpdateApplicationStatus(r.Context(), app.ID, req.Status, req.Notes); err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  req.Status,
		"message": fmt.Sprintf("Candidate %s!", req.Status),
	})
}

func (s *Server) handleBulkUpdateApplications(w http.ResponseWriter, r *http.Request) {
	var req types.BulkUpdateApplicationsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	for _, id := range req.IDs {
		if _, err := s.loadOwnedApplication(r, id.String()); err != nil {
			s.fail(w, err)
			return
		}
	}

	count, err := s.db.BulkUpdateApplications(r.Context(), req.IDs, req.Status, req.Justification)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"updated": count,
		"message": fmt.Sprintf("%d candidates %s with justification!", count, req.Status),
	})
}

// handleScreenUpload ranks every résumé in an uploaded zip against the job
// and adds them to its candidate pool.
func (s *Server) handleScreenUpload(w http.ResponseWriter, r *http.Request) {
	job, err := s.loadOwnedJob(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	filename, data, _, err := s.readUpload(w, r, "resume_zip")
	if err != nil {
		s.fail(w, err)
		return
	}
	if !strings.EqualFold(filepath.Ext(filename), ".zip") {
		s.fail(w, &ErrValidation{Field: "resume_zip", Message: "Please upload a valid ZIP file."})
		return
	}

	// Keys travel on each document; archive entries in different folders may share a name.
	fileKeys := make([]string, 0)
	result, err := ingestion.ExtractArchiveFunc(data, func(doc *types.Document, raw []byte) error {
		key := storage.NewKey(doc.Filename)
		if err := s.store.Put(r.Context(), key, bytes.NewReader(raw), ""); err != nil {
			return err
		}
		doc.FileKey = key
		fileKeys = append(fileKeys, key)
		return nil
	})
	if err != nil {
		s.removeFiles(r.Context(), fileKeys)
		s.fail(w, err)
		return
	}
	observeArchive(result)

	if len(result.Documents) == 0 {
		s.fail(w, &ErrValidation{Field: "resume_zip", Message: "No valid resumes found in ZIP file."})
		return
	}

	records, err := s.ranker.Rank(r.Context(), job.Opening(), result.Documents)
	if err != nil {
		s.removeFiles(r.Context(), fileKeys)
		s.fail(w, err)
		return
	}
	if _, err := s.db.SaveCandidates(r.Context(), job.ID, records); err != nil {
		s.removeFiles(r.Context(), fileKeys)
		s.fail(w, err)
		return
	}
	metrics.ObserveCandidates(records)

	for _, skipped := range result.Skipped {
		s.logger.Info("skipped archive entry", zap.String("name", skipped.Name), zap.String("reason", skipped.Reason), zap.Error(skipped.Err))
	}

	// Stored résumé text is served by the candidates endpoint
	for i := range records {
		records[i].Content = ""
	}
	jsonResponse(w, http.StatusCreated, screenUploadResponse{
		screenResponse: newScreenResponse(job.Opening(), records, result.Skipped),
		Message:        fmt.Sprintf("Successfully screened %d candidates!", len(records)),
	})
}

// observeArchive records per-file ingestion outcomes.
func observeArchive(result *ingestion.ArchiveResult) {
	for _, doc := range result.Documents {
		format, _ := ingestion.DetectFormat(doc.Filename)
		metrics.ObserveIngest(string(format), metrics.ResultOK)
	}
	for _, skipped := range result.Skipped {
		format, _ := ingestion.DetectFormat(skipped.Name)
		outcome := metrics.ResultSkipped
		if skipped.Reason == ingestion.SkipFailed {
			outcome = metrics.ResultFailed
		}
		metrics.ObserveIngest(string(format), outcome)
	}
}

// removeFiles deletes stored files, logging failures.
func (s *Server) removeFiles(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to remove stored file", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	job, err := s.loadOwnedJob(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	candidates, err := s.db.ListCandidatesByJob(r.Context(), job.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, candidates)
}

func (s *Server) handleCandidateDecision(w http.ResponseWriter, r *http.Request) {
	var req types.CandidateDecisionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	candidate, err := s.db.GetCandidate(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if candidate == nil {
		s.fail(w, &ErrNotFound{Kind: "candidate", ID: id.String()})
		return
	}

	job, err := s.db.GetJob(r.Context(), candidate.JobID)
	if err != nil {
		s.fail(w, err)
		return
	}
	if job == nil {
		s.fail(w, &ErrNotFound{Kind: "job", ID: candidate.JobID.String()})
		return
	}
	if err := s.checkOwner(r, job); err != nil {
		s.fail(w, err)
		return
	}

	if err := s.db.UpdateCandidateDecision(r.Context(), id, req.Decision, req.Notes); err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{
		"decision":      req.Decision,
		"justification": db.AppendHRNote(candidate.Justification, req.Notes),
		"message":       "Candidate decision updated.",
	})
}
