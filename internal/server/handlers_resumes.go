package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/metrics"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/storage"
	"github.com/jonathan/resume-screener/internal/types"
	"github.com/jonathan/resume-screener/internal/validation"
)

type uploadResponse struct {
	Resume  *db.Resume          `json:"resume"`
	Quality types.QualityResult `json:"quality"`
}

type satisfactionResponse struct {
	types.ScoreResult
	AnalyzedResume string `json:"analyzed_resume"`
}

type eligibilityResponse struct {
	JobTitle string `json:"job_title"`
	types.DetailedScoreResult
}

type applyResponse struct {
	ID          uuid.UUID              `json:"id"`
	Score       int                    `json:"score"`
	Eligibility types.EligibilityLevel `json:"eligibility"`
	Message     string                 `json:"message"`
}

// readUpload reads the multipart file field, enforcing the upload limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) (string, []byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, "", &ErrValidation{Field: field, Message: fmt.Sprintf("file exceeds %d bytes", s.maxUpload)}
		}
		return "", nil, "", &ErrValidation{Field: field, Message: "expected a multipart upload"}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, "", &ErrValidation{Field: field, Message: "no file uploaded"}
	}
	defer func() { _ = file.Close() }()

	name := filepath.Base(header.Filename)
	if name == "." || name == "/" || name == "" {
		return "", nil, "", &ErrValidation{Field: field, Message: "no file selected"}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	return name, data, header.Header.Get("Content-Type"), nil
}

// handleUploadResume extracts text from an uploaded résumé, stores the file
// and returns the record with a quality analysis.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)

	filename, data, contentType, err := s.readUpload(w, r, "resume")
	if err != nil {
		s.fail(w, err)
		return
	}

	format, err := ingestion.DetectFormat(filename)
	if err != nil {
		metrics.ObserveIngest("", metrics.ResultSkipped)
		s.fail(w, err)
		return
	}

	text, err := ingestion.ExtractText(filename, data)
	if err != nil {
		metrics.ObserveIngest(string(format), metrics.ResultFailed)
		s.fail(w, err)
		return
	}

	key := storage.NewKey(filename)
	if err := s.store.Put(r.Context(), key, bytes.NewReader(data), contentType); err != nil {
		s.fail(w, fmt.Errorf("failed to store upload: %w", err))
		return
	}

	meta := ingestion.NewMetadata(filename, format, text, len(data))
	resume, err := s.db.CreateResume(r.Context(), &db.Resume{
		UserID:      userID,
		Filename:    filename,
		ContentText: text,
		ContentHash: meta.Hash,
		FileKey:     key,
	})
	if err != nil {
		if delErr := s.store.Delete(r.Context(), key); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		s.fail(w, err)
		return
	}
	metrics.ObserveIngest(string(format), metrics.ResultOK)

	s.logger.Info("resume uploaded",
		zap.String("resume_id", resume.ID.String()),
		zap.String("format", string(format)),
		zap.Int("words", meta.WordCount),
	)
	jsonResponse(w, http.StatusCreated, uploadResponse{Resume: resume, Quality: validation.AnalyzeQuality(text)})
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	resumes, err := s.db.ListResumesByUser(r.Context(), userID)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, resumes)
}

// loadResume returns a résumé the caller may read: its owner, HR or admin.
func (s *Server) loadResume(r *http.Request, id uuid.UUID) (*db.Resume, error) {
	resume, err := s.db.GetResume(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, &ErrNotFound{Kind: "resume", ID: id.String()}
	}

	userID, role := caller(r)
	if role == types.RoleUser && resume.UserID != userID {
		return nil, &ErrForbidden{Action: "access this resume"}
	}
	return resume, nil
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	resume, err := s.loadResume(r, id)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleResumeQuality(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	resume, err := s.loadResume(r, id)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, validation.AnalyzeQuality(resume.ContentText))
}

// handleResumeFile streams the original uploaded file.
func (s *Server) handleResumeFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	resume, err := s.loadResume(r, id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if resume.FileKey == "" {
		s.fail(w, &ErrNotFound{Kind: "resume file", ID: id.String()})
		return
	}

	body, err := s.store.Get(r.Context(), resume.FileKey)
	if err != nil {
		s.fail(w, err)
		return
	}
	defer func() { _ = body.Close() }()

	contentType := mime.TypeByExtension(filepath.Ext(resume.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": resume.Filename}))
	if _, err := io.Copy(w, body); err != nil {
		s.logger.Warn("failed to stream resume file", zap.String("key", resume.FileKey), zap.Error(err))
	}
}

// handleCheckSatisfaction scores a stored résumé against a pasted job description.
func (s *Server) handleCheckSatisfaction(w http.ResponseWriter, r *http.Request) {
	var req types.SatisfactionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	var resume *db.Resume
	if req.ResumeID != nil {
		var err error
		if resume, err = s.loadResume(r, *req.ResumeID); err != nil {
			s.fail(w, err)
			return
		}
	} else {
		userID, _ := caller(r)
		resumes, err := s.db.ListResumesByUser(r.Context(), userID)
		if err != nil {
			s.fail(w, err)
			return
		}
		if len(resumes) == 0 {
			s.fail(w, &ErrNotFound{Kind: "resume"})
			return
		}
		resume = &resumes[len(resumes)-1]
	}

	result := ranking.Score(resume.ContentText, req.JobDescription)
	metrics.ObserveScore(result.Score)
	jsonResponse(w, http.StatusOK, satisfactionResponse{ScoreResult: result, AnalyzedResume: resume.Filename})
}

// loadJob returns the job at the {id} path segment.
func (s *Server) loadJob(r *http.Request) (*db.Job, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	job, err := s.db.GetJob(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &ErrNotFound{Kind: "job", ID: id.String()}
	}
	return job, nil
}

// scoreAgainstJob loads the job and the caller's résumé and scores them.
func (s *Server) scoreAgainstJob(r *http.Request, resumeID uuid.UUID) (*db.Job, *db.Resume, types.DetailedScoreResult, error) {
	job, err := s.loadJob(r)
	if err != nil {
		return nil, nil, types.DetailedScoreResult{}, err
	}
	resume, err := s.loadResume(r, resumeID)
	if err != nil {
		return nil, nil, types.DetailedScoreResult{}, err
	}

	result := ranking.ScoreDetailed(resume.ContentText, job.Opening().Text())
	metrics.ObserveScore(result.Score)
	return job, resume, result, nil
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	var req types.ResumeRef
	if !decodeRequest(w, r, &req) {
		return
	}

	job, _, result, err := s.scoreAgainstJob(r, req.ResumeID)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, eligibilityResponse{JobTitle: job.Title, DetailedScoreResult: result})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req types.ResumeRef
	if !decodeRequest(w, r, &req) {
		return
	}

	job, resume, result, err := s.scoreAgainstJob(r, req.ResumeID)
	if err != nil {
		s.fail(w, err)
		return
	}
	if job.Status != db.JobOpen {
		s.fail(w, &ErrValidation{Field: "job", Message: "job is not accepting applications"})
		return
	}

	userID, _ := caller(r)
	id, err := s.db.CreateApplication(r.Context(), db.ApplicationInput{
		JobID:       job.ID,
		UserID:      userID,
		ResumeID:    resume.ID,
		Score:       result.Score,
		Eligibility: string(result.EligibilityLevel),
	})
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			err = &ErrDuplicateApplication{JobID: job.ID}
		}
		s.fail(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, applyResponse{
		ID:          id,
		Score:       result.Score,
		Eligibility: result.EligibilityLevel,
		Message: fmt.Sprintf("Applied successfully with %s! Compatibility: %d%% (%s match)",
			resume.Filename, result.Score, result.EligibilityLevel),
	})
}

func (s *Server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	apps, err := s.db.ListApplicationsByUser(r.Context(), userID)
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, apps)
}
