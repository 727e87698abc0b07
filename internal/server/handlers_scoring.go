package server

import (
	"net/http"

	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/metrics"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/types"
	"github.com/jonathan/resume-screener/internal/validation"
)

// screenResponse is returned by both screening endpoints.
type screenResponse struct {
	Candidates []types.CandidateRecord `json:"candidates"`
	Summary    types.ScreeningSummary  `json:"summary"`
	Skipped    []ingestion.SkippedFile `json:"skipped,omitempty"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if req.Detailed {
		result := ranking.ScoreDetailed(req.ResumeText, req.JobText)
		metrics.ObserveScore(result.Score)
		jsonResponse(w, http.StatusOK, result)
		return
	}

	result := ranking.Score(req.ResumeText, req.JobText)
	metrics.ObserveScore(result.Score)
	jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	var req types.QualityRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	jsonResponse(w, http.StatusOK, validation.AnalyzeQuality(req.ResumeText))
}

// handleScreen ranks documents sent inline without storing anything.
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req types.ScreenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	records, err := s.ranker.Rank(r.Context(), req.Job, req.Documents)
	if err != nil {
		s.fail(w, err)
		return
	}
	metrics.ObserveCandidates(records)

	jsonResponse(w, http.StatusOK, newScreenResponse(req.Job, records, nil))
}

func newScreenResponse(job types.JobOpening, records []types.CandidateRecord, skipped []ingestion.SkippedFile) screenResponse {
	summary := ranking.Summarize(records)
	summary.Vacancies = types.ParseVacancies(job.Vacancies)
	return screenResponse{Candidates: records, Summary: summary, Skipped: skipped}
}
