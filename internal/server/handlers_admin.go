package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/types"
)

type adminStatsResponse struct {
	Stats   *db.SystemStats   `json:"stats"`
	Metrics *db.SystemMetrics `json:"metrics"`
	Jobs    []db.Job          `json:"jobs"`
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.SystemStats(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	m, err := s.db.SystemMetrics(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	jobs, err := s.db.ListJobs(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, adminStatsResponse{Stats: stats, Metrics: m, Jobs: jobs})
}

func (s *Server) handleAdminActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := s.db.RecentActivity(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, activity)
}

// handleAdminDeleteUser removes a user or HR account. Admin accounts are protected.
func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	user, err := s.db.GetUser(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if user == nil {
		s.fail(w, &ErrUserNotFound{UserID: id})
		return
	}
	if user.Role == types.RoleAdmin {
		s.fail(w, &ErrForbidden{Action: "delete an admin account"})
		return
	}

	if err := s.db.DeleteUser(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "User deleted successfully."})
}

// handleAdminDeleteJob removes a job with its applications and candidate pool,
// then deletes the pooled résumé files.
func (s *Server) handleAdminDeleteJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.loadJob(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	candidates, err := s.db.ListCandidatesByJob(r.Context(), job.ID)
	if err != nil {
		s.fail(w, err)
		return
	}

	if err := s.db.DeleteJob(r.Context(), job.ID); err != nil {
		s.fail(w, err)
		return
	}

	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.FileKey != "" {
			keys = append(keys, c.FileKey)
		}
	}
	s.removeFiles(r.Context(), keys)

	s.logger.Info("job deleted", zap.String("job_id", job.ID.String()), zap.Int("candidates", len(candidates)))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Job deleted successfully."})
}
