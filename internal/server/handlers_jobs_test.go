package server

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/types"
)

type zipEntry struct {
	name    string
	content string
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestListJobs_ByRole(t *testing.T) {
	env := newTestEnv(t)
	uma := env.addUser("Uma", types.RoleUser)
	hank := env.addUser("Hank", types.RoleHR)
	hana := env.addUser("Hana", types.RoleHR)
	admin := env.addUser("Ada", types.RoleAdmin)

	env.addJob(hank, "Backend", "python", "", 1)
	closed := env.addJob(hank, "Frontend", "react", "", 1)
	env.addJob(hana, "Data", "spark", "", 1)
	require.NoError(t, env.db.UpdateJobStatus(context.Background(), closed.ID, db.JobClosed))

	titles := func(caller uuid.UUID) []string {
		rec := env.do(http.MethodGet, "/jobs", caller, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var out []string
		for _, j := range decodeJSON[[]db.Job](t, rec) {
			out = append(out, j.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Backend", "Data"}, titles(uma))
	assert.ElementsMatch(t, []string{"Backend", "Frontend"}, titles(hank))
	assert.ElementsMatch(t, []string{"Backend", "Frontend", "Data"}, titles(admin))
}

func TestGetJob(t *testing.T) {
	env := newTestEnv(t)
	uma := env.addUser("Uma", types.RoleUser)
	hank := env.addUser("Hank", types.RoleHR)
	job := env.addJob(hank, "Backend", "python", "docker", 2)

	rec := env.do(http.MethodGet, "/jobs/"+job.ID.String(), uma, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[db.Job](t, rec)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, 2, got.Vacancies)

	rec = env.do(http.MethodGet, "/jobs/"+uuid.NewString(), uma, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "job not found")
}

func TestCreateJob(t *testing.T) {
	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)

	rec := env.do(http.MethodPost, "/jobs", hank, types.CreateJobRequest{
		Title: "Backend", Description: "Build services", SkillsRequired: "python, docker",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeJSON[db.Job](t, rec)
	assert.Equal(t, hank, got.HRID)
	assert.Equal(t, 1, got.Vacancies)
	assert.Equal(t, db.JobOpen, got.Status)

	rec = env.do(http.MethodPost, "/jobs", hank, types.CreateJobRequest{Description: "no title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation error: Title - required", errorMessage(t, rec))

	rec = env.do(http.MethodPost, "/jobs", hank, types.CreateJobRequest{Title: "T", Description: "D", Vacancies: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportJob(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs/42" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><head><title>Careers</title></head><body>
<nav>Menu</nav>
<main><h1>Platform Engineer</h1><p>Run Kubernetes clusters and write Go services.</p></main>
</body></html>`))
	}))
	defer page.Close()

	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)

	rec := env.do(http.MethodPost, "/jobs/import", hank, types.ImportJobRequest{
		URL: page.URL + "/jobs/42", SkillsRequired: "golang, kubernetes", Vacancies: 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeJSON[db.Job](t, rec)
	assert.Equal(t, "Platform Engineer", got.Title)
	assert.Contains(t, got.Description, "Run Kubernetes clusters")
	assert.NotContains(t, got.Description, "Menu")
	assert.Equal(t, "golang, kubernetes", got.SkillsRequired)
	assert.Equal(t, 3, got.Vacancies)
	assert.Equal(t, page.URL+"/jobs/42", got.SourceURL)
	assert.Equal(t, hank, got.HRID)

	rec = env.do(http.MethodPost, "/jobs/import", hank, types.ImportJobRequest{URL: page.URL + "/missing"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = env.do(http.MethodPost, "/jobs/import", hank, types.ImportJobRequest{URL: "not a url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportError(t *testing.T) {
	plain := fmt.Errorf("boom")
	assert.Equal(t, plain, importError(plain))
}

func TestToggleJob(t *testing.T) {
	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)
	hana := env.addUser("Hana", types.RoleHR)
	job := env.addJob(hank, "Backend", "python", "", 1)
	path := "/jobs/" + job.ID.String() + "/toggle"

	rec := env.do(http.MethodPost, path, hank, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Job status updated to Closed.", decodeJSON[map[string]string](t, rec)["message"])

	rec = env.do(http.MethodPost, path, hank, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, db.JobOpen, decodeJSON[map[string]string](t, rec)["status"])

	rec = env.do(http.MethodPost, path, hana, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not allowed to manage this job", errorMessage(t, rec))
}

// seedApplications creates a job for hr with one application per score.
func seedApplications(t *testing.T, env *testEnv, hr uuid.UUID, scores ...int) (*db.Job, []uuid.UUID) {
	t.Helper()
	job := env.addJob(hr, "Backend", "python", "", 1)
	ids := make([]uuid.UUID, 0, len(scores))
	for _, score := range scores {
		user := env.addUser("Applicant-"+uuid.NewString()[:8], types.RoleUser)
		resume := env.addResume(user, "cv.txt", "python")
		id, err := env.db.CreateApplication(context.Background(), db.ApplicationInput{
			JobID: job.ID, UserID: user, ResumeID: resume.ID, Score: score,
			Eligibility: string(types.EligibilityForScore(score)),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return job, ids
}

func TestListJobApplications(t *testing.T) {
	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)
	hana := env.addUser("Hana", types.RoleHR)
	job, _ := seedApplications(t, env, hank, 40, 90, 65)

	rec := env.do(http.MethodGet, "/jobs/"+job.ID.String()+"/applications", hank, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	apps := decodeJSON[[]db.Application](t, rec)
	require.Len(t, apps, 3)
	assert.Equal(t, []int{90, 65, 40}, []int{apps[0].Score, apps[1].Score, apps[2].Score})
	assert.NotEmpty(t, apps[0].UserName)

	rec = env.do(http.MethodGet, "/jobs/"+job.ID.String()+"/applications", hana, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateApplication(t *testing.T) {
	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)
	hana := env.addUser("Hana", types.RoleHR)
	_, ids := seedApplications(t, env, hank, 80)
	path := "/applications/" + ids[0].String()

	rec := env.do(http.MethodPut, path, hank, types.UpdateApplicationRequest{Status: "Selected", Notes: "strong portfolio"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Candidate Selected!", decodeJSON[map[string]string](t, rec)["message"])

	app, err := env.db.GetApplication(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, db.ApplicationSelected, app.Status)
	assert.Equal(t, "strong portfolio", app.HRNotes)

	rec = env.do(http.MethodPut, path, hank, types.UpdateApplicationRequest{Status: "Maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, path, hana, types.UpdateApplicationRequest{Status: "Rejected"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPut, "/applications/"+uuid.NewString(), hank, types.UpdateApplicationRequest{Status: "Rejected"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkUpdateApplications(t *testing.T) {
	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)
	hana := env.addUser("Hana", types.RoleHR)
	_, ids := seedApplications(t, env, hank, 30, 35)
	_, otherIDs := seedApplications(t, env, hana, 50)

	rec := env.do(http.MethodPost, "/applications/bulk", hank, types.BulkUpdateApplicationsRequest{
		IDs: ids, Status: "Rejected", Justification: "position filled",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, float64(2), body["updated"])
	assert.Equal(t, "2 candidates Rejected with justification!", body["message"])

	for _, id := range ids {
		app, err := env.db.GetApplication(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, db.ApplicationRejected, app.Status)
		assert.True(t, strings.HasSuffix(app.HRNotes, "Rejected: position filled"), app.HRNotes)
		assert.True(t, strings.HasPrefix(app.HRNotes, "["), app.HRNotes)
	}

	// one foreign application rejects the whole batch
	rec = env.do(http.MethodPost, "/applications/bulk", hank, types.BulkUpdateApplicationsRequest{
		IDs: append([]uuid.UUID{ids[0]}, otherIDs...), Status: "Selected",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	app, _ := env.db.GetApplication(context.Background(), ids[0])
	assert.Equal(t, db.ApplicationRejected, app.Status)

	rec = env.do(http.MethodPost, "/applications/bulk", hank, types.BulkUpdateApplicationsRequest{Status: "Selected"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreenUpload(t *testing.T) {
	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)
	job := env.addJob(hank, "Backend", "python docker", "kubernetes", 2)

	archive := buildZip(t,
		zipEntry{"c.txt", "gardening"},
		zipEntry{"folder/a.txt", "backend python docker kubernetes"},
		zipEntry{"b.txt", "backend python docker"},
		zipEntry{"notes.csv", "a,b"},
		zipEntry{"__MACOSX/._a.txt", "junk"},
	)
	body, contentType := multipartBody(t, "resume_zip", "batch.zip", archive)

	rec := env.do(http.MethodPost, "/jobs/"+job.ID.String()+"/screen", hank, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decodeJSON[screenUploadResponse](t, rec)
	assert.Equal(t, "Successfully screened 3 candidates!", got.Message)
	require.Len(t, got.Candidates, 3)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, []string{
		got.Candidates[0].Filename, got.Candidates[1].Filename, got.Candidates[2].Filename,
	})
	assert.Equal(t, 100, got.Candidates[0].Score)
	assert.Equal(t, 75, got.Candidates[1].Score)
	assert.Equal(t, types.RecommendSelect, got.Candidates[1].Recommendation)
	assert.Equal(t, types.RecommendReject, got.Candidates[2].Recommendation)
	for _, c := range got.Candidates {
		assert.Empty(t, c.Content)
	}
	assert.Len(t, got.Skipped, 2)
	assert.Equal(t, 2, got.Summary.Vacancies)
	assert.Equal(t, 2, got.Summary.Selected)

	pool := env.db.candidatesFor(job.ID)
	require.Len(t, pool, 3)
	assert.Equal(t, "a.txt", pool[0].Filename)
	assert.Equal(t, "backend python docker kubernetes", pool[0].ContentText)
	assert.Equal(t, "Pending", pool[0].HRDecision)
	for _, c := range pool {
		require.NotEmpty(t, c.FileKey)
		stored, err := env.store.Get(context.Background(), c.FileKey)
		require.NoError(t, err)
		_ = stored.Close()
	}

	rec = env.do(http.MethodGet, "/jobs/"+job.ID.String()+"/candidates", hank, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeJSON[[]db.Candidate](t, rec)
	require.Len(t, listed, 3)
	assert.Equal(t, 100, listed[0].Score)
}

func TestScreenUpload_SameNameInDifferentFolders(t *testing.T) {
	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)
	job := env.addJob(hank, "Backend", "python docker", "kubernetes", 1)

	archive := buildZip(t,
		zipEntry{"alice/resume.txt", "alice backend python docker kubernetes"},
		zipEntry{"bob/resume.txt", "bob gardening"},
	)
	body, contentType := multipartBody(t, "resume_zip", "batch.zip", archive)
	rec := env.do(http.MethodPost, "/jobs/"+job.ID.String()+"/screen", hank, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	pool := env.db.candidatesFor(job.ID)
	require.Len(t, pool, 2)
	assert.NotEqual(t, pool[0].FileKey, pool[1].FileKey)
	for _, c := range pool {
		assert.Equal(t, "resume.txt", c.Filename)
		stored, err := env.store.Get(context.Background(), c.FileKey)
		require.NoError(t, err)
		raw, err := io.ReadAll(stored)
		_ = stored.Close()
		require.NoError(t, err)
		assert.Equal(t, c.ContentText, string(raw))
	}

	entries, err := os.ReadDir(env.store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestScreenUpload_Rejects(t *testing.T) {
	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)
	hana := env.addUser("Hana", types.RoleHR)
	job := env.addJob(hank, "Backend", "python", "", 1)
	path := "/jobs/" + job.ID.String() + "/screen"

	tests := []struct {
		name     string
		caller   uuid.UUID
		filename string
		content  []byte
		want     int
		message  string
	}{
		{"not a zip name", hank, "batch.tar", []byte("x"), http.StatusBadRequest, "validation error: resume_zip - Please upload a valid ZIP file."},
		{"corrupt zip", hank, "batch.zip", []byte("not a zip"), http.StatusBadRequest, ""},
		{"no resumes", hank, "batch.zip", buildZip(t, zipEntry{"notes.csv", "a,b"}), http.StatusBadRequest, "validation error: resume_zip - No valid resumes found in ZIP file."},
		{"foreign job", hana, "batch.zip", buildZip(t, zipEntry{"a.txt", "python"}), http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, "resume_zip", tt.filename, tt.content)
			rec := env.do(http.MethodPost, path, tt.caller, body, contentType)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.message != "" {
				assert.Equal(t, tt.message, errorMessage(t, rec))
			}
		})
	}
	assert.Empty(t, env.db.candidatesFor(job.ID))
}

func TestScreenUpload_SaveFailureRemovesFiles(t *testing.T) {
	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)
	job := env.addJob(hank, "Backend", "python", "", 1)
	env.db.failWith = errStoreDown

	body, contentType := multipartBody(t, "resume_zip", "batch.zip", buildZip(t,
		zipEntry{"a.txt", "python"}, zipEntry{"b.txt", "java"}))
	rec := env.do(http.MethodPost, "/jobs/"+job.ID.String()+"/screen", hank, body, contentType)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries, err := os.ReadDir(env.store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCandidateDecision(t *testing.T) {
	env := newTestEnv(t)
	hank := env.addUser("Hank", types.RoleHR)
	hana := env.addUser("Hana", types.RoleHR)
	job := env.addJob(hank, "Backend", "python", "", 1)
	ids, err := env.db.SaveCandidates(context.Background(), job.ID, []types.CandidateRecord{
		{Filename: "a.txt", Score: 55, Recommendation: types.RecommendReview, Justification: "Moderate match (55%). Consider for interview to assess fit."},
	})
	require.NoError(t, err)
	path := "/candidates/" + ids[0].String() + "/decision"

	rec := env.do(http.MethodPut, path, hank, types.CandidateDecisionRequest{Decision: "Selected", Notes: "great interview"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON[map[string]string](t, rec)
	assert.Equal(t, "Selected", body["decision"])
	assert.Equal(t, "Moderate match (55%). Consider for interview to assess fit. | HR: great interview", body["justification"])

	pool := env.db.candidatesFor(job.ID)
	assert.Equal(t, "Selected", pool[0].HRDecision)
	assert.Equal(t, body["justification"], pool[0].Justification)

	rec = env.do(http.MethodPut, path, hana, types.CandidateDecisionRequest{Decision: "Rejected"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPut, path, hank, types.CandidateDecisionRequest{Decision: "Hired"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/candidates/"+uuid.NewString()+"/decision", hank, types.CandidateDecisionRequest{Decision: "Rejected"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
