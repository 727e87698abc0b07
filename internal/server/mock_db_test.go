package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/types"
)

// memDB is an in-memory DBClient with the same not-found and duplicate
// semantics as the PostgreSQL store.
type memDB struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*db.User
	jobs         map[uuid.UUID]*db.Job
	resumes      map[uuid.UUID]*db.Resume
	applications map[uuid.UUID]*db.Application
	candidates   map[uuid.UUID]*db.Candidate
	clock        time.Time
	pingErr      error
	failWith     error // returned by every write when set
}

func newMemDB() *memDB {
	return &memDB{
		users:        map[uuid.UUID]*db.User{},
		jobs:         map[uuid.UUID]*db.Job{},
		resumes:      map[uuid.UUID]*db.Resume{},
		applications: map[uuid.UUID]*db.Application{},
		candidates:   map[uuid.UUID]*db.Candidate{},
		clock:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic.
func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memDB) CreateUser(_ context.Context, name, email, passwordHash string, role types.Role) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return uuid.Nil, m.failWith
	}
	for _, u := range m.users {
		if u.Email == email {
			return uuid.Nil, fmt.Errorf("failed to create user: %w", db.ErrDuplicate)
		}
	}
	now := m.tick()
	u := &db.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash, Role: role, CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memDB) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (m *memDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memDB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (m *memDB) HasAdmin(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == types.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDB) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", db.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memDB) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Role == types.RoleAdmin {
		return fmt.Errorf("delete user: %w", db.ErrNotFound)
	}
	delete(m.users, id)
	for jid, j := range m.jobs {
		if j.HRID == id {
			m.deleteJobLocked(jid)
		}
	}
	for rid, r := range m.resumes {
		if r.UserID == id {
			delete(m.resumes, rid)
		}
	}
	for aid, a := range m.applications {
		if a.UserID == id {
			delete(m.applications, aid)
		}
	}
	return nil
}

func (m *memDB) CreateJob(_ context.Context, in db.JobInput) (*db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if in.Vacancies < 1 {
		in.Vacancies = 1
	}
	j := &db.Job{
		ID: uuid.New(), HRID: in.HRID, Title: in.Title, Description: in.Description,
		SkillsRequired: in.SkillsRequired, Vacancies: in.Vacancies, Status: db.JobOpen,
		SourceURL: in.SourceURL, CreatedAt: m.tick(),
	}
	m.jobs[j.ID] = j
	c := *j
	return &c, nil
}

func (m *memDB) GetJob(_ context.Context, id uuid.UUID) (*db.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		c := *j
		return &c, nil
	}
	return nil, nil
}

func (m *memDB) listJobs(keep func(*db.Job) bool) []db.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := []db.Job{}
	for _, j := range m.jobs {
		if keep(j) {
			jobs = append(jobs, *j)
		}
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].CreatedAt.After(jobs[b].CreatedAt) })
	return jobs
}

func (m *memDB) ListJobs(context.Context) ([]db.Job, error) {
	return m.listJobs(func(*db.Job) bool { return true }), nil
}

func (m *memDB) ListOpenJobs(context.Context) ([]db.Job, error) {
	return m.listJobs(func(j *db.Job) bool { return j.Status == db.JobOpen }), nil
}

func (m *memDB) ListJobsByHR(_ context.Context, hrID uuid.UUID) ([]db.Job, error) {
	return m.listJobs(func(j *db.Job) bool { return j.HRID == hrID }), nil
}

func (m *memDB) UpdateJobStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("update job status: %w", db.ErrNotFound)
	}
	j.Status = status
	return nil
}

func (m *memDB) DeleteJob(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return fmt.Errorf("delete job: %w", db.ErrNotFound)
	}
	m.deleteJobLocked(id)
	return nil
}

func (m *memDB) deleteJobLocked(id uuid.UUID) {
	delete(m.jobs, id)
	for aid, a := range m.applications {
		if a.JobID == id {
			delete(m.applications, aid)
		}
	}
	for cid, c := range m.candidates {
		if c.JobID == id {
			delete(m.candidates, cid)
		}
	}
}

func (m *memDB) CreateResume(_ context.Context, r *db.Resume) (*db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	c := *r
	c.ID = uuid.New()
	c.UploadedAt = m.tick()
	m.resumes[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memDB) GetResume(_ context.Context, id uuid.UUID) (*db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.resumes[id]; ok {
		c := *r
		return &c, nil
	}
	return nil, nil
}

func (m *memDB) ListResumesByUser(_ context.Context, userID uuid.UUID) ([]db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.Resume{}
	for _, r := range m.resumes {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UploadedAt.Before(out[b].UploadedAt) })
	return out, nil
}

func (m *memDB) CreateApplication(_ context.Context, in db.ApplicationInput) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.applications {
		if a.JobID == in.JobID && a.UserID == in.UserID {
			return uuid.Nil, fmt.Errorf("failed to create application: %w", db.ErrDuplicate)
		}
	}
	a := &db.Application{
		ID: uuid.New(), JobID: in.JobID, UserID: in.UserID, ResumeID: in.ResumeID,
		Status: db.ApplicationApplied, Score: in.Score,
		Eligibility: types.EligibilityLevel(in.Eligibility), CreatedAt: m.tick(),
	}
	m.applications[a.ID] = a
	return a.ID, nil
}

// joined copies an application with its job title and user name.
func (m *memDB) joined(a *db.Application) db.Application {
	c := *a
	if j, ok := m.jobs[a.JobID]; ok {
		c.JobTitle = j.Title
	}
	if u, ok := m.users[a.UserID]; ok {
		c.UserName = u.Name
	}
	return c
}

func (m *memDB) GetApplication(_ context.Context, id uuid.UUID) (*db.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.applications[id]; ok {
		c := m.joined(a)
		return &c, nil
	}
	return nil, nil
}

func (m *memDB) ListApplicationsByUser(_ context.Context, userID uuid.UUID) ([]db.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.Application{}
	for _, a := range m.applications {
		if a.UserID == userID {
			out = append(out, m.joined(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memDB) ListApplicationsByJob(_ context.Context, jobID uuid.UUID) ([]db.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.Application{}
	for _, a := range m.applications {
		if a.JobID == jobID {
			out = append(out, m.joined(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (m *memDB) UpdateApplicationStatus(_ context.Context, id uuid.UUID, status, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return fmt.Errorf("update application: %w", db.ErrNotFound)
	}
	a.Status = status
	a.HRNotes = notes
	return nil
}

func (m *memDB) BulkUpdateApplications(_ context.Context, ids []uuid.UUID, status, justification string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	n := 0
	for _, id := range ids {
		if a, ok := m.applications[id]; ok {
			a.Status = status
			a.HRNotes = db.AppendJustification(a.HRNotes, status, justification, now)
			n++
		}
	}
	return n, nil
}

func (m *memDB) SaveCandidates(_ context.Context, jobID uuid.UUID, records []types.CandidateRecord) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	ids := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		c := &db.Candidate{
			ID: uuid.New(), JobID: jobID, Filename: rec.Filename, ContentText: rec.Content,
			Score: rec.Score, Recommendation: rec.Recommendation, Justification: rec.Justification,
			HRDecision: "Pending", FileKey: rec.FileKey, UploadedAt: m.tick(),
		}
		m.candidates[c.ID] = c
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (m *memDB) GetCandidate(_ context.Context, id uuid.UUID) (*db.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.candidates[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memDB) ListCandidatesByJob(_ context.Context, jobID uuid.UUID) ([]db.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.Candidate{}
	for _, c := range m.candidates {
		if c.JobID == jobID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out, nil
}

func (m *memDB) UpdateCandidateDecision(_ context.Context, id uuid.UUID, decision, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok {
		return fmt.Errorf("update candidate decision: %w", db.ErrNotFound)
	}
	c.HRDecision = decision
	c.Justification = db.AppendHRNote(c.Justification, notes)
	return nil
}

func (m *memDB) SystemStats(_ context.Context) (*db.SystemStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &db.SystemStats{Users: len(m.users), Jobs: len(m.jobs), Applications: len(m.applications), UserList: []db.User{}}
	for _, u := range m.users {
		stats.UserList = append(stats.UserList, *u)
	}
	return stats, nil
}

func (m *memDB) SystemMetrics(_ context.Context) (*db.SystemMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &db.SystemMetrics{TotalApplications: len(m.applications), ActiveJobs: []db.JobActivity{}}
	total := 0
	counts := map[string]int{}
	for _, a := range m.applications {
		total += a.Score
		counts[m.jobs[a.JobID].Title]++
	}
	if len(m.applications) > 0 {
		out.AvgApplicationScore = db.RoundTenth(float64(total) / float64(len(m.applications)))
	}
	for title, n := range counts {
		out.ActiveJobs = append(out.ActiveJobs, db.JobActivity{Title: title, Count: n})
	}
	for _, j := range m.jobs {
		if j.Status == db.JobOpen {
			out.OpenPositions++
		}
	}
	return out, nil
}

func (m *memDB) RecentActivity(ctx context.Context) (*db.RecentActivity, error) {
	jobs, _ := m.ListJobs(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &db.RecentActivity{Applications: []db.Application{}, Resumes: []db.Resume{}, Jobs: jobs}
	for _, a := range m.applications {
		out.Applications = append(out.Applications, m.joined(a))
	}
	for _, r := range m.resumes {
		c := *r
		c.ContentText = ""
		out.Resumes = append(out.Resumes, c)
	}
	return out, nil
}

func (m *memDB) Ping(context.Context) error {
	return m.pingErr
}

// candidatesFor returns a job's pool for assertions.
func (m *memDB) candidatesFor(jobID uuid.UUID) []db.Candidate {
	out, _ := m.ListCandidatesByJob(context.Background(), jobID)
	return out
}

var errStoreDown = errors.New("store unavailable")

var _ DBClient = (*memDB)(nil)
