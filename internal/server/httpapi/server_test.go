package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantive/jobboard/internal/common"
	"github.com/tenantive/jobboard/internal/dbx"
	"github.com/tenantive/jobboard/internal/logging"
	"github.com/tenantive/jobboard/internal/server/auth"
	"github.com/tenantive/jobboard/internal/server/config"
	"github.com/tenantive/jobboard/internal/server/models"
	"github.com/tenantive/jobboard/internal/server/repositories/jobs"
	"github.com/tenantive/jobboard/internal/server/repositories/userjobs"
	"github.com/tenantive/jobboard/internal/server/repositories/users"
	"github.com/tenantive/jobboard/internal/server/services"
	"github.com/tenantive/jobboard/internal/tenant"
)

type fakeJobsRepo struct {
	jobs []*models.Job
}

func (f *fakeJobsRepo) GetAll(ctx context.Context) ([]*models.Job, error) { return f.jobs, nil }
func (f *fakeJobsRepo) Create(ctx context.Context, job *models.Job) (int64, error) {
	return 0, common.ErrInternal
}

type fakeUserJobsRepo struct {
	applied     map[int64]struct{}
	applyErr    error
	withdrawErr error
	lastTenant  tenant.ID
}

func (f *fakeUserJobsRepo) AppliedJobIDs(ctx context.Context, t tenant.ID) (map[int64]struct{}, error) {
	f.lastTenant = t
	return f.applied, nil
}

func (f *fakeUserJobsRepo) Apply(ctx context.Context, t tenant.ID, jobID int64) error {
	f.lastTenant = t
	return f.applyErr
}

func (f *fakeUserJobsRepo) Withdraw(ctx context.Context, t tenant.ID, jobID int64) error {
	f.lastTenant = t
	return f.withdrawErr
}

type fakeManager struct {
	jobs     *fakeJobsRepo
	userJobs *fakeUserJobsRepo
}

func (m *fakeManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeManager) Jobs(db dbx.DBTX) jobs.Repository                    { return m.jobs }
func (m *fakeManager) Users(db *sql.DB) users.Repository                   { return nil }
func (m *fakeManager) UserJobs(db *sql.DB) userjobs.Repository             { return m.userJobs }

func newTestServer(t *testing.T, m *fakeManager) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	log := logging.NewSlogLogger(slog.New(slog.DiscardHandler))

	srv := NewServer(cfg, log, services.NewJobService(nil, m))
	return srv, srv.Router()
}

func defaultManager() *fakeManager {
	return &fakeManager{
		jobs: &fakeJobsRepo{jobs: []*models.Job{
			{ID: 1, Name: "Go engineer", Company: "Acme", CreatedTime: 1700000000000},
			{ID: 2, Name: "SRE", Company: "Globex", CreatedTime: 1700000000000},
		}},
		userJobs: &fakeUserJobsRepo{applied: map[int64]struct{}{2: {}}},
	}
}

func TestFetchJobs_WithTenantParam(t *testing.T) {
	m := defaultManager()
	_, router := newTestServer(t, m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs?tenant=7", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenant.ID(7), m.userJobs.lastTenant)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, false, body[0]["isApplied"])
	assert.Equal(t, true, body[1]["isApplied"])
	assert.Equal(t, "2023-11-14T22:13:20Z", body[0]["createdTime"])
}

func TestFetchJobs_WithBearerToken(t *testing.T) {
	m := defaultManager()
	_, router := newTestServer(t, m)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	token, err := auth.GenerateToken(42, []byte(cfg.SecretKey), time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenant.ID(42), m.userJobs.lastTenant)
}

func TestFetchJobs_MissingTenant(t *testing.T) {
	_, router := newTestServer(t, defaultManager())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body apiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "1", body.Code)
	assert.Equal(t, "400", body.Status)
}

func TestFetchJobs_BadToken(t *testing.T) {
	_, router := newTestServer(t, defaultManager())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateJob_Apply(t *testing.T) {
	m := defaultManager()
	_, router := newTestServer(t, m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/jobs/1?tenant=7", strings.NewReader(`{"applied":true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isApplied":true`)
}

func TestUpdateJob_DuplicateApplication(t *testing.T) {
	m := defaultManager()
	m.userJobs.applyErr = common.ErrRelationExists
	_, router := newTestServer(t, m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/jobs/2?tenant=7", strings.NewReader(`{"applied":true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body apiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2", body.Code)
}

func TestUpdateJob_WithdrawMissing(t *testing.T) {
	m := defaultManager()
	m.userJobs.withdrawErr = common.ErrNotFound
	_, router := newTestServer(t, m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/jobs/2?tenant=7", strings.NewReader(`{"applied":false}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body apiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "3", body.Code)
}

func TestUpdateJob_BadBody(t *testing.T) {
	_, router := newTestServer(t, defaultManager())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/jobs/2?tenant=7", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateJob_NonNumericID(t *testing.T) {
	_, router := newTestServer(t, defaultManager())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/jobs/abc?tenant=7", strings.NewReader(`{"applied":true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestID_Echoed(t *testing.T) {
	_, router := newTestServer(t, defaultManager())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs?tenant=7", nil)
	req.Header.Set("X-Request-ID", "req-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
