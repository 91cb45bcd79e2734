package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtrail/internal/pipeline"
	"github.com/jonathan/jobtrail/internal/store"
	"github.com/jonathan/jobtrail/internal/types"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeRunner struct {
	counters pipeline.Counters
	err      error
	gotHours int
}

func (f *fakeRunner) Run(_ context.Context, lookbackHours int) (pipeline.Counters, error) {
	f.gotHours = lookbackHours
	return f.counters, f.err
}

func newTestServer(runner SyncRunner, st store.Store) *Server {
	if st == nil {
		st = store.NewMemory()
	}
	return New(Config{Port: 0, CronSecret: testSecret}, runner, st, nil)
}

func syncRequest(token string, query string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/sync"+query, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestSyncRequiresAuth(t *testing.T) {
	srv := newTestServer(&fakeRunner{}, nil)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"wrong token", "wrong-secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.handleSync(rr, syncRequest(tt.token, ""))
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestSyncReturnsReport(t *testing.T) {
	started := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	runner := &fakeRunner{counters: pipeline.Counters{
		Fetched:    5,
		Processed:  5,
		Created:    2,
		Updated:    2,
		Synced:     4,
		Duplicates: 1,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}}
	srv := newTestServer(runner, nil)

	rr := httptest.NewRecorder()
	srv.handleSync(rr, syncRequest(testSecret, ""))
	require.Equal(t, http.StatusOK, rr.Code)

	var report map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.EqualValues(t, 2, report["created"])
	assert.EqualValues(t, 2, report["updated"])
	assert.EqualValues(t, 1, report["duplicates"])
}

func TestSyncHoursOverride(t *testing.T) {
	runner := &fakeRunner{}
	srv := newTestServer(runner, nil)

	rr := httptest.NewRecorder()
	srv.handleSync(rr, syncRequest(testSecret, "?hours=72"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 72, runner.gotHours)
}

func TestSyncRejectsBadHours(t *testing.T) {
	srv := newTestServer(&fakeRunner{}, nil)

	for _, q := range []string{"?hours=0", "?hours=9999", "?hours=abc"} {
		rr := httptest.NewRecorder()
		srv.handleSync(rr, syncRequest(testSecret, q))
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestSyncRunFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("mailbox unavailable")}
	srv := newTestServer(runner, nil)

	rr := httptest.NewRecorder()
	srv.handleSync(rr, syncRequest(testSecret, ""))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestListApplications(t *testing.T) {
	st := store.NewMemory()
	rec := &types.ApplicationRecord{
		ThreadID:  "t1",
		Company:   "Acme",
		Role:      "Engineer",
		Status:    types.StatusApplied,
		UpdatedAt: time.Now(),
	}
	require.NoError(t, st.Create(context.Background(), rec))

	srv := newTestServer(&fakeRunner{}, st)
	rr := httptest.NewRecorder()
	srv.handleListApplications(rr, httptest.NewRequest(http.MethodGet, "/applications", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Applications []types.ApplicationRecord `json:"applications"`
		Count        int                       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Acme", body.Applications[0].Company)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeRunner{}, nil)

	rr := httptest.NewRecorder()
	srv.handleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
