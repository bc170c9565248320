package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/brand-studio/internal/runstate"
)

func TestHandleGetRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.tracker.StartRun(ctx, runstate.Run{ID: "live-run", Kind: runstate.KindContent, Status: runstate.StatusRunning}))
	require.NoError(t, env.store.RecordRun(ctx, &runstate.Run{ID: "old-run", Kind: runstate.KindBrand, Status: runstate.StatusCompleted, CreatedAt: time.Now()}))

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/runs/live-run", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"live-run"`)
	assert.Contains(t, w.Body.String(), runstate.StatusRunning)

	// Expired from the tracker, served from the store
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/runs/old-run", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"old-run"`)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeBody[ErrorResponse](t, w).Kind)
}

func TestHandleListRuns(t *testing.T) {
	env := newTestEnv(t)
	company := env.store.addCompany("Acme")
	ctx := context.Background()

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/companies/1/runs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"runs":[],"total":0}`, w.Body.String())

	require.NoError(t, env.store.RecordRun(ctx, &runstate.Run{ID: "r1", Kind: runstate.KindBrand, CompanyID: company.ID, Status: runstate.StatusCompleted}))
	require.NoError(t, env.store.RecordRun(ctx, &runstate.Run{ID: "r2", Kind: runstate.KindContent, CompanyID: 99, Status: runstate.StatusCompleted}))

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/companies/1/runs?limit=10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"r1"`)
	assert.NotContains(t, w.Body.String(), `"id":"r2"`)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/companies/1/runs?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/companies/7/runs", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
