package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type stubEnqueuer struct {
	purges int
	sweeps int
	err    error
}

func (s *stubEnqueuer) EnqueueSessionsPurge(_ context.Context) (*asynq.TaskInfo, error) {
	s.purges++
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault, Type: TaskSessionsPurge}, nil
}

func (s *stubEnqueuer) EnqueueLocksSweep(_ context.Context) (*asynq.TaskInfo, error) {
	s.sweeps++
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{ID: "task-2", Queue: QueueDefault, Type: TaskLocksSweep}, nil
}

func newTestRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandlerPurgeSessionsEnqueues(t *testing.T) {
	enq := &stubEnqueuer{}
	router := newTestRouter(NewHandler(nil, enq, discardLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/purge", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, enq.purges)
	require.Contains(t, rec.Body.String(), TaskSessionsPurge)
	require.Contains(t, rec.Body.String(), `"id":"task-1"`)
}

func TestHandlerSweepLocksEnqueues(t *testing.T) {
	enq := &stubEnqueuer{}
	router := newTestRouter(NewHandler(nil, enq, discardLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/locks/sweep", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, enq.sweeps)
	require.Contains(t, rec.Body.String(), TaskLocksSweep)
}

func TestHandlerEnqueueFailureReturnsUnavailable(t *testing.T) {
	enq := &stubEnqueuer{err: errors.New("redis down")}
	router := newTestRouter(NewHandler(nil, enq, discardLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/purge", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, 1, enq.purges)
}

func TestHandlerEnqueueWithoutClientUnavailable(t *testing.T) {
	router := newTestRouter(NewHandler(nil, nil, discardLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/locks/sweep", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlerHealthWithoutInspector(t *testing.T) {
	router := newTestRouter(NewHandler(nil, &stubEnqueuer{}, discardLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `"pending":0`))
}
