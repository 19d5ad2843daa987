package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memcortex/internal/graph"
	"memcortex/internal/intelligence"
	"memcortex/internal/replication"
)

func newTestRouter() (*gin.Engine, *replication.Scheduler) {
	gin.SetMode(gin.TestMode)

	store := graph.NewMemStore()
	engine := intelligence.NewEngine(store)
	scheduler := replication.NewScheduler(engine, 3, time.Millisecond)

	router := gin.New()
	registerRoutes(router, engine, scheduler, zap.NewNop())
	return router, scheduler
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, scheduler := newTestRouter()
	defer scheduler.Shutdown()

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMemoryIngestSchedulesSync(t *testing.T) {
	router, scheduler := newTestRouter()
	defer scheduler.Shutdown()

	w := doJSON(t, router, http.MethodPost, "/memories", gin.H{
		"user_id": "u1",
		"memories": []gin.H{
			{"id": "m1", "text": "first"},
			{"id": "m2", "text": "second"},
		},
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"scheduled":2}`, w.Body.String())

	scheduler.Wait()

	// Once the background sync lands, the memories are queryable
	w = doJSON(t, router, http.MethodGet, "/graph/path?from=m1&to=m1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLinkAndRelatedRoundtrip(t *testing.T) {
	router, scheduler := newTestRouter()
	defer scheduler.Shutdown()

	for _, id := range []string{"m1", "m2"} {
		w := doJSON(t, router, http.MethodPost, "/graph/sync", gin.H{
			"memory_id": id, "text": "memory " + id, "user_id": "u1",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, router, http.MethodPost, "/graph/link", gin.H{
		"memory_id_1": "m1", "memory_id_2": "m2", "relationship_type": "EXTENDS",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/graph/related/m1?depth=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var related []intelligence.RelatedMemory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &related))
	require.Len(t, related, 1)
	assert.Equal(t, "m2", related[0].MemoryID)
	assert.Equal(t, []string{"EXTENDS"}, related[0].RelationshipPath)
}

func TestDecisionRoundtrip(t *testing.T) {
	router, scheduler := newTestRouter()
	defer scheduler.Shutdown()

	w := doJSON(t, router, http.MethodPost, "/graph/decision", gin.H{
		"text":         "Use Postgres",
		"user_id":      "u1",
		"pros":         []string{"ACID", "pgvector"},
		"cons":         []string{"scaling"},
		"alternatives": []string{"MongoDB"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var created intelligence.DecisionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.DecisionID)

	w = doJSON(t, router, http.MethodGet, "/graph/decision/"+created.DecisionID+"/rationale", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rationale intelligence.RationaleResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rationale))
	assert.Equal(t, "Use Postgres", rationale.Decision)
	assert.Equal(t, []string{"ACID", "pgvector"}, rationale.Pros)
	assert.Equal(t, []string{"MongoDB"}, rationale.AlternativesConsidered)
}

func TestErrorMapping(t *testing.T) {
	router, scheduler := newTestRouter()
	defer scheduler.Shutdown()

	// Unknown component maps the not-found error to 404
	w := doJSON(t, router, http.MethodGet, "/graph/impact/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Thread of one memory maps malformed input to 400
	w = doJSON(t, router, http.MethodPost, "/graph/thread", gin.H{
		"memory_ids": []string{"only"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Disconnected path yields 404 with a specific message
	for _, id := range []string{"a", "b"} {
		resp := doJSON(t, router, http.MethodPost, "/graph/sync", gin.H{
			"memory_id": id, "user_id": "u1",
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/graph/path?from=a&to=b", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"no path found"}`, w.Body.String())
}

func TestIntelligenceReportEndpoint(t *testing.T) {
	router, scheduler := newTestRouter()
	defer scheduler.Shutdown()

	for _, id := range []string{"m1", "m2"} {
		w := doJSON(t, router, http.MethodPost, "/graph/sync", gin.H{
			"memory_id": id, "user_id": "u1",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(t, router, http.MethodPost, "/graph/link", gin.H{
		"memory_id_1": "m1", "memory_id_2": "m2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/graph/intelligence/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report intelligence.IntelligenceReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Summary.TotalMemories)
	assert.Equal(t, 10.0, report.Summary.KnowledgeHealthScore)
	assert.NotEmpty(t, report.Recommendations)
}
