package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memcortex/internal/intelligence"
	"memcortex/internal/replication"
	apperrors "memcortex/pkg/errors"
)

func registerRoutes(router *gin.Engine, engine *intelligence.Engine, scheduler *replication.Scheduler, log *zap.Logger) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Ingest hook: the primary record store posts newly created memories
	// here; graph sync happens in the background and the caller never waits.
	router.POST("/memories", func(c *gin.Context) {
		var req struct {
			Memories []struct {
				ID   string `json:"id" binding:"required"`
				Text string `json:"text"`
			} `json:"memories" binding:"required"`
			UserID   string         `json:"user_id" binding:"required"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		for _, m := range req.Memories {
			scheduler.Enqueue(replication.Record{
				MemoryID: m.ID,
				Text:     m.Text,
				UserID:   req.UserID,
				Metadata: req.Metadata,
			})
		}
		c.JSON(http.StatusAccepted, gin.H{"scheduled": len(req.Memories)})
	})

	router.GET("/replication/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, scheduler.Stats())
	})

	api := router.Group("/graph")
	{
		api.POST("/sync", func(c *gin.Context) {
			var req struct {
				MemoryID string         `json:"memory_id" binding:"required"`
				Text     string         `json:"text"`
				UserID   string         `json:"user_id" binding:"required"`
				Metadata map[string]any `json:"metadata"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := engine.SyncMemory(c.Request.Context(), req.MemoryID, req.Text, req.UserID, req.Metadata); err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"memory_id": req.MemoryID, "synced": true})
		})

		api.POST("/link", func(c *gin.Context) {
			var req struct {
				MemoryID1        string         `json:"memory_id_1" binding:"required"`
				MemoryID2        string         `json:"memory_id_2" binding:"required"`
				RelationshipType string         `json:"relationship_type"`
				Metadata         map[string]any `json:"metadata"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := engine.LinkMemories(c.Request.Context(), req.MemoryID1, req.MemoryID2, req.RelationshipType, req.Metadata)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/related/:id", func(c *gin.Context) {
			depth := 2
			if v := c.Query("depth"); v != "" {
				if parsed, err := strconv.Atoi(v); err == nil {
					depth = parsed
				}
			}
			var types []string
			if v := c.Query("types"); v != "" {
				types = strings.Split(v, ",")
			}
			result, err := engine.RelatedMemories(c.Request.Context(), c.Param("id"), depth, types)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/path", func(c *gin.Context) {
			from, to := c.Query("from"), c.Query("to")
			if from == "" || to == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
				return
			}
			result, err := engine.FindPath(c.Request.Context(), from, to)
			if err != nil {
				respondError(c, log, err)
				return
			}
			if result == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "no path found"})
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.POST("/thread", func(c *gin.Context) {
			var req struct {
				MemoryIDs []string `json:"memory_ids" binding:"required"`
				SessionID string   `json:"session_id"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := engine.CreateConversationThread(c.Request.Context(), req.MemoryIDs, req.SessionID)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/thread/:id", func(c *gin.Context) {
			result, err := engine.ConversationThread(c.Request.Context(), c.Param("id"))
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/evolution", func(c *gin.Context) {
			topic := c.Query("topic")
			if topic == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
				return
			}
			start, err := parseDateParam(c.Query("start_date"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
				return
			}
			end, err := parseDateParam(c.Query("end_date"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
				return
			}
			result, err := engine.MemoryEvolution(c.Request.Context(), topic, start, end)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/superseded", func(c *gin.Context) {
			userID := c.Query("user_id")
			if userID == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
				return
			}
			result, err := engine.SupersededMemories(c.Request.Context(), userID)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.POST("/component", func(c *gin.Context) {
			var req struct {
				Name          string         `json:"name" binding:"required"`
				ComponentType string         `json:"component_type"`
				Metadata      map[string]any `json:"metadata"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := engine.CreateComponent(c.Request.Context(), req.Name, req.ComponentType, req.Metadata)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.POST("/component/dependency", func(c *gin.Context) {
			var req struct {
				From           string `json:"from" binding:"required"`
				To             string `json:"to" binding:"required"`
				DependencyType string `json:"dependency_type"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := engine.LinkComponentDependency(c.Request.Context(), req.From, req.To, req.DependencyType)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.POST("/affects", func(c *gin.Context) {
			var req struct {
				MemoryID  string `json:"memory_id" binding:"required"`
				Component string `json:"component" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := engine.LinkMemoryToComponent(c.Request.Context(), req.MemoryID, req.Component)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/impact/:name", func(c *gin.Context) {
			result, err := engine.ImpactAnalysis(c.Request.Context(), c.Param("name"))
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.POST("/decision", func(c *gin.Context) {
			var req struct {
				Text         string         `json:"text" binding:"required"`
				UserID       string         `json:"user_id" binding:"required"`
				Pros         []string       `json:"pros"`
				Cons         []string       `json:"cons"`
				Alternatives []string       `json:"alternatives"`
				Metadata     map[string]any `json:"metadata"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := engine.CreateDecision(c.Request.Context(), req.Text, req.UserID, req.Pros, req.Cons, req.Alternatives, req.Metadata)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/decision/:id/rationale", func(c *gin.Context) {
			result, err := engine.DecisionRationale(c.Request.Context(), c.Param("id"))
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.POST("/validation", func(c *gin.Context) {
			var req struct {
				MemoryID string `json:"memory_id" binding:"required"`
				Result   string `json:"result" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := engine.RecordValidation(c.Request.Context(), req.MemoryID, req.Result)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/trust/:id", func(c *gin.Context) {
			result, err := engine.TrustScore(c.Request.Context(), c.Param("id"))
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/communities/:userId", func(c *gin.Context) {
			result, err := engine.DetectMemoryCommunities(c.Request.Context(), c.Param("userId"))
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/intelligence/:userId", func(c *gin.Context) {
			result, err := engine.AnalyzeMemoryIntelligence(c.Request.Context(), c.Param("userId"))
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})
	}
}

// respondError maps the engine's error taxonomy onto HTTP statuses with a
// structured error body so callers can branch without exception machinery
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsMalformedInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsRetryable(err):
		log.Error("Graph store unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "graph store unavailable"})
	default:
		log.Error("Unhandled engine error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Plain dates are accepted too
		t, err = time.Parse("2006-01-02", value)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}
