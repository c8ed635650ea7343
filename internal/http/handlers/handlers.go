package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/storepulse/backend/internal/ai"
	"github.com/storepulse/backend/internal/collector"
	"github.com/storepulse/backend/internal/db"
	"github.com/storepulse/backend/internal/models"
	"github.com/storepulse/backend/internal/service"
)

type Handler struct {
	Store      *db.Store
	Service    *service.AggregationService
	Processor  collector.Processor
	Assistant  ai.Assistant
	Validator  *validator.Validate
	Logger     zerolog.Logger
	AdminKey   string
}

type ImportSummary struct {
	Parsed   int      `json:"parsed"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Latest executive snapshot
// @Tags snapshots
// @Produce json
// @Success 200 {object} models.ExecutiveSnapshot
// @Failure 404 {object} map[string]any
// @Router /api/snapshots/latest [get]
func (h *Handler) SnapshotLatest(c *gin.Context) {
	snap, err := h.Store.GetLatestSnapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "No snapshot available", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load snapshot", err.Error())
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary Executive snapshot by date
// @Tags snapshots
// @Produce json
// @Param date path string true "snapshot date (YYYY-MM-DD)"
// @Success 200 {object} models.ExecutiveSnapshot
// @Failure 404 {object} map[string]any
// @Router /api/snapshots/{date} [get]
func (h *Handler) SnapshotByDate(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "date must be YYYY-MM-DD", nil)
		return
	}
	snap, err := h.Store.GetSnapshotByDate(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "No snapshot for date", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load snapshot", err.Error())
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary Regional summaries from the latest snapshot
// @Tags snapshots
// @Produce json
// @Success 200 {array} models.RegionalSummary
// @Router /api/regions [get]
func (h *Handler) Regions(c *gin.Context) {
	snap, err := h.Store.GetLatestSnapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusOK, []models.RegionalSummary{})
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load snapshot", err.Error())
		return
	}
	c.JSON(http.StatusOK, snap.RegionalSummary)
}

// @Summary Latest insight batch
// @Tags insights
// @Produce json
// @Success 200 {array} models.StoreInsight
// @Router /api/insights/latest [get]
func (h *Handler) InsightsLatest(c *gin.Context) {
	insights, err := h.latestInsights(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load insights", err.Error())
		return
	}
	if insights == nil {
		insights = []models.StoreInsight{}
	}
	c.JSON(http.StatusOK, insights)
}

// @Summary Import a store-insights document
// @Description Accepts the collection agent's JSON output: an array of insight records.
// @Tags import
// @Accept json
// @Produce json
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/insights/import [post]
func (h *Handler) ImportInsights(c *gin.Context) {
	var batch []models.StoreInsight
	if err := json.NewDecoder(c.Request.Body).Decode(&batch); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be a JSON array of insight records", err.Error())
		return
	}

	summary := ImportSummary{Parsed: len(batch), Errors: []string{}}
	valid := make([]models.StoreInsight, 0, len(batch))
	for _, in := range batch {
		if err := h.Validator.Struct(in); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, in.StoreID+": "+err.Error())
			continue
		}
		valid = append(valid, in)
	}

	if len(valid) > 0 {
		inserted, err := h.Store.InsertInsights(c.Request.Context(), valid)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert insights", err.Error())
			return
		}
		summary.Inserted = int(inserted)
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Process raw store review payloads into insights
// @Tags collect
// @Accept json
// @Produce json
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/collect [post]
func (h *Handler) Collect(c *gin.Context) {
	var payloads []models.RawStoreData
	if err := json.NewDecoder(c.Request.Body).Decode(&payloads); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be a JSON array of raw store payloads", err.Error())
		return
	}

	summary := ImportSummary{Parsed: len(payloads), Errors: []string{}}
	insights := make([]models.StoreInsight, 0, len(payloads))
	for _, raw := range payloads {
		if err := h.Validator.Struct(raw); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, raw.StoreID+": "+err.Error())
			continue
		}
		insights = append(insights, h.Processor.Process(raw))
	}

	if len(insights) > 0 {
		inserted, err := h.Store.InsertInsights(c.Request.Context(), insights)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert insights", err.Error())
			return
		}
		summary.Inserted = int(inserted)
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Run one aggregation cycle
// @Tags aggregate
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/aggregate [post]
func (h *Handler) Aggregate(c *gin.Context) {
	runID, err := h.Store.CreateRun(c.Request.Context(), service.StatusRunning)
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to create run")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create run", err.Error())
		return
	}

	summary, snapshot, err := h.Service.RunCycle(c.Request.Context())
	status := service.StatusSuccess
	if err != nil {
		status = service.StatusFailed
	}
	b, _ := json.Marshal(summary)
	if finishErr := h.Store.FinishRun(c.Request.Context(), runID, status, b); finishErr != nil {
		h.Logger.Error().Err(finishErr).Msg("failed to finish run")
	}

	if err != nil {
		h.Logger.Error().Err(err).Msg("aggregation failed")
		writeError(c, http.StatusInternalServerError, "AGGREGATION_ERROR", "Aggregation failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary, "snapshot": snapshot})
}

// @Summary Latest aggregation run
// @Tags aggregate
// @Produce json
// @Success 200 {object} models.Run
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	run, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs yet", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load run", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          run.ID,
		"started_at":  run.StartedAt,
		"finished_at": run.FinishedAt,
		"status":      run.Status,
		"summary":     json.RawMessage(run.Summary),
	})
}

type chatRequest struct {
	StoreID  string           `json:"store_id" binding:"required"`
	Question string           `json:"question" binding:"required"`
	History  []ai.ChatMessage `json:"history"`
}

// @Summary Ask the assistant about a store
// @Tags assistant
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/assistant/chat [post]
func (h *Handler) AssistantChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "store_id and question are required", err.Error())
		return
	}
	if h.Assistant == nil {
		writeError(c, http.StatusServiceUnavailable, "ASSISTANT_DISABLED", "Assistant is not configured", nil)
		return
	}

	insights, err := h.latestInsights(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load insights", err.Error())
		return
	}
	var found *models.StoreInsight
	for i := range insights {
		if insights[i].StoreID == req.StoreID {
			found = &insights[i]
			break
		}
	}
	if found == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Unknown store id", nil)
		return
	}

	answer, err := h.Assistant.AskStore(c.Request.Context(), *found, req.Question, req.History)
	if err != nil {
		var rateLimited ai.RateLimitError
		if errors.As(err, &rateLimited) {
			writeError(c, http.StatusTooManyRequests, "RATE_LIMITED", rateLimited.Error(), nil)
			return
		}
		writeError(c, http.StatusBadGateway, "ASSISTANT_ERROR", "Assistant request failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (h *Handler) latestInsights(ctx context.Context) ([]models.StoreInsight, error) {
	dates, err := h.Store.LatestInsightDates(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, nil
	}
	return h.Store.GetInsightsByDate(ctx, dates[0])
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	body := gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if details != nil {
		body["error"].(gin.H)["details"] = details
	}
	c.AbortWithStatusJSON(status, body)
}
