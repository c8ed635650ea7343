package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/insights/import", h.ImportInsights)
	r.POST("/api/assistant/chat", h.AssistantChat)
	return r
}

func TestImportInsightsRejectsNonArrayBody(t *testing.T) {
	h := &Handler{Validator: validator.New(), Logger: zerolog.Nop()}
	r := newTestRouter(h)

	req, _ := http.NewRequest(http.MethodPost, "/api/insights/import", bytes.NewBufferString(`{"store_id":"x"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestImportInsightsSkipsInvalidRecords(t *testing.T) {
	h := &Handler{Validator: validator.New(), Logger: zerolog.Nop()}
	r := newTestRouter(h)

	// First record has an out-of-bounds rating, second is missing its
	// collection date. Both must be skipped without hitting the database.
	body := `[
		{"store_id":"store_001","collection_date":"2025-06-16","rating":6.0,"review_count":10,
		 "themes_positive":[],"themes_negative":[],
		 "sentiment_distribution":{"positive":50,"neutral":30,"negative":20},
		 "metadata":{"reviews_analyzed":10,"date_range":"","api_calls":0}},
		{"store_id":"store_002","rating":4.0,"review_count":10,
		 "themes_positive":[],"themes_negative":[],
		 "sentiment_distribution":{"positive":50,"neutral":30,"negative":20},
		 "metadata":{"reviews_analyzed":10,"date_range":"","api_calls":0}}
	]`
	req, _ := http.NewRequest(http.MethodPost, "/api/insights/import", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary ImportSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Parsed != 2 || summary.Skipped != 2 || summary.Inserted != 0 {
		t.Fatalf("expected every record skipped, got %+v", summary)
	}
	if len(summary.Errors) != 2 {
		t.Fatalf("expected 2 error messages, got %v", summary.Errors)
	}
}

func TestAssistantChatRequiresStoreAndQuestion(t *testing.T) {
	h := &Handler{Validator: validator.New(), Logger: zerolog.Nop()}
	r := newTestRouter(h)

	req, _ := http.NewRequest(http.MethodPost, "/api/assistant/chat", bytes.NewBufferString(`{"question":"how are reviews trending?"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAssistantChatDisabledWithoutAssistant(t *testing.T) {
	h := &Handler{Validator: validator.New(), Logger: zerolog.Nop()}
	r := newTestRouter(h)

	req, _ := http.NewRequest(http.MethodPost, "/api/assistant/chat", bytes.NewBufferString(`{"store_id":"store_001","question":"rating?"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
