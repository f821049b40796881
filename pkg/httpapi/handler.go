package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tubeharvest/platform/pkg/common/kafka"
	"github.com/tubeharvest/platform/pkg/common/logger"
	"github.com/tubeharvest/platform/pkg/report"
)

// Publisher is the slice of the Kafka producer the handlers need.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type FetchRequest struct {
	ChannelID string `json:"channel_id"`
	Force     bool   `json:"force"`
}

type ProcessRequest struct {
	VideoID string `json:"video_id"`
	Segment string `json:"segment,omitempty"`
}

// Handler maps inbound pipeline commands onto the job queue and the
// index read path.
type Handler struct {
	fetchJobs   Publisher
	processJobs Publisher
	reports     *report.Service
	maxBody     int64
}

func NewHandler(fetchJobs, processJobs Publisher, reports *report.Service, maxBody int64) *Handler {
	return &Handler{
		fetchJobs:   fetchJobs,
		processJobs: processJobs,
		reports:     reports,
		maxBody:     maxBody,
	}
}

func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/fetch", h.handleFetch).Methods(http.MethodPost)
	router.HandleFunc("/process", h.handleProcess).Methods(http.MethodPost)
	router.HandleFunc("/report", h.handleReport).Methods(http.MethodGet)
}

func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ChannelID == "" {
		http.Error(w, "channel_id is required", http.StatusBadRequest)
		return
	}

	job := kafka.FetchJob{ChannelID: req.ChannelID, Force: req.Force}
	if err := h.fetchJobs.PublishEvent(r.Context(), kafka.EventTypeFetchJob, "api", job.Payload()); err != nil {
		logger.Log.WithError(err).Error("failed to enqueue fetch job")
		http.Error(w, "failed to enqueue fetch job", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"queued":     true,
		"channel_id": req.ChannelID,
		"force":      req.Force,
	})
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VideoID == "" {
		http.Error(w, "video_id is required", http.StatusBadRequest)
		return
	}

	job := kafka.ProcessJob{VideoID: req.VideoID, Segment: req.Segment}
	if err := h.processJobs.PublishEvent(r.Context(), kafka.EventTypeProcessJob, "api", job.Payload()); err != nil {
		logger.Log.WithError(err).Error("failed to enqueue process job")
		http.Error(w, "failed to enqueue process job", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"queued":   true,
		"video_id": req.VideoID,
		"segment":  req.Segment,
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	channelID := r.URL.Query().Get("channel_id")

	videos, err := h.reports.Recent(r.Context(), channelID, limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to read report")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":     videos,
		"limit":     limit,
		"channelId": channelID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
