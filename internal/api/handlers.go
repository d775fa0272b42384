// Package api exposes the harvester's HTTP surface: health probes,
// pipeline statistics, the collected email list, and manual pass triggers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/lead-harvester/internal/domain"
	"github.com/jonesrussell/lead-harvester/internal/logger"
	"github.com/jonesrussell/lead-harvester/internal/pipeline"
)

const dateLayout = "2006-01-02"

// SnapshotCounter reports snapshot progress.
type SnapshotCounter interface {
	Count(ctx context.Context) (total, processed int64, err error)
}

// ResponseCounter reports the extraction backlog.
type ResponseCounter interface {
	CountUnextracted(ctx context.Context) (int64, error)
}

// EmailReader reads the collected email store.
type EmailReader interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, start, end *time.Time) ([]domain.ExtractedEmail, error)
}

// RetrievalRunner runs one retrieval pass.
type RetrievalRunner interface {
	Run(ctx context.Context) (*pipeline.Counters, error)
}

// ExtractionRunner runs one extraction pass.
type ExtractionRunner interface {
	Run(ctx context.Context) (*pipeline.ExtractStats, error)
}

// Pinger checks a dependency connection.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler handles HTTP requests for the harvester API.
type Handler struct {
	snapshots SnapshotCounter
	responses ResponseCounter
	emails    EmailReader
	retriever RetrievalRunner
	extractor ExtractionRunner
	db        Pinger
	service   string
	version   string
	logger    logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	snapshots SnapshotCounter,
	responses ResponseCounter,
	emails EmailReader,
	retriever RetrievalRunner,
	extractor ExtractionRunner,
	db Pinger,
	service, version string,
	log logger.Logger,
) *Handler {
	return &Handler{
		snapshots: snapshots,
		responses: responses,
		emails:    emails,
		retriever: retriever,
		extractor: extractor,
		db:        db,
		service:   service,
		version:   version,
		logger:    log,
	}
}

// StatsResponse summarizes pipeline progress.
type StatsResponse struct {
	Snapshots   SnapshotStats `json:"snapshots"`
	Unextracted int64         `json:"unextracted_responses"`
	Emails      int64         `json:"emails"`
}

// SnapshotStats breaks down snapshot counts.
type SnapshotStats struct {
	Total     int64 `json:"total"`
	Processed int64 `json:"processed"`
	Pending   int64 `json:"pending"`
}

// EmailsResponse wraps the email list.
type EmailsResponse struct {
	Emails []domain.ExtractedEmail `json:"emails"`
	Total  int                     `json:"total"`
}

// GetStats handles GET /api/v1/stats.
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	total, processed, err := h.snapshots.Count(ctx)
	if err != nil {
		h.logger.Error("Failed to count snapshots", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	unextracted, err := h.responses.CountUnextracted(ctx)
	if err != nil {
		h.logger.Error("Failed to count unextracted responses", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	emailCount, err := h.emails.Count(ctx)
	if err != nil {
		h.logger.Error("Failed to count emails", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Snapshots: SnapshotStats{
			Total:     total,
			Processed: processed,
			Pending:   total - processed,
		},
		Unextracted: unextracted,
		Emails:      emailCount,
	})
}

// ListEmails handles GET /api/v1/emails. Optional start_date and end_date
// query parameters (YYYY-MM-DD) bound the collection window; end_date is
// inclusive of the whole day.
func (h *Handler) ListEmails(c *gin.Context) {
	start, err := parseDateParam(c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
		return
	}

	end, err := parseDateParam(c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
		return
	}
	if end != nil {
		inclusive := end.AddDate(0, 0, 1)
		end = &inclusive
	}

	emails, err := h.emails.List(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to list emails", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load emails"})
		return
	}

	c.JSON(http.StatusOK, EmailsResponse{
		Emails: emails,
		Total:  len(emails),
	})
}

// RunRetrieve handles POST /api/v1/retrieve/run. The pass runs
// synchronously and returns its outcome counters.
func (h *Handler) RunRetrieve(c *gin.Context) {
	h.logger.Info("Manual retrieval pass requested")

	stats, err := h.retriever.Run(c.Request.Context())
	if err != nil {
		h.logger.Error("Retrieval pass failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RunExtract handles POST /api/v1/extract/run.
func (h *Handler) RunExtract(c *gin.Context) {
	h.logger.Info("Manual extraction pass requested")

	stats, err := h.extractor.Run(c.Request.Context())
	if err != nil {
		h.logger.Error("Extraction pass failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	})
}

// ReadyCheck handles GET /ready. Ready means the database answers a ping.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"checks": gin.H{"postgresql": err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": gin.H{"postgresql": "ok"},
	})
}

func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
