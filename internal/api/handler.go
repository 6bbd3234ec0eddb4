package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/logger"
	"github.com/project-tktt/bayt-crawler/internal/module"
)

type searchQuery struct {
	SearchTerm    string `form:"search_term" binding:"required"`
	ResultsWanted int    `form:"results_wanted"`
}

// JobsHandler serves on-demand scrapes
type JobsHandler struct {
	scraper module.Scraper
	timeout time.Duration
	log     logger.Logger
}

// NewJobsHandler creates a handler bounded by timeout per request
func NewJobsHandler(scraper module.Scraper, timeout time.Duration, log logger.Logger) *JobsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &JobsHandler{scraper: scraper, timeout: timeout, log: log}
}

// Health reports liveness
func (h *JobsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "source": h.scraper.Source()})
}

// Search runs one scrape for the query parameters and returns the JobResponse
func (h *JobsHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	q.SearchTerm = strings.TrimSpace(q.SearchTerm)
	if q.SearchTerm == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search_term must not be blank"})
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	resp := h.scraper.Scrape(ctx, domain.SearchRequest{SearchTerm: q.SearchTerm, ResultsWanted: q.ResultsWanted})
	h.log.Info("Search served", "search_term", q.SearchTerm, "jobs", len(resp.Jobs), "elapsed", time.Since(start))

	c.JSON(http.StatusOK, resp)
}
