// Package api exposes the booking query service over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
	"github.com/jonesrussell/north-cloud/stayscope/internal/reports"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeNotFound       = "NOT_FOUND"
	codeInternal       = "INTERNAL_ERROR"

	msgInternal = "Internal server error"
)

// QueryService is the behavior the handlers need.
type QueryService interface {
	Search(ctx context.Context, spec domain.FilterSpec) (domain.SearchResult, error)
	Aggregate(ctx context.Context, specs []domain.AggregationSpec) (domain.AggregationResult, error)
	FullTextSearch(ctx context.Context, text string, fields []string) (domain.SearchResult, error)
	Suggest(ctx context.Context, text, field string) ([]string, error)
	Report(ctx context.Context, name string) (any, error)
	Reports() []reports.Report
	InvalidateSchema(ctx context.Context, index string) error
}

// Handler holds HTTP request handlers.
type Handler struct {
	svc    QueryService
	logger logger.Logger
}

// NewHandler creates a handler.
func NewHandler(svc QueryService, log logger.Logger) *Handler {
	return &Handler{svc: svc, logger: log}
}

// Search handles POST /api/v1/search.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, err)
		return
	}

	spec, err := req.FilterSpec()
	if err != nil {
		h.writeError(c, "search", err)
		return
	}

	res, err := h.svc.Search(c.Request.Context(), spec)
	if err != nil {
		h.writeError(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Aggregate handles POST /api/v1/aggregate.
func (h *Handler) Aggregate(c *gin.Context) {
	var req AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	specs, err := req.Specs()
	if err != nil {
		h.writeError(c, "aggregate", err)
		return
	}

	res, err := h.svc.Aggregate(c.Request.Context(), specs)
	if err != nil {
		h.writeError(c, "aggregate", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// FullTextSearch handles POST /api/v1/full-text-search.
func (h *Handler) FullTextSearch(c *gin.Context) {
	var req FullTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	res, err := h.svc.FullTextSearch(c.Request.Context(), req.QueryString, req.Fields)
	if err != nil {
		h.writeError(c, "full-text search", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Suggest handles POST /api/v1/suggest.
func (h *Handler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	out, err := h.svc.Suggest(c.Request.Context(), req.Text, req.Field)
	if err != nil {
		h.writeError(c, "suggest", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListReports handles GET /api/v1/reports.
func (h *Handler) ListReports(c *gin.Context) {
	list := h.svc.Reports()
	c.JSON(http.StatusOK, gin.H{
		"reports": list,
		"count":   len(list),
	})
}

// Report handles GET /api/v1/reports/:name.
func (h *Handler) Report(c *gin.Context) {
	name := c.Param("name")

	out, err := h.svc.Report(c.Request.Context(), name)
	if err != nil {
		h.writeError(c, "report "+name, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// InvalidateSchema handles DELETE /api/v1/schema/:index.
func (h *Handler) InvalidateSchema(c *gin.Context) {
	index := c.Param("index")

	if err := h.svc.InvalidateSchema(c.Request.Context(), index); err != nil {
		h.writeError(c, "invalidate schema", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("Invalid request body",
		logger.String("path", c.FullPath()),
		logger.Error(err),
	)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     "Invalid request body: " + err.Error(),
		Code:      codeInvalidRequest,
		Timestamp: time.Now(),
	})
}

// writeError maps service errors to responses. Validation errors and empty
// results are reported to the caller; everything else is logged and answered
// with a uniform 500.
func (h *Handler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrUnknownAggKind),
		errors.Is(err, domain.ErrUnknownRangeOp):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     err.Error(),
			Code:      codeInvalidRequest,
			Timestamp: time.Now(),
		})
	case errors.Is(err, domain.ErrEmptyResult):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:     "No results found",
			Code:      codeNotFound,
			Timestamp: time.Now(),
		})
	case errors.Is(err, domain.ErrUnknownReport):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:     err.Error(),
			Code:      codeNotFound,
			Timestamp: time.Now(),
		})
	default:
		logger.FromContext(c.Request.Context()).Error("Request failed",
			logger.String("operation", op),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     msgInternal,
			Code:      codeInternal,
			Timestamp: time.Now(),
		})
	}
}
