package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"evidence-service/internal/domain/analysis"
	"evidence-service/internal/domain/report"
	"evidence-service/internal/service"
)

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

type ReportWorkflow interface {
	Submit(ctx context.Context, in report.SubmitInput) (*report.Report, error)
	Get(ctx context.Context, id string) (*report.Report, error)
	AnalyzeReport(ctx context.Context, id string, in report.AnalyzeInput) (*report.Report, error)
	Review(ctx context.Context, id string, in report.ReviewInput) (*report.Report, error)
	ListQueue(ctx context.Context, filter string, limit, offset int) ([]report.Report, error)
}

type Handler struct {
	analyzer Analyzer
	reports  ReportWorkflow
	log      zerolog.Logger
}

func NewHandler(
	analyzer Analyzer,
	reports ReportWorkflow,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		analyzer: analyzer,
		reports:  reports,
		log:      log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.POST("/api/analyze", h.analyze)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/reports", h.createReport)
		v1.GET("/reports", h.listReports)
		v1.GET("/reports/:id", h.getReport)
		v1.POST("/reports/:id/analyze", h.analyzeReport)
		v1.POST("/reports/:id/review", h.reviewReport)
	}
}

func (h *Handler) analyze(c *gin.Context) {
	var req analysis.Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log.Debug().Err(err).Msg("malformed analyze request")
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}
	if strings.TrimSpace(req.MediaURL) == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Missing media_url"))
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"report_id": req.ReportID,
		"analysis":  result,
	})
}

func (h *Handler) createReport(c *gin.Context) {
	var in report.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rep, err := h.reports.Submit(c.Request.Context(), in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(rep))
}

func (h *Handler) listReports(c *gin.Context) {
	filter := strings.TrimSpace(c.Query("status"))

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	reports, err := h.reports.ListQueue(c.Request.Context(), filter, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(reports))
}

func (h *Handler) getReport(c *gin.Context) {
	rep, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rep))
}

func (h *Handler) analyzeReport(c *gin.Context) {
	var in report.AnalyzeInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
	}

	rep, err := h.reports.AnalyzeReport(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rep))
}

func (h *Handler) reviewReport(c *gin.Context) {
	var in report.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rep, err := h.reports.Review(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rep))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, analysis.ErrMediaUnavailable):
		h.log.Warn().Err(err).Msg("evidence media unavailable")
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   err.Error(),
			"code":    "media_unavailable",
		})
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"success": false,
		"error":   message,
	}
}
