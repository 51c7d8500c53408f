package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-pastebin/internal/domain/paste"
	"github.com/yanqian/ai-pastebin/internal/domain/summarizer"
	apperrors "github.com/yanqian/ai-pastebin/pkg/errors"
)

// badBodyMessage is returned for undecodable JSON; the decoder error is only logged.
const badBodyMessage = "request body must be JSON with a string content field"

// Handler wires the HTTP transport to domain services.
type Handler struct {
	pasteSvc      paste.Service
	summarizerSvc summarizer.Service
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(pasteSvc paste.Service, summarySvc summarizer.Service, logger *slog.Logger) *Handler {
	return &Handler{
		pasteSvc:      pasteSvc,
		summarizerSvc: summarySvc,
		logger:        logger.With("component", "http.handler"),
	}
}

// CreatePaste stores a new paste and returns its key.
func (h *Handler) CreatePaste(c *gin.Context) {
	var req paste.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, badBodyMessage, err))
		return
	}

	resp, err := h.pasteSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetPaste returns a paste, burning it when it is burn-after-reading.
func (h *Handler) GetPaste(c *gin.Context) {
	p, err := h.pasteSvc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, p)
}

// Summarize handles the AI summary endpoint. Failures keep the summary shape.
func (h *Handler) Summarize(c *gin.Context) {
	var req summarizer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, badBodyMessage, err))
		return
	}

	resp, err := h.summarizerSvc.Summarize(c.Request.Context(), req)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			abortWithError(c, fromAppError(err))
			return
		}
		h.logger.Error("summarize request failed", "error", err)
		c.JSON(http.StatusInternalServerError, summarizer.FailureResponse(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
