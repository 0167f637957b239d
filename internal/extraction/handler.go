package extraction

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"datamind-backend/internal/llm"
	"datamind-backend/internal/shared/server/middleware"
	"datamind-backend/internal/shared/telemetry"
)

const maxBodySize = 8 << 20 // 8MB; the client resizes before upload

// Handler wires the extraction endpoints to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches extraction routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extract", h.extract)
	rg.GET("/models", h.models)
}

type extractRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// extractResponse is the wire contract of POST /api/extract. The
// success/error envelope matches what the UI consumes.
type extractResponse struct {
	Success   bool      `json:"success"`
	Data      *Document `json:"data,omitempty"`
	RecordID  string    `json:"recordId,omitempty"`
	SaveError string    `json:"saveError,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func (h *Handler) extract(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, extractResponse{Success: false, Error: "invalid request body"})
		return
	}

	userID := middleware.UserIDFromContext(c)
	res, err := h.Svc.Extract(c.Request.Context(), userID, req.ImageBase64)
	if err != nil {
		status, msg := extractErrorStatus(err)
		telemetry.Error("extract.failed", map[string]any{
			"request_id": c.GetString("requestId"),
			"user_id":    userID,
			"status":     status,
			"error":      err.Error(),
		})
		c.JSON(status, extractResponse{Success: false, Error: msg})
		return
	}

	c.Set("documentKind", res.Document.Kind)
	if res.RecordID != "" {
		c.Set("recordId", res.RecordID)
	}

	resp := extractResponse{
		Success:  true,
		Data:     &res.Document,
		RecordID: res.RecordID,
	}
	if res.SaveErr != nil {
		resp.SaveError = "extraction succeeded but saving to history failed"
	}
	c.JSON(http.StatusOK, resp)
}

func extractErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingImage):
		return http.StatusBadRequest, "imageBase64 is required"
	case errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest, "the uploaded file is not a readable image or PDF"
	case errors.Is(err, ErrSchemaViolation):
		return http.StatusBadGateway, "the model returned data outside the extraction schema"
	case errors.Is(err, ErrMalformedOutput):
		return http.StatusBadGateway, "the model returned unparseable output"
	case errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable, "extraction service is not configured"
	default:
		return http.StatusInternalServerError, "extraction failed"
	}
}

func (h *Handler) models(c *gin.Context) {
	names, err := h.Svc.Models(c.Request.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, llm.ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": names})
}
