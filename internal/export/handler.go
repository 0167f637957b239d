package export

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"datamind-backend/internal/history"
	"datamind-backend/internal/shared/server/middleware"
	"datamind-backend/internal/shared/server/respond"
	"datamind-backend/internal/shared/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves spreadsheet downloads.
type Handler struct {
	History *history.Service
}

// NewHandler constructs a Handler.
func NewHandler(historySvc *history.Service) *Handler {
	return &Handler{History: historySvc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history/export", middleware.RequireUser(), h.exportHistory)
	rg.POST("/export", h.exportRecords)
}

// exportHistory downloads the caller's full history as a workbook.
func (h *Handler) exportHistory(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	records, err := h.History.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "history_unavailable", "failed to load history", nil)
		return
	}

	h.serveWorkbook(c, records)
}

type exportRequest struct {
	Records []history.Record `json:"records"`
}

// exportRecords builds a workbook from client-supplied records, such as
// the currently displayed result or a selection.
func (h *Handler) exportRecords(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.Records) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "records is required", nil)
		return
	}

	h.serveWorkbook(c, req.Records)
}

func (h *Handler) serveWorkbook(c *gin.Context, records []history.Record) {
	data, err := Workbook(records)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "export_failed", "failed to build spreadsheet", nil)
		return
	}

	name := fmt.Sprintf("datamind_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	if safe, err := util.SanitizeFileName(name); err == nil {
		name = safe
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
