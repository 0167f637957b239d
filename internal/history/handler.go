package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"datamind-backend/internal/shared/server/middleware"
	"datamind-backend/internal/shared/server/respond"
)

// streamPollInterval drives the fallback loop for repos without live
// query support.
const streamPollInterval = 5 * time.Second

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches history routes to the router group. Every
// route requires a signed-in or guest identity.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/history", middleware.RequireUser())
	grp.GET("", h.list)
	grp.DELETE("/:id", h.remove)
	grp.GET("/stream", h.stream)
}

type listResponse struct {
	Records []Record `json:"records"`
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	records, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "history_unavailable", "failed to load history", nil)
		return
	}
	if records == nil {
		records = []Record{}
	}
	respond.OK(c, listResponse{Records: records})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	recordID := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), userID, recordID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "record not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "history_unavailable", "failed to delete record", nil)
		return
	}
	respond.OK(c, gin.H{"deleted": recordID})
}

// stream pushes the user's history over server-sent events. Repos with
// live query support emit on every change; otherwise the handler polls.
func (h *Handler) stream(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	ctx := c.Request.Context()

	// Open the watch before committing to the SSE content type, so a
	// failure still produces a JSON error response.
	ch, live, err := h.Svc.Watch(ctx, userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "history_unavailable", "failed to open history stream", nil)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	if live {
		for {
			select {
			case records, ok := <-ch:
				if !ok {
					return
				}
				writeSnapshotEvent(c, records)
			case <-ctx.Done():
				return
			}
		}
	}

	// Poll fallback. Emit immediately, then on a fixed interval.
	records, err := h.Svc.List(ctx, userID)
	if err == nil {
		writeSnapshotEvent(c, records)
	}
	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			records, err := h.Svc.List(ctx, userID)
			if err != nil {
				continue
			}
			writeSnapshotEvent(c, records)
		case <-ctx.Done():
			return
		}
	}
}

func writeSnapshotEvent(c *gin.Context, records []Record) {
	if records == nil {
		records = []Record{}
	}
	payload, err := json.Marshal(listResponse{Records: records})
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: snapshot\ndata: %s\n\n", payload)
	c.Writer.Flush()
}
