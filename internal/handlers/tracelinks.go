package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hollando78/airgen-sub002/internal/data/graph"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
)

type TraceLinkHandler struct {
	log *logger.Logger
	svc *graph.Service
}

func NewTraceLinkHandler(log *logger.Logger, svc *graph.Service) *TraceLinkHandler {
	return &TraceLinkHandler{
		log: log.With("handler", "TraceLinkHandler"),
		svc: svc,
	}
}

type createTraceLinkRequest struct {
	SourceRef   string `json:"source_ref" binding:"required"`
	TargetRef   string `json:"target_ref" binding:"required"`
	LinkType    string `json:"link_type" binding:"required"`
	Description string `json:"description"`
}

func (h *TraceLinkHandler) Create(c *gin.Context) {
	var req createTraceLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	link, err := h.svc.CreateTraceLink(c.Request.Context(), c.Param("tenant"), c.Param("project"),
		req.SourceRef, req.TargetRef, req.LinkType, req.Description)
	if err != nil {
		h.log.Error("CreateTraceLink failed", "error", err, "source", req.SourceRef, "target", req.TargetRef)
		RespondGraphError(c, "create_trace_link_failed", err)
		return
	}
	RespondCreated(c, gin.H{"trace_link": link})
}

func (h *TraceLinkHandler) List(c *gin.Context) {
	links, err := h.svc.ListTraceLinks(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Query("ref"))
	if err != nil {
		RespondGraphError(c, "list_trace_links_failed", err)
		return
	}
	RespondOK(c, gin.H{"trace_links": links})
}

func (h *TraceLinkHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteTraceLink(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("link")); err != nil {
		RespondGraphError(c, "delete_trace_link_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
