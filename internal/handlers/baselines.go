package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hollando78/airgen-sub002/internal/data/graph"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
)

type BaselineHandler struct {
	log *logger.Logger
	svc *graph.Service
}

func NewBaselineHandler(log *logger.Logger, svc *graph.Service) *BaselineHandler {
	return &BaselineHandler{
		log: log.With("handler", "BaselineHandler"),
		svc: svc,
	}
}

type createBaselineRequest struct {
	Label string `json:"label"`
}

// Create freezes the current requirement set. The label is optional
// and so is the body.
func (h *BaselineHandler) Create(c *gin.Context) {
	var req createBaselineRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	bl, err := h.svc.CreateBaseline(c.Request.Context(), c.Param("tenant"), c.Param("project"), req.Label)
	if err != nil {
		h.log.Error("CreateBaseline failed", "error", err)
		RespondGraphError(c, "create_baseline_failed", err)
		return
	}
	RespondCreated(c, gin.H{"baseline": bl})
}

func (h *BaselineHandler) List(c *gin.Context) {
	baselines, err := h.svc.ListBaselines(c.Request.Context(), c.Param("tenant"), c.Param("project"))
	if err != nil {
		RespondGraphError(c, "list_baselines_failed", err)
		return
	}
	RespondOK(c, gin.H{"baselines": baselines})
}

func (h *BaselineHandler) Get(c *gin.Context) {
	bl, err := h.svc.GetBaseline(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("baseline"))
	if err != nil {
		RespondGraphError(c, "get_baseline_failed", err)
		return
	}
	RespondOK(c, gin.H{"baseline": bl})
}
