package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hollando78/airgen-sub002/internal/data/graph"
	"github.com/Hollando78/airgen-sub002/internal/domain"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
)

type ArchitectureHandler struct {
	log *logger.Logger
	svc *graph.Service
}

func NewArchitectureHandler(log *logger.Logger, svc *graph.Service) *ArchitectureHandler {
	return &ArchitectureHandler{
		log: log.With("handler", "ArchitectureHandler"),
		svc: svc,
	}
}

type createDiagramRequest struct {
	Name string `json:"name" binding:"required"`
	View string `json:"view" binding:"required"`
}

func (h *ArchitectureHandler) CreateDiagram(c *gin.Context) {
	var req createDiagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	dg, err := h.svc.CreateDiagram(c.Request.Context(), c.Param("tenant"), c.Param("project"), req.Name, req.View)
	if err != nil {
		RespondGraphError(c, "create_diagram_failed", err)
		return
	}
	RespondCreated(c, gin.H{"diagram": dg})
}

func (h *ArchitectureHandler) ListDiagrams(c *gin.Context) {
	diagrams, err := h.svc.ListDiagrams(c.Request.Context(), c.Param("tenant"), c.Param("project"))
	if err != nil {
		RespondGraphError(c, "list_diagrams_failed", err)
		return
	}
	RespondOK(c, gin.H{"diagrams": diagrams})
}

type renameDiagramRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *ArchitectureHandler) RenameDiagram(c *gin.Context) {
	var req renameDiagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	dg, err := h.svc.RenameDiagram(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("diagram"), req.Name)
	if err != nil {
		RespondGraphError(c, "rename_diagram_failed", err)
		return
	}
	RespondOK(c, gin.H{"diagram": dg})
}

func (h *ArchitectureHandler) DeleteDiagram(c *gin.Context) {
	if err := h.svc.DeleteDiagram(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("diagram")); err != nil {
		RespondGraphError(c, "delete_diagram_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

type placementPayload struct {
	PositionX       float64 `json:"position_x"`
	PositionY       float64 `json:"position_y"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	BackgroundColor string  `json:"background_color"`
	BorderColor     string  `json:"border_color"`
	BorderWidth     float64 `json:"border_width"`
	BorderStyle     string  `json:"border_style"`
	TextColor       string  `json:"text_color"`
	FontSize        float64 `json:"font_size"`
	FontWeight      string  `json:"font_weight"`
	CornerRadius    float64 `json:"corner_radius"`
}

func (p placementPayload) toDomain() domain.BlockPlacement {
	return domain.BlockPlacement{
		PositionX:       p.PositionX,
		PositionY:       p.PositionY,
		Width:           p.Width,
		Height:          p.Height,
		BackgroundColor: p.BackgroundColor,
		BorderColor:     p.BorderColor,
		BorderWidth:     p.BorderWidth,
		BorderStyle:     p.BorderStyle,
		TextColor:       p.TextColor,
		FontSize:        p.FontSize,
		FontWeight:      p.FontWeight,
		CornerRadius:    p.CornerRadius,
	}
}

type createBlockRequest struct {
	ExistingBlockID string             `json:"existing_block_id"`
	Name            string             `json:"name"`
	Kind            string             `json:"kind"`
	Stereotype      string             `json:"stereotype"`
	Description     string             `json:"description"`
	Ports           []domain.BlockPort `json:"ports"`
	DocumentSlugs   []string           `json:"document_slugs"`
	Placement       placementPayload   `json:"placement"`
}

func (h *ArchitectureHandler) CreateBlock(c *gin.Context) {
	var req createBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	placed, err := h.svc.CreateBlock(c.Request.Context(), graph.CreateBlockInput{
		Tenant:          c.Param("tenant"),
		Project:         c.Param("project"),
		DiagramID:       c.Param("diagram"),
		ExistingBlockID: req.ExistingBlockID,
		Name:            req.Name,
		Kind:            req.Kind,
		Stereotype:      req.Stereotype,
		Description:     req.Description,
		Ports:           req.Ports,
		DocumentSlugs:   req.DocumentSlugs,
		Placement:       req.Placement.toDomain(),
	})
	if err != nil {
		h.log.Error("CreateBlock failed", "error", err)
		RespondGraphError(c, "create_block_failed", err)
		return
	}
	RespondCreated(c, gin.H{"block": placed})
}

func (h *ArchitectureHandler) ListBlocks(c *gin.Context) {
	blocks, err := h.svc.ListDiagramBlocks(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("diagram"))
	if err != nil {
		RespondGraphError(c, "list_blocks_failed", err)
		return
	}
	RespondOK(c, gin.H{"blocks": blocks})
}

type updateBlockRequest struct {
	Name          *string             `json:"name"`
	Kind          *string             `json:"kind"`
	Stereotype    *string             `json:"stereotype"`
	Description   *string             `json:"description"`
	Ports         *[]domain.BlockPort `json:"ports"`
	DocumentSlugs *[]string           `json:"document_slugs"`
}

func (h *ArchitectureHandler) UpdateBlock(c *gin.Context) {
	var req updateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	block, err := h.svc.UpdateBlock(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("block"), graph.BlockUpdate{
		Name:          req.Name,
		Kind:          req.Kind,
		Stereotype:    req.Stereotype,
		Description:   req.Description,
		Ports:         req.Ports,
		DocumentSlugs: req.DocumentSlugs,
	})
	if err != nil {
		RespondGraphError(c, "update_block_failed", err)
		return
	}
	RespondOK(c, gin.H{"block": block})
}

func (h *ArchitectureHandler) UpdateBlockPlacement(c *gin.Context) {
	var req placementPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	placed, err := h.svc.UpdateBlockPlacement(c.Request.Context(), c.Param("tenant"), c.Param("project"),
		c.Param("diagram"), c.Param("block"), req.toDomain())
	if err != nil {
		RespondGraphError(c, "update_block_placement_failed", err)
		return
	}
	RespondOK(c, gin.H{"block": placed})
}

// DeleteBlock without a diagram query param removes the definition
// everywhere; with one, only that diagram's placement.
func (h *ArchitectureHandler) DeleteBlock(c *gin.Context) {
	if err := h.svc.DeleteBlock(c.Request.Context(), c.Param("tenant"), c.Param("project"),
		c.Param("block"), c.Query("diagram")); err != nil {
		RespondGraphError(c, "delete_block_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

type createConnectorRequest struct {
	SourceBlockID string `json:"source_block_id" binding:"required"`
	TargetBlockID string `json:"target_block_id" binding:"required"`
	SourcePortID  string `json:"source_port_id"`
	TargetPortID  string `json:"target_port_id"`
	Kind          string `json:"kind"`
	Label         string `json:"label"`
}

func (h *ArchitectureHandler) CreateConnector(c *gin.Context) {
	var req createConnectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	conn, err := h.svc.CreateConnector(c.Request.Context(), graph.CreateConnectorInput{
		Tenant:        c.Param("tenant"),
		Project:       c.Param("project"),
		DiagramID:     c.Param("diagram"),
		SourceBlockID: req.SourceBlockID,
		TargetBlockID: req.TargetBlockID,
		SourcePortID:  req.SourcePortID,
		TargetPortID:  req.TargetPortID,
		Kind:          req.Kind,
		Label:         req.Label,
	})
	if err != nil {
		RespondGraphError(c, "create_connector_failed", err)
		return
	}
	RespondCreated(c, gin.H{"connector": conn})
}

func (h *ArchitectureHandler) ListConnectors(c *gin.Context) {
	conns, err := h.svc.ListConnectors(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("diagram"))
	if err != nil {
		RespondGraphError(c, "list_connectors_failed", err)
		return
	}
	RespondOK(c, gin.H{"connectors": conns})
}

func (h *ArchitectureHandler) DeleteConnector(c *gin.Context) {
	if err := h.svc.DeleteConnector(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("connector")); err != nil {
		RespondGraphError(c, "delete_connector_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
