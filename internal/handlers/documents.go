package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hollando78/airgen-sub002/internal/data/graph"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
)

type DocumentHandler struct {
	log *logger.Logger
	svc *graph.Service
}

func NewDocumentHandler(log *logger.Logger, svc *graph.Service) *DocumentHandler {
	return &DocumentHandler{
		log: log.With("handler", "DocumentHandler"),
		svc: svc,
	}
}

type createDocumentRequest struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug"`
	ShortCode    string `json:"short_code"`
	Description  string `json:"description"`
	ParentFolder string `json:"parent_folder"`
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	doc, err := h.svc.CreateDocument(c.Request.Context(), graph.CreateDocumentInput{
		Tenant:       c.Param("tenant"),
		Project:      c.Param("project"),
		Name:         req.Name,
		Slug:         req.Slug,
		ShortCode:    req.ShortCode,
		Description:  req.Description,
		ParentFolder: req.ParentFolder,
	})
	if err != nil {
		h.log.Error("CreateDocument failed", "error", err, "name", req.Name)
		RespondGraphError(c, "create_document_failed", err)
		return
	}
	RespondCreated(c, gin.H{"document": doc})
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.svc.ListDocuments(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Query("folder"))
	if err != nil {
		RespondGraphError(c, "list_documents_failed", err)
		return
	}
	RespondOK(c, gin.H{"documents": docs})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.svc.GetDocument(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("document"))
	if err != nil {
		RespondGraphError(c, "get_document_failed", err)
		return
	}
	RespondOK(c, gin.H{"document": doc})
}

type updateDocumentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ShortCode   *string `json:"short_code"`
}

func (h *DocumentHandler) Update(c *gin.Context) {
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	doc, err := h.svc.UpdateDocument(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("document"), graph.DocumentUpdate{
		Name:        req.Name,
		Description: req.Description,
		ShortCode:   req.ShortCode,
	})
	if err != nil {
		RespondGraphError(c, "update_document_failed", err)
		return
	}
	RespondOK(c, gin.H{"document": doc})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.svc.SoftDeleteDocument(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("document")); err != nil {
		RespondGraphError(c, "delete_document_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

type moveDocumentRequest struct {
	ParentFolder string `json:"parent_folder"`
}

func (h *DocumentHandler) Move(c *gin.Context) {
	var req moveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	doc, err := h.svc.MoveDocument(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("document"), req.ParentFolder)
	if err != nil {
		RespondGraphError(c, "move_document_failed", err)
		return
	}
	RespondOK(c, gin.H{"document": doc})
}

type createSectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ShortCode   string `json:"short_code"`
	Order       int    `json:"order"`
}

func (h *DocumentHandler) CreateSection(c *gin.Context) {
	var req createSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	sec, err := h.svc.CreateSection(c.Request.Context(), graph.CreateSectionInput{
		Tenant:       c.Param("tenant"),
		Project:      c.Param("project"),
		DocumentSlug: c.Param("document"),
		Name:         req.Name,
		Description:  req.Description,
		ShortCode:    req.ShortCode,
		Order:        req.Order,
	})
	if err != nil {
		RespondGraphError(c, "create_section_failed", err)
		return
	}
	RespondCreated(c, gin.H{"section": sec})
}

func (h *DocumentHandler) ListSections(c *gin.Context) {
	secs, err := h.svc.ListSections(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("document"))
	if err != nil {
		RespondGraphError(c, "list_sections_failed", err)
		return
	}
	RespondOK(c, gin.H{"sections": secs})
}

type updateSectionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ShortCode   *string `json:"short_code"`
	Order       *int    `json:"order"`
}

func (h *DocumentHandler) UpdateSection(c *gin.Context) {
	var req updateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	sec, err := h.svc.UpdateSection(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("section"), graph.SectionUpdate{
		Name:        req.Name,
		Description: req.Description,
		ShortCode:   req.ShortCode,
		Order:       req.Order,
	})
	if err != nil {
		RespondGraphError(c, "update_section_failed", err)
		return
	}
	RespondOK(c, gin.H{"section": sec})
}

func (h *DocumentHandler) DeleteSection(c *gin.Context) {
	if err := h.svc.DeleteSection(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("section")); err != nil {
		RespondGraphError(c, "delete_section_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
