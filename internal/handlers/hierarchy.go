package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hollando78/airgen-sub002/internal/data/graph"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
)

type HierarchyHandler struct {
	log *logger.Logger
	svc *graph.Service
}

func NewHierarchyHandler(log *logger.Logger, svc *graph.Service) *HierarchyHandler {
	return &HierarchyHandler{
		log: log.With("handler", "HierarchyHandler"),
		svc: svc,
	}
}

type upsertTenantRequest struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name"`
}

func (h *HierarchyHandler) UpsertTenant(c *gin.Context) {
	var req upsertTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	tenant, err := h.svc.UpsertTenant(c.Request.Context(), req.Slug, req.Name)
	if err != nil {
		h.log.Error("UpsertTenant failed", "error", err, "tenant", req.Slug)
		RespondGraphError(c, "upsert_tenant_failed", err)
		return
	}
	RespondCreated(c, gin.H{"tenant": tenant})
}

func (h *HierarchyHandler) ListTenants(c *gin.Context) {
	tenants, err := h.svc.ListTenants(c.Request.Context())
	if err != nil {
		h.log.Error("ListTenants failed", "error", err)
		RespondGraphError(c, "list_tenants_failed", err)
		return
	}
	RespondOK(c, gin.H{"tenants": tenants})
}

func (h *HierarchyHandler) GetTenant(c *gin.Context) {
	tenant, err := h.svc.GetTenant(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		RespondGraphError(c, "get_tenant_failed", err)
		return
	}
	RespondOK(c, gin.H{"tenant": tenant})
}

func (h *HierarchyHandler) DeleteTenant(c *gin.Context) {
	if err := h.svc.DeleteTenant(c.Request.Context(), c.Param("tenant")); err != nil {
		h.log.Error("DeleteTenant failed", "error", err, "tenant", c.Param("tenant"))
		RespondGraphError(c, "delete_tenant_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

type upsertProjectRequest struct {
	Slug string `json:"slug" binding:"required"`
	Key  string `json:"key"`
}

func (h *HierarchyHandler) UpsertProject(c *gin.Context) {
	var req upsertProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	project, err := h.svc.UpsertProject(c.Request.Context(), c.Param("tenant"), req.Slug, req.Key)
	if err != nil {
		h.log.Error("UpsertProject failed", "error", err, "project", req.Slug)
		RespondGraphError(c, "upsert_project_failed", err)
		return
	}
	RespondCreated(c, gin.H{"project": project})
}

func (h *HierarchyHandler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		RespondGraphError(c, "list_projects_failed", err)
		return
	}
	RespondOK(c, gin.H{"projects": projects})
}

func (h *HierarchyHandler) GetProject(c *gin.Context) {
	project, err := h.svc.GetProject(c.Request.Context(), c.Param("tenant"), c.Param("project"))
	if err != nil {
		RespondGraphError(c, "get_project_failed", err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}

func (h *HierarchyHandler) DeleteProject(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Request.Context(), c.Param("tenant"), c.Param("project")); err != nil {
		h.log.Error("DeleteProject failed", "error", err, "project", c.Param("project"))
		RespondGraphError(c, "delete_project_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

type createFolderRequest struct {
	Name         string `json:"name" binding:"required"`
	ParentFolder string `json:"parent_folder"`
}

func (h *HierarchyHandler) CreateFolder(c *gin.Context) {
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	folder, err := h.svc.CreateFolder(c.Request.Context(), c.Param("tenant"), c.Param("project"), req.Name, req.ParentFolder)
	if err != nil {
		RespondGraphError(c, "create_folder_failed", err)
		return
	}
	RespondCreated(c, gin.H{"folder": folder})
}

func (h *HierarchyHandler) ListFolders(c *gin.Context) {
	folders, err := h.svc.ListFolders(c.Request.Context(), c.Param("tenant"), c.Param("project"))
	if err != nil {
		RespondGraphError(c, "list_folders_failed", err)
		return
	}
	RespondOK(c, gin.H{"folders": folders})
}

func (h *HierarchyHandler) DeleteFolder(c *gin.Context) {
	force := c.Query("force") == "true"
	err := h.svc.SoftDeleteFolder(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("folder"), force)
	if err != nil {
		RespondGraphError(c, "delete_folder_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

type moveFolderRequest struct {
	ParentFolder string `json:"parent_folder"`
}

func (h *HierarchyHandler) MoveFolder(c *gin.Context) {
	var req moveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	folder, err := h.svc.MoveFolder(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("folder"), req.ParentFolder)
	if err != nil {
		RespondGraphError(c, "move_folder_failed", err)
		return
	}
	RespondOK(c, gin.H{"folder": folder})
}
