package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Hollando78/airgen-sub002/internal/data/graph"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
)

type RequirementHandler struct {
	log *logger.Logger
	svc *graph.Service
}

func NewRequirementHandler(log *logger.Logger, svc *graph.Service) *RequirementHandler {
	return &RequirementHandler{
		log: log.With("handler", "RequirementHandler"),
		svc: svc,
	}
}

type createRequirementRequest struct {
	DocumentSlug string   `json:"document_slug"`
	SectionID    string   `json:"section_id"`
	Title        string   `json:"title"`
	Text         string   `json:"text"`
	Pattern      string   `json:"pattern"`
	Verification string   `json:"verification"`
	QAScore      float64  `json:"qa_score"`
	QAVerdict    string   `json:"qa_verdict"`
	Tags         []string `json:"tags"`
}

func (r createRequirementRequest) toInput(tenant, project string) graph.CreateRequirementInput {
	return graph.CreateRequirementInput{
		Tenant:       tenant,
		Project:      project,
		DocumentSlug: r.DocumentSlug,
		SectionID:    r.SectionID,
		Title:        r.Title,
		Text:         r.Text,
		Pattern:      r.Pattern,
		Verification: r.Verification,
		QAScore:      r.QAScore,
		QAVerdict:    r.QAVerdict,
		Tags:         r.Tags,
	}
}

func (h *RequirementHandler) Create(c *gin.Context) {
	var req createRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.svc.CreateRequirement(c.Request.Context(), req.toInput(c.Param("tenant"), c.Param("project")))
	if err != nil {
		h.log.Error("CreateRequirement failed", "error", err)
		RespondGraphError(c, "create_requirement_failed", err)
		return
	}
	RespondCreated(c, gin.H{"requirement": created})
}

func (h *RequirementHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	reqs, err := h.svc.ListRequirements(c.Request.Context(), c.Param("tenant"), c.Param("project"), limit, offset)
	if err != nil {
		RespondGraphError(c, "list_requirements_failed", err)
		return
	}
	RespondOK(c, gin.H{"requirements": reqs})
}

func (h *RequirementHandler) ListForDocument(c *gin.Context) {
	reqs, err := h.svc.ListDocumentRequirements(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("document"))
	if err != nil {
		RespondGraphError(c, "list_document_requirements_failed", err)
		return
	}
	RespondOK(c, gin.H{"requirements": reqs})
}

func (h *RequirementHandler) Get(c *gin.Context) {
	req, err := h.svc.GetRequirement(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("ref"))
	if err != nil {
		RespondGraphError(c, "get_requirement_failed", err)
		return
	}
	RespondOK(c, gin.H{"requirement": req})
}

func (h *RequirementHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	reqs, err := h.svc.SearchRequirements(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Query("q"), limit)
	if err != nil {
		RespondGraphError(c, "search_requirements_failed", err)
		return
	}
	RespondOK(c, gin.H{"requirements": reqs})
}

type updateRequirementRequest struct {
	Title        *string   `json:"title"`
	Text         *string   `json:"text"`
	Pattern      *string   `json:"pattern"`
	Verification *string   `json:"verification"`
	QAScore      *float64  `json:"qa_score"`
	QAVerdict    *string   `json:"qa_verdict"`
	Tags         *[]string `json:"tags"`
}

func (h *RequirementHandler) Update(c *gin.Context) {
	var req updateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	updated, err := h.svc.UpdateRequirement(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("ref"), graph.RequirementUpdate{
		Title:        req.Title,
		Text:         req.Text,
		Pattern:      req.Pattern,
		Verification: req.Verification,
		QAScore:      req.QAScore,
		QAVerdict:    req.QAVerdict,
		Tags:         req.Tags,
	})
	if err != nil {
		RespondGraphError(c, "update_requirement_failed", err)
		return
	}
	RespondOK(c, gin.H{"requirement": updated})
}

func (h *RequirementHandler) Delete(c *gin.Context) {
	if err := h.svc.SoftDeleteRequirement(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("ref")); err != nil {
		RespondGraphError(c, "delete_requirement_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *RequirementHandler) FindDuplicates(c *gin.Context) {
	groups, err := h.svc.FindDuplicateRefs(c.Request.Context(), c.Param("tenant"), c.Param("project"))
	if err != nil {
		RespondGraphError(c, "find_duplicates_failed", err)
		return
	}
	RespondOK(c, gin.H{"duplicates": groups})
}

func (h *RequirementHandler) RepairDuplicates(c *gin.Context) {
	result, err := h.svc.RepairDuplicateRefs(c.Request.Context(), c.Param("tenant"), c.Param("project"))
	if err != nil {
		h.log.Error("RepairDuplicateRefs failed", "error", err)
		RespondGraphError(c, "repair_duplicates_failed", err)
		return
	}
	RespondOK(c, gin.H{"result": result})
}

type createCandidatesRequest struct {
	DocumentSlug string   `json:"document_slug"`
	Texts        []string `json:"texts" binding:"required"`
}

func (h *RequirementHandler) CreateCandidates(c *gin.Context) {
	var req createCandidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	cands, err := h.svc.CreateCandidates(c.Request.Context(), c.Param("tenant"), c.Param("project"), req.DocumentSlug, req.Texts)
	if err != nil {
		RespondGraphError(c, "create_candidates_failed", err)
		return
	}
	RespondCreated(c, gin.H{"candidates": cands})
}

func (h *RequirementHandler) ListCandidates(c *gin.Context) {
	cands, err := h.svc.ListCandidates(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Query("document"))
	if err != nil {
		RespondGraphError(c, "list_candidates_failed", err)
		return
	}
	RespondOK(c, gin.H{"candidates": cands})
}

func (h *RequirementHandler) RejectCandidate(c *gin.Context) {
	cand, err := h.svc.RejectCandidate(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("candidate"))
	if err != nil {
		RespondGraphError(c, "reject_candidate_failed", err)
		return
	}
	RespondOK(c, gin.H{"candidate": cand})
}

// AcceptCandidate takes an optional body with overrides; an empty body
// promotes the candidate as-is.
func (h *RequirementHandler) AcceptCandidate(c *gin.Context) {
	var req createRequirementRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	cand, created, err := h.svc.AcceptCandidate(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("candidate"),
		req.toInput(c.Param("tenant"), c.Param("project")))
	if err != nil {
		h.log.Error("AcceptCandidate failed", "error", err, "candidate", c.Param("candidate"))
		RespondGraphError(c, "accept_candidate_failed", err)
		return
	}
	RespondCreated(c, gin.H{"candidate": cand, "requirement": created})
}
