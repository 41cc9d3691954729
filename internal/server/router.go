package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Hollando78/airgen-sub002/internal/handlers"
)

type RouterConfig struct {
	ServiceName         string
	AllowOrigins        []string
	HierarchyHandler    *handlers.HierarchyHandler
	DocumentHandler     *handlers.DocumentHandler
	RequirementHandler  *handlers.RequirementHandler
	BaselineHandler     *handlers.BaselineHandler
	TraceLinkHandler    *handlers.TraceLinkHandler
	ArchitectureHandler *handlers.ArchitectureHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")

	// Tenants
	api.POST("/tenants", cfg.HierarchyHandler.UpsertTenant)
	api.GET("/tenants", cfg.HierarchyHandler.ListTenants)
	api.GET("/tenants/:tenant", cfg.HierarchyHandler.GetTenant)
	api.DELETE("/tenants/:tenant", cfg.HierarchyHandler.DeleteTenant)

	// Projects
	api.POST("/tenants/:tenant/projects", cfg.HierarchyHandler.UpsertProject)
	api.GET("/tenants/:tenant/projects", cfg.HierarchyHandler.ListProjects)

	project := api.Group("/tenants/:tenant/projects/:project")
	project.GET("", cfg.HierarchyHandler.GetProject)
	project.DELETE("", cfg.HierarchyHandler.DeleteProject)

	// Folders
	project.POST("/folders", cfg.HierarchyHandler.CreateFolder)
	project.GET("/folders", cfg.HierarchyHandler.ListFolders)
	project.DELETE("/folders/:folder", cfg.HierarchyHandler.DeleteFolder)
	project.PATCH("/folders/:folder/move", cfg.HierarchyHandler.MoveFolder)

	// Documents
	project.POST("/documents", cfg.DocumentHandler.Create)
	project.GET("/documents", cfg.DocumentHandler.List)
	project.GET("/documents/:document", cfg.DocumentHandler.Get)
	project.PATCH("/documents/:document", cfg.DocumentHandler.Update)
	project.DELETE("/documents/:document", cfg.DocumentHandler.Delete)
	project.PATCH("/documents/:document/move", cfg.DocumentHandler.Move)

	// Sections
	project.POST("/documents/:document/sections", cfg.DocumentHandler.CreateSection)
	project.GET("/documents/:document/sections", cfg.DocumentHandler.ListSections)
	project.PATCH("/sections/:section", cfg.DocumentHandler.UpdateSection)
	project.DELETE("/sections/:section", cfg.DocumentHandler.DeleteSection)

	// Requirements
	project.POST("/requirements", cfg.RequirementHandler.Create)
	project.GET("/requirements", cfg.RequirementHandler.List)
	project.GET("/requirements/search", cfg.RequirementHandler.Search)
	project.GET("/requirements/duplicates", cfg.RequirementHandler.FindDuplicates)
	project.POST("/requirements/repair", cfg.RequirementHandler.RepairDuplicates)
	project.GET("/requirements/:ref", cfg.RequirementHandler.Get)
	project.PATCH("/requirements/:ref", cfg.RequirementHandler.Update)
	project.DELETE("/requirements/:ref", cfg.RequirementHandler.Delete)
	project.GET("/documents/:document/requirements", cfg.RequirementHandler.ListForDocument)

	// Candidates
	project.POST("/candidates", cfg.RequirementHandler.CreateCandidates)
	project.GET("/candidates", cfg.RequirementHandler.ListCandidates)
	project.POST("/candidates/:candidate/reject", cfg.RequirementHandler.RejectCandidate)
	project.POST("/candidates/:candidate/accept", cfg.RequirementHandler.AcceptCandidate)

	// Baselines
	project.POST("/baselines", cfg.BaselineHandler.Create)
	project.GET("/baselines", cfg.BaselineHandler.List)
	project.GET("/baselines/:baseline", cfg.BaselineHandler.Get)

	// Trace links
	project.POST("/trace-links", cfg.TraceLinkHandler.Create)
	project.GET("/trace-links", cfg.TraceLinkHandler.List)
	project.DELETE("/trace-links/:link", cfg.TraceLinkHandler.Delete)

	// Architecture
	project.POST("/architecture/diagrams", cfg.ArchitectureHandler.CreateDiagram)
	project.GET("/architecture/diagrams", cfg.ArchitectureHandler.ListDiagrams)
	project.PATCH("/architecture/diagrams/:diagram", cfg.ArchitectureHandler.RenameDiagram)
	project.DELETE("/architecture/diagrams/:diagram", cfg.ArchitectureHandler.DeleteDiagram)
	project.POST("/architecture/diagrams/:diagram/blocks", cfg.ArchitectureHandler.CreateBlock)
	project.GET("/architecture/diagrams/:diagram/blocks", cfg.ArchitectureHandler.ListBlocks)
	project.PATCH("/architecture/diagrams/:diagram/blocks/:block", cfg.ArchitectureHandler.UpdateBlockPlacement)
	project.POST("/architecture/diagrams/:diagram/connectors", cfg.ArchitectureHandler.CreateConnector)
	project.GET("/architecture/diagrams/:diagram/connectors", cfg.ArchitectureHandler.ListConnectors)
	project.DELETE("/architecture/connectors/:connector", cfg.ArchitectureHandler.DeleteConnector)
	project.PATCH("/architecture/blocks/:block", cfg.ArchitectureHandler.UpdateBlock)
	project.DELETE("/architecture/blocks/:block", cfg.ArchitectureHandler.DeleteBlock)

	return router
}
