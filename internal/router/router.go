package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"britta/internal/handler"
	"britta/internal/middleware"
	"britta/internal/port"
	"britta/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	companyRepo port.CompanyRepository,
	corsOrigins []string,
	logger zerolog.Logger,
	authH *handler.AuthHandler,
	companyH *handler.CompanyHandler,
	conversationH *handler.ConversationHandler,
	workspaceH *handler.WorkspaceHandler,
	reportH *handler.ReportHandler,
	statsH *handler.StatsHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.GET("/auth/me", authH.Me)

	// Company management
	companies := protected.Group("/companies")
	companies.POST("", companyH.Create)
	companies.GET("", companyH.List)
	companies.GET("/:id", companyH.GetByID)
	companies.PUT("/:id", companyH.Update)
	companies.DELETE("/:id", companyH.Delete)
	companies.POST("/:id/switch", companyH.Switch)

	// Routes below need an active company via the X-Company-ID header.
	companyGuard := middleware.CompanyGuard(companyRepo)

	// Conversations. Listing is scoped to the active company; the per-ID
	// routes resolve ownership through the conversation itself.
	conversations := protected.Group("/conversations")
	conversations.GET("", companyGuard, conversationH.List)
	conversations.GET("/:id", conversationH.GetByID)
	conversations.GET("/:id/messages", conversationH.Messages)
	conversations.PUT("/:id/title", conversationH.UpdateTitle)
	conversations.DELETE("/:id", conversationH.Delete)

	// Workspace panel and analysis
	ws := protected.Group("/workspace")
	ws.GET("", workspaceH.Snapshot)
	ws.DELETE("", workspaceH.Close)
	ws.POST("/preview", workspaceH.Preview)
	ws.POST("/analyze", companyGuard, workspaceH.Analyze)
	ws.POST("/retry", companyGuard, workspaceH.Retry)
	ws.POST("/reports/:id/show", workspaceH.ShowReport)

	// Persisted reports
	reports := protected.Group("/reports")
	reports.GET("", companyGuard, reportH.List)
	reports.GET("/:id", reportH.GetByID)
	reports.GET("/:id/sie", reportH.DownloadSIE)
	reports.GET("/:id/csv", reportH.DownloadCSV)
	reports.POST("/:id/email", reportH.Email)

	// Stats
	protected.GET("/stats", companyGuard, statsH.GetStats)

	return r
}
