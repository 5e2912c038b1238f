package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"britta/internal/analysis"
	"britta/internal/config"
	"britta/internal/domain"
	"britta/internal/email/noop"
	"britta/internal/email/ses"
	"britta/internal/excel"
	"britta/internal/handler"
	"britta/internal/logger"
	"britta/internal/port"
	"britta/internal/repository/postgres"
	"britta/internal/router"
	"britta/internal/service"
	s3storage "britta/internal/storage/s3"
	"britta/internal/validator"
	"britta/internal/workspace"

	// Analysis providers register themselves with the factory.
	_ "britta/internal/analysis/claude"
	_ "britta/internal/analysis/local"
	_ "britta/internal/analysis/remote"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	companyRepo := postgres.NewCompanyRepo(db)
	conversationRepo := postgres.NewConversationRepo(db)
	messageRepo := postgres.NewMessageRepo(db)
	uploadRepo := postgres.NewUploadRepo(db)
	summaryRepo := postgres.NewReportSummaryRepo(db)
	auditRepo := postgres.NewAnalysisAuditRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize storage
	storage, err := s3storage.New(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	sender, err := newEmailSender(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	streamer, err := newStreamer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis provider: %w", err)
	}

	// Initialize workspace panels
	workspaces := workspace.NewManager(excel.NewParser(), panelHooks(log), cfg.Workspace.PreviewRows)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	companySvc := service.NewCompanyService(companyRepo, uploadRepo, storage, workspaces, logger.WithComponent(log, "company"))
	conversationSvc := service.NewConversationService(conversationRepo, messageRepo, cfg.Workspace.ConversationTimeout)
	workspaceSvc := service.NewWorkspaceService(workspaces, messageRepo, conversationRepo, cfg.S3.MaxFileSizeMB)
	analysisSvc := service.NewAnalysisService(
		companyRepo, conversationSvc, messageRepo, summaryRepo, auditRepo, uploadRepo,
		storage, streamer, validator.NewEngine(), workspaces, &cfg.S3,
		cfg.Workspace.SettleDelay, logger.WithComponent(log, "analysis"),
	)
	reportSvc := service.NewReportService(summaryRepo, messageRepo, conversationRepo, companyRepo, userRepo, sender)
	statsSvc := service.NewStatsService(statsRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	companyH := handler.NewCompanyHandler(companySvc)
	conversationH := handler.NewConversationHandler(conversationSvc)
	workspaceH := handler.NewWorkspaceHandler(workspaceSvc, analysisSvc)
	reportH := handler.NewReportHandler(reportSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	healthH := handler.NewHealthHandler(db, version)

	r := router.Setup(
		authSvc, companyRepo, cfg.CORS.AllowedOrigins, logger.WithComponent(log, "http"),
		authH, companyH, conversationH, workspaceH, reportH, statsH, healthH,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reaper := service.NewWorkspaceReaper(workspaces, cfg.Workspace.ReapInterval, cfg.Workspace.IdleTTL, logger.WithComponent(log, "reaper"))
	go reaper.Start(ctx)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Str("env", cfg.Server.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newEmailSender(cfg *config.Config, log zerolog.Logger) (port.EmailSender, error) {
	switch cfg.Email.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
	default:
		log.Warn().Str("provider", cfg.Email.Provider).Msg("email provider not configured, using noop sender")
		return noop.NewNoopSender(), nil
	}
}

// newStreamer builds the analysis pipeline: the configured primary provider,
// wrapped with the fallback provider when one is configured.
func newStreamer(cfg *config.Config, log zerolog.Logger) (port.AnalysisStreamer, error) {
	primary, err := analysis.NewStreamer(cfg.Analysis.PrimaryConfig())
	if err != nil {
		return nil, err
	}

	fbCfg := cfg.Analysis.FallbackConfig()
	if fbCfg == nil {
		return primary, nil
	}

	fallback, err := analysis.NewStreamer(fbCfg)
	if err != nil {
		return nil, err
	}

	return analysis.NewFallbackStreamer(
		[]port.AnalysisStreamer{primary, fallback},
		cfg.Analysis.MaxFailures,
		logger.WithComponent(log, "fallback"),
	), nil
}

func panelHooks(log zerolog.Logger) workspace.Hooks {
	l := logger.WithComponent(log, "workspace")
	return workspace.Hooks{
		PanelOpened: func(userID uuid.UUID, state domain.PanelState) {
			l.Debug().Str("user_id", userID.String()).Str("state", string(state)).Msg("panel opened")
		},
		PanelClosed: func(userID uuid.UUID) {
			l.Debug().Str("user_id", userID.String()).Msg("panel closed")
		},
		ReportReady: func(userID uuid.UUID, report *domain.VATReport) {
			l.Info().Str("user_id", userID.String()).Str("period", report.Period).Msg("report ready")
		},
		RetryRequested: func(userID uuid.UUID, fileName string) {
			l.Info().Str("user_id", userID.String()).Str("file", fileName).Msg("retry requested")
		},
	}
}
