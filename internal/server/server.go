package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	applicationdomain "github.com/codecircle/recruit/internal/application/domain"
	auditdomain "github.com/codecircle/recruit/internal/audit/domain"
	"github.com/codecircle/recruit/internal/auth/session"
	"github.com/codecircle/recruit/internal/authorization"
	"github.com/codecircle/recruit/internal/clock"
	"github.com/codecircle/recruit/internal/config"
	cycledomain "github.com/codecircle/recruit/internal/cycle/domain"
	"github.com/codecircle/recruit/internal/eligibility"
	"github.com/codecircle/recruit/internal/observability"
	obsmiddleware "github.com/codecircle/recruit/internal/observability/logger"
	obsmetrics "github.com/codecircle/recruit/internal/observability/metrics"
	obstracing "github.com/codecircle/recruit/internal/observability/tracing"
	"github.com/codecircle/recruit/internal/providers/pdf"
	"github.com/codecircle/recruit/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Log:             log.Named("http.request"),
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	log       *zap.Logger
	clock     clock.Clock
	sessions  *session.Manager
	portalCfg *config.PortalConfigHolder

	applicantSvc   applicantdomain.Service
	cycleSvc       cycledomain.Service
	applicationSvc applicationdomain.Service
	gate           *eligibility.Gate
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	authLimiter    *ratelimit.AuthLimiter
	pdfProvider    pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Log       *zap.Logger
	Clock     clock.Clock
	Sessions  *session.Manager
	PortalCfg *config.PortalConfigHolder

	ApplicantSvc   applicantdomain.Service
	CycleSvc       cycledomain.Service
	ApplicationSvc applicationdomain.Service
	Gate           *eligibility.Gate
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service
	AuthLimiter    *ratelimit.AuthLimiter `optional:"true"`
	PDFProvider    pdf.Provider
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		clock:          p.Clock,
		sessions:       p.Sessions,
		portalCfg:      p.PortalCfg,
		applicantSvc:   p.ApplicantSvc,
		cycleSvc:       p.CycleSvc,
		applicationSvc: p.ApplicationSvc,
		gate:           p.Gate,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		authLimiter:    p.AuthLimiter,
		pdfProvider:    p.PDFProvider,
	}
}

func registerRoutes(s *Server) {
	s.RegisterAuthRoutes()
	s.RegisterPublicRoutes()
	s.RegisterAPIRoutes()
	s.RegisterAdminRoutes()
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.POST("/forgot", s.Forgot)
	auth.POST("/reset", s.ResetPassword)

	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/verify-email", s.AuthRequired(), s.VerifyEmail)
	auth.POST("/resend-code", s.AuthRequired(), s.ResendVerification)
}

func (s *Server) RegisterPublicRoutes() {
	s.engine.GET("/", s.GetPortalHome)
	s.engine.GET("/portal", s.GetPortalHome)
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	api.POST("/applications", s.StartApplication)
	api.GET("/applications", s.GetCurrentApplication)
	api.GET("/applications/:id", s.GetOwnApplication)
	api.PUT("/applications/:id/draft", s.SaveApplicationDraft)
	api.POST("/applications/:id/submit", s.SubmitApplication)
}

func (s *Server) RegisterAdminRoutes() {
	admin := s.engine.Group("/admin", s.AuthRequired())

	admin.GET("/cycles", s.RequireStaffAction(authorization.ObjectCycle, authorization.ActionCycleView), s.ListCycles)
	admin.POST("/cycles", s.RequireStaffAction(authorization.ObjectCycle, authorization.ActionCycleCreate), s.CreateCycle)
	admin.GET("/cycles/:id", s.RequireStaffAction(authorization.ObjectCycle, authorization.ActionCycleView), s.GetCycleByID)
	admin.POST("/cycles/:id/activate", s.RequireStaffAction(authorization.ObjectCycle, authorization.ActionCycleActivate), s.ActivateCycle)
	admin.POST("/cycles/:id/deactivate", s.RequireStaffAction(authorization.ObjectCycle, authorization.ActionCycleActivate), s.DeactivateCycle)

	admin.GET("/cycles/:id/questions", s.RequireStaffAction(authorization.ObjectQuestion, authorization.ActionQuestionView), s.ListCycleQuestions)
	admin.POST("/cycles/:id/questions", s.RequireStaffAction(authorization.ObjectQuestion, authorization.ActionQuestionCreate), s.AddCycleQuestion)
	admin.PATCH("/questions/:id", s.RequireStaffAction(authorization.ObjectQuestion, authorization.ActionQuestionUpdate), s.UpdateQuestion)
	admin.DELETE("/questions/:id", s.RequireStaffAction(authorization.ObjectQuestion, authorization.ActionQuestionDelete), s.DeleteQuestion)

	admin.GET("/applications", s.RequireStaffAction(authorization.ObjectApplication, authorization.ActionApplicationView), s.ListApplications)
	admin.GET("/applications/:id", s.RequireStaffAction(authorization.ObjectApplication, authorization.ActionApplicationView), s.GetApplicationByID)
	admin.POST("/applications/:id/advance", s.RequireStaffAction(authorization.ObjectApplication, authorization.ActionApplicationAdvance), s.AdvanceApplication)
	admin.POST("/applications/:id/interview", s.RequireStaffAction(authorization.ObjectApplication, authorization.ActionApplicationSchedule), s.ScheduleInterview)
	admin.GET("/applications/:id/export", s.RequireStaffAction(authorization.ObjectApplication, authorization.ActionApplicationExport), s.ExportApplication)

	admin.GET("/audit-logs", s.RequireStaffAction(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
