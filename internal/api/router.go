package api

import (
	"net/http"

	"MedGuard/internal/api/response"
	"MedGuard/internal/assistant"
	"MedGuard/internal/auth"
	"MedGuard/internal/config"
	"MedGuard/internal/metrics"
	"MedGuard/internal/middleware"
	"MedGuard/internal/repository"
	"MedGuard/internal/service"
	"MedGuard/internal/store"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter 组装仓储、服务与路由
func NewRouter(cfg *config.Config, st *store.Store, gateway service.Assistant, m *metrics.Metrics, logger *logrus.Logger) *gin.Engine {
	demo := cfg.Dashboard.DemoFallback

	users := repository.NewUserRepository(st)
	drgRepo := repository.NewDRGRepository(st)
	institutionRepo := repository.NewInstitutionRepository(st)
	hospitalRepo := repository.NewHospitalRepository(st)
	transferRepo := repository.NewTransferRepository(st)
	riskRepo := repository.NewRiskRepository(st)
	warningRepo := repository.NewWarningRepository(st)
	conversationRepo := repository.NewConversationRepository(st)
	dashboardRepo := repository.NewDashboardRepository(st)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpire, cfg.Auth.Issuer)
	authSvc := service.NewAuthService(users, tokens, logger)
	institutionSvc := service.NewInstitutionService(institutionRepo, logger)
	transferSvc := service.NewTransferService(transferRepo, hospitalRepo, institutionRepo, demo, logger)

	authH := NewAuthHandler(authSvc, logger)
	drgH := NewDRGHandler(service.NewDRGService(drgRepo, demo, logger), logger)
	rehabH := NewRehabilitationHandler(institutionSvc, transferSvc, logger)
	riskH := NewRiskHandler(service.NewRiskService(riskRepo, demo, logger), service.NewWarningService(warningRepo, logger), logger)
	dashboardH := NewDashboardHandler(service.NewDashboardService(warningRepo, dashboardRepo, demo, logger), logger)
	transferH := NewTransferHandler(service.NewHospitalService(hospitalRepo, logger), transferSvc, logger)
	userH := NewUserHandler(institutionSvc, transferSvc, logger)
	assistantH := NewAssistantHandler(service.NewAssistantService(gateway, conversationRepo, logger), logger)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger), middleware.CORS(cfg.Server.CORSOrigins))
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	if cfg.Server.Pprof {
		pprof.Register(r)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "服务运行正常"})
	})
	r.NoRoute(func(c *gin.Context) {
		response.Abort(c, http.StatusNotFound, "接口不存在")
	})

	authed := middleware.JWTAuth(authSvc)
	admin := []gin.HandlerFunc{authed, middleware.RequireAdmin()}

	a := r.Group("/api/auth")
	{
		a.POST("/login", authH.Login)
		a.POST("/register", authH.Register)
		a.POST("/logout", authH.Logout)
		a.GET("/me", authed, authH.Me)
	}

	d := r.Group("/api/drg")
	{
		d.GET("", drgH.List)
		d.GET("/statistics", drgH.Statistics)
		d.GET("/export", drgH.Export)
		d.GET("/:id", drgH.Get)
		d.POST("", append(admin, drgH.Create)...)
		d.PUT("/:id", append(admin, drgH.Update)...)
		d.DELETE("/:id", append(admin, drgH.Delete)...)
	}

	rh := r.Group("/api/rehabilitation")
	{
		rh.GET("/institutions", rehabH.ListInstitutions)
		rh.GET("/institutions/:id", rehabH.GetInstitution)
		rh.POST("/institutions", append(admin, rehabH.CreateInstitution)...)
		rh.PUT("/institutions/:id", append(admin, rehabH.UpdateInstitution)...)
		rh.DELETE("/institutions/:id", append(admin, rehabH.DeleteInstitution)...)
		rh.GET("/transfers", append(admin, rehabH.ListTransfers)...)
		rh.GET("/transfer-stats", rehabH.TransferStats)
		rh.PUT("/transfers/:id/approve", append(admin, transferH.Approve)...)
		rh.PUT("/transfers/:id/reject", append(admin, transferH.Reject)...)
	}

	rk := r.Group("/api/risk")
	{
		rk.GET("/events", riskH.ListEvents)
		rk.GET("/events/export", riskH.ExportEvents)
		rk.GET("/events/:id", riskH.GetEvent)
		rk.POST("/events", append(admin, riskH.CreateEvent)...)
		rk.PUT("/events/:id", append(admin, riskH.UpdateEvent)...)
		rk.DELETE("/events/:id", append(admin, riskH.DeleteEvent)...)
		rk.GET("/type-distribution", riskH.TypeDistribution)
		rk.GET("/level-distribution", riskH.LevelDistribution)
		rk.GET("/warnings", riskH.ListWarnings)
		rk.GET("/warnings/:id", riskH.GetWarning)
		rk.POST("/warnings", append(admin, riskH.CreateWarning)...)
		rk.PUT("/warnings/:id", append(admin, riskH.UpdateWarning)...)
		rk.DELETE("/warnings/:id", append(admin, riskH.DeleteWarning)...)
	}

	db := r.Group("/api/dashboard")
	{
		db.GET("/overview", dashboardH.Overview)
		db.GET("/fee-trend", dashboardH.FeeTrend)
		db.GET("/risk-distribution", dashboardH.RiskDistribution)
	}

	t := r.Group("/api/transfer")
	{
		t.GET("/hospitals", transferH.ListHospitals)
		t.GET("/hospitals/:id", transferH.GetHospital)
		t.POST("/hospitals", append(admin, transferH.CreateHospital)...)
		t.PUT("/hospitals/:id", append(admin, transferH.UpdateHospital)...)
		t.DELETE("/hospitals/:id", append(admin, transferH.DeleteHospital)...)
		t.POST("/hospitals/:id/reviews", authed, transferH.AddReview)
		t.POST("/applications", authed, transferH.Submit)
		t.GET("/applications", authed, transferH.ListApplications)
		t.GET("/applications/stats", append(admin, transferH.ApplicationStats)...)
		t.GET("/applications/:id", authed, transferH.GetApplication)
		t.PUT("/applications/:id/approve", append(admin, transferH.Approve)...)
		t.PUT("/applications/:id/reject", append(admin, transferH.Reject)...)
	}

	u := r.Group("/api/user")
	{
		u.GET("/hospitals", userH.ListHospitals)
		u.GET("/hospitals/:id", userH.GetHospital)
		u.POST("/transfer-apply", authed, userH.TransferApply)
		u.GET("/my-applications", authed, userH.MyApplications)
	}

	limiter := middleware.NewRateLimiter(cfg.AI.RateLimitRPS, cfg.AI.RateLimitBurst, logger)
	ai := r.Group("/api/ai-assistant")
	{
		limited := []gin.HandlerFunc{middleware.OptionalAuth(authSvc), limiter.Handler()}
		ai.POST("/chat", append(limited, assistantH.Chat)...)
		ai.POST("/analyze", append(limited, assistantH.Analyze)...)
		ai.GET("/health", assistantH.Health)
		ai.GET("/history", append(admin, assistantH.History)...)
	}

	return r
}

// NewGateway 创建大模型网关并接入指标
func NewGateway(cfg config.AIConfig, m *metrics.Metrics, logger *logrus.Logger) *assistant.Gateway {
	g := assistant.NewGateway(cfg, logger)
	if m != nil {
		g.WithObserver(m)
	}
	return g
}
