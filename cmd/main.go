package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"

	"MedGuard/internal/api"
	"MedGuard/internal/auth"
	"MedGuard/internal/config"
	"MedGuard/internal/metrics"
	"MedGuard/internal/repository"
	"MedGuard/internal/service"
	"MedGuard/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medguard",
		Short: "MedGuard 医保智能监管后台",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "建表、增量迁移并写入初始数据后退出",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()
			logger.Info("数据库初始化完成")
			return nil
		},
	}
}

// bootstrap 加载配置并初始化日志
func bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置文件失败: %w", err)
	}
	logger := newLogger(cfg.Log)
	logger.Info("配置文件加载成功")
	return cfg, logger, nil
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}
	return logger
}

// openStore 连接数据库，建表 -> 迁移 -> 初始数据 -> 默认账户
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*store.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Init(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("数据库初始化失败: %w", err)
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpire, cfg.Auth.Issuer)
	authSvc := service.NewAuthService(repository.NewUserRepository(st), tokens, logger)
	if err := authSvc.Bootstrap(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("初始化默认账户失败: %w", err)
	}
	return st, nil
}

func runServer() error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("正在使用默认 JWT 密钥，生产环境请通过 JWT_SECRET 配置")
	}

	st, err := openStore(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Error("数据库启动失败")
		return err
	}
	defer st.Close()

	gin.SetMode(cfg.Server.Mode)
	logger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	m := metrics.New()
	gateway := api.NewGateway(cfg.AI, m, logger)
	if !cfg.AI.HasAPIKey() {
		logger.Warn("未配置 AI_API_KEY，AI 助手将使用模拟响应")
	}
	router := api.NewRouter(cfg, st, gateway, m, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("服务启动成功，端口：%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		logger.WithError(err).Error("启动服务失败")
		return err
	case <-quit:
	}

	logger.Info("正在关闭服务…")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("服务关闭失败")
		return err
	}
	logger.Info("服务已停止")
	return nil
}
