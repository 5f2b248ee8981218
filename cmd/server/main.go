// @title           PropertyPro API
// @version         1.0
// @description     Multi-tenant property management backend: companies, properties, units, tenants, tenancies, maintenance, invoices, calendar, uploads and an assistant.

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/app/routes"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/blob"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/database"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/events"
	Logger "github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "propertypro",
		Short:         "PropertyPro API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})

	var mode string
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			if mode == "" {
				mode = cfg.DBMigrationMode
			}
			pool, err := database.NewConnectionPool(cfg)
			if err != nil {
				return fmt.Errorf("无法创建数据库连接池: %w", err)
			}
			defer pool.Close()

			if err := database.Migrate(pool.GetDB(), mode); err != nil {
				return fmt.Errorf("数据库迁移失败: %w", err)
			}
			Logger.Info("数据库迁移完成 (mode=%s)", mode)
			return nil
		},
	}
	migrateCmd.Flags().StringVar(&mode, "mode", "", "auto | drop (默认读取 DB_MIGRATION_MODE)")
	root.AddCommand(migrateCmd)

	return root
}

// bootstrap 加载 .env 并初始化日志
func bootstrap() error {
	envErr := godotenv.Load()

	cfg := config.GetConfig()
	if err := Logger.SetupLogger(cfg.LogLevel, cfg.LogFormat, "propertypro"); err != nil {
		return fmt.Errorf("初始化日志配置失败: %w", err)
	}
	if envErr != nil {
		// 环境变量可能已通过其他方式设置
		Logger.Warning("无法加载.env文件: %v", envErr)
	}
	if cfg.EnvType == "SERVER" {
		gin.SetMode(gin.ReleaseMode)
	}
	return nil
}

func serve(ctx context.Context) error {
	defer Logger.Sync()
	runtime.GOMAXPROCS(runtime.NumCPU())

	cfg := config.GetConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		return fmt.Errorf("无法创建数据库连接池: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(pool.GetDB(), cfg.DBMigrationMode); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	blobs, err := blob.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("初始化文件存储失败: %w", err)
	}

	publisher := events.Open(cfg)
	defer publisher.Close()

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr(), DB: cfg.RedisDB})
		defer redisClient.Close()
	}

	serviceContainer := container.NewServiceContainer(container.Dependencies{
		DB:     pool.GetDB(),
		Config: cfg,
		Redis:  redisClient,
		Blobs:  blobs,
		Events: publisher,
	})
	router := routes.SetupRouter(serviceContainer)

	printSystemInfo(pool, cfg, blobs)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		Logger.Info("服务器启动在: http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务器失败: %w", err)
		}
		return nil
	case sig := <-stop:
		Logger.Info("收到信号 %s，正在关闭服务器", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool, cfg *config.Config, blobs blob.Store) {
	if stats, err := pool.Stats(); err == nil {
		Logger.Info("数据库连接池状态: %+v", stats)
	}
	Logger.Info("CPU核心数: %d, Go版本: %s", runtime.NumCPU(), runtime.Version())
	Logger.Info("文件存储: %s, Redis缓存: %t, MQTT事件: %t, 语言模型: %t",
		blobs.Driver(), cfg.RedisEnabled(), cfg.MQTTBrokerURL != "", cfg.OpenAIAPIKey != "")
}
