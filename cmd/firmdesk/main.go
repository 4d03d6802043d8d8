package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/firmdesk/firmdesk-backend/internal/ai"
	"github.com/firmdesk/firmdesk-backend/internal/config"
	"github.com/firmdesk/firmdesk-backend/internal/db"
	"github.com/firmdesk/firmdesk-backend/internal/embedcache"
	"github.com/firmdesk/firmdesk-backend/internal/filestore"
	"github.com/firmdesk/firmdesk-backend/internal/handler"
	"github.com/firmdesk/firmdesk-backend/internal/job"
	"github.com/firmdesk/firmdesk-backend/internal/memory"
	"github.com/firmdesk/firmdesk-backend/internal/middleware"
	"github.com/firmdesk/firmdesk-backend/internal/rag"
	"github.com/firmdesk/firmdesk-backend/internal/repo"
	"github.com/firmdesk/firmdesk-backend/internal/schedule"
	"github.com/firmdesk/firmdesk-backend/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "firmdesk",
		Short: "firmdesk knowledge assistant backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run firmdesk server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	userRepo := repo.NewUserRepo(database)
	orgRepo := repo.NewOrgRepo(database)
	chatRepo := repo.NewChatRepo(database)
	messageRepo := repo.NewMessageRepo(database)
	usageRepo := repo.NewUsageRepo(database)
	chunkRepo := repo.NewChunkRepo(database)

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	generator := ai.NewGenerator(aiProvider, cfg.AI.Model)

	embedProviderName := cfg.AI.EmbedProvider
	if embedProviderName == "" {
		embedProviderName = cfg.AI.Provider
	}
	embedArgs := cfg.AI.EmbedData
	if embedArgs == nil {
		embedArgs = cfg.AI.Data
	}
	embedProvider, err := ai.NewEmbedProvider(embedProviderName, embedArgs)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	embedder := embedcache.WrapLruCacheToEmbedder(
		ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel),
		cfg.AI.EmbedCacheCap,
		time.Duration(cfg.AI.EmbedCacheTTL)*time.Minute,
	)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	memStore := memory.New(
		cfg.Chat.HistoryWindow,
		cfg.Chat.MemoryCapacity,
		time.Duration(cfg.Chat.MemoryIdleMinutes)*time.Minute,
	)
	trigger := rag.NewTrigger(cfg.Retrieval.EntityNames, cfg.Retrieval.PossessivePhrases)
	retriever := rag.NewRetriever(embedder, chunkRepo, cfg.Retrieval.TopK)

	permService := service.NewPermissionService(userRepo, orgRepo)
	quotaService := service.NewQuotaService(permService, usageRepo)
	authService := service.NewAuthService(
		userRepo, orgRepo,
		[]byte(cfg.JWTSecret),
		time.Hour*time.Duration(cfg.JWTTTLHours),
		cfg.AdminBootstrapSecret,
	)
	orgService := service.NewOrgService(orgRepo, userRepo)
	documentService := service.NewDocumentService(chunkRepo, permService, embedder, cfg.Retrieval.MaxChunkSize)
	chatService := service.NewChatService(
		cfg.Chat,
		quotaService, permService,
		chatRepo, messageRepo,
		memStore, trigger, retriever, generator,
	)

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Chats:     handler.NewChatHandler(chatService, store, cfg.UploadMaxBytes),
		Documents: handler.NewDocumentHandler(documentService, cfg.UploadMaxBytes),
		Users:     handler.NewUserHandler(permService, quotaService),
		Orgs:      handler.NewOrgHandler(orgService, permService),
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening",
		zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler(ctx)
	if err := scheduler.AddJob(job.NewUsageCleanupJob(usageRepo, cfg.UsageRetentionDays), "30 2 * * *"); err != nil {
		return fmt.Errorf("schedule usage cleanup: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
