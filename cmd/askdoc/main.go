package main

import (
	"context"
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

	"github.com/askdoc-io/askdoc/internal/ai"
	"github.com/askdoc-io/askdoc/internal/config"
	"github.com/askdoc-io/askdoc/internal/embedcache"
	"github.com/askdoc-io/askdoc/internal/extract"
	"github.com/askdoc-io/askdoc/internal/filestore"
	"github.com/askdoc-io/askdoc/internal/handler"
	"github.com/askdoc-io/askdoc/internal/history"
	"github.com/askdoc-io/askdoc/internal/job"
	"github.com/askdoc-io/askdoc/internal/middleware"
	"github.com/askdoc-io/askdoc/internal/rag"
	"github.com/askdoc-io/askdoc/internal/schedule"
	"github.com/askdoc-io/askdoc/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "askdoc",
		Short: "askdoc pdf chatbot backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run askdoc server",
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
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

// buildAIBackends turns the primary provider plus optional fallbacks into
// failover generator/embedder groups, tried in configuration order.
func buildAIBackends(cfg *config.Config) (ai.IGenerator, ai.IEmbedder, error) {
	endpoints := append([]config.AIEndpointConfig{{
		Provider:      cfg.AI.Provider,
		Data:          cfg.AI.Data,
		GenerateModel: cfg.AI.GenerateModel,
		EmbedModel:    cfg.AI.EmbedModel,
	}}, cfg.AI.Fallbacks...)

	var generators []ai.GeneratorEntry
	var embedders []ai.EmbedderEntry
	for _, ep := range endpoints {
		provider, err := ai.NewProvider(ep.Provider, ep.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("init ai provider %s: %w", ep.Provider, err)
		}
		generators = append(generators, ai.GeneratorEntry{
			Name:      ep.Provider,
			Generator: ai.NewGenerator(provider, ep.GenerateModel),
		})
		if ep.EmbedModel != "" {
			embedders = append(embedders, ai.EmbedderEntry{
				Name:     ep.Provider,
				Embedder: ai.NewEmbedder(provider, ep.EmbedModel),
			})
		}
	}
	return ai.NewGroupGenerator(generators), ai.NewGroupEmbedder(embedders), nil
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	store, err := filestore.New(cfg.FileStore.Type, cfg.FileStore.Data)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	var archive filestore.Store
	if cfg.Archive != nil {
		archive, err = filestore.New(cfg.Archive.Type, cfg.Archive.Data)
		if err != nil {
			return fmt.Errorf("init archive store: %w", err)
		}
	}

	generator, embedder, err := buildAIBackends(cfg)
	if err != nil {
		return err
	}
	embedder = embedcache.WrapLruCacheToEmbedder(
		embedder,
		cfg.AI.EmbedCacheSize,
		time.Duration(cfg.AI.EmbedCacheTTLMinutes)*time.Minute,
	)

	chunker, err := rag.NewChunker(cfg.RAG.ChunkSize, *cfg.RAG.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("init chunker: %w", err)
	}
	pipeline, err := service.NewPipelineService(store, extract.NewPDFExtractor(), chunker, embedder, cfg.RAG.IndexCacheSize)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}
	histories := history.NewStore(cfg.History.MaxMessages)
	chatService := service.NewChatService(
		pipeline,
		histories,
		generator,
		embedder,
		cfg.RAG.TopK,
		time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
	)
	uploadService := service.NewUploadService(store, archive)

	deps := handler.RouterDeps{
		Upload: handler.NewUploadHandler(uploadService, cfg.RAG.MaxUploadBytes),
		Chat:   handler.NewChatHandler(chatService),
	}

	engine, err := webapi.NewEngine(
		"/",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.History.MaxIdleMinutes > 0 {
		sweep := job.NewSessionSweepJob(histories, time.Duration(cfg.History.MaxIdleMinutes)*time.Minute)
		if err := scheduler.AddJob(sweep, cfg.History.SweepSpec); err != nil {
			return err
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
