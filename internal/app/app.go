package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/controller"
	"zhitu_backend/internal/llm"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/resource"
	"zhitu_backend/internal/service"
	"zhitu_backend/internal/util"
	"zhitu_backend/internal/workflow"
	"zhitu_backend/pkg/configwatcher"
	"zhitu_backend/pkg/database"
	"zhitu_backend/pkg/logger"
	"zhitu_backend/pkg/monitoring"
	"zhitu_backend/pkg/security"
	"zhitu_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	LLM    *llm.Client

	configFile      string
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user           *repository.UserRepository
	learningPath   *repository.LearningPathRepository
	question       *repository.InterviewQuestionRepository
	questionStatus *repository.QuestionStatusRepository
	session        *repository.InterviewSessionRepository
	progress       *repository.ProgressRepository
	notebook       *repository.NotebookRepository
	note           *repository.NoteRepository
	chat           *repository.ChatRepository
}

// dependencies 外部能力，测试中替换为假实现
type dependencies struct {
	llm      llm.Completer
	narrator service.Narrator
	adapters map[model.ContentType]resource.Adapter
}

type services struct {
	auth               *service.AuthService
	user               *service.UserService
	storage            *service.StorageService
	learningPath       *service.LearningPathService
	content            *service.ContentService
	interview          *service.InterviewService
	interviewSimulator *service.InterviewSimulatorService
	progress           *service.ProgressService
	notebook           *service.NotebookService
	note               *service.NoteService
	chat               *service.ChatService
	noteDraft          *service.NoteDraftService
}

type controllers struct {
	auth               *controller.AuthController
	user               *controller.UserController
	learningPath       *controller.LearningPathController
	interview          *controller.InterviewController
	interviewSimulator *controller.InterviewSimulatorController
	progress           *controller.ProgressController
	note               *controller.NoteController
	notebook           *controller.NotebookController
	chat               *controller.ChatController
	health             *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:           repository.NewUserRepository(db),
		learningPath:   repository.NewLearningPathRepository(db),
		question:       repository.NewInterviewQuestionRepository(db),
		questionStatus: repository.NewQuestionStatusRepository(db),
		session:        repository.NewInterviewSessionRepository(db),
		progress:       repository.NewProgressRepository(db),
		notebook:       repository.NewNotebookRepository(db),
		note:           repository.NewNoteRepository(db),
		chat:           repository.NewChatRepository(db),
	}
}

// buildAdapters 课程走外部搜索，书籍和证书走分类目录加大模型兜底
func buildAdapters(cfg *config.Config, c llm.Completer, rdb *redis.Client) map[model.ContentType]resource.Adapter {
	var cache resource.CategoryCache
	if rdb != nil {
		cache = resource.NewRedisCategoryCache(rdb, time.Duration(cfg.Search.CategoryTTL)*time.Hour)
	}
	classifier := resource.NewClassifier(c, cache)
	generator := resource.NewGenerator(c)

	return map[model.ContentType]resource.Adapter{
		model.ContentCourses:        resource.NewCourseAdapter(cfg.Search),
		model.ContentBooks:          resource.NewBookAdapter(classifier, generator),
		model.ContentCertifications: resource.NewCertificationAdapter(classifier, generator),
	}
}

func initServices(repos *repositories, cfg *config.Config, deps *dependencies) *services {
	s := &services{}

	s.storage = service.NewStorageService(&cfg.Storage)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.learningPath = service.NewLearningPathService(repos.learningPath, deps.narrator)
	s.content = service.NewContentService(repos.learningPath, deps.narrator, deps.adapters, resource.NewCatalog())
	s.interview = service.NewInterviewService(
		repos.learningPath,
		repos.question,
		repos.questionStatus,
		s.storage,
		deps.llm,
	)
	s.interviewSimulator = service.NewInterviewSimulatorService(
		repos.learningPath,
		repos.question,
		repos.session,
		deps.llm,
	)
	s.progress = service.NewProgressService(repos.progress, repos.learningPath)
	s.notebook = service.NewNotebookService(repos.notebook)
	s.note = service.NewNoteService(repos.note, s.notebook, repos.learningPath)
	s.chat = service.NewChatService(repos.chat, deps.llm)
	s.noteDraft = service.NewNoteDraftService(repos.learningPath, repos.question, deps.llm)

	return s
}

func initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:               controller.NewAuthController(s.auth),
		user:               controller.NewUserController(s.user),
		learningPath:       controller.NewLearningPathController(s.learningPath, s.content),
		interview:          controller.NewInterviewController(s.interview),
		interviewSimulator: controller.NewInterviewSimulatorController(s.interviewSimulator),
		progress:           controller.NewProgressController(s.progress),
		note:               controller.NewNoteController(s.note),
		notebook:           controller.NewNotebookController(s.notebook),
		chat:               controller.NewChatController(s.chat, s.noteDraft),
		health:             controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.RequestID())
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	router.Use(a.limiter.Middleware())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// build 组装仓储、服务和路由，NewApp 与测试共用
func (a *App) build(deps *dependencies) {
	repos := initRepositories(a.DB)
	svcs := initServices(repos, a.Config, deps)
	ctrls := initControllers(svcs, a.DB, a.Redis)

	a.limiter = security.NewRateLimiter(a.Config.RateLimit)
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.limiter.Update(cfg.RateLimit)
	})

	router := gin.New()
	router.Use(gin.Recovery())
	a.Router = router

	a.setupMiddlewares(router, a.Config)
	a.registerRoutes(router, ctrls)

	if a.Config.Storage.Type == util.StorageLocal {
		router.Static("/uploads", a.Config.Storage.LocalPath)
	}
}

// NewApp configDir 为配置目录，热更新监听其中的 config.yaml
func NewApp(cfg *config.Config, configDir string) (*App, error) {
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	// Redis 不可用时关闭分类缓存，其余功能不受影响
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Failed to initialize redis, category cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		LLM:        llm.New(cfg.AI),
		configFile: filepath.Join(configDir, "config.yaml"),
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("zhitu-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	monitoring.Init()

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.LLM.SetModel(newCfg.AI.Model)
	})

	app.build(&dependencies{
		llm:      app.LLM,
		narrator: service.NewNarrator(workflow.New(cfg.Workflow), app.LLM),
		adapters: buildAdapters(cfg, app.LLM, rdb),
	})

	logger.Log.Info("Application initialized",
		zap.String("mode", cfg.Server.Mode),
		zap.String("model", cfg.AI.Model),
		zap.Bool("workflow", cfg.Workflow.WebhookURL != ""),
	)
	return app, nil
}

// Run 阻塞直到收到 SIGINT/SIGTERM，随后优雅关闭
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watcher := configwatcher.New(a.configFile)
	for _, cb := range a.configCallbacks {
		watcher.OnReload(cb)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := watcher.Run(gctx); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		a.limiter.Run(gctx.Done())
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if a.tracer != nil {
			if err := a.tracer.Shutdown(shutdownCtx); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}
		return nil
	})

	err := g.Wait()
	a.close()
	logger.Log.Info("Server exiting")
	return err
}

func (a *App) close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
