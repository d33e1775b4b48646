package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-intel/internal/adapter/handler"
	"github.com/johnquangdev/meeting-intel/internal/adapter/repository"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
	"github.com/johnquangdev/meeting-intel/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-intel/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-intel/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-intel/internal/usecase/chat"
	"github.com/johnquangdev/meeting-intel/internal/usecase/embeddings"
	"github.com/johnquangdev/meeting-intel/internal/usecase/insights"
	"github.com/johnquangdev/meeting-intel/internal/usecase/projects"
	syncuse "github.com/johnquangdev/meeting-intel/internal/usecase/sync"
	pkgai "github.com/johnquangdev/meeting-intel/pkg/ai"
	"github.com/johnquangdev/meeting-intel/pkg/config"
	"github.com/johnquangdev/meeting-intel/pkg/fireflies"
	pkgvalidator "github.com/johnquangdev/meeting-intel/pkg/validator"
)

// app bundles the wired services behind the CLI commands
type app struct {
	cfg              *config.Config
	db               *gorm.DB
	logger           *zap.Logger
	syncService      *syncuse.Service
	chatService      *chat.Service
	insightService   *insights.Service
	embeddingService *embeddings.Service
	projectRepo      repositories.ProjectRepository
}

func (a *app) close() {
	if a.db != nil {
		database.CloseDB(a.db)
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

// buildApp wires the full pipeline. Configuration errors are fatal.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Println("🔧 Initializing dependencies...")

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	embeddingRepo := repository.NewEmbeddingRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	contactRepo := repository.NewContactRepository(db)

	log.Println("🤖 Initializing AI clients...")
	sourceClient := fireflies.NewClient(&cfg.Fireflies, logger)
	openaiClient := pkgai.NewOpenAIClient(&cfg.OpenAI)

	var store cache.Store
	if cfg.RedisEnabled() {
		log.Println("📦 Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = redisStore
	} else {
		store = cache.NewMemoryStore()
	}

	var objectStore syncuse.ObjectStore
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Printf("⚠️  Object storage unavailable, markdown uploads disabled: %v", err)
	} else {
		objectStore = minioClient
	}

	insightService := insights.NewService(openaiClient, meetingRepo, insightRepo, logger)
	embeddingService := embeddings.NewService(openaiClient, meetingRepo, embeddingRepo, logger)
	assigner := projects.NewAssigner(projectRepo, meetingRepo, openaiClient, store, cfg.Sync.AssignmentThreshold, logger)

	syncService := syncuse.NewService(
		sourceClient,
		insightService,
		embeddingService,
		assigner,
		objectStore,
		meetingRepo,
		contactRepo,
		cfg.Sync,
		logger,
	)
	chatService := chat.NewService(openaiClient, openaiClient, meetingRepo, insightRepo, embeddingRepo, logger)

	return &app{
		cfg:              cfg,
		db:               db,
		logger:           logger,
		syncService:      syncService,
		chatService:      chatService,
		insightService:   insightService,
		embeddingService: embeddingService,
		projectRepo:      projectRepo,
	}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "meetingintel",
		Short: "Meeting intelligence sync pipeline",
		Long:  "Pulls meeting transcripts, extracts structured insights, embeds content for retrieval and answers questions over the result.",
	}

	rootCmd.AddCommand(
		newSyncCmd(),
		newStartCmd(),
		newTestCmd(),
		newAskCmd(),
		newSummaryCmd(),
		newReembedCmd(),
		newServeCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newSyncCmd() *cobra.Command {
	var hoursBack, minMeetings int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one pipeline pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			if hoursBack == 0 {
				hoursBack = a.cfg.Sync.HoursBack
			}
			if minMeetings == 0 {
				minMeetings = a.cfg.Sync.MinMeetings
			}

			stats, err := a.syncService.Run(cmd.Context(), hoursBack, minMeetings)
			printStats(stats)
			return err
		},
	}

	cmd.Flags().IntVar(&hoursBack, "hours-back", 0, "how far back to fetch transcripts (default from config)")
	cmd.Flags().IntVar(&minMeetings, "min-meetings", 0, "minimum number of transcripts per batch (default from config)")
	return cmd
}

func newStartCmd() *cobra.Command {
	var intervalHours int

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the pipeline on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			if intervalHours == 0 {
				intervalHours = a.cfg.Sync.IntervalHours
			}

			scheduler := syncuse.NewScheduler(a.syncService, a.cfg.Sync.HoursBack, a.cfg.Sync.MinMeetings, a.logger)
			scheduler.Start(intervalHours)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit

			log.Println("🛑 Stopping scheduler...")
			scheduler.Stop()
			log.Println("✅ Scheduler stopped gracefully")
			return nil
		},
	}

	cmd.Flags().IntVar(&intervalHours, "interval-hours", 0, "hours between runs (default from config)")
	return cmd
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run one wide pass and report whether the pipeline works",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			// A full week window with a generous floor exercises every stage
			stats, err := a.syncService.Run(cmd.Context(), 7*24, 20)
			printStats(stats)

			if err != nil || (stats != nil && stats.TotalFetched == 0) {
				fmt.Println("❌ Pipeline is NOT working")
				return err
			}
			fmt.Println("✅ Pipeline is working")
			return nil
		},
	}
}

func newAskCmd() *cobra.Command {
	var semantic bool
	var projectID int64

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question over stored meeting intelligence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			var answer string
			if semantic {
				var pid *int64
				if projectID > 0 {
					pid = &projectID
				}
				answer, err = a.chatService.AnswerSemantic(cmd.Context(), args[0], pid)
			} else {
				answer, err = a.chatService.Answer(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&semantic, "semantic", false, "use vector search instead of keyword matching")
	cmd.Flags().Int64Var(&projectID, "project", 0, "restrict semantic search to one project id")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize stored insights for one project",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			project, err := a.projectRepo.FindByID(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			if project == nil {
				return fmt.Errorf("project %d not found", projectID)
			}

			summary, err := a.insightService.ProjectSummary(cmd.Context(), projectID)
			if err != nil {
				return err
			}

			fmt.Printf("Project:  %s\n", project.Name)
			fmt.Printf("Insights: %d\n", summary.Total)
			for insightType, count := range summary.CountsByType {
				fmt.Printf("  %-12s %d\n", insightType, count)
			}
			printTitled("Critical items", summary.CriticalItems)
			printTitled("Open risks", summary.OpenRisks)
			printTitled("Pending actions", summary.PendingActions)
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "project id to summarize")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newReembedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reembed [meeting-id]",
		Short: "Regenerate the embeddings of one meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid meeting id %q: %w", args[0], err)
			}

			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			count, err := a.embeddingService.Regenerate(cmd.Context(), meetingID)
			if err != nil {
				return err
			}
			fmt.Printf("Regenerated %d chunks for meeting %s\n", count, meetingID)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP trigger and webhook surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			if port == "" {
				port = a.cfg.Server.Port
			}

			e := echo.New()
			e.HideBanner = true
			e.Validator = pkgvalidator.New()

			e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
				Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
			}))
			e.Use(middleware.Recover())

			pipelineHandler := handler.NewPipeline(a.syncService, a.chatService, a.cfg, a.logger)
			webhookHandler := handler.NewTranscriptWebhook(a.syncService, a.cfg.Server.WebhookSecret, a.logger)
			router := handler.NewRouter(a.cfg, pipelineHandler, webhookHandler)
			router.Setup(e)

			go func() {
				addr := fmt.Sprintf("%s:%s", a.cfg.Server.Host, port)
				log.Printf("🚀 Starting server on %s", addr)
				log.Printf("📝 Environment: %s", a.cfg.Server.Environment)
				if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit

			log.Println("🛑 Shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := e.Shutdown(ctx); err != nil {
				return err
			}
			log.Println("✅ Server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default from config)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			db, err := database.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			return database.RunMigrations(db)
		},
	}
}

func printTitled(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}

func printStats(stats *syncuse.RunStats) {
	if stats == nil {
		return
	}
	fmt.Printf("Fetched:    %d\n", stats.TotalFetched)
	fmt.Printf("New:        %d\n", stats.New)
	fmt.Printf("Existing:   %d\n", stats.Existing)
	fmt.Printf("Processed:  %d\n", stats.Processed)
	fmt.Printf("Failed:     %d\n", stats.Failed)
	fmt.Printf("Backfilled: %d\n", stats.Backfilled)
	if stats.LastError != "" {
		fmt.Printf("Last error: %s\n", stats.LastError)
	}
}
