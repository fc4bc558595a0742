package routes

import (
	"context"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/config"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/handlers"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/metrics"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/middleware"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/models"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/repository"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/services"
	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/steps"
	livews "github.com/MelissaPizarroD/WeightTracker-sub001/internal/websocket"
)

// Background holds the long-running parts of the step pipeline. Start them
// once the HTTP routes are registered.
type Background struct {
	hub    *livews.Hub
	worker *steps.SyncWorker
	store  steps.Store
}

// Start runs the live hub and the sync worker until ctx is cancelled and
// re-arms counters that were active before the last shutdown.
func (b *Background) Start(ctx context.Context) {
	go b.hub.Run(ctx)
	go b.worker.Run(ctx)

	restored, err := steps.Recover(ctx, b.store, b.worker, b.hub)
	if err != nil {
		logrus.WithError(err).Error("steps: boot recovery failed")
		return
	}
	logrus.WithField("counters", restored).Info("steps: boot recovery finished")
}

func RegisterRoutes(
	app *fiber.App,
	cfg *config.Config,
	db *pgxpool.Pool,
	rdb redis.UniversalClient,
	reg *prometheus.Registry,
) *Background {
	loc := cfg.StepLocation()
	metricsManager := metrics.NewManager("weighttracker", "api", reg)

	userRepo := repository.NewUserRepository(db)
	personProfileRepo := repository.NewPersonProfileRepository(db)
	professionalProfileRepo := repository.NewProfessionalProfileRepository(db)
	linkRepo := repository.NewProfessionalLinkRepository(db)
	anthropometryRepo := repository.NewAnthropometryRepository(db)
	mealRepo := repository.NewMealRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	planRepo := repository.NewPlanRepository(db)
	reportRepo := repository.NewReportRepository(db)
	stepRepo := repository.NewStepRecordRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	profileService := services.NewProfileService(personProfileRepo, professionalProfileRepo)
	associationService := services.NewAssociationService(linkRepo, professionalProfileRepo)
	matchmakingService := services.NewMatchmakingService(professionalProfileRepo)
	goalService := services.NewGoalService(db, goalRepo, anthropometryRepo, loc)
	measurementService := services.NewMeasurementService(anthropometryRepo, personProfileRepo, goalService)
	journalService := services.NewJournalService(mealRepo, activityRepo, loc)
	planService := services.NewPlanService(planRepo, professionalProfileRepo, associationService, storageService)
	reportService := services.NewReportService(reportRepo, services.ReportSources{
		Measurements: anthropometryRepo,
		Meals:        mealRepo,
		Activities:   activityRepo,
		Steps:        stepRepo,
		Goals:        goalService,
	}, associationService, loc)

	hub := livews.NewHub()
	stepStore := steps.NewRedisStore(rdb)
	listener := steps.NewListener(stepStore, hub, metricsManager, cfg.Steps.ForwardThreshold, loc)
	syncWorker := steps.NewSyncWorker(stepStore, stepRepo, db.Ping, steps.SyncConfig{
		Interval:   cfg.Steps.SyncInterval,
		MaxElapsed: cfg.Steps.SyncMaxElapsed,
		Location:   loc,
	}, metricsManager)
	stepService := steps.NewService(stepStore, listener, syncWorker, stepRepo, hub, loc)

	authHandler := handlers.NewAuthHandler(db, userRepo, personProfileRepo, professionalProfileRepo, cfg.JWTSecret)
	onboardingHandler := handlers.NewOnboardingHandler(profileService)
	profileHandler := handlers.NewProfileHandler(profileService, personProfileRepo, professionalProfileRepo)
	professionalHandler := handlers.NewProfessionalHandler(personProfileRepo, matchmakingService, associationService)
	measurementHandler := handlers.NewMeasurementHandler(measurementService, loc)
	journalHandler := handlers.NewJournalHandler(journalService, loc)
	goalHandler := handlers.NewGoalHandler(goalService, loc)
	planHandler := handlers.NewPlanHandler(planService)
	reportHandler := handlers.NewReportHandler(reportService, loc)
	stepsHandler := handlers.NewStepsHandler(stepService, hub, loc)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, metricsManager)

	app.Use(middleware.RequestMetrics(metricsManager))
	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", rateLimiter.Handler(), authHandler.Register)
	auth.Post("/login", rateLimiter.Handler(), authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	// registered before the authenticated group: upgrades carry the token in the query
	api.Use("/v1/steps/live", middleware.WebSocketAuth(cfg.JWTSecret))
	api.Get("/v1/steps/live", websocket.New(stepsHandler.HandleLive))

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))
	userOnly := middleware.RequireRole(models.RoleUser)
	professionalOnly := middleware.RequireRole(models.RoleProfessional)

	users := authProtected.Group("/users", userOnly)
	users.Post("/onboarding", onboardingHandler.PersonOnboarding)
	users.Get("/profile", profileHandler.GetPersonProfile)
	users.Put("/profile", profileHandler.UpdatePersonProfile)
	users.Get("/professionals", professionalHandler.ListProfessionals)
	users.Post("/professionals", professionalHandler.AssociateProfessional)
	users.Delete("/professionals/:type", professionalHandler.RemoveProfessional)

	professionals := authProtected.Group("/professionals")
	professionals.Get("/recommended", userOnly, professionalHandler.GetRecommendedProfessionals)
	professionals.Post("/onboarding", professionalOnly, onboardingHandler.ProfessionalOnboarding)
	professionals.Get("/profile", professionalOnly, profileHandler.GetProfessionalProfile)
	professionals.Put("/profile", professionalOnly, profileHandler.UpdateProfessionalProfile)
	professionals.Get("/clients", professionalOnly, professionalHandler.ListClients)

	measurements := authProtected.Group("/measurements", userOnly)
	measurements.Post("", measurementHandler.RecordMeasurement)
	measurements.Get("", measurementHandler.ListMeasurements)
	measurements.Get("/latest", measurementHandler.LatestMeasurement)

	meals := authProtected.Group("/meals", userOnly)
	meals.Post("", journalHandler.AddMeal)
	meals.Get("", journalHandler.ListMeals)
	meals.Delete("/:id", journalHandler.DeleteMeal)

	activities := authProtected.Group("/activities", userOnly)
	activities.Post("", journalHandler.AddActivity)
	activities.Get("", journalHandler.ListActivities)
	activities.Delete("/:id", journalHandler.DeleteActivity)

	authProtected.Get("/calories", userOnly, journalHandler.DailyCalories)

	goals := authProtected.Group("/goals", userOnly)
	goals.Post("", goalHandler.CreateGoal)
	goals.Get("", goalHandler.ListGoals)
	goals.Get("/active/progress", goalHandler.ActiveProgress)
	goals.Post("/:id/cancel", goalHandler.CancelGoal)

	planRequests := authProtected.Group("/plan-requests")
	planRequests.Post("", userOnly, planHandler.RequestPlan)
	planRequests.Get("", planHandler.ListRequests)
	planRequests.Get("/:id", planHandler.GetRequest)
	planRequests.Patch("/:id/status", planHandler.UpdateRequestStatus)

	plans := authProtected.Group("/plans")
	plans.Get("", planHandler.ListPlans)
	plans.Post("/training", professionalOnly, planHandler.CreateTrainingPlan)
	plans.Get("/training/:id", planHandler.GetTrainingPlan)
	plans.Get("/training/:id/attachment", planHandler.DownloadAttachment)
	plans.Put("/training/:id/attachment", professionalOnly, planHandler.ReplaceAttachment)
	plans.Post("/nutrition", professionalOnly, planHandler.CreateNutritionPlan)
	plans.Get("/nutrition/:id", planHandler.GetNutritionPlan)

	reports := authProtected.Group("/reports")
	reports.Post("", userOnly, reportHandler.GenerateReport)
	reports.Get("", reportHandler.ListReports)
	reports.Get("/:id", reportHandler.GetReport)
	reports.Post("/:id/feedback", professionalOnly, reportHandler.AddFeedback)

	stepRoutes := authProtected.Group("/steps", userOnly)
	stepRoutes.Post("/start", stepsHandler.Start)
	stepRoutes.Post("/stop", stepsHandler.Stop)
	stepRoutes.Post("/readings", rateLimiter.Handler(), stepsHandler.IngestReadings)
	stepRoutes.Get("/today", stepsHandler.Today)
	stepRoutes.Get("/history", stepsHandler.History)
	stepRoutes.Post("/sync", stepsHandler.SyncNow)

	return &Background{hub: hub, worker: syncWorker, store: stepStore}
}
