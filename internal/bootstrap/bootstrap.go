// Package bootstrap assembles the application: configuration, logging,
// storage connections and the dependency graph.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/hivenest/communio/internal/app/controllers"
	appMigrations "github.com/hivenest/communio/internal/app/migrations"
	appRepos "github.com/hivenest/communio/internal/app/repositories"
	appRoutes "github.com/hivenest/communio/internal/app/routes"
	appServices "github.com/hivenest/communio/internal/app/services"
	"github.com/hivenest/communio/internal/ai"
	"github.com/hivenest/communio/internal/config"
	"github.com/hivenest/communio/internal/db"
	"github.com/hivenest/communio/internal/kv"
	appMiddleware "github.com/hivenest/communio/internal/middleware"
	pkgAuth "github.com/hivenest/communio/internal/pkg/auth"
	"github.com/hivenest/communio/internal/pkg/clock"
	"github.com/hivenest/communio/internal/pkg/helpers"
	"github.com/hivenest/communio/internal/pkg/logger"
	"github.com/hivenest/communio/internal/pkg/notify"
	"github.com/hivenest/communio/internal/seed"
)

// Dependencies holds the assembled application graph.
type Dependencies struct {
	AuthService          appServices.AuthService
	SuggestionService    appServices.SuggestionService
	CommunityService     appServices.CommunityService
	AuthController       *appControllers.AuthController
	SuggestionController *appControllers.SuggestionController
	CommunityController  *appControllers.CommunityController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	Seeder               *seed.Seeder
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// creates the default data set.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if err := seed.CreateDefaultData(context.Background(), database, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// SetupRedis connects to the key-value store.
func SetupRedis(cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := kv.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		return nil, err
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	return client, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, redisClient *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)
	store := kv.NewRedisStore(redisClient)
	clk := clock.System()

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	completionClient := ai.NewClient(
		cfg.AI.BaseURL,
		cfg.AI.APIKey,
		cfg.AI.Model,
		helpers.ParseDuration(cfg.AI.Timeout, 30*time.Second),
		lgr,
	)

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(
			cfg.Notify.WebhookURL,
			helpers.ParseDuration(cfg.Notify.Timeout, 10*time.Second),
			lgr,
		)
	}

	deps.Seeder = seed.NewSeeder(
		store,
		deps.Repos.CommunityRepository,
		deps.Repos.FacilityRepository,
		deps.Repos.EventRepository,
		seed.Catalog(),
		clk,
		lgr,
	)

	targetRules := cfg.Suggestions.TargetDates
	deps.SuggestionService = appServices.NewSuggestionService(appServices.SuggestionServiceDeps{
		Communities: deps.Repos.CommunityRepository,
		Facilities:  deps.Repos.FacilityRepository,
		Events:      deps.Repos.EventRepository,
		Suggestions: deps.Repos.SuggestionRepository,
		Seeder:      deps.Seeder,
		Generator:   appServices.NewGenerator(completionClient, lgr),
		Store:       store,
		Notifier:    notifier,
		TargetDates: func(c clock.Clock) []appServices.TargetDate {
			return appServices.ResolveTargetDates(targetRules, c)
		},
		Clock:        clk,
		CacheTTL:     helpers.ParseDuration(cfg.Suggestions.CacheTTL, 6*time.Hour),
		BroadcastTTL: helpers.ParseDuration(cfg.Suggestions.BroadcastTTL, 168*time.Hour),
		Logger:       lgr,
	})

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.CommunityService = appServices.NewCommunityService(deps.Repos.CommunityRepository, deps.Seeder, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.SuggestionController = appControllers.NewSuggestionController(deps.SuggestionService)
	deps.CommunityController = appControllers.NewCommunityController(deps.CommunityService)

	return deps, nil
}

// SetupRouter configures the gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(), gin.Recovery())

	appRoutes.Setup(router, appRoutes.Controllers{
		Auth:       deps.AuthController,
		Suggestion: deps.SuggestionController,
		Community:  deps.CommunityController,
	}, deps.AuthMiddleware)

	return router
}
