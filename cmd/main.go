package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealrec/config"
	"mealrec/controllers"
	"mealrec/repository"
	"mealrec/routes"
	"mealrec/services"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := config.NewLogger(cfg.Logging)
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("get sql handle")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Address).Msg("connect redis")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		log.Fatal().Err(err).Msg("load AWS config")
	}
	var images services.ImageStore
	if cfg.AWS.S3Bucket != "" {
		s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) { o.Region = cfg.AWS.S3Region })
		images = services.NewS3ImageStore(s3Client, cfg.AWS.S3Bucket, cfg.AWS.CloudFrontURL)
	} else {
		log.Warn().Msg("S3_BUCKET not set, profile picture uploads disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(reg)

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	prefs := repository.NewPreferenceRepository(db)
	foods := repository.NewFoodRepository(db)
	meals := repository.NewMealRepository(db)
	alerts := repository.NewAlertRepository(db)

	// Index and generator are owned here and closed on shutdown.
	embedder := services.NewEmbeddingClient(cfg.Embedding, nil)
	index := services.NewVectorIndex(db, embedder)
	if n, err := index.Count(ctx); err != nil {
		log.Warn().Err(err).Msg("count semantic index")
	} else if n == 0 {
		log.Warn().Msg("semantic index is empty, run the indexer")
	}
	generator := services.NewChatClient(cfg.Generation, nil)

	recommender := services.NewRecommender(services.RecommenderDeps{
		Users:       users,
		Profiles:    profiles,
		Preferences: prefs,
		Foods:       foods,
		Meals:       meals,
		Retriever:   services.NewRetriever(index, log),
		Generator:   generator,
		Metrics:     metrics,
		Config:      cfg.Recommendation,
		Log:         log,
	})

	hub := services.NewRealtimeHub(log)
	bus := services.NewAlertBus(alerts, hub, log)
	authSvc := services.NewAuthService(users, services.NewRedisTokenStore(rdb), cfg.Auth)
	recognizer := services.NewFoodRecognizer(services.NewRekognitionDetector(rekognition.NewFromConfig(awsCfg)), foods)

	router := routes.SetupRouter(routes.Deps{
		Log:            log,
		Auth:           authSvc,
		Gatherer:       reg,
		AuthC:          controllers.NewAuthController(authSvc),
		Profile:        controllers.NewProfileController(services.NewProfileService(users, profiles, images)),
		Preference:     controllers.NewPreferenceController(services.NewPreferenceService(profiles, prefs, foods)),
		Meal:           controllers.NewMealController(services.NewMealService(meals, foods, profiles, bus, cfg.Recommendation.FallbackKcal)),
		Food:           controllers.NewFoodController(services.NewFoodService(foods, recognizer)),
		Recommendation: controllers.NewRecommendationController(recommender),
		Summary:        controllers.NewSummaryController(services.NewSummaryService(meals, profiles, cfg.Recommendation.FallbackKcal)),
		Realtime:       controllers.NewRealtimeController(hub, bus),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	hub.Close()
	generator.Close()
	if err := index.Close(); err != nil {
		log.Error().Err(err).Msg("close semantic index")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("close redis")
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("close database")
	}
}
