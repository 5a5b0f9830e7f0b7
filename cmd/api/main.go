package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	gfs "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portfolioapi/docs"
	"portfolioapi/internal/auth"
	"portfolioapi/internal/config"
	"portfolioapi/internal/database"
	handlers "portfolioapi/internal/http/handler"
	"portfolioapi/internal/http/middleware"
	"portfolioapi/internal/logging"
	"portfolioapi/internal/otel"
	"portfolioapi/internal/service"
	"portfolioapi/internal/storage"
)

// @title Portfolio API
// @version 1.0
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", cfg.Timezone, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	// One Firebase app serves both token verification and Firestore.
	var fbApp *firebase.App
	if cfg.NeedsFirebase() {
		fbApp, err = auth.InitializeFirebase(ctx, cfg.Firebase)
		if err != nil {
			log.Fatalf("failed to initialize firebase: %v", err)
		}
	}

	var fsClient *gfs.Client
	if cfg.StoreBackend == config.BackendFirestore {
		fsClient, err = fbApp.Firestore(ctx)
		if err != nil {
			log.Fatalf("failed to initialize firestore: %v", err)
		}
		defer fsClient.Close()
	}

	store, closeStore, err := database.OpenStore(ctx, cfg, fsClient, loc)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()

	deps := handlers.Deps{
		Store:       store,
		Experiences: service.NewExperienceService(store),
		Projects:    service.NewProjectService(store),
	}

	if cfg.AuthEnabled {
		verifier, err := auth.NewVerifier(ctx, fbApp)
		if err != nil {
			log.Fatalf("failed to initialize firebase auth: %v", err)
		}
		deps.Auth = middleware.FirebaseAuth(verifier)
	}

	// Images are optional; without MinIO the API only stores image URLs.
	if cfg.MinIO.Endpoint != "" {
		objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
		expiry := time.Duration(cfg.MinIO.PresignExpirySec) * time.Second
		deps.Images = service.NewImageService(objStore, cfg.APIPrefix+"/images", expiry)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(recover.New())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(metrics.Handler())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.LoggerWithWriter(os.Stdout, loc))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, cfg.APIPrefix, deps)

	// Swagger UI with dynamic host and scheme
	docs.SwaggerInfo.BasePath = cfg.APIPrefix
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	logging.Event(loc, map[string]any{
		"msg":           "server_starting",
		"addr":          addr,
		"api_prefix":    cfg.APIPrefix,
		"store_backend": cfg.StoreBackend,
		"auth_enabled":  cfg.AuthEnabled,
		"images":        deps.Images != nil,
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logging.Event(loc, map[string]any{"level": "error", "msg": "server_shutdown_failed", "error": err.Error()})
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logging.Event(loc, map[string]any{"level": "error", "msg": "tracing_shutdown_failed", "error": err.Error()})
	}
	logging.Event(loc, map[string]any{"msg": "server_stopped"})
}
