package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"dineflow/internal/cache"
	"dineflow/internal/config"
	"dineflow/internal/database"
	"dineflow/internal/logger"
	"dineflow/internal/messaging"
	"dineflow/internal/services/group"
	"dineflow/internal/services/notification"
	"dineflow/internal/services/order"
	"dineflow/internal/services/reservation"
	"dineflow/internal/services/tracking"
)

func main() {
	var (
		mode       = flag.String("mode", "api", "Service mode (api, notification-subscriber)")
		configPath = flag.String("config", "config.yaml", "Path to the configuration file")
		port       = flag.Int("port", 0, "HTTP port, overrides the configured value")
		prefetch   = flag.Int("prefetch", 1, "RabbitMQ prefetch count for the subscriber")
	)
	flag.Parse()

	// A local .env is optional, deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		err = runAPI(ctx, cfg, log)
	case "notification-subscriber":
		err = runSubscriber(ctx, cfg, log, *prefetch)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}
	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runAPI wires every HTTP-facing service into a single server process.
func runAPI(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)

	// One TTL store backs both the wait-time samples and the join rate
	// limiter, the key prefixes keep them apart.
	store := cache.NewStore(
		time.Duration(cfg.Cache.DefaultTTLSeconds)*time.Second,
		time.Duration(cfg.Cache.CleanupIntervalSeconds)*time.Second,
	)

	orderRepo := order.NewRepository(db)
	waits := order.NewWaitTracker(store)
	engine := order.NewEngine(orderRepo, publisher, waits, log)

	orderService := order.NewService(orderRepo, engine, waits, log)
	reservationService := reservation.NewService(reservation.NewRepository(db), engine, log)
	groupService := group.NewService(group.NewRepository(db), engine, store, log)
	trackingService := tracking.NewService(tracking.NewRepository(db), log)

	router := chi.NewRouter()
	router.Use(requestLogger(log))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			order.WriteError(w, log, logger.RequestIDFrom(r.Context()), err)
			return
		}
		order.WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		order.NewHandler(orderService, log).Register(r)
		reservation.NewHandler(reservationService, log).Register(r)
		group.NewHandler(groupService, log).Register(r)
		tracking.NewHandler(trackingService, log).Register(r)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		store.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info("server_started", fmt.Sprintf("API server listening on port %d", cfg.Server.Port), requestID, map[string]interface{}{
			"port": cfg.Server.Port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runSubscriber runs the console notification consumers.
func runSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	orders := messaging.NewConsumer(conn, log, messaging.QueueMerchantNotifications, "merchant-notifications", prefetch)
	stock := messaging.NewConsumer(conn, log, messaging.QueueStockAlerts, "stock-alerts", prefetch)

	return notification.NewSubscriber(orders, stock, log).Start(ctx)
}

// requestLogger assigns every request an ID and logs the request lifecycle.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := logger.GenerateRequestID()
			ctx := logger.WithRequestID(r.Context(), requestID)

			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			log.Debug("request_started", "Request started", requestID, map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			next.ServeHTTP(ww, r.WithContext(ctx))

			log.Debug("request_completed", "Request completed", requestID, map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
