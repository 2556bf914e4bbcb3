package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Kayky4/vitasyn/internal/api"
	"github.com/Kayky4/vitasyn/internal/cache"
	"github.com/Kayky4/vitasyn/internal/calendar"
	"github.com/Kayky4/vitasyn/internal/config"
	"github.com/Kayky4/vitasyn/internal/db"
	"github.com/Kayky4/vitasyn/internal/events"
	"github.com/Kayky4/vitasyn/internal/firestore"
	"github.com/Kayky4/vitasyn/internal/gcal"
	"github.com/Kayky4/vitasyn/internal/metrics"
	"github.com/Kayky4/vitasyn/internal/mongostore"
	"github.com/Kayky4/vitasyn/internal/schedule"
)

// store is what every storage backend provides.
type store interface {
	schedule.ProfessionalStore
	schedule.EventStore
	schedule.PatientEventStore
}

type backend struct {
	store store
	ping  func(ctx context.Context) error
	close func()
}

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	if err := config.LoadEnv(); err != nil {
		logger.Fatal().Err(err).Msg("failed to load .env")
	}
	configPath := os.Getenv("VITASYN_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(os.Getenv("VITASYN_LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		logger = logger.Level(lvl)
	}

	layout, err := cfg.Calendar.Layout()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid calendar config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("open storage error")
	}
	defer be.close()

	var profs schedule.ProfessionalStore = be.store
	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		profs = cache.NewProfessionals(be.store, rdb, cfg.CacheTTL(), &logger)
	}

	bus := events.NewEventBus()
	bus.SubscribeAll(func(e events.Event) error {
		logger.Info().
			Str("type", e.Type).
			Str("professional_id", e.ProfessionalID).
			Str("subject_id", e.SubjectID).
			Str("detail", e.Detail).
			Msg("domain event")
		return nil
	}, events.AvailabilitySaved, events.BlockCreated, events.BlockDeleted, events.BlockRolledBack, events.ConsultationBooked)

	var meetings schedule.MeetingScheduler
	if cfg.Google.Enabled {
		meetings = gcal.New(gcal.Config{
			ClientID:          cfg.Google.ClientID,
			ClientSecret:      cfg.Google.ClientSecret,
			RedirectURL:       cfg.Google.RedirectURL,
			CalendarID:        cfg.Google.CalendarID,
			RequestsPerSecond: cfg.Google.RequestsPerSecond,
			Burst:             cfg.Google.Burst,
		}, &logger)
	}

	availability := schedule.NewAvailabilityService(profs, bus, &logger).WithDefaults(cfg.SessionDefaults())
	// Bookings read the backing store: cached records carry no calendar credentials.
	bookings := schedule.NewBookingService(be.store, be.store, be.store, meetings, bus, &logger).WithLocation(layout.Location)

	srv := api.NewServer(availability, be.store, bookings, bus, layout, api.Options{
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		OverlapGuard:       cfg.Calendar.OverlapGuard,
	}, &logger)

	if err := config.WatchCalendar(ctx, configPath, 30*time.Second, func(c calendar.Config) {
		srv.SetLayout(c)
		logger.Info().Msg("calendar layout reloaded")
	}); err != nil {
		logger.Warn().Err(err).Msg("calendar config watch disabled")
	}

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, be.ping, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()

	logger.Info().Str("address", cfg.Server.Address).Str("driver", cfg.Storage.Driver).Msg("VitaSyn scheduling API started")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("api server error")
	}
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		timeout := time.Duration(cfg.Storage.Mongo.TimeoutSecs) * time.Second
		client, err := mongostore.Connect(ctx, cfg.Storage.Mongo.URI, timeout)
		if err != nil {
			return nil, err
		}
		st := mongostore.New(client.Database(cfg.Storage.Mongo.Database), logger)
		if err := st.EnsureIndexes(ctx); err != nil {
			logger.Warn().Err(err).Msg("mongo index creation failed")
		}
		return &backend{
			store: st,
			ping:  st.Ping,
			close: func() {
				ctxClose, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				_ = client.Disconnect(ctxClose)
			},
		}, nil

	case config.DriverFirestore:
		client, err := firestore.NewClient(ctx, cfg.Storage.Firestore.ProjectID, cfg.Storage.Firestore.CredentialsFile)
		if err != nil {
			return nil, err
		}
		st := firestore.New(client, logger)
		return &backend{store: st, close: func() { _ = st.Close() }}, nil

	default:
		database, err := db.NewDB(cfg.Storage.SQLite.Path, logger)
		if err != nil {
			return nil, err
		}
		go db.NewBackupService(database, cfg.Backup, logger).Start(ctx)
		return &backend{
			store: database,
			ping:  database.PingContext,
			close: func() { _ = database.Close() },
		}, nil
	}
}

func startHealthServer(ctx context.Context, port int, ping func(context.Context) error, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if ping != nil {
			if err := ping(ctxPing); err != nil {
				http.Error(w, "storage not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
