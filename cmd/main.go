package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"controlling_evse/internal/device"
	"controlling_evse/internal/handlers"
	"controlling_evse/internal/logger"
	"controlling_evse/internal/metrics"
	"controlling_evse/internal/notify"
	"controlling_evse/internal/repository"
	"controlling_evse/internal/server"
	"controlling_evse/internal/service"

	"github.com/spf13/viper"
)

const defaultPollTick = 10 * time.Second

func main() {
	// load config.yml first so the logger can pick up level/file settings
	if err := loadConfig(); err != nil {
		fallback := logger.Get(logger.InfoLevel, "")
		fallback.Fatalw("error reading config", "err", err)
	}

	log := logger.Get(viper.GetString("log.level"), viper.GetString("log.file"))

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	reg := metrics.NewRegistry()
	appMetrics := metrics.NewAppMetrics(reg)
	transport := device.NewClient(viper.GetDuration("device.timeout"))
	services := service.NewService(repos, transport, buildNotifier(log), appMetrics, log)
	apiHandler := handlers.NewHandler(services, metrics.Handler(reg), log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// restore persisted history, then seed the device address if the
	// config provides one and nothing is stored yet
	services.History.Load(ctx)
	seedDeviceAddress(ctx, services.Prefs, log)

	// start the passive refresh loop
	go services.Poller.Run(ctx, pollTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return repository.InitDB(dbPath)
}

// buildNotifier always logs transitions; a webhook sink is added when
// notify.webhook_url is configured.
func buildNotifier(log *logger.Logger) notify.Notifier {
	sinks := notify.Multi{notify.NewLogNotifier(log)}
	if url := viper.GetString("notify.webhook_url"); url != "" {
		sinks = append(sinks, notify.NewWebhookNotifier(url, log))
	}
	return sinks
}

// seedDeviceAddress copies device.host from the config into preferences
// when no address has been stored yet.
func seedDeviceAddress(ctx context.Context, prefs service.Prefs, log *logger.Logger) {
	host := viper.GetString("device.host")
	if host == "" || prefs.DeviceAddress(ctx) != "" {
		return
	}
	if err := prefs.SetDeviceAddress(ctx, host); err != nil {
		log.Warnw("failed to seed device address", "err", err)
	}
}

func pollTick() time.Duration {
	if d := viper.GetDuration("poll.interval"); d > 0 {
		return d
	}
	return defaultPollTick
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
