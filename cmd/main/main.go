package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/agenda"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/ai"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/config"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/gateway"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/healthcheck"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/ingestion"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/jetstream"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/observer"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/prefstore"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/usecase"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/whatsapp"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

func main() {
	// Set timezone to UTC
	time.Local = time.UTC

	// Local runs keep secrets in a .env file; absence is fine
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	metricsEnabled := cfg.Metrics.Enabled
	observer.InitMetrics(metricsEnabled)

	logger.Log.Info("Starting NOCA Gestor backend",
		zap.String("environment", cfg.Environment),
		zap.String("company_id", cfg.Company.ID),
		zap.String("nats_url", cfg.NATS.URL),
	)

	// Initialize repositories
	postgresRepo, err := storage.NewPostgresRepo(cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate, cfg.Company.ID)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Postgres repository", zap.Error(err))
	}

	prefs, err := prefstore.Open(cfg.Prefs.BadgerPath)
	if err != nil {
		logger.Log.Fatal("Failed to open preference store", zap.Error(err))
	}

	jsClient, err := jetstream.NewClient(cfg.NATS.URL)
	if err != nil {
		logger.Log.Fatal("Failed to initialize JetStream client", zap.Error(err))
	}

	// Create repository adapters for the services
	contractRepo := storage.NewContractRepoAdapter(postgresRepo)
	transactionRepo := storage.NewTransactionRepoAdapter(postgresRepo)
	leadRepo := storage.NewLeadRepoAdapter(postgresRepo)
	messageRepo := storage.NewMessageRepoAdapter(postgresRepo)
	routineRepo := storage.NewRoutineRepoAdapter(postgresRepo)
	settingsRepo := storage.NewSettingsRepoAdapter(postgresRepo)
	webhookLogRepo := storage.NewWebhookLogRepoAdapter(postgresRepo)

	// External providers
	sender := whatsapp.NewClient(cfg.Zapi.BaseURL, cfg.Zapi.Timeout)
	drafter := ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
	calendar := buildCalendarProvider(cfg)

	// Services
	broadcastService, err := usecase.NewBroadcastService(cfg.Broadcast, settingsRepo, sender, drafter)
	if err != nil {
		logger.Log.Fatal("Failed to initialize broadcast worker pool", zap.Error(err))
	}

	chatService := usecase.NewChatService(messageRepo, contractRepo, leadRepo, settingsRepo, sender, drafter)

	services := gateway.Services{
		Contracts: usecase.NewContractService(contractRepo, transactionRepo, calendar),
		Chats:     chatService,
		Crm:       usecase.NewCrmService(leadRepo),
		Ledger:    usecase.NewLedgerService(transactionRepo),
		Settings:  usecase.NewSettingsService(settingsRepo),
		Routines:  usecase.NewRoutineService(routineRepo, prefs, calendar),
		Agenda:    usecase.NewAgendaService(calendar, settingsRepo),
		Broadcast: broadcastService,
		Logs:      webhookLogRepo,
	}

	// Webhook intake from NATS JetStream
	router := ingestion.NewRouter()
	ingestion.NewHandlers(messageRepo, leadRepo, webhookLogRepo, chatService).RegisterAll(router)
	consumer := ingestion.NewRealtimeConsumer(jsClient, router, cfg.NATS.Realtime, cfg.Company.ID)
	if err := consumer.Setup(); err != nil {
		logger.Log.Fatal("Failed to set up webhook consumer", zap.Error(err))
	}

	// Health check server, with /metrics if enabled
	healthServer := healthcheck.NewServer(strconv.Itoa(cfg.Metrics.Port), logger.Log)
	healthServer.RegisterProbe("nats", func(context.Context) error {
		if !jsClient.NatsConn().IsConnected() {
			return fmt.Errorf("nats disconnected")
		}
		return nil
	})
	if metricsEnabled {
		healthServer.RegisterMetricsHandler(promhttp.Handler())
		logger.Log.Info("Metrics endpoint enabled", zap.String("path", "/metrics"), zap.Int("port", cfg.Metrics.Port))
	}
	healthServer.Start()

	if err := consumer.Start(); err != nil {
		logger.Log.Fatal("Failed to start webhook consumer", zap.Error(err))
	}

	// Action gateway
	apiServer := gateway.NewServer(cfg.Server.Port, cfg.Company.ID, services, logger.Log)
	sigChan := make(chan os.Signal, 1)
	utils.SafeGo(func() {
		if err := apiServer.Start(); err != nil {
			logger.Log.Error("Action gateway failed, initiating shutdown", zap.Error(err))
			select {
			case sigChan <- syscall.SIGTERM:
			default:
			}
		}
	}, nil)

	// Wait for termination signal
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Log.Info("Received termination signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Log.Info("Starting graceful shutdown", zap.Duration("timeout", 30*time.Second))

	var wg sync.WaitGroup
	wg.Add(4)

	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping action gateway")
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Action gateway shutdown error", zap.Error(err))
		}
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping action gateway", zap.Any("panic", r), zap.ByteString("stack", stack))
		wg.Done()
	})

	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping webhook consumer")
		consumer.Stop()
		jsClient.Close()
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping webhook consumer", zap.Any("panic", r), zap.ByteString("stack", stack))
		wg.Done()
	})

	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping broadcast worker pool")
		broadcastService.Stop()
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping broadcast worker pool", zap.Any("panic", r), zap.ByteString("stack", stack))
		wg.Done()
	})

	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping health check server")
		if err := healthServer.Stop(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Health server shutdown error", zap.Error(err))
		}
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping health check server", zap.Any("panic", r), zap.ByteString("stack", stack))
		wg.Done()
	})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Log.Info("All components stopped")
	case <-shutdownCtx.Done():
		logger.Log.Warn("Shutdown timed out, exiting anyway")
	}

	// Storage last, after everything that writes through it
	if err := prefs.Close(); err != nil {
		logger.Log.Error("[shutdown] Preference store close error", zap.Error(err))
	}
	if err := postgresRepo.Close(context.Background()); err != nil {
		logger.Log.Error("[shutdown] Postgres close error", zap.Error(err))
	}

	logger.Log.Info("Shutdown complete")
}

// buildCalendarProvider returns the Google provider when credentials
// are configured, otherwise an in-memory one so calendar actions still
// answer in development.
func buildCalendarProvider(cfg *config.Config) agenda.Provider {
	if cfg.Calendar.CredentialsFile == "" {
		logger.Log.Warn("No calendar credentials configured, using in-memory calendar")
		return agenda.NewFakeProvider()
	}

	provider, err := agenda.NewGoogleProviderFromFile(context.Background(), cfg.Calendar.CredentialsFile)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Google Calendar provider", zap.Error(err))
	}
	return provider
}
