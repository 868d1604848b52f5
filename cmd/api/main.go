package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/medikah/telehealth-intake/internal/api/router"
	"github.com/medikah/telehealth-intake/internal/appointments"
	"github.com/medikah/telehealth-intake/internal/config"
	"github.com/medikah/telehealth-intake/internal/genai"
	"github.com/medikah/telehealth-intake/internal/notify"
	"github.com/medikah/telehealth-intake/internal/observability/metrics"
	"github.com/medikah/telehealth-intake/internal/scheduling"
	"github.com/medikah/telehealth-intake/internal/triage"
	"github.com/medikah/telehealth-intake/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	sessionStore := buildSessionStore(cfg, logger)
	apptStore := buildAppointmentStore(cfg, logger)
	llm := buildLLM(cfg, logger)
	sender := buildSender(cfg, logger)

	registry := prometheus.NewRegistry()
	triageMetrics := metrics.NewTriageMetrics(registry)

	engine := triage.NewEngine(triage.EngineConfig{
		SkipFinalConfirmation: !cfg.RequireFinalConfirmation,
	})
	responder := triage.NewResponder(llm, triage.PromptBuilder{}, cfg.LLMTimeout, logger)
	svc := triage.NewService(sessionStore, engine, responder, triageMetrics, logger, cfg.MessageHistoryLimit)

	schedSvc := scheduling.NewService(apptStore, sender, scheduling.Config{
		DoxyBaseURL:         cfg.DoxyBaseURL,
		DoctorPool:          cfg.DoctorPool,
		OnCallDoctorName:    cfg.OnCallDoctorName,
		DoctorEmail:         cfg.DoctorNotificationEmail,
		AppointmentDuration: cfg.AppointmentDuration,
		NotifyTimeout:       cfg.NotifyTimeout,
	}, logger)

	handler := router.New(router.Deps{
		Triage:             triage.NewHandler(svc, schedSvc, logger),
		Scheduling:         scheduling.NewHandler(schedSvc, logger),
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsGatherer:    registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// buildSessionStore prefers Redis; without an address it degrades to the
// in-memory store, which loses sessions on restart.
func buildSessionStore(cfg *config.Config, logger *logging.Logger) triage.SessionStore {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, using in-memory session store")
		return triage.NewMemorySessionStore(cfg.SessionTTL)
	}
	opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	logger.Info("using redis session store", "addr", cfg.RedisAddr)
	return triage.NewRedisSessionStore(client, cfg.SessionTTL, logger)
}

func buildAppointmentStore(cfg *config.Config, logger *logging.Logger) appointments.Store {
	hashKey := cfg.AppointmentHashKey
	if hashKey == "" {
		logger.Warn("APPOINTMENT_HASH_KEY not set, generating an ephemeral key")
		hashKey = time.Now().UTC().Format(time.RFC3339Nano)
	}

	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory appointment store")
		store, _ := appointments.NewMemoryStore(hashKey)
		return store
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("opening postgres failed, using in-memory appointment store", "error", err)
		store, _ := appointments.NewMemoryStore(hashKey)
		return store
	}
	store, err := appointments.NewPostgresStore(db, hashKey)
	if err != nil {
		logger.Error("postgres store init failed, using in-memory appointment store", "error", err)
		memStore, _ := appointments.NewMemoryStore(hashKey)
		return memStore
	}
	logger.Info("using postgres appointment store")
	return store
}

// buildLLM returns nil when no key is configured; the responder then serves
// templates only.
func buildLLM(cfg *config.Config, logger *logging.Logger) triage.LLMClient {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, replies use fallback templates")
		return nil
	}
	client, err := genai.NewClient(genai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: float32(cfg.OpenAITemperature),
	}, logger)
	if err != nil {
		logger.Error("openai client init failed, replies use fallback templates", "error", err)
		return nil
	}
	return client
}

func buildSender(cfg *config.Config, logger *logging.Logger) notify.EmailSender {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("SENDGRID_API_KEY not set, emails are logged, not sent")
		return notify.NewStubEmailSender(logger)
	}
	sender, err := notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, logger)
	if err != nil {
		logger.Error("sendgrid init failed, emails are logged, not sent", "error", err)
		return notify.NewStubEmailSender(logger)
	}
	return sender
}
