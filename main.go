package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
	extractorx "github.com/sam-admissions/tourbot/agent/extractor"
	llmx "github.com/sam-admissions/tourbot/agent/llm"
	notifyx "github.com/sam-admissions/tourbot/agent/notify"
	promptx "github.com/sam-admissions/tourbot/agent/prompt"
	statex "github.com/sam-admissions/tourbot/agent/state"
	tourbotx "github.com/sam-admissions/tourbot/agent/tourbot"
	configx "github.com/sam-admissions/tourbot/pkg/config"
	_ "github.com/sam-admissions/tourbot/pkg/logger/autoload"
	openaix "github.com/sam-admissions/tourbot/pkg/openai"
	qstashx "github.com/sam-admissions/tourbot/pkg/qstash"
	serverx "github.com/sam-admissions/tourbot/server"
	bookingx "github.com/sam-admissions/tourbot/tour/booking"
	storex "github.com/sam-admissions/tourbot/tour/store"
)

type AppConfig struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	SeedDays        int           `envconfig:"SEED_DAYS" split_words:"true" default:"4"`
	SweepSchedule   string        `envconfig:"SWEEP_SCHEDULE" split_words:"true" default:"0 3 * * *"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")

	dbCfg := configx.MustNew[storex.DBConfig]("DB")
	db, err := storex.Connect(ctx, *dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	st := storex.New(db)
	if err := st.Initialize(ctx, appCfg.SeedDays); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}
	log.Info().Int("seed_days", appCfg.SeedDays).Msg("schema ready")

	booking := bookingx.New(st)

	llmCfg := configx.MustNew[llmx.Config]("OPENAI")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm configuration")
	}

	prompts := promptx.LoadPromptSet()

	tourbotCfg := llmCfg.OpenAIFor(contractx.AgentTypeTourbot)
	chatModel, err := tourbotCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("chat model init failed")
	}

	threads := buildThreadStore()
	opts := []tourbotx.Option{}

	extractorCfg := llmCfg.OpenAIFor(contractx.AgentTypeExtractor)
	if client := openaix.NewClient(extractorCfg); client != nil {
		ext, err := extractorx.New(client, extractorCfg.Model, prompts.Extractor)
		if err != nil {
			log.Fatal().Err(err).Msg("extractor init failed")
		}
		opts = append(opts, tourbotx.WithExtractor(ext))
	}

	if notifier := buildNotifier(); notifier != nil {
		opts = append(opts, tourbotx.WithNotifier(notifier))
	}

	bot, err := tourbotx.New(threads, booking, booking, chatModel, prompts.Tourbot, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("tourbot init failed")
	}

	sweeper := startSweeper(st, appCfg.SweepSchedule)
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:         appCfg.Addr,
		Handler:      serverx.New(bot, booking).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", appCfg.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// buildThreadStore prefers Upstash Redis and falls back to process
// memory when no endpoint is configured.
func buildThreadStore() statex.Store {
	redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	if !redisCfg.Enabled() {
		log.Warn().Msg("no redis endpoint configured, conversations are in-memory only")
		return statex.NewMemoryStore(0)
	}

	store, err := statex.NewUpstashRedisStore(*redisCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("redis store init failed")
	}
	return store
}

// buildNotifier wires QStash confirmations when configured. Returns nil
// when notifications are disabled.
func buildNotifier() contractx.Notifier {
	qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		log.Warn().Err(err).Msg("qstash not configured, confirmations disabled")
		return nil
	}
	client, err := qstashx.NewClient(*qstashCfg)
	if err != nil {
		log.Warn().Err(err).Msg("qstash client init failed, confirmations disabled")
		return nil
	}

	notifyCfg := configx.MustNew[notifyx.Config]("NOTIFY")
	notifier, err := notifyx.NewQStashNotifier(client, *notifyCfg)
	if err != nil {
		log.Warn().Err(err).Msg("notification destination missing, confirmations disabled")
		return nil
	}
	return notifier
}

// startSweeper closes past tour dates on a schedule, and once at boot
// so stale rows never survive a restart.
func startSweeper(st *storex.Store, schedule string) *cron.Cron {
	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := st.CloseExpiredTours(ctx, time.Now().UTC())
		if err != nil {
			log.Error().Err(err).Msg("tour sweep failed")
			return
		}
		if n > 0 {
			log.Info().Int64("closed", n).Msg("expired tours closed")
		}
	}

	sweep()

	c := cron.New()
	if _, err := c.AddFunc(schedule, sweep); err != nil {
		log.Fatal().Err(err).Str("schedule", schedule).Msg("invalid sweep schedule")
	}
	c.Start()
	return c
}
