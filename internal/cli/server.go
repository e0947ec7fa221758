package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"lamed-game-service/internal/config"
	"lamed-game-service/internal/domain"
	"lamed-game-service/internal/game"
	"lamed-game-service/internal/infra/memory"
	pginfra "lamed-game-service/internal/infra/postgres"
	redisinfra "lamed-game-service/internal/infra/redis"
	"lamed-game-service/internal/speech"
	transport "lamed-game-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.ContentLoader = memory.NewStaticContentLoader(sampleVocabulary())
	if pool != nil {
		loader = pginfra.NewContentLoader(pool)
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var contentRepo game.ContentRepository
	if redisClient != nil {
		contentRepo = redisinfra.NewContentRepository(redisClient, loader, contentTTL)
	} else {
		contentRepo = memory.NewContentRepository(loader, contentTTL)
	}

	var sessions game.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var results game.ResultStore
	switch {
	case pool != nil:
		results = pginfra.NewResultStore(pool)
	case redisClient != nil:
		results = redisinfra.NewResultStore(redisClient)
	default:
		results = memory.NewResultStore()
	}

	service := game.NewGameService(sessions, contentRepo, results)
	defaults := transport.Defaults{
		RoundCount:       config.IntOr(cfg.Game.Rounds, 5),
		OptionCount:      config.IntOr(cfg.Game.Options, 4),
		CountdownSeconds: cfg.Game.CountdownSeconds,
		LeaderboardLimit: config.IntOr(cfg.Game.LeaderboardLimit, 10),
	}
	wsHandler := transport.NewWSHandler(service, defaults).
		WithEvalEndpoint(cfg.Speech.EvalEndpoint)
	synth := speech.NewSynthesizer(cfg.Speech.SynthEndpoint, cfg.Speech.Voice)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/leaderboard", transport.LeaderboardHandler(service, defaults.LeaderboardLimit))
	mux.HandleFunc("/speech/synthesize", transport.SynthesizeHandler(synth))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting game service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleVocabulary seeds demo mode; production loads pools from Postgres.
func sampleVocabulary() []domain.ContentItem {
	return []domain.ContentItem{
		{ID: "w1", Primary: "שלום", Secondary: "hello", Annotation: "shalom", Category: "greetings"},
		{ID: "w2", Primary: "תודה", Secondary: "thank you", Annotation: "toda", Category: "greetings"},
		{ID: "w3", Primary: "בוקר טוב", Secondary: "good morning", Annotation: "boker tov", Category: "greetings"},
		{ID: "w4", Primary: "מים", Secondary: "water", Annotation: "mayim", Category: "food"},
		{ID: "w5", Primary: "לחם", Secondary: "bread", Annotation: "lechem", Category: "food"},
		{ID: "w6", Primary: "חלב", Secondary: "milk", Annotation: "chalav", Category: "food"},
		{ID: "w7", Primary: "ספר", Secondary: "book", Annotation: "sefer", Category: "school"},
		{ID: "w8", Primary: "מורה", Secondary: "teacher", Annotation: "moreh", Category: "school"},
		{ID: "w9", Primary: "תלמיד", Secondary: "student", Annotation: "talmid", Category: "school"},
		{ID: "w10", Primary: "בית", Secondary: "house", Annotation: "bayit", Category: "home"},
	}
}
