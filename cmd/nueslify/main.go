package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nueslify/internal/api"
	"nueslify/pkg/config"
	"nueslify/pkg/db"
	"nueslify/pkg/llm"
	"nueslify/pkg/llm/gemini"
	"nueslify/pkg/llm/openai"
	"nueslify/pkg/llm/prompts"
	"nueslify/pkg/logging"
	"nueslify/pkg/mixer"
	"nueslify/pkg/news"
	"nueslify/pkg/probe"
	"nueslify/pkg/request"
	"nueslify/pkg/resolver"
	"nueslify/pkg/sampler"
	"nueslify/pkg/store"
	"nueslify/pkg/summarizer"
	"nueslify/pkg/toptracks"
	"nueslify/pkg/tracker"
	"nueslify/pkg/transition"
	"nueslify/pkg/tts"
	"nueslify/pkg/tts/edgetts"
	"nueslify/pkg/version"
	"nueslify/pkg/watcher"
)

var (
	configPath = flag.String("config", "configs/nueslify.yaml", "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	tts.SetLogPath(appCfg.Log.TTS.Path)

	slog.Info("Nueslify Started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if n, err := dbConn.PruneCache(time.Duration(appCfg.DB.CacheTTL)); err != nil {
		slog.Warn("Cache pruning failed", "error", err)
	} else if n > 0 {
		slog.Info("Pruned stale cache entries", "count", n)
	}

	tr := tracker.New()
	reqClient := request.New(st, tr, appCfg.Request)

	svcs, err := initServices(appCfg, st, tr, reqClient)
	if err != nil {
		return err
	}

	probes := []probe.Probe{
		probe.Upstream("LLM Provider", svcs.LLM, false),
		probe.Templates(svcs.Prompts, summarizer.TemplateName, transition.StartTemplate, transition.BridgeTemplate),
	}
	if svcs.TTS != nil {
		probes = append(probes, probe.WritableDir("Transition Audio", appCfg.TTS.AudioDir))
	}
	if err := probe.AnalyzeResults(probe.Run(ctx, probes, 0)); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	if appCfg.News.InboxDir != "" {
		inbox, err := watcher.NewInbox(appCfg.News.InboxDir, news.NewIngester(st))
		if err != nil {
			return err
		}
		go func() {
			if err := inbox.Run(ctx); err != nil {
				slog.Error("News inbox stopped", "error", err)
			}
		}()
	}

	return runServer(ctx, appCfg, svcs, st, tr)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// Services holds the wired collaborators of the mixer.
type Services struct {
	LLM     llm.Provider
	TTS     tts.Provider
	Prompts *prompts.Manager
	Mixer   *mixer.Mixer
}

func initServices(cfg *config.Config, st store.Store, tr *tracker.Tracker, rc *request.Client) (*Services, error) {
	llmProv, err := newLLMProvider(cfg.LLM, rc, tr, llm.NewHistory(cfg.Log.LLM.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	ttsProv, err := newTTSProvider(cfg.TTS, tr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize TTS provider: %w", err)
	}

	promptMgr, err := prompts.NewManager(cfg.LLM.PromptsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prompt manager: %w", err)
	}

	sum := summarizer.New(llmProv, promptMgr, st, summarizer.Options{
		Station: cfg.Mixer.Station,
		Topics:  cfg.News.Topics,
	})
	tracks := toptracks.New(cfg.Spotify, time.Duration(cfg.Request.Timeout), tr)
	res := resolver.New(tracks, sum, sampler.NewSeeded(cfg.Mixer.Seed), cfg.Mixer.MusicCountMin, cfg.Mixer.MusicCountMax)

	gen := transition.New(llmProv, promptMgr, ttsProv, st, transition.Config{
		Station:  cfg.Mixer.Station,
		Voice:    cfg.TTS.EdgeTTS.VoiceID,
		AudioDir: cfg.TTS.AudioDir,
	})
	src := news.NewStoreSource(st, cfg.News.FallbackText, time.Duration(cfg.News.MaxAge))

	return &Services{
		LLM:     llmProv,
		TTS:     ttsProv,
		Prompts: promptMgr,
		Mixer:   mixer.New(res, gen, src, cfg.Mixer.PlaceholderNews),
	}, nil
}

func newLLMProvider(cfg config.LLMConfig, rc *request.Client, tr *tracker.Tracker, h *llm.History) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		c, err := openai.NewClient(cfg, rc, h)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "gemini":
		c, err := gemini.NewClient(cfg, h, tr)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// newTTSProvider returns a nil Provider when speech is disabled.
func newTTSProvider(cfg config.TTSConfig, tr *tracker.Tracker) (tts.Provider, error) {
	switch cfg.Engine {
	case "none":
		slog.Info("TTS disabled, transitions will be text-only")
		return nil, nil
	case "edge-tts":
		opts := edgetts.OptionsFromEnv()
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("edge-tts: %w (set tts.engine to none for text-only transitions)", err)
		}
		return edgetts.NewProvider(opts, tr), nil
	default:
		return nil, fmt.Errorf("unknown tts engine %q", cfg.Engine)
	}
}

func runServer(ctx context.Context, cfg *config.Config, svcs *Services, st store.Store, tr *tracker.Tracker) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address, api.Handlers{
		Mix:         api.NewMixHandler(svcs.Mixer),
		Transitions: api.NewTransitionHandler(st),
		News:        api.NewNewsHandler(news.NewIngester(st), st, time.Duration(cfg.News.MaxAge)),
		Stats:       api.NewStatsHandler(tr, cfg.LLM.Provider, cfg.TTS.Engine),
		Voices:      api.NewVoicesHandler(svcs.TTS),
	}, shutdownFunc)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
