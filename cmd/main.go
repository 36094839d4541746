package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Vovarama1992/voice_agent/internal/ai"
	"github.com/Vovarama1992/voice_agent/internal/config"
	"github.com/Vovarama1992/voice_agent/internal/delivery"
	"github.com/Vovarama1992/voice_agent/internal/domain"
	"github.com/Vovarama1992/voice_agent/internal/error_notificator"
	"github.com/Vovarama1992/voice_agent/internal/infra"
	"github.com/Vovarama1992/voice_agent/internal/ports"
	"github.com/Vovarama1992/voice_agent/internal/speech"
)

const serviceName = "voice_agent"

const shutdownTimeout = 3 * time.Minute

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	info := func(msg string) {
		zl.Log(logger.LogEntry{Level: "info", Message: msg, Service: serviceName})
	}
	warn := func(msg string) {
		zl.Log(logger.LogEntry{Level: "warn", Message: msg, Service: serviceName})
	}

	if cfg.OpenAIKey == "" {
		warn("OPENAI_API_KEY not set, whisper and chat completion will fail")
	}
	if cfg.SynthflowURL != "" || cfg.SynthflowKey != "" {
		warn("SYNTHFLOW_API_URL is set but the Synthflow integration is not implemented; ignoring")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// =========================================================================
	// CLIENTS (ASR / LLM / TTS)
	// =========================================================================

	openAIClient := ai.NewOpenAIClient(ai.OpenAIOptions{
		APIKey:       cfg.OpenAIKey,
		BaseURL:      cfg.OpenAIBaseURL,
		Model:        cfg.OpenAIModel,
		Brand:        cfg.Brand,
		SystemPrompt: cfg.SystemPrompt,
	})

	var sttClient ports.STTClient = openAIClient // Whisper
	if cfg.STTProvider == "deepgram" {
		if cfg.DeepgramAPIKey == "" {
			log.Fatal("DEEPGRAM_API_KEY not set")
		}
		sttClient = ai.NewDeepgramClient(cfg.DeepgramAPIKey, "")
	}

	var ttsClient ports.TTSClient
	switch cfg.TTSProvider {
	case "openai":
		ttsClient = speech.NewOpenAITTS(openAIClient.Raw())
	default:
		if cfg.ElevenLabsKey == "" {
			warn("ELEVENLABS_API_KEY not set, speech synthesis will fail")
		}
		ttsClient = speech.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsModel, "")
	}

	voices := speech.NewVoices(cfg.Voices, cfg.DefaultVoice)
	speechService := speech.NewService(sttClient, ttsClient, voices)

	// =========================================================================
	// STORAGE
	// =========================================================================

	var audioStore ports.AudioStore
	if cfg.S3Enabled() {
		s3Client, err := infra.NewS3Client(ctx, infra.S3Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		audioStore = domain.NewS3AudioStore(s3Client)
		info("generated audio -> s3 bucket " + cfg.S3Bucket)
	} else {
		local, err := infra.NewLocalStore(cfg.StaticDir, "/static")
		if err != nil {
			log.Fatalf("failed to init static dir: %v", err)
		}
		audioStore = local
		info("generated audio -> " + cfg.StaticDir)
	}

	var contactRepo ports.ContactRepo
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db ping failed: %v", err)
		}

		repo := infra.NewContactRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("db migrate failed: %v", err)
		}
		contactRepo = repo
	} else {
		repo, err := infra.NewContactFileRepo(cfg.SubmissionsFile)
		if err != nil {
			log.Fatalf("failed to init submissions file: %v", err)
		}
		contactRepo = repo
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var notifier error_notificator.Notificator = error_notificator.Noop{}
	if cfg.TelegramEnabled() {
		tg, err := error_notificator.NewTelegramInfra(cfg.TelegramToken, cfg.TelegramAdminChatID, cfg.Brand+" "+serviceName)
		if err != nil {
			// алерты не должны мешать старту
			warn("telegram notifier disabled: " + err.Error())
		} else {
			notifier = tg
		}
	}

	// =========================================================================
	// DOMAIN SERVICES / HTTP
	// =========================================================================

	voiceService := domain.NewVoiceService(speechService, openAIClient, audioStore, notifier)
	contactService := domain.NewContactService(contactRepo)

	router := delivery.NewRouter(
		delivery.RouterOptions{
			CORSOrigins:   cfg.CORSOrigins,
			RatePerMinute: cfg.RatePerMinute,
			StaticDir:     cfg.StaticDir,
		},
		delivery.NewVoiceHandler(voiceService, cfg.MaxUploadBytes, zl),
		delivery.NewContactHandler(contactService, zl),
	)

	// =========================================================================
	// START SERVER
	// =========================================================================

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Fatalf("listen %s: %v", srv.Addr, err)
	}
	info("listening at " + ln.Addr().String())

	if err := serve(stopCtx, srv, ln, shutdownTimeout); err != nil {
		log.Fatalf("server error: %v", err)
	}
	info("server stopped")
}

// serve blocks until ctx is done or the server fails. On ctx it stops
// accepting and waits up to drain for in-flight requests.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, drain time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// голосовой запрос может идти три апстрим-вызова подряд
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
