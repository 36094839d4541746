package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type RouterOptions struct {
	CORSOrigins   []string
	RatePerMinute int // 0 → без лимита
	StaticDir     string
}

func NewRouter(opts RouterOptions, hVoice *VoiceHandler, hContact *ContactHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	RegisterRoutes(r, opts, hVoice, hContact)
	return r
}

func RegisterRoutes(r chi.Router, opts RouterOptions, hVoice *VoiceHandler, hContact *ContactHandler) {
	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// --- api ---
	r.Group(func(api chi.Router) {
		api.Use(httputil.RecoverMiddleware)
		if opts.RatePerMinute > 0 {
			api.Use(httprate.LimitByIP(opts.RatePerMinute, time.Minute))
		}

		api.Post("/voice-agent", hVoice.VoiceAgent)
		api.Post("/contact", hContact.Submit)
	})

	// --- frontend + сгенерированное аудио ---
	if opts.StaticDir != "" {
		fs := http.FileServer(http.Dir(opts.StaticDir))
		r.Handle("/static/*", http.StripPrefix("/static", fs))
		r.Handle("/*", fs)
	}
}
