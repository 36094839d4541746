package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort          = "8080"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultVoice         = "Bella"
	defaultOpenAIVoice   = "alloy"
	defaultBrand         = "Nexgen BPO"
	defaultStaticDir     = "static"
	defaultSubmissions   = "submissions.json"
	defaultMaxUpload     = 25 << 20
	defaultRatePerMinute = 30
)

type Config struct {
	Port string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	STTProvider    string
	DeepgramAPIKey string

	TTSProvider     string
	ElevenLabsKey   string
	ElevenLabsModel string
	DefaultVoice    string
	Voices          map[string]string

	Brand        string
	SystemPrompt string

	StaticDir      string
	MaxUploadBytes int64

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3PublicURL string

	DatabaseURL     string
	SubmissionsFile string

	TelegramToken       string
	TelegramAdminChatID int64

	CORSOrigins   []string
	RatePerMinute int

	SynthflowURL string
	SynthflowKey string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Environ())
}

// FromEnv builds a Config from KEY=VALUE pairs.
func FromEnv(environ []string) (*Config, error) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = v
		}
	}
	get := func(key, def string) string {
		if v := strings.TrimSpace(env[key]); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:            get("PORT", defaultPort),
		OpenAIKey:       get("OPENAI_API_KEY", ""),
		OpenAIModel:     get("OPENAI_MODEL", defaultOpenAIModel),
		OpenAIBaseURL:   get("OPENAI_BASE_URL", ""),
		STTProvider:     strings.ToLower(get("STT_PROVIDER", "whisper")),
		DeepgramAPIKey:  get("DEEPGRAM_API_KEY", ""),
		TTSProvider:     strings.ToLower(get("TTS_PROVIDER", "elevenlabs")),
		ElevenLabsKey:   get("ELEVENLABS_API_KEY", ""),
		ElevenLabsModel: get("ELEVENLABS_MODEL", ""),
		Voices:          ParseVoiceMap(env),
		Brand:           get("AGENT_BRAND", defaultBrand),
		SystemPrompt:    get("SYSTEM_PROMPT", ""),
		StaticDir:       get("STATIC_DIR", defaultStaticDir),
		S3Endpoint:      get("S3_ENDPOINT", ""),
		S3AccessKey:     get("S3_ACCESS_KEY", ""),
		S3SecretKey:     get("S3_SECRET_KEY", ""),
		S3Bucket:        get("S3_BUCKET", ""),
		S3Region:        get("S3_REGION", ""),
		S3PublicURL:     strings.TrimRight(get("S3_PUBLIC_URL", ""), "/"),
		DatabaseURL:     get("DATABASE_URL", ""),
		SubmissionsFile: get("SUBMISSIONS_FILE", defaultSubmissions),
		TelegramToken:   get("TELEGRAM_BOT_TOKEN", ""),
		SynthflowURL:    get("SYNTHFLOW_API_URL", ""),
		SynthflowKey:    get("SYNTHFLOW_API_KEY", ""),
	}

	// голоса ElevenLabs и OpenAI не пересекаются
	if cfg.TTSProvider == "openai" {
		cfg.DefaultVoice = get("OPENAI_TTS_VOICE", defaultOpenAIVoice)
	} else {
		cfg.DefaultVoice = get("ELEVENLABS_VOICE", defaultVoice)
	}

	var err error
	if cfg.MaxUploadBytes, err = parseInt64(get("MAX_UPLOAD_BYTES", ""), defaultMaxUpload); err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}
	if cfg.MaxUploadBytes == 0 {
		return nil, errors.New("MAX_UPLOAD_BYTES: must be positive")
	}
	rate, err := parseInt64(get("RATE_LIMIT_PER_MINUTE", ""), defaultRatePerMinute)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
	}
	cfg.RatePerMinute = int(rate)
	if cfg.TelegramAdminChatID, err = parseInt64(get("TELEGRAM_ADMIN_CHAT_ID", ""), 0); err != nil {
		return nil, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID: %w", err)
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	switch cfg.STTProvider {
	case "whisper", "deepgram":
	default:
		return nil, fmt.Errorf("unknown STT_PROVIDER %q", cfg.STTProvider)
	}
	switch cfg.TTSProvider {
	case "elevenlabs", "openai":
	default:
		return nil, fmt.Errorf("unknown TTS_PROVIDER %q", cfg.TTSProvider)
	}

	return cfg, nil
}

// ParseVoiceMap collects VOICE_<LANG>=<voice id> entries.
// VOICE_PT_BR becomes "pt-br". Keys that don't look like a language tag
// (VOICE_AGENT_URL) are skipped.
func ParseVoiceMap(env map[string]string) map[string]string {
	voices := make(map[string]string)
	for k, v := range env {
		lang, ok := strings.CutPrefix(k, "VOICE_")
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			continue
		}
		lang = NormalizeLanguage(lang)
		if !isLanguageTag(lang) {
			continue
		}
		voices[lang] = v
	}
	return voices
}

// isLanguageTag: 2-3 letter primary subtag, then 1-8 char alphanumeric subtags.
func isLanguageTag(tag string) bool {
	parts := strings.Split(tag, "-")
	if n := len(parts[0]); n < 2 || n > 3 || !isAlnum(parts[0], false) {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) == 0 || len(p) > 8 || !isAlnum(p, true) {
			return false
		}
	}
	return true
}

func isAlnum(s string, digits bool) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case digits && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// NormalizeLanguage lowercases a language tag and uses "-" as separator.
func NormalizeLanguage(lang string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(lang)), "_", "-")
}

// S3Enabled reports whether generated audio goes to a bucket.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3Bucket != ""
}

// TelegramEnabled reports whether stage failures are reported to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramAdminChatID != 0
}

func parseInt64(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", n)
	}
	return n, nil
}
