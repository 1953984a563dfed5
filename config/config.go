package config

import (
	"strings"
	"time"

	"github.com/record-crew/recordai/types"
)

// Config is the complete recordai configuration. It is constructed exactly
// once at process start and handed into each constructor; nothing in the
// service reads configuration ambiently.
type Config struct {
	// Server configures the HTTP listener and inbound rate limits.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// OpenAI carries provider connectivity and pipeline limits.
	OpenAI OpenAIConfig `yaml:"openai" env:"OPENAI"`

	// Auth configures caller-identity validation.
	Auth AuthConfig `yaml:"auth" env:"AUTH"`

	// Log configures the zap logger.
	Log LogConfig `yaml:"log" env:"LOG"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// RateLimitRPS caps inbound requests per client IP. Zero disables limiting.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	// AllowedOrigins lists frontend origins permitted for CORS. Empty means
	// cross-origin requests get no CORS headers at all.
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

// OpenAIConfig carries everything the three provider clients need. Timeouts
// and retry budgets are per stage, not shared, because the transcription call
// legitimately takes far longer than chat or image generation.
type OpenAIConfig struct {
	// APIKey is the bearer credential attached to every outbound request.
	// A blank value is a configuration error caught before any call.
	APIKey  string `yaml:"api_key" env:"API_KEY"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`

	TranscriptionModel string `yaml:"transcription_model" env:"TRANSCRIPTION_MODEL"`
	ChatModel          string `yaml:"chat_model" env:"CHAT_MODEL"`
	ImageModel         string `yaml:"image_model" env:"IMAGE_MODEL"`

	TranscriptionTimeout time.Duration `yaml:"transcription_timeout" env:"TRANSCRIPTION_TIMEOUT"`
	ChatTimeout          time.Duration `yaml:"chat_timeout" env:"CHAT_TIMEOUT"`
	ImageTimeout         time.Duration `yaml:"image_timeout" env:"IMAGE_TIMEOUT"`

	// WhisperMaxFileMB is the hard upload ceiling; oversize audio is rejected.
	WhisperMaxFileMB int64 `yaml:"whisper_max_file_mb" env:"WHISPER_MAX_FILE_MB"`
	// ImagePromptMaxChars is the soft prompt ceiling; overlong prompts are
	// truncated, not rejected.
	ImagePromptMaxChars int `yaml:"image_prompt_max_chars" env:"IMAGE_PROMPT_MAX_CHARS"`
}

// AuthConfig configures caller-identity validation at the inbound boundary.
type AuthConfig struct {
	// JWTSecret verifies the HS256 bearer token minted by the auth service.
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
	// SkipPaths are served without an identity (health, metrics).
	SkipPaths []string `yaml:"skip_paths" env:"SKIP_PATHS"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console
	Format string `yaml:"format" env:"FORMAT"`
}

// DefaultConfig returns the configuration the service runs with when neither
// a YAML file nor environment overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    150 * time.Second, // transcription worst case is ~121s
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    10,
			RateLimitBurst:  20,
		},
		OpenAI: OpenAIConfig{
			BaseURL:              "https://api.openai.com",
			TranscriptionModel:   "whisper-1",
			ChatModel:            "gpt-4o-mini",
			ImageModel:           "dall-e-3",
			TranscriptionTimeout: 120 * time.Second,
			ChatTimeout:          60 * time.Second,
			ImageTimeout:         60 * time.Second,
			WhisperMaxFileMB:     25,
			ImagePromptMaxChars:  900,
		},
		Auth: AuthConfig{
			SkipPaths: []string{"/health", "/version", "/metrics"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the invariants that must hold before any provider call is
// attempted. A blank credential is reported eagerly as a configuration error
// rather than surfacing later as an opaque 401 from the provider.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return types.NewError(types.ErrConfiguration,
			"OpenAI API key가 설정되지 않았습니다. 환경변수 RECORDAI_OPENAI_API_KEY를 확인하세요.")
	}
	if c.OpenAI.WhisperMaxFileMB <= 0 {
		return types.NewError(types.ErrConfiguration, "whisper_max_file_mb must be positive")
	}
	if c.OpenAI.ImagePromptMaxChars <= 0 {
		return types.NewError(types.ErrConfiguration, "image_prompt_max_chars must be positive")
	}
	return nil
}
