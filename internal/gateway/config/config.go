package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port" validate:"required"`
	Env         string `yaml:"env" validate:"required"`
	Version     string `yaml:"version"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	FrontendURL string `yaml:"frontend_url" validate:"required,url"`
	BackendURL  string `yaml:"backend_url" validate:"required,url"`

	LLM     LLMConfig     `yaml:"llm"`
	OSV     OSVConfig     `yaml:"osv"`
	Storage StorageConfig `yaml:"storage"`
	Index   IndexConfig   `yaml:"comic_index"`
	Limits  LimitsConfig  `yaml:"limits"`
}

type LLMConfig struct {
	APIKey     string  `yaml:"api_key" validate:"required_unless=Fake true"`
	TextModel  string  `yaml:"text_model" validate:"required"`
	ImageModel string  `yaml:"image_model" validate:"required"`
	RPM        float64 `yaml:"rpm" validate:"min=0"`
	Burst      int     `yaml:"burst" validate:"min=0"`
	Fake       bool    `yaml:"fake"`
}

type OSVConfig struct {
	URL         string        `yaml:"url" validate:"required,url"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	Concurrency int           `yaml:"concurrency" validate:"min=0"`
}

type StorageConfig struct {
	Mode      string         `yaml:"mode" validate:"oneof=local s3"`
	LocalPath string         `yaml:"local_path" validate:"required_if=Mode local"`
	S3        ArtifactConfig `yaml:"s3"`
}

// ArtifactConfig addresses the S3-compatible bucket that holds page images.
type ArtifactConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Bucket        string `yaml:"bucket"`
	UseSSL        bool   `yaml:"use_ssl"`
	PublicBaseURL string `yaml:"public_base_url"`
}

func (a ArtifactConfig) CanUseS3() bool {
	return strings.TrimSpace(a.Endpoint) != "" &&
		strings.TrimSpace(a.AccessKey) != "" &&
		strings.TrimSpace(a.SecretKey) != "" &&
		strings.TrimSpace(a.Bucket) != ""
}

type IndexConfig struct {
	PostgresDSN string        `yaml:"postgres_dsn"`
	TTL         time.Duration `yaml:"ttl" validate:"gt=0"`
	MaxEntries  int           `yaml:"max_entries" validate:"gt=0"`
}

type LimitsConfig struct {
	MaxActiveStories     int   `yaml:"max_active_stories" validate:"gt=0"`
	MaxHistoricalStories int   `yaml:"max_historical_stories" validate:"gt=0"`
	MaxUploadBytes       int64 `yaml:"max_upload_bytes" validate:"gt=0"`
}

// Load reads .env, then the optional YAML file named by VULNCOMICS_CONFIG,
// then environment variables, which win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local")
	cfg := defaults(env)

	if path := strings.TrimSpace(os.Getenv("VULNCOMICS_CONFIG")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func defaults(env string) Config {
	cfg := Config{
		Port:        ":8000",
		Env:         env,
		Version:     "0.1.0",
		LogLevel:    "info",
		FrontendURL: "http://localhost:3000",
		BackendURL:  "http://localhost:8000",
		LLM: LLMConfig{
			TextModel:  "gemini-2.5-flash",
			ImageModel: "gemini-2.5-flash-image",
			RPM:        60,
			Burst:      5,
		},
		OSV: OSVConfig{
			URL:         "https://api.osv.dev/v1/query",
			Timeout:     30 * time.Second,
			Concurrency: 16,
		},
		Storage: StorageConfig{
			Mode:      "local",
			LocalPath: "./storage",
			S3:        ArtifactConfig{Region: "us-east-1", Bucket: "vulncomics-pages", UseSSL: true},
		},
		Index: IndexConfig{TTL: 24 * time.Hour, MaxEntries: 1024},
		Limits: LimitsConfig{
			MaxActiveStories:     3,
			MaxHistoricalStories: 2,
			MaxUploadBytes:       1 << 20,
		},
	}
	if strings.EqualFold(env, "local") {
		cfg.Storage.S3.Endpoint = "minio:9000"
		cfg.Storage.S3.UseSSL = false
	}
	return cfg
}

func applyEnv(cfg *Config) error {
	p := envParser{}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if strings.HasPrefix(port, ":") {
			cfg.Port = port
		} else {
			cfg.Port = ":" + port
		}
	}
	cfg.Version = firstNonEmpty(os.Getenv("APP_VERSION"), cfg.Version)
	cfg.LogLevel = strings.ToLower(firstNonEmpty(os.Getenv("LOG_LEVEL"), cfg.LogLevel))
	cfg.FrontendURL = firstNonEmpty(os.Getenv("FRONTEND_URL"), cfg.FrontendURL)
	cfg.BackendURL = firstNonEmpty(os.Getenv("BACKEND_URL"), cfg.BackendURL)

	cfg.LLM.APIKey = firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"), cfg.LLM.APIKey)
	cfg.LLM.TextModel = firstNonEmpty(os.Getenv("GEMINI_TEXT_MODEL"), cfg.LLM.TextModel)
	cfg.LLM.ImageModel = firstNonEmpty(os.Getenv("GEMINI_IMAGE_MODEL"), cfg.LLM.ImageModel)
	cfg.LLM.RPM = p.float("LLM_RPM", cfg.LLM.RPM)
	cfg.LLM.Burst = p.int("LLM_BURST", cfg.LLM.Burst)
	cfg.LLM.Fake = p.bool("LLM_FAKE", cfg.LLM.Fake)

	cfg.OSV.URL = firstNonEmpty(os.Getenv("OSV_API_URL"), cfg.OSV.URL)
	cfg.OSV.Timeout = p.duration("OSV_TIMEOUT", cfg.OSV.Timeout)
	cfg.OSV.Concurrency = p.int("OSV_CONCURRENCY", cfg.OSV.Concurrency)

	cfg.Storage.Mode = strings.ToLower(firstNonEmpty(os.Getenv("STORAGE_MODE"), cfg.Storage.Mode))
	cfg.Storage.LocalPath = firstNonEmpty(os.Getenv("LOCAL_STORAGE_PATH"), cfg.Storage.LocalPath)
	s3 := &cfg.Storage.S3
	if strings.EqualFold(cfg.Env, "local") {
		s3.Endpoint = firstNonEmpty(os.Getenv("ARTIFACT_MINIO_ENDPOINT"), os.Getenv("ARTIFACT_S3_ENDPOINT"), s3.Endpoint)
	} else {
		s3.Endpoint = firstNonEmpty(os.Getenv("ARTIFACT_S3_ENDPOINT"), s3.Endpoint)
		s3.UseSSL = p.bool("ARTIFACT_S3_USE_SSL", s3.UseSSL)
	}
	s3.Region = firstNonEmpty(os.Getenv("ARTIFACT_S3_REGION"), s3.Region)
	s3.AccessKey = firstNonEmpty(os.Getenv("ARTIFACT_S3_ACCESS_KEY"), os.Getenv("MINIO_ROOT_USER"), s3.AccessKey)
	s3.SecretKey = firstNonEmpty(os.Getenv("ARTIFACT_S3_SECRET_KEY"), os.Getenv("MINIO_ROOT_PASSWORD"), s3.SecretKey)
	s3.Bucket = firstNonEmpty(os.Getenv("ARTIFACT_S3_BUCKET"), s3.Bucket)
	s3.PublicBaseURL = firstNonEmpty(os.Getenv("ARTIFACT_S3_PUBLIC_URL"), s3.PublicBaseURL)

	cfg.Index.PostgresDSN = firstNonEmpty(os.Getenv("COMIC_INDEX_PG_DSN"), os.Getenv("DATABASE_URL"), cfg.Index.PostgresDSN)
	cfg.Index.TTL = p.duration("COMIC_INDEX_TTL", cfg.Index.TTL)
	cfg.Index.MaxEntries = p.int("COMIC_INDEX_MAX_ENTRIES", cfg.Index.MaxEntries)

	cfg.Limits.MaxActiveStories = p.int("MAX_ACTIVE_STORIES", cfg.Limits.MaxActiveStories)
	cfg.Limits.MaxHistoricalStories = p.int("MAX_HISTORICAL_STORIES", cfg.Limits.MaxHistoricalStories)
	cfg.Limits.MaxUploadBytes = int64(p.int("MAX_UPLOAD_BYTES", int(cfg.Limits.MaxUploadBytes)))

	return p.err
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Storage.Mode == "s3" && !c.Storage.S3.CanUseS3() {
		return fmt.Errorf("storage mode s3 needs ARTIFACT_S3_ENDPOINT, ARTIFACT_S3_ACCESS_KEY, ARTIFACT_S3_SECRET_KEY and ARTIFACT_S3_BUCKET")
	}
	return nil
}

// envParser keeps the first malformed variable it sees.
type envParser struct{ err error }

func (p *envParser) lookup(key string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	return raw, raw != ""
}

func (p *envParser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
}

func (p *envParser) int(key string, def int) int {
	raw, ok := p.lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *envParser) float(key string, def float64) float64 {
	raw, ok := p.lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *envParser) bool(key string, def bool) bool {
	raw, ok := p.lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

// duration accepts Go durations ("45s") or a bare number of seconds.
func (p *envParser) duration(key string, def time.Duration) time.Duration {
	raw, ok := p.lookup(key)
	if !ok {
		return def
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
