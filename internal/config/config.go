// config предоставляет структуру конфигурации news-digest
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
//
// Файл ./.env (если есть) подгружается в окружение до чтения конфигурации
// и не перекрывает уже выставленные переменные.
type Config struct {
	Env         string           `yaml:"env"          env:"ENV" env-default:"local"`
	HTTP        HTTPConfig       `yaml:"http"`
	DB          DBConfig         `yaml:"db"`
	Redis       RedisConfig      `yaml:"redis"`
	S3          S3Config         `yaml:"s3"`
	LLM         LLMConfig        `yaml:"llm"`
	Crawler     CrawlerConfig    `yaml:"crawler"`
	Pipeline    PipelineConfig   `yaml:"pipeline"`
	Auth        AuthConfig       `yaml:"auth"`
	Cron        CronConfig       `yaml:"cron"`
	RateLimits  RateLimitsConfig `yaml:"rate_limits"`
	Limits      LimitsConfig     `yaml:"limits"`
	Site        SiteConfig       `yaml:"site"`
	Timeouts    TimeoutConfig    `yaml:"timeouts"`
	Scheduler   SchedulerConfig  `yaml:"scheduler"`
	SourcesFile string           `yaml:"sources_file" env:"SOURCES_FILE"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	// Service — бюджет обычного HTTP-запроса.
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
	// Shutdown — время на graceful shutdown.
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL"`
}

// RedisConfig — Redis для счётчиков rate limit. Пустой URL -> счётчики в памяти.
type RedisConfig struct {
	URL    string `yaml:"url"    env:"REDIS_URL"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"news-digest"`
}

// S3Config — объектное хранилище для архивных копий изображений.
// Driver: "minio", "s3" или пусто (архивирование выключено).
type S3Config struct {
	Driver        string `yaml:"driver"          env:"S3_DRIVER"`
	Endpoint      string `yaml:"endpoint"        env:"S3_ENDPOINT"`
	Region        string `yaml:"region"          env:"S3_REGION" env-default:"us-east-1"`
	AccessKey     string `yaml:"access_key"      env:"S3_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key"      env:"S3_SECRET_KEY"`
	UseSSL        bool   `yaml:"use_ssl"         env:"S3_USE_SSL"`
	Bucket        string `yaml:"bucket"          env:"S3_BUCKET" env-default:"news-images"`
	Prefix        string `yaml:"prefix"          env:"S3_PREFIX" env-default:"news"`
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
	MaxBytes      int64  `yaml:"max_bytes"       env:"S3_MAX_BYTES" env-default:"2097152"`
}

// Enabled сообщает, настроено ли хранилище.
func (s S3Config) Enabled() bool { return s.Driver != "" }

// LLMConfig — OpenAI-совместимый chat-completions API.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"    env:"LLM_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	APIKey      string        `yaml:"api_key"     env:"GROQ_API_KEY"`
	Model       string        `yaml:"model"       env:"LLM_MODEL" env-default:"llama-3.1-8b-instant"`
	Temperature float64       `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.2"`
	Timeout     time.Duration `yaml:"timeout"     env:"LLM_TIMEOUT" env-default:"60s"`
	MaxInput    int           `yaml:"max_input"   env:"LLM_MAX_INPUT" env-default:"12000"`
}

// CrawlerConfig — исходящие запросы к сайтам источников.
type CrawlerConfig struct {
	UserAgent    string        `yaml:"user_agent"     env:"CRAWLER_USER_AGENT" env-default:"liberia-chinese-news-bot/1.0"`
	Timeout      time.Duration `yaml:"timeout"        env:"CRAWLER_TIMEOUT" env-default:"20s"`
	MaxLinks     int           `yaml:"max_links"      env:"CRAWLER_MAX_LINKS" env-default:"100"`
	MaxPageBytes int64         `yaml:"max_page_bytes" env:"CRAWLER_MAX_PAGE_BYTES" env-default:"10485760"`
}

// PipelineConfig — параметры конвейера и оркестратора.
type PipelineConfig struct {
	BatchSize       int           `yaml:"batch_size"       env:"PIPELINE_BATCH_SIZE" env-default:"5"`
	MinExcerpt      int           `yaml:"min_excerpt"      env:"PIPELINE_MIN_EXCERPT" env-default:"200"`
	ItemTimeout     time.Duration `yaml:"item_timeout"     env:"PIPELINE_ITEM_TIMEOUT" env-default:"90s"`
	RunTimeout      time.Duration `yaml:"run_timeout"      env:"PIPELINE_RUN_TIMEOUT" env-default:"9m"`
	ProcessingLease time.Duration `yaml:"processing_lease" env:"PIPELINE_PROCESSING_LEASE" env-default:"10m"`
}

// AuthConfig — проверка админских bearer-токенов (HS256).
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	Issuer    string        `yaml:"issuer"     env:"JWT_ISSUER" env-default:"auth-service"`
	Audience  string        `yaml:"audience"   env:"JWT_AUDIENCE" env-default:"news-digest"`
	Leeway    time.Duration `yaml:"leeway"     env:"JWT_LEEWAY" env-default:"30s"`
}

// CronConfig — секреты внешнего планировщика. Подходит любой из двух.
type CronConfig struct {
	Secret       string `yaml:"secret"        env:"CRON_SECRET"`
	GithubSecret string `yaml:"github_secret" env:"GITHUB_CRON_SECRET"`
}

// Secrets возвращает непустые секреты.
func (c CronConfig) Secrets() []string {
	var out []string
	for _, s := range []string{c.Secret, c.GithubSecret} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RateLimitsConfig — фиксированные окна на админские действия (на администратора).
type RateLimitsConfig struct {
	IngestLimit     int           `yaml:"ingest_limit"     env:"RATE_INGEST_LIMIT" env-default:"10"`
	IngestWindow    time.Duration `yaml:"ingest_window"    env:"RATE_INGEST_WINDOW" env-default:"10m"`
	SyncLimit       int           `yaml:"sync_limit"       env:"RATE_SYNC_LIMIT" env-default:"3"`
	SyncWindow      time.Duration `yaml:"sync_window"      env:"RATE_SYNC_WINDOW" env-default:"10m"`
	ReprocessLimit  int           `yaml:"reprocess_limit"  env:"RATE_REPROCESS_LIMIT" env-default:"5"`
	ReprocessWindow time.Duration `yaml:"reprocess_window" env:"RATE_REPROCESS_WINDOW" env-default:"5m"`
}

// LimitsConfig — серверные лимиты на выдачу.
type LimitsConfig struct {
	// Применяется при запросе с limit=0.
	Default int32 `yaml:"default" env:"DEFAULT_LIMIT" env-default:"12"`
	// Верхняя граница для limit.
	Max int32 `yaml:"max" env:"MAX_LIMIT" env-default:"100"`
}

// SiteConfig — публичный сайт: ссылки в лентах и sitemap.
type SiteConfig struct {
	BaseURL     string   `yaml:"base_url"    env:"SITE_BASE_URL" env-default:"http://localhost:3000"`
	Title       string   `yaml:"title"       env:"SITE_TITLE" env-default:"利比里亚政策资讯"`
	Description string   `yaml:"description" env:"SITE_DESCRIPTION" env-default:"Liberia policy news digest"`
	Locales     []string `yaml:"locales"     env:"SITE_LOCALES" env-separator:"," env-default:"zh,en"`
	FeedSize    int32    `yaml:"feed_size"   env:"SITE_FEED_SIZE" env-default:"30"`
}

// SchedulerConfig — встроенный cron. Пустой Spec -> только внешние триггеры.
type SchedulerConfig struct {
	Spec string `yaml:"spec" env:"SCHEDULER_SPEC"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	var cfg Config

	switch {
	case path != "":
		if err := readFile(path, &cfg); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH"), &cfg); err != nil {
			return nil, err
		}
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
				return nil, fmt.Errorf("failed to read local.yaml: %w", err)
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(p string, cfg *Config) error {
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("config file does not exist: %s", p)
	}
	if err := cleanenv.ReadConfig(p, cfg); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func loadDotEnv(p string) error {
	if _, err := os.Stat(p); err != nil {
		return nil
	}
	if err := godotenv.Load(p); err != nil {
		return fmt.Errorf("failed to read %s: %w", p, err)
	}
	return nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	check(c.DB.URL != "", "db.url is required")
	check(c.Limits.Default > 0, "limits.default must be > 0")
	check(c.Limits.Max > 0, "limits.max must be > 0")
	check(c.Limits.Default <= c.Limits.Max, "limits.default must be <= limits.max")
	check(c.Pipeline.BatchSize > 0, "pipeline.batch_size must be > 0")
	check(c.Pipeline.MinExcerpt > 0, "pipeline.min_excerpt must be > 0")
	check(c.Pipeline.ItemTimeout > 0, "pipeline.item_timeout must be > 0")
	check(c.Pipeline.RunTimeout >= c.Pipeline.ItemTimeout, "pipeline.run_timeout must be >= pipeline.item_timeout")
	check(c.Pipeline.ProcessingLease > c.Pipeline.ItemTimeout, "pipeline.processing_lease must be > pipeline.item_timeout")
	check(c.Crawler.Timeout > 0, "crawler.timeout must be > 0")
	check(c.Crawler.MaxLinks > 0, "crawler.max_links must be > 0")
	check(c.LLM.MaxInput > 0, "llm.max_input must be > 0")
	check(c.RateLimits.IngestLimit > 0 && c.RateLimits.IngestWindow > 0, "rate_limits.ingest must be positive")
	check(c.RateLimits.SyncLimit > 0 && c.RateLimits.SyncWindow > 0, "rate_limits.sync must be positive")
	check(c.RateLimits.ReprocessLimit > 0 && c.RateLimits.ReprocessWindow > 0, "rate_limits.reprocess must be positive")

	c.S3.Driver = strings.ToLower(strings.TrimSpace(c.S3.Driver))
	switch c.S3.Driver {
	case "":
	case "minio", "s3":
		check(c.S3.Bucket != "", "s3.bucket is required")
		check(c.S3.PublicBaseURL != "", "s3.public_base_url is required")
		check(c.S3.Driver != "minio" || c.S3.Endpoint != "", "s3.endpoint is required for minio")
	default:
		errs = append(errs, fmt.Errorf("s3.driver must be minio or s3, got %q", c.S3.Driver))
	}

	return errors.Join(errs...)
}
