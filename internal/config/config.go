package config

import "time"

// Storage and session drivers.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"

	SessionMemory = "memory"
	SessionRedis  = "redis"

	TranslateStatic = "static"
	TranslateOpenAI = "openai"
)

// Config is the root application configuration.
type Config struct {
	Telegram     TelegramConfig     `yaml:"telegram"`
	Storage      StorageConfig      `yaml:"storage"`
	Database     DatabaseConfig     `yaml:"database"`
	Session      SessionConfig      `yaml:"session"`
	Redis        RedisConfig        `yaml:"redis"`
	Corpus       CorpusConfig       `yaml:"corpus"`
	Translate    TranslateConfig    `yaml:"translate"`
	Quota        QuotaConfig        `yaml:"quota"`
	Registration RegistrationConfig `yaml:"registration"`
	Delivery     DeliveryConfig     `yaml:"delivery"`
	Reset        ResetConfig        `yaml:"reset"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
}

// TelegramConfig holds Bot API settings.
type TelegramConfig struct {
	Token          string        `yaml:"token"           env:"BOT_TOKEN"                  env-required:"true"`
	AdminID        int64         `yaml:"admin_id"        env:"ADMIN_ID"                   env-default:"0"`
	APIURL         string        `yaml:"api_url"         env:"TELEGRAM_API_URL"           env-default:"https://api.telegram.org"`
	PollTimeout    time.Duration `yaml:"poll_timeout"    env:"TELEGRAM_POLL_TIMEOUT"      env-default:"30s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"TELEGRAM_REQUEST_TIMEOUT"   env-default:"60s"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"file"`
	Dir    string `yaml:"dir"    env:"STORAGE_DIR"    env-default:"."`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// SessionConfig selects where registration dialogues are parked.
type SessionConfig struct {
	Driver string `yaml:"driver" env:"SESSION_DRIVER" env-default:"memory"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
}

// CorpusConfig holds vocabulary replenishment settings.
type CorpusConfig struct {
	MinSize        int           `yaml:"min_size"        env:"CORPUS_MIN_SIZE"        env-default:"200"`
	LowerBound     int           `yaml:"lower_bound"     env:"CORPUS_LOWER_BOUND"     env-default:"50"`
	EnrichTimeout  time.Duration `yaml:"enrich_timeout"  env:"CORPUS_ENRICH_TIMEOUT"  env-default:"10s"`
	RefillInterval time.Duration `yaml:"refill_interval" env:"CORPUS_REFILL_INTERVAL" env-default:"30m"`
	DictionaryURL  string        `yaml:"dictionary_url"  env:"CORPUS_DICTIONARY_URL"  env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	SeedLang       string        `yaml:"seed_lang"       env:"CORPUS_SEED_LANG"       env-default:"ru"`
}

// TranslateConfig selects and configures the machine translator.
type TranslateConfig struct {
	Provider      string        `yaml:"provider"        env:"TRANSLATE_PROVIDER"        env-default:"static"`
	OpenAIAPIKey  string        `yaml:"openai_api_key"  env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	OpenAIModel   string        `yaml:"openai_model"    env:"OPENAI_MODEL"              env-default:"gpt-4o-mini"`
	Timeout       time.Duration `yaml:"timeout"         env:"TRANSLATE_TIMEOUT"         env-default:"10s"`
}

// QuotaConfig holds translation quota settings.
type QuotaConfig struct {
	DailyLimit int `yaml:"daily_limit" env:"QUOTA_DAILY_LIMIT" env-default:"50"`
}

// RegistrationConfig bounds answers accepted by the registration dialogue.
type RegistrationConfig struct {
	MaxWordsPerDay int `yaml:"max_words_per_day" env:"REGISTRATION_MAX_WORDS_PER_DAY" env-default:"50"`
}

// DeliveryConfig holds delivery tick settings.
type DeliveryConfig struct {
	TickInterval  time.Duration `yaml:"tick_interval"   env:"DELIVERY_TICK_INTERVAL"   env-default:"60s"`
	FirstRunDelay time.Duration `yaml:"first_run_delay" env:"DELIVERY_FIRST_RUN_DELAY" env-default:"10s"`
	Workers       int           `yaml:"workers"         env:"DELIVERY_WORKERS"         env-default:"8"`
}

// ResetConfig holds the daily quota reset schedule (standard 5-field cron).
type ResetConfig struct {
	Spec string `yaml:"spec" env:"RESET_SPEC" env-default:"0 0 * * *"`
}

// SchedulerConfig holds settings shared by all recurring jobs.
type SchedulerConfig struct {
	Timezone string `yaml:"timezone" env:"SCHEDULER_TIMEZONE" env-default:"Local"`

	// Location is resolved from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// ServerConfig holds the ops HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	// File, when set, receives a copy of every record in addition to stderr.
	File string `yaml:"file" env:"LOG_FILE"`
}
