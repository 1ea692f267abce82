package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123456:test-token")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

// chdirTemp switches into an empty temp dir for the duration of the test
// so that no stray config.yaml or .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	return dir
}

const validYAML = `
telegram:
  token: "123456:yaml-token"
  admin_id: 4242
  poll_timeout: "20s"
  request_timeout: "40s"

storage:
  driver: "postgres"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 4

session:
  driver: "redis"

redis:
  addr: "localhost:6379"
  db: 2

corpus:
  min_size: 120
  lower_bound: 30
  enrich_timeout: "3s"

translate:
  provider: "openai"
  openai_api_key: "sk-test"
  openai_model: "gpt-test"

quota:
  daily_limit: 25

delivery:
  tick_interval: "30s"
  workers: 2

reset:
  spec: "5 0 * * *"

scheduler:
  timezone: "Europe/Berlin"

log:
  level: "debug"
  format: "text"
`

func TestLoad_ValidYAML(t *testing.T) {
	chdirTemp(t)
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Telegram
	if cfg.Telegram.Token != "123456:yaml-token" {
		t.Errorf("telegram.token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 4242 {
		t.Errorf("telegram.admin_id = %d, want 4242", cfg.Telegram.AdminID)
	}
	if cfg.Telegram.PollTimeout != 20*time.Second {
		t.Errorf("telegram.poll_timeout = %v, want 20s", cfg.Telegram.PollTimeout)
	}

	// Storage
	if cfg.Storage.Driver != StoragePostgres {
		t.Errorf("storage.driver = %q", cfg.Storage.Driver)
	}
	if cfg.Database.MaxConns != 4 {
		t.Errorf("database.max_conns = %d, want 4", cfg.Database.MaxConns)
	}
	if cfg.Session.Driver != SessionRedis || cfg.Redis.DB != 2 {
		t.Errorf("session = %+v, redis = %+v", cfg.Session, cfg.Redis)
	}

	// Corpus
	if cfg.Corpus.MinSize != 120 || cfg.Corpus.LowerBound != 30 {
		t.Errorf("corpus = %+v", cfg.Corpus)
	}
	if cfg.Corpus.EnrichTimeout != 3*time.Second {
		t.Errorf("corpus.enrich_timeout = %v, want 3s", cfg.Corpus.EnrichTimeout)
	}
	if cfg.Corpus.RefillInterval != 30*time.Minute {
		t.Errorf("corpus.refill_interval = %v, want default 30m", cfg.Corpus.RefillInterval)
	}

	// Translate
	if cfg.Translate.Provider != TranslateOpenAI || cfg.Translate.OpenAIModel != "gpt-test" {
		t.Errorf("translate = %+v", cfg.Translate)
	}

	// Quota, delivery, reset
	if cfg.Quota.DailyLimit != 25 {
		t.Errorf("quota.daily_limit = %d, want 25", cfg.Quota.DailyLimit)
	}
	if cfg.Delivery.TickInterval != 30*time.Second || cfg.Delivery.Workers != 2 {
		t.Errorf("delivery = %+v", cfg.Delivery)
	}
	if cfg.Reset.Spec != "5 0 * * *" {
		t.Errorf("reset.spec = %q", cfg.Reset.Spec)
	}

	// Scheduler
	if cfg.Scheduler.Location == nil || cfg.Scheduler.Location.String() != "Europe/Berlin" {
		t.Errorf("scheduler.location = %v", cfg.Scheduler.Location)
	}

	// Log
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	chdirTemp(t)
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))
	t.Setenv("QUOTA_DAILY_LIMIT", "7")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Quota.DailyLimit != 7 {
		t.Errorf("quota.daily_limit = %d, want 7 (ENV override)", cfg.Quota.DailyLimit)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")
	chdirTemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Storage.Driver != StorageFile || cfg.Storage.Dir != "." {
		t.Errorf("storage = %+v, want file driver in .", cfg.Storage)
	}
	if cfg.Corpus.MinSize != 200 || cfg.Corpus.LowerBound != 50 {
		t.Errorf("corpus = %+v, want 200/50 defaults", cfg.Corpus)
	}
	if cfg.Quota.DailyLimit != 50 {
		t.Errorf("quota.daily_limit = %d, want 50", cfg.Quota.DailyLimit)
	}
	if cfg.Delivery.TickInterval != time.Minute || cfg.Delivery.FirstRunDelay != 10*time.Second {
		t.Errorf("delivery = %+v", cfg.Delivery)
	}
	if cfg.Reset.Spec != "0 0 * * *" {
		t.Errorf("reset.spec = %q", cfg.Reset.Spec)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("BOT_TOKEN", "")
	os.Unsetenv("BOT_TOKEN")
	t.Setenv("ADMIN_ID", "99")
	dir := chdirTemp(t)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BOT_TOKEN=from-dotenv\nADMIN_ID=1\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.Token != "from-dotenv" {
		t.Errorf("telegram.token = %q, want value from .env", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 99 {
		t.Errorf("telegram.admin_id = %d, want 99 (.env must not override ENV)", cfg.Telegram.AdminID)
	}
}

func TestLoad_ExplicitDotEnvNotFound(t *testing.T) {
	validEnv(t)
	chdirTemp(t)
	t.Setenv("DOTENV_PATH", "/nonexistent/.env")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit dotenv path")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	chdirTemp(t)
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, `{{{invalid yaml`))

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

// validConfig returns a Config that passes Validate.
func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:          "123:abc",
			APIURL:         "https://api.telegram.org",
			PollTimeout:    30 * time.Second,
			RequestTimeout: 60 * time.Second,
		},
		Storage: StorageConfig{Driver: StorageFile, Dir: "."},
		Session: SessionConfig{Driver: SessionMemory},
		Corpus: CorpusConfig{
			MinSize:        200,
			LowerBound:     50,
			EnrichTimeout:  10 * time.Second,
			RefillInterval: 30 * time.Minute,
			DictionaryURL:  "https://api.dictionaryapi.dev/api/v2/entries/en",
		},
		Translate:    TranslateConfig{Provider: TranslateStatic, Timeout: 10 * time.Second},
		Quota:        QuotaConfig{DailyLimit: 50},
		Registration: RegistrationConfig{MaxWordsPerDay: 50},
		Delivery:     DeliveryConfig{TickInterval: time.Minute, FirstRunDelay: 10 * time.Second, Workers: 8},
		Reset:        ResetConfig{Spec: "0 0 * * *"},
		Scheduler:    SchedulerConfig{Timezone: "UTC"},
		Log:          LogConfig{Level: "info", Format: "json"},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scheduler.Location != time.UTC {
		t.Errorf("scheduler.location = %v, want UTC", cfg.Scheduler.Location)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantSub string
	}{
		{"empty token", func(c *Config) { c.Telegram.Token = " " }, "telegram.token"},
		{"negative admin", func(c *Config) { c.Telegram.AdminID = -1 }, "admin_id"},
		{"request timeout below poll", func(c *Config) { c.Telegram.RequestTimeout = 5 * time.Second }, "request_timeout"},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "sqlite" }, "storage.driver"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = StoragePostgres }, "database.dsn"},
		{"file without dir", func(c *Config) { c.Storage.Dir = "" }, "storage.dir"},
		{"unknown session", func(c *Config) { c.Session.Driver = "disk" }, "session.driver"},
		{"redis without addr", func(c *Config) { c.Session.Driver = SessionRedis }, "redis.addr"},
		{"zero min size", func(c *Config) { c.Corpus.MinSize = 0 }, "min_size"},
		{"zero lower bound", func(c *Config) { c.Corpus.LowerBound = 0 }, "lower_bound"},
		{"zero enrich timeout", func(c *Config) { c.Corpus.EnrichTimeout = 0 }, "enrich_timeout"},
		{"unknown translator", func(c *Config) { c.Translate.Provider = "deepl" }, "provider"},
		{"openai without key", func(c *Config) { c.Translate.Provider = TranslateOpenAI }, "openai_api_key"},
		{"zero quota", func(c *Config) { c.Quota.DailyLimit = 0 }, "daily_limit"},
		{"zero max words", func(c *Config) { c.Registration.MaxWordsPerDay = 0 }, "max_words_per_day"},
		{"zero tick", func(c *Config) { c.Delivery.TickInterval = 0 }, "tick_interval"},
		{"tick longer than a minute", func(c *Config) { c.Delivery.TickInterval = 2 * time.Minute }, "tick_interval"},
		{"zero workers", func(c *Config) { c.Delivery.Workers = 0 }, "workers"},
		{"bad reset spec", func(c *Config) { c.Reset.Spec = "every midnight" }, "reset.spec"},
		{"bad timezone", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}
