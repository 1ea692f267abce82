package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.Telegram.AdminID < 0 {
		return fmt.Errorf("telegram.admin_id must be >= 0 (got %d)", c.Telegram.AdminID)
	}
	if c.Telegram.PollTimeout <= 0 || c.Telegram.RequestTimeout <= c.Telegram.PollTimeout {
		return fmt.Errorf("telegram.request_timeout (%s) must exceed telegram.poll_timeout (%s)",
			c.Telegram.RequestTimeout, c.Telegram.PollTimeout)
	}

	switch c.Storage.Driver {
	case StorageFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the file driver")
		}
	case StoragePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q (got %q)", StorageFile, StoragePostgres, c.Storage.Driver)
	}

	switch c.Session.Driver {
	case SessionMemory:
	case SessionRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis session driver")
		}
	default:
		return fmt.Errorf("session.driver must be %q or %q (got %q)", SessionMemory, SessionRedis, c.Session.Driver)
	}

	if err := c.Corpus.validate(); err != nil {
		return fmt.Errorf("corpus: %w", err)
	}
	if err := c.Translate.validate(); err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("quota.daily_limit must be > 0 (got %d)", c.Quota.DailyLimit)
	}
	if c.Registration.MaxWordsPerDay <= 0 {
		return fmt.Errorf("registration.max_words_per_day must be > 0 (got %d)", c.Registration.MaxWordsPerDay)
	}

	if c.Delivery.TickInterval <= 0 {
		return fmt.Errorf("delivery.tick_interval must be > 0 (got %s)", c.Delivery.TickInterval)
	}
	if c.Delivery.TickInterval > time.Minute {
		return fmt.Errorf("delivery.tick_interval must not exceed 1m or delivery minutes are skipped (got %s)", c.Delivery.TickInterval)
	}
	if c.Delivery.FirstRunDelay < 0 {
		return fmt.Errorf("delivery.first_run_delay must be >= 0 (got %s)", c.Delivery.FirstRunDelay)
	}
	if c.Delivery.Workers <= 0 {
		return fmt.Errorf("delivery.workers must be > 0 (got %d)", c.Delivery.Workers)
	}

	if _, err := cron.ParseStandard(c.Reset.Spec); err != nil {
		return fmt.Errorf("reset.spec %q: %w", c.Reset.Spec, err)
	}

	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("scheduler.timezone %q: %w", c.Scheduler.Timezone, err)
	}
	c.Scheduler.Location = loc

	return nil
}

func (c CorpusConfig) validate() error {
	if c.MinSize <= 0 {
		return fmt.Errorf("min_size must be > 0 (got %d)", c.MinSize)
	}
	if c.LowerBound <= 0 {
		return fmt.Errorf("lower_bound must be > 0 (got %d)", c.LowerBound)
	}
	if c.EnrichTimeout <= 0 {
		return fmt.Errorf("enrich_timeout must be > 0 (got %s)", c.EnrichTimeout)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("refill_interval must be > 0 (got %s)", c.RefillInterval)
	}
	if c.DictionaryURL == "" {
		return fmt.Errorf("dictionary_url is required")
	}
	return nil
}

func (c TranslateConfig) validate() error {
	switch c.Provider {
	case TranslateStatic:
	case TranslateOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai_api_key is required for the openai provider")
		}
	default:
		return fmt.Errorf("provider must be %q or %q (got %q)", TranslateStatic, TranslateOpenAI, c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", c.Timeout)
	}
	return nil
}
