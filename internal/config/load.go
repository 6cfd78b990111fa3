package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIVersion        = "2025-01"
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 2
	defaultRetryMax          = 5
	defaultPageSize          = 50
	defaultMetalOption       = 3
	defaultLogFile           = "price_update_log.txt"

	// Shopify caps connection page sizes at 250.
	maxPageSize = 250
)

// LoadForRepricing reads the repricing job configuration from the environment.
// A .env file in the working directory is loaded first when present.
func LoadForRepricing() (*Config, error) {
	_ = godotenv.Load()
	return loadFromEnv()
}

func loadFromEnv() (*Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	shopDomain, err := requriedString("SHOPIFY_STORE")
	collect(err)
	token, err := firstRequiredString("ACCESS_TOKEN", "SHOPIFY_ACCESS_TOKEN")
	collect(err)
	timeout, err := durationWithDefault("SHOPIFY_TIMEOUT", defaultTimeout)
	collect(err)
	rps, err := floatWithDefault("SHOPIFY_REQUESTS_PER_SECOND", defaultRequestsPerSecond)
	collect(err)
	retryMax, err := intWithDefault("SHOPIFY_RETRY_MAX", defaultRetryMax)
	collect(err)

	pageSize, err := intWithDefault("REPRICE_PAGE_SIZE", defaultPageSize)
	collect(err)
	maxPages, err := intWithDefault("REPRICE_MAX_PAGES", 0)
	collect(err)
	metalOption, err := intWithDefault("REPRICE_METAL_OPTION", defaultMetalOption)
	collect(err)
	dryRun, err := boolWithDefault("REPRICE_DRY_RUN", false)
	collect(err)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	cfg := &Config{
		Shopify: ShopifyConfig{
			ShopDomain:        shopDomain,
			APIVer:            stringWithDefault("SHOPIFY_API_VERSION", defaultAPIVersion),
			Token:             token,
			Timeout:           timeout,
			RequestsPerSecond: rps,
			RetryMax:          retryMax,
		},
		Reprice: RepriceConfig{
			PageSize:    pageSize,
			MaxPages:    maxPages,
			MetalOption: metalOption,
			LogFile:     stringWithDefault("REPRICE_LOG_FILE", defaultLogFile),
			DryRun:      dryRun,
		},
		TelegramBot: TelegramBotConfig{
			ChatId: stringWithDefault("TELEGRAM_CHAT_ID", ""),
			Token:  stringWithDefault("TELEGRAM_BOT_TOKEN", ""),
		},
		Metrics: MetricsConfig{
			TextfilePath: stringWithDefault("METRICS_TEXTFILE", ""),
		},
		Log: LogConfig{
			Level: stringWithDefault("LOG_LEVEL", "info"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Shopify.Timeout <= 0 {
		return fmt.Errorf("SHOPIFY_TIMEOUT must be positive, got %s", c.Shopify.Timeout)
	}
	if c.Shopify.RequestsPerSecond <= 0 {
		return fmt.Errorf("SHOPIFY_REQUESTS_PER_SECOND must be positive, got %v", c.Shopify.RequestsPerSecond)
	}
	if c.Shopify.RetryMax < 0 {
		return fmt.Errorf("SHOPIFY_RETRY_MAX must not be negative, got %d", c.Shopify.RetryMax)
	}
	if c.Reprice.PageSize < 1 || c.Reprice.PageSize > maxPageSize {
		return fmt.Errorf("REPRICE_PAGE_SIZE must be between 1 and %d, got %d", maxPageSize, c.Reprice.PageSize)
	}
	if c.Reprice.MaxPages < 0 {
		return fmt.Errorf("REPRICE_MAX_PAGES must not be negative, got %d", c.Reprice.MaxPages)
	}
	if c.Reprice.MetalOption < 1 || c.Reprice.MetalOption > 3 {
		return fmt.Errorf("REPRICE_METAL_OPTION must be 1, 2 or 3, got %d", c.Reprice.MetalOption)
	}
	return nil
}
