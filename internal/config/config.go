package config

import "time"

type Config struct {
	Shopify     ShopifyConfig
	Reprice     RepriceConfig
	TelegramBot TelegramBotConfig
	Metrics     MetricsConfig
	Log         LogConfig
}

type ShopifyConfig struct {
	ShopDomain        string
	APIVer            string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	RetryMax          int
}

type RepriceConfig struct {
	PageSize    int
	MaxPages    int
	MetalOption int
	LogFile     string
	DryRun      bool
}

type TelegramBotConfig struct {
	ChatId string
	Token  string
}

type MetricsConfig struct {
	TextfilePath string
}

type LogConfig struct {
	Level string
}
