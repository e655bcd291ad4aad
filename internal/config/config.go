// Package config содержит логику чтения конфигурации сервиса.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvProduction — значение ENVIRONMENT для боевого режима.
const EnvProduction = "production"

// ErrSecretRequired возвращается, если в боевом режиме не задан
// секрет подписи токенов. Молчаливого отката на известное значение
// по умолчанию нет намеренно.
var ErrSecretRequired = errors.New("TRANSFER_SECRET is required in production")

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress     string `env:"RUN_ADDRESS"`
	DatabaseURI    string `env:"DATABASE_URI"`
	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TransferSecret string `env:"TRANSFER_SECRET"`
	MiniAppURL     string `env:"MINIAPP_URL"`
	LogosBaseURL   string `env:"BANK_LOGOS_BASE_URL"`
	Environment    string `env:"ENVIRONMENT"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Секрет подписи передаётся только через окружение: в списке процессов
// ему не место.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envTelegramToken := cfg.TelegramToken
	envMiniAppURL := cfg.MiniAppURL
	envLogosBaseURL := cfg.LogosBaseURL
	envEnvironment := cfg.Environment

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.TelegramToken, "t", "", "telegram bot token")
	flag.StringVar(&cfg.MiniAppURL, "m", "https://t.me/potok_pay_bot/transfer", "mini app deep link base URL")
	flag.StringVar(&cfg.LogosBaseURL, "l", "https://potokpay.github.io/bank-logos/", "bank logos base URL")
	flag.StringVar(&cfg.Environment, "e", "development", "environment mode: development or production")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envTelegramToken != "" {
		cfg.TelegramToken = envTelegramToken
	}
	if envMiniAppURL != "" {
		cfg.MiniAppURL = envMiniAppURL
	}
	if envLogosBaseURL != "" {
		cfg.LogosBaseURL = envLogosBaseURL
	}
	if envEnvironment != "" {
		cfg.Environment = envEnvironment
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if cfg.Environment == EnvProduction && cfg.TransferSecret == "" {
		return nil, ErrSecretRequired
	}

	return cfg, nil
}
