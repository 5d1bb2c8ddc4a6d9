package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among envFilePath (searching parent
// directories), falling back to .env, then processes the environment.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	for _, path := range envFilePath {
		foundPath, err := findEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}
		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		return loadFromEnv()
	}

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found in current directory")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"services", cfg.Services,
		"broker", cfg.Broker.Type,
		"lock", cfg.Lock.Type,
		"db", maskValue(cfg.DB.Url),
		"redis", maskValue(cfg.Redis.URL),
		"kafka_brokers", cfg.Kafka.Brokers,
		"kafka_group_id", cfg.Kafka.GroupID,
		"salary_provider_url", cfg.SalaryProvider.URL,
		"max_advance_ratio", cfg.Eligibility.MaxAdvanceRatio,
		"fee_rate", cfg.Disbursement.FeeRate,
		"auth_jwt_expiry", cfg.Auth.Jwt.Expiry,
	)
	return &cfg, nil
}

func (a *App) validate() error {
	switch strings.ToLower(a.Broker.Type) {
	case "memory", "kafka", "redis":
	default:
		return fmt.Errorf("config: unknown broker type %q", a.Broker.Type)
	}
	switch strings.ToLower(a.Lock.Type) {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown lock type %q", a.Lock.Type)
	}
	if a.Eligibility.MaxAdvanceRatio <= 0 || a.Eligibility.MaxAdvanceRatio > 1 {
		return fmt.Errorf("config: max advance ratio must be in (0, 1], got %v", a.Eligibility.MaxAdvanceRatio)
	}
	if a.Disbursement.FeeRate < 0 {
		return fmt.Errorf("config: fee rate cannot be negative")
	}
	for _, s := range strings.Split(a.Services, ",") {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case ServiceUser, ServiceAdvance, ServiceDisbursement, ServiceRepayment:
		default:
			return fmt.Errorf("config: unknown service %q in APP_SERVICES", s)
		}
	}
	return nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
