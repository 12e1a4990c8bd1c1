package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Database drivers accepted in DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env      string
	HTTPPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	SQLitePath string

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxAgeDays int
	LogMaxBackups int

	FeePolicyFile string
	MaxFeeBps     int64
	FeeAccount    string
	Operators     []string
	Attesters     []string

	AutoReleaseSchedule string
	ExpirySchedule      string
	EventRelaySchedule  string
	JobBatchSize        int
}

// LoadConfig reads the configuration through getenv, applying defaults for
// everything optional.
func LoadConfig(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	var errs []error
	integer := func(key string, fallback int64) int64 {
		raw := env(key, "")
		if raw == "" {
			return fallback
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return v
	}

	cfg := Config{
		Env:      env("APP_ENV", "dev"),
		HTTPPort: env("HTTP_PORT", "8080"),

		DBDriver:   strings.ToLower(env("DB_DRIVER", DriverPostgres)),
		DBHost:     env("DB_HOST", "localhost"),
		DBPort:     env("DB_PORT", "5432"),
		DBUser:     env("DB_USER", ""),
		DBPassword: env("DB_PASSWORD", ""),
		DBName:     env("DB_NAME", "escrow"),
		DBSslMode:  env("DB_SSLMODE", "disable"),
		SQLitePath: env("SQLITE_PATH", "escrow.db"),

		LogLevel:      env("LOG_LEVEL", "info"),
		LogFile:       env("LOG_FILE", ""),
		LogMaxSizeMB:  int(integer("LOG_MAX_SIZE_MB", 100)),
		LogMaxAgeDays: int(integer("LOG_MAX_AGE_DAYS", 14)),
		LogMaxBackups: int(integer("LOG_MAX_BACKUPS", 5)),

		FeePolicyFile: env("FEE_POLICY_FILE", ""),
		MaxFeeBps:     integer("MAX_FEE_BPS", 500),
		FeeAccount:    env("FEE_ACCOUNT", "fees:escrow"),
		Operators:     list(env("LEDGER_OPERATORS", "")),
		Attesters:     list(env("ORACLE_ATTESTERS", "")),

		AutoReleaseSchedule: env("AUTO_RELEASE_SCHEDULE", "*/10 * * * * *"),
		ExpirySchedule:      env("EXPIRY_SCHEDULE", "*/30 * * * * *"),
		EventRelaySchedule:  env("EVENT_RELAY_SCHEDULE", "*/5 * * * * *"),
		JobBatchSize:        int(integer("JOB_BATCH_SIZE", 100)),
	}

	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver))
	}
	if cfg.DBDriver == DriverPostgres && cfg.DBUser == "" {
		errs = append(errs, errors.New("DB_USER: required for postgres"))
	}
	if cfg.JobBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("JOB_BATCH_SIZE: must be positive, got %d", cfg.JobBatchSize))
	}
	return cfg, errors.Join(errs...)
}

// PostgresDSN renders the connection URL used by both gorm and the NOTIFY listener.
func (c Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSslMode}}.Encode(),
	}
	return u.String()
}

func list(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
