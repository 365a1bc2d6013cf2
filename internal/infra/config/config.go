package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"homework_status_bot/internal/domain/homework"

	"github.com/joho/godotenv"
)

const (
	defaultEndpoint         = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	defaultPollInterval     = 10 * time.Minute
	defaultHTTPTimeout      = 30 * time.Second
	defaultLogFile          = "main.log"
	defaultJournalRetention = 30 * 24 * time.Hour
	defaultCronSpecPurge    = "0 3 * * *" // 03:00 daily

	epochNow = "now"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	PracticumToken       string
	PracticumEndpoint    string
	TelegramToken        string
	TelegramChatID       int64
	PollInterval         time.Duration
	PollEpoch            homework.Cursor
	HTTPTimeout          time.Duration
	LogLevel             string
	Environment          string
	LogFile              string // empty when file logging is disabled
	DatabaseURL          string // optional, enables the poll journal
	JournalRetention     time.Duration
	CronSpecJournalPurge string
}

// Load reads configuration from environment variables and .env file (if present).
// Missing credentials yield an error of kind homework.KindMissingCredentials.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()
	return loadAt(time.Now())
}

func loadAt(startedAt time.Time) (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.PracticumToken = os.Getenv("PRACTICUM_TOKEN")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")

	var missing []string
	for _, v := range []struct{ name, value string }{
		{"PRACTICUM_TOKEN", cfg.PracticumToken},
		{"TELEGRAM_TOKEN", cfg.TelegramToken},
		{"TELEGRAM_CHAT_ID", chatIDStr},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, homework.Errorf(homework.KindMissingCredentials, "required variables are not set: %s", strings.Join(missing, ", "))
	}

	cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}

	cfg.PracticumEndpoint = os.Getenv("PRACTICUM_ENDPOINT")
	if cfg.PracticumEndpoint == "" {
		cfg.PracticumEndpoint = defaultEndpoint
	}

	if cfg.PollInterval, err = durationEnv("POLL_INTERVAL", defaultPollInterval); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = durationEnv("HTTP_TIMEOUT", defaultHTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.JournalRetention, err = durationEnv("JOURNAL_RETENTION", defaultJournalRetention); err != nil {
		return nil, err
	}

	cfg.PollEpoch, err = parseEpoch(os.Getenv("POLL_EPOCH"), startedAt)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.LogFile = os.Getenv("LOG_FILE")
	switch cfg.LogFile {
	case "":
		cfg.LogFile = defaultLogFile
	case "-":
		cfg.LogFile = ""
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.CronSpecJournalPurge = os.Getenv("CRON_SPEC_JOURNAL_PURGE")
	if cfg.CronSpecJournalPurge == "" {
		cfg.CronSpecJournalPurge = defaultCronSpecPurge
	}

	return cfg, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %s", name, raw)
	}
	return d, nil
}

// parseEpoch resolves the first poll cursor: "now" (the default) or a unix timestamp.
func parseEpoch(raw string, startedAt time.Time) (homework.Cursor, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == epochNow {
		return homework.Cursor(startedAt.Unix()), nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid POLL_EPOCH: %w", err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid POLL_EPOCH: must not be negative, got %d", v)
	}
	return homework.Cursor(v), nil
}
