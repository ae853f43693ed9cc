package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/ground-setup/internal/platform/logging"
	"github.com/riskibarqy/ground-setup/internal/platform/resilience"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreSheets   = "sheets"
)

// Config stores runtime configuration for the service and the CLI.
type Config struct {
	AppEnv             string `validate:"oneof=dev stage prod"`
	ServiceName        string `validate:"required"`
	ServiceVersion     string
	HTTPAddr           string `validate:"required"`
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string `validate:"min=1"`
	LogLevel           logging.Level

	Store                   string `validate:"oneof=memory postgres sqlite sheets"`
	DBURL                   string `validate:"required_if=Store postgres"`
	DBDisablePreparedBinary bool
	SQLitePath              string `validate:"required_if=Store sqlite"`
	CacheEnabled            bool
	CacheTTL                time.Duration `validate:"gt=0"`

	SheetsSpreadsheetID   string `validate:"required_if=Store sheets"`
	SheetsCredentialsFile string
	SheetsContactFormulas bool
	FixturesSheet         string `validate:"required"`
	TeamsSheet            string `validate:"required"`

	HorizonDays     int    `validate:"gte=1"`
	ClubName        string `validate:"required"`
	ClubGrounds     []string
	WeekStartDay    time.Weekday
	TimeZone        string
	Location        *time.Location
	CollationLocale string

	DriblBaseURL     string        `validate:"required,url"`
	DriblSeason      string        `validate:"required"`
	DriblCompetition string        `validate:"required"`
	DriblClub        string        `validate:"required"`
	DriblTenant      string        `validate:"required"`
	DriblTimeout     time.Duration `validate:"gt=0"`
	DriblRateLimit   float64       `validate:"gte=0"`
	DriblCircuit     resilience.CircuitBreakerConfig

	InternalJobToken    string
	SyncInterval        time.Duration `validate:"gt=0"`
	SchedulerEnabled    bool
	QStashEnabled       bool
	QStashBaseURL       string
	QStashToken         string `validate:"required_if=QStashEnabled true"`
	QStashTargetBaseURL string `validate:"required_if=QStashEnabled true"`
	QStashCircuit       resilience.CircuitBreakerConfig

	MetricsEnabled             bool
	PprofEnabled               bool
	PprofAddr                  string `validate:"required_if=PprofEnabled true"`
	UptraceEnabled             bool
	UptraceDSN                 string `validate:"required_if=UptraceEnabled true"`
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string `validate:"required_if=PyroscopeEnabled true"`
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "ground-setup"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		Store:         strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreMemory))),
		DBURL:         strings.TrimSpace(getEnv("DB_URL", "")),
		SQLitePath:    strings.TrimSpace(getEnv("SQLITE_PATH", "ground-setup.db")),
		FixturesSheet: getEnv("FIXTURES_TABLE", "Fixtures"),
		TeamsSheet:    getEnv("TEAMS_TABLE", "Teams"),

		SheetsSpreadsheetID:   strings.TrimSpace(getEnv("SHEETS_SPREADSHEET_ID", "")),
		SheetsCredentialsFile: strings.TrimSpace(getEnv("SHEETS_CREDENTIALS_FILE", "")),

		ClubName:        getEnv("CLUB_NAME", "Oatley Football Club"),
		ClubGrounds:     splitCSV(getEnv("CLUB_GROUNDS", "Carinya School Fields,Renown Park,The Green")),
		TimeZone:        strings.TrimSpace(getEnv("CLUB_TIMEZONE", "Australia/Sydney")),
		CollationLocale: strings.TrimSpace(getEnv("COLLATION_LOCALE", "en")),

		DriblBaseURL:     strings.TrimSpace(getEnv("DRIBL_BASE_URL", "https://mc-api.dribl.com/api")),
		DriblSeason:      strings.TrimSpace(getEnv("DRIBL_SEASON", "3pmvvPRmvJ")),
		DriblCompetition: strings.TrimSpace(getEnv("DRIBL_COMPETITION", "3pmvZw6mvJ")),
		DriblClub:        strings.TrimSpace(getEnv("DRIBL_CLUB", "wxNx5LOKkp")),
		DriblTenant:      strings.TrimSpace(getEnv("DRIBL_TENANT", "b6lNb6NxE2")),

		InternalJobToken:    strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		QStashBaseURL:       strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io")),
		QStashToken:         strings.TrimSpace(getEnv("QSTASH_TOKEN", "")),
		QStashTargetBaseURL: strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", "")),

		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		UptraceDSN:                 strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if cfg.HorizonDays, err = getEnvAsInt("DATE_LIMIT_DAYS", 31); err != nil {
		return Config{}, fmt.Errorf("parse DATE_LIMIT_DAYS: %w", err)
	}
	if cfg.WeekStartDay, err = parseWeekday(getEnv("WEEK_START_DAY", "monday")); err != nil {
		return Config{}, fmt.Errorf("parse WEEK_START_DAY: %w", err)
	}
	if cfg.Location, err = time.LoadLocation(cfg.TimeZone); err != nil {
		return Config{}, fmt.Errorf("parse CLUB_TIMEZONE: %w", err)
	}

	durations := []struct {
		key      string
		fallback time.Duration
		target   *time.Duration
	}{
		{"APP_READ_TIMEOUT", 10 * time.Second, &cfg.ReadTimeout},
		{"APP_WRITE_TIMEOUT", 2 * time.Minute, &cfg.WriteTimeout},
		{"CACHE_TTL", time.Minute, &cfg.CacheTTL},
		{"DRIBL_TIMEOUT", 20 * time.Second, &cfg.DriblTimeout},
		{"SYNC_INTERVAL", 6 * time.Hour, &cfg.SyncInterval},
		{"PYROSCOPE_UPLOAD_RATE", 15 * time.Second, &cfg.PyroscopeUploadRate},
	}
	for _, d := range durations {
		if *d.target, err = getEnvAsDuration(d.key, d.fallback); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
	}

	flags := []struct {
		key      string
		fallback bool
		target   *bool
	}{
		{"DB_DISABLE_PREPARED_BINARY_RESULT", true, &cfg.DBDisablePreparedBinary},
		{"CACHE_ENABLED", true, &cfg.CacheEnabled},
		{"SHEETS_CONTACT_FORMULAS", true, &cfg.SheetsContactFormulas},
		{"SCHEDULER_ENABLED", false, &cfg.SchedulerEnabled},
		{"QSTASH_ENABLED", false, &cfg.QStashEnabled},
		{"METRICS_ENABLED", true, &cfg.MetricsEnabled},
		{"PPROF_ENABLED", false, &cfg.PprofEnabled},
		{"UPTRACE_ENABLED", false, &cfg.UptraceEnabled},
		{"PYROSCOPE_ENABLED", false, &cfg.PyroscopeEnabled},
	}
	for _, f := range flags {
		if *f.target, err = getEnvAsBool(f.key, f.fallback); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", f.key, err)
		}
	}

	if cfg.DriblRateLimit, err = strconv.ParseFloat(getEnv("DRIBL_RATE_LIMIT", "2"), 64); err != nil {
		return Config{}, fmt.Errorf("parse DRIBL_RATE_LIMIT: %w", err)
	}
	if cfg.DriblCircuit, err = loadCircuit("DRIBL"); err != nil {
		return Config{}, err
	}
	if cfg.QStashCircuit, err = loadCircuit("QSTASH"); err != nil {
		return Config{}, err
	}

	if len(cfg.ClubGrounds) == 0 {
		return Config{}, fmt.Errorf("CLUB_GROUNDS cannot be empty")
	}
	if cfg.QStashEnabled && cfg.InternalJobToken == "" {
		return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()

	enabled, err := getEnvAsBool(prefix+"_CIRCUIT_ENABLED", defaults.Enabled)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}
	failures, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", defaults.FailureThreshold)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if failures < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	openTimeout, err := getEnvAsDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", defaults.OpenTimeout)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_OPEN_TIMEOUT: %w", prefix, err)
	}

	return resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failures,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   defaults.HalfOpenMaxReq,
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// parseWeekday accepts an English day name or its number, 0 for Sunday.
func parseWeekday(v string) (time.Weekday, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday number %d out of range 0-6", n)
		}
		return time.Weekday(n), nil
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToLower(day.String())
		if value == name || value == name[:3] {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", v)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseBool(value)
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return d, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
