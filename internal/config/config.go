package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	CacheEnabled      bool
	MatchesCacheTTL   time.Duration
	StandingsCacheTTL time.Duration

	UpstreamCategoryURL        string
	UpstreamLeagueName         string
	UpstreamSeasonPageTemplate string
	UpstreamSeasonSeedID       string
	UpstreamReferer            string
	UpstreamTimeout            time.Duration
	UpstreamRequestsPerSecond  float64
	UpstreamCircuitEnabled     bool
	UpstreamCircuitFailures    int
	UpstreamCircuitOpenFor     time.Duration
	SeasonTTL                  time.Duration

	MatchMinYield     int
	StandingsMinYield int
	RecentRounds      int
	FetchWorkers      int

	LeaguePages             map[string]string
	StandingsStaticFallback bool

	ProxyEnabled       bool
	ProxyAllowedHosts  []string
	ProxyDefaultHost   string
	ProxyRewriteDomain string
	ProxyTimeout       time.Duration

	CORSAllowedOrigins []string

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsDuration("READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := getEnvAsBool("CACHE_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	matchesCacheTTL, err := getEnvAsDuration("MATCHES_CACHE_TTL", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	standingsCacheTTL, err := getEnvAsDuration("STANDINGS_CACHE_TTL", 60*time.Second)
	if err != nil {
		return Config{}, err
	}

	upstreamTimeout, err := getEnvAsDuration("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	upstreamRPS, err := getEnvAsFloat("UPSTREAM_REQUESTS_PER_SECOND", 4)
	if err != nil {
		return Config{}, err
	}
	if upstreamRPS <= 0 {
		return Config{}, fmt.Errorf("UPSTREAM_REQUESTS_PER_SECOND must be > 0")
	}
	circuitEnabled, err := getEnvAsBool("UPSTREAM_CIRCUIT_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	circuitFailures, err := getEnvAsInt("UPSTREAM_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPSTREAM_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	circuitOpenFor, err := getEnvAsDuration("UPSTREAM_CIRCUIT_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	seasonTTL, err := getEnvAsDuration("SEASON_TTL", time.Minute)
	if err != nil {
		return Config{}, err
	}

	matchMinYield, err := getEnvAsInt("MATCH_MIN_YIELD", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_MIN_YIELD: %w", err)
	}
	standingsMinYield, err := getEnvAsInt("STANDINGS_MIN_YIELD", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse STANDINGS_MIN_YIELD: %w", err)
	}
	recentRounds, err := getEnvAsInt("RECENT_ROUNDS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECENT_ROUNDS: %w", err)
	}
	if recentRounds < 1 {
		return Config{}, fmt.Errorf("RECENT_ROUNDS must be >= 1")
	}
	fetchWorkers, err := getEnvAsInt("FETCH_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_WORKERS: %w", err)
	}
	if fetchWorkers < 1 {
		return Config{}, fmt.Errorf("FETCH_WORKERS must be >= 1")
	}

	leaguePages, err := parsePageMap(getEnv("LEAGUE_PAGES", defaultLeaguePages))
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUE_PAGES: %w", err)
	}
	staticFallback, err := getEnvAsBool("STANDINGS_STATIC_FALLBACK", true)
	if err != nil {
		return Config{}, err
	}

	proxyEnabled, err := getEnvAsBool("PROXY_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	proxyTimeout, err := getEnvAsDuration("PROXY_TIMEOUT", 20*time.Second)
	if err != nil {
		return Config{}, err
	}

	pprofEnabled, err := getEnvAsBool("PPROF_ENABLED", false)
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := getEnvAsBool("UPTRACE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := getEnvAsBool("PYROSCOPE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second)
	if err != nil {
		return Config{}, err
	}

	serviceName := getEnv("SERVICE_NAME", "vsport-elo")

	return Config{
		AppEnv:         appEnv,
		ServiceName:    serviceName,
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),

		CacheEnabled:      cacheEnabled,
		MatchesCacheTTL:   matchesCacheTTL,
		StandingsCacheTTL: standingsCacheTTL,

		UpstreamCategoryURL:        getEnv("UPSTREAM_CATEGORY_URL", "https://s5.sir.sportradar.com/scigamingvirtuals/hu/1/category/1549"),
		UpstreamLeagueName:         getEnv("UPSTREAM_LEAGUE_NAME", "Virtual Football League"),
		UpstreamSeasonPageTemplate: getEnv("UPSTREAM_SEASON_PAGE_TEMPLATE", "https://s5.sir.sportradar.com/scigamingvirtuals/hu/1/season/%s"),
		UpstreamSeasonSeedID:       getEnv("UPSTREAM_SEASON_SEED_ID", ""),
		UpstreamReferer:            getEnv("UPSTREAM_REFERER", "https://s5.sir.sportradar.com/"),
		UpstreamTimeout:            upstreamTimeout,
		UpstreamRequestsPerSecond:  upstreamRPS,
		UpstreamCircuitEnabled:     circuitEnabled,
		UpstreamCircuitFailures:    circuitFailures,
		UpstreamCircuitOpenFor:     circuitOpenFor,
		SeasonTTL:                  seasonTTL,

		MatchMinYield:     matchMinYield,
		StandingsMinYield: standingsMinYield,
		RecentRounds:      recentRounds,
		FetchWorkers:      fetchWorkers,

		LeaguePages:             leaguePages,
		StandingsStaticFallback: staticFallback,

		ProxyEnabled:       proxyEnabled,
		ProxyAllowedHosts:  splitCSV(getEnv("PROXY_ALLOWED_HOSTS", "schedulerzrh.aitcloud.de,vfscigaming.aitcloud.de")),
		ProxyDefaultHost:   getEnv("PROXY_DEFAULT_HOST", "schedulerzrh.aitcloud.de"),
		ProxyRewriteDomain: getEnv("PROXY_REWRITE_DOMAIN", "aitcloud.de"),
		ProxyTimeout:       proxyTimeout,

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		PprofEnabled: pprofEnabled,
		PprofAddr:    getEnv("PPROF_ADDR", "localhost:6060"),

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:     getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeUploadRate:    pyroscopeUploadRate,
	}, nil
}

const defaultLeaguePages = "premier=https://s5.sir.sportradar.com/scigamingvirtuals/hu/1/category/1549"

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
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

// parsePageMap reads "league=url" pairs separated by commas. An empty URL
// keeps the league listed while flagging it as under maintenance.
func parsePageMap(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		segments := strings.SplitN(item, "=", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid map item %q, expected league=url", item)
		}
		key := strings.TrimSpace(segments[0])
		if key == "" {
			return nil, fmt.Errorf("empty league key in item %q", item)
		}
		out[key] = strings.TrimSpace(segments[1])
	}
	return out, nil
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

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}

	return out, nil
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
