package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	RedisURL     string

	AdminUsername string
	AdminPassword string
	BcryptCost    int

	MemberSessionTTL time.Duration
	AdminSessionTTL  time.Duration
	RequestTimeout   time.Duration
	StoreTimeout     time.Duration

	LogLevel  string
	LogFormat string
	EnvFile   string
}

const (
	defaultPort           = 3318
	defaultBcryptCost     = 10
	defaultMemberTTL      = 4 * time.Hour
	defaultAdminTTL       = 8 * time.Hour
	defaultRequestTimeout = 15 * time.Second
	defaultStoreTimeout   = 5 * time.Second
)

// ParseFlags reads flags, then fills anything left unset from the
// environment (optionally loaded from an env file), then applies defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	flags := flag.NewFlagSet("ballotbox", flag.ContinueOnError)

	// Network and storage
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (postgres or sqlite)")
	flags.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for shared sessions (optional)")

	// Bootstrap admin (prefer env)
	flags.StringVar(&cfg.AdminUsername, "admin-user", "", "Bootstrap admin username")
	flags.StringVar(&cfg.AdminPassword, "admin-password", "", "Bootstrap admin password (prefer env)")
	flags.IntVar(&cfg.BcryptCost, "bcrypt-cost", 0, "bcrypt cost for stored secrets")

	flags.DurationVar(&cfg.MemberSessionTTL, "member-ttl", 0, "Member session lifetime")
	flags.DurationVar(&cfg.AdminSessionTTL, "admin-ttl", 0, "Admin session lifetime")
	flags.DurationVar(&cfg.RequestTimeout, "request-timeout", 0, "Per-request timeout")
	flags.DurationVar(&cfg.StoreTimeout, "store-timeout", 0, "Per-query timeout")

	flags.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")
	flags.StringVar(&cfg.EnvFile, "env-file", ".env", "Env file to load; missing file is ignored")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.EnvFile != "" {
		// Load never overrides variables already present in the environment.
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", cfg.EnvFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	stringDefault(&cfg.DatabaseType, "DATABASE_TYPE", "postgres")
	stringDefault(&cfg.RedisURL, "REDIS_URL", "")
	stringDefault(&cfg.AdminUsername, "ADMIN_USERNAME", "")
	stringDefault(&cfg.AdminPassword, "ADMIN_PASSWORD", "")
	stringDefault(&cfg.LogLevel, "LOG_LEVEL", "info")
	stringDefault(&cfg.LogFormat, "LOG_FORMAT", "text")

	if (cfg.AdminUsername == "") != (cfg.AdminPassword == "") {
		return Config{}, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	if cfg.BcryptCost == 0 {
		if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
			cost, err := strconv.Atoi(costStr)
			if err != nil {
				return Config{}, errors.New("invalid BCRYPT_COST env variable")
			}
			cfg.BcryptCost = cost
		} else {
			cfg.BcryptCost = defaultBcryptCost
		}
	}

	durations := []struct {
		dst *time.Duration
		env string
		def time.Duration
	}{
		{&cfg.MemberSessionTTL, "MEMBER_SESSION_TTL", defaultMemberTTL},
		{&cfg.AdminSessionTTL, "ADMIN_SESSION_TTL", defaultAdminTTL},
		{&cfg.RequestTimeout, "REQUEST_TIMEOUT", defaultRequestTimeout},
		{&cfg.StoreTimeout, "STORE_TIMEOUT", defaultStoreTimeout},
	}
	for _, d := range durations {
		if err := durationDefault(d.dst, d.env, d.def); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func stringDefault(dst *string, env, def string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
		return
	}
	*dst = def
}

func durationDefault(dst *time.Duration, env string, def time.Duration) error {
	if *dst > 0 {
		return nil
	}
	if v := os.Getenv(env); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid %s env variable", env)
		}
		*dst = d
		return nil
	}
	*dst = def
	return nil
}
