package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pstrings "memberlink/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	LogLevel    string
	Environment string

	// CORSAllowedOrigins lists origins allowed to call the sync endpoint from a browser.
	CORSAllowedOrigins []string

	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Directory   DirectoryConfig
	Mail        MailConfig
	Sync        SyncConfig
}

// RedisConfig configures the run lock backend. An empty URL selects the
// process-local lock.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit sink. Empty brokers keep audit events in memory.
type KafkaConfig struct {
	Brokers    string
	AuditTopic string
}

type DirectoryConfig struct {
	URL        string
	ServiceKey string
	// JWTSecret verifies bearer tokens issued by the directory.
	JWTSecret string
	PageSize  int
	MaxPages  int
	// MigrationSecretHash is the bcrypt hash of the bootstrap migration secret.
	MigrationSecretHash string
}

type MailConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Sender       string
	SendDelay    time.Duration
}

type SyncConfig struct {
	// Organization names the sender in email bodies.
	Organization      string
	SiteURL           string
	DefaultRosterPath string
	DefaultMemberRole string
	RunTimeout        time.Duration
}

var (
	DefaultRunTimeout = 25 * time.Second
	DefaultSendDelay  = 200 * time.Millisecond
)

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Addr:               getEnv("MEMBERLINK_ADDR", ":8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		CORSAllowedOrigins: pstrings.DedupeAndTrim(splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: getEnv("AUDIT_TOPIC", "memberlink.audit"),
		},
		Directory: DirectoryConfig{
			URL:                 strings.TrimRight(os.Getenv("DIRECTORY_URL"), "/"),
			ServiceKey:          os.Getenv("DIRECTORY_SERVICE_KEY"),
			JWTSecret:           os.Getenv("DIRECTORY_JWT_SECRET"),
			MigrationSecretHash: os.Getenv("MIGRATION_SECRET_HASH"),
		},
		Mail: MailConfig{
			TenantID:     os.Getenv("MAIL_TENANT_ID"),
			ClientID:     os.Getenv("MAIL_CLIENT_ID"),
			ClientSecret: os.Getenv("MAIL_CLIENT_SECRET"),
			Sender:       os.Getenv("MAIL_SENDER"),
		},
		Sync: SyncConfig{
			Organization:      getEnv("ORGANIZATION_NAME", "Member Portal"),
			SiteURL:           strings.TrimRight(os.Getenv("SITE_URL"), "/"),
			DefaultRosterPath: os.Getenv("DEFAULT_ROSTER_PATH"),
			DefaultMemberRole: getEnv("DEFAULT_MEMBER_ROLE", "official"),
		},
	}

	var err error
	if cfg.Directory.PageSize, err = intEnv("DIRECTORY_PAGE_SIZE", 1000); err != nil {
		return Server{}, err
	}
	if cfg.Directory.MaxPages, err = intEnv("DIRECTORY_MAX_PAGES", 100); err != nil {
		return Server{}, err
	}
	if cfg.Mail.SendDelay, err = durationEnv("MAIL_SEND_DELAY", DefaultSendDelay); err != nil {
		return Server{}, err
	}
	if cfg.Sync.RunTimeout, err = durationEnv("RUN_TIMEOUT", DefaultRunTimeout); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Server) Validate() error {
	if c.Directory.URL == "" {
		return fmt.Errorf("DIRECTORY_URL is required")
	}
	if c.Directory.ServiceKey == "" {
		return fmt.Errorf("DIRECTORY_SERVICE_KEY is required")
	}
	if c.Directory.JWTSecret == "" && c.Directory.MigrationSecretHash == "" {
		return fmt.Errorf("DIRECTORY_JWT_SECRET or MIGRATION_SECRET_HASH is required")
	}
	return nil
}

func (c Server) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}
