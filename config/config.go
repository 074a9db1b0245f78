package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	BaseURL string

	SecretKey string

	// Either DatabaseURI or the discrete DB_* values are used.
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	SessionTTL              time.Duration
	ResetTokenTTL           time.Duration
	CreateProfileOnRegister bool

	// Redis Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Kafka Config
	KafkaBrokers           []string
	KafkaNotificationTopic string

	// Mail Config
	MailServer        string
	MailPort          string
	MailUseTLS        bool
	MailUsername      string
	MailPassword      string
	MailDefaultSender string

	// Uploads
	UploadDir        string
	MaxContentLength int64

	RateLimitPerMinute int64
	AllowedOrigins     []string
	// TrustedProxies may set X-Forwarded-For; empty trusts none.
	TrustedProxies []string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		log.Println("⚠️ SECRET_KEY not set, using development key")
		secret = "this_is_my_secret_key"
	}

	return &Config{
		Port:    getenv("PORT", "8080"),
		BaseURL: strings.TrimSuffix(getenv("BASE_URL", "http://localhost:8080"), "/"),

		SecretKey: secret,

		DatabaseURI: os.Getenv("DATABASE_URI"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getenv("DB_NAME", "event_management"),

		SessionTTL:              time.Duration(getint("SESSION_TTL_HOURS", 24)) * time.Hour,
		ResetTokenTTL:           time.Duration(getint("RESET_TOKEN_TTL_MINUTES", 30)) * time.Minute,
		CreateProfileOnRegister: getbool("CREATE_PROFILE_ON_REGISTER", true),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       int(getint("REDIS_DB", 0)),

		KafkaBrokers:           splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaNotificationTopic: getenv("KAFKA_NOTIFICATION_TOPIC", "event-notifications"),

		MailServer:        getenv("MAIL_SERVER", "smtp.gmail.com"),
		MailPort:          getenv("MAIL_PORT", "587"),
		MailUseTLS:        getbool("MAIL_USE_TLS", true),
		MailUsername:      os.Getenv("MAIL_USERNAME"),
		MailPassword:      os.Getenv("MAIL_PASSWORD"),
		MailDefaultSender: os.Getenv("MAIL_DEFAULT_SENDER"),

		UploadDir:        getenv("UPLOAD_DIR", "./uploads"),
		MaxContentLength: getint("MAX_CONTENT_LENGTH", 16<<20),

		RateLimitPerMinute: getint("RATE_LIMIT_PER_MINUTE", 20),
		AllowedOrigins:     splitList(getenv("ALLOWED_ORIGINS", "http://localhost:8080")),
		TrustedProxies:     splitList(os.Getenv("TRUSTED_PROXIES")),
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getint(k string, def int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(k), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func getbool(k string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
