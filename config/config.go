package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		BaseURL  string `envconfig:"BASE_URL"`
		Timezone string `envconfig:"TIMEZONE"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Booking struct {
		HoldTTLMinutes         int `envconfig:"HOLD_TTL_MINUTES"`
		CancelDeadlineHours    int `envconfig:"CANCEL_DEADLINE_HOURS"`
		ProviderTimeoutSeconds int `envconfig:"PROVIDER_TIMEOUT_SECONDS"`
		Availability           struct {
			CacheTTLSeconds int `envconfig:"CACHE_TTL_SECONDS"`
			CacheSize       int `envconfig:"CACHE_SIZE"`
			BusyBufferMin   int `envconfig:"BUSY_BUFFER_MIN"`
		} `envconfig:"AVAILABILITY"`
	} `envconfig:"BOOKING"`

	Webhook struct {
		MaxAttempts         int    `envconfig:"MAX_ATTEMPTS"`
		PollIntervalSeconds int    `envconfig:"POLL_INTERVAL_SECONDS"`
		MaxBackoffSeconds   int    `envconfig:"MAX_BACKOFF_SECONDS"`
		NotificationURL     string `envconfig:"NOTIFICATION_URL"`
		ClientState         string `envconfig:"CLIENT_STATE"`
		Archive             struct {
			Enable    bool   `envconfig:"ENABLE"`
			Bucket    string `envconfig:"BUCKET"`
			Directory string `envconfig:"DIRECTORY"`
		} `envconfig:"ARCHIVE"`
		Recovery struct {
			IntervalSeconds   int `envconfig:"INTERVAL_SECONDS"`
			StaleAfterSeconds int `envconfig:"STALE_AFTER_SECONDS"`
			BatchSize         int `envconfig:"BATCH_SIZE"`
		} `envconfig:"RECOVERY"`
	} `envconfig:"WEBHOOK"`

	Worker struct {
		ExpiryIntervalSeconds       int `envconfig:"EXPIRY_INTERVAL_SECONDS"`
		SubscriptionIntervalSeconds int `envconfig:"SUBSCRIPTION_INTERVAL_SECONDS"`
		SubscriptionDurationHours   int `envconfig:"SUBSCRIPTION_DURATION_HOURS"`
		RenewalThresholdMinutes     int `envconfig:"RENEWAL_THRESHOLD_MINUTES"`
		LockTTLSeconds              int `envconfig:"LOCK_TTL_SECONDS"`
	} `envconfig:"WORKER"`

	Queue struct {
		Driver string `envconfig:"DRIVER"`
		Name   string `envconfig:"NAME"`
	} `envconfig:"QUEUE"`

	Kafka struct {
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
	} `envconfig:"KAFKA"`

	RabbitMQ struct {
		URL string `envconfig:"URL"`
	} `envconfig:"RABBITMQ"`

	Token struct {
		Secret   string `envconfig:"SECRET"`
		Issuer   string `envconfig:"ISSUER"`
		Audience string `envconfig:"AUDIENCE"`
	} `envconfig:"TOKEN"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL"`
	} `envconfig:"CACHE"`

	DB struct {
		Postgres struct {
			MaxRetry       int    `envconfig:"MAX_RETRY"`
			RetryWaitTime  int    `envconfig:"RETRY_WAIT_TIME"`
			MigrationTable string `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool   `envconfig:"AUTO_MIGRATE"`
			Prefix         string `envconfig:"PREFIX"`
			Read           struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE"`
			} `envconfig:"READ"`
			Write struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE"`
			} `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Metrics struct {
		Namespace string `envconfig:"NAMESPACE"`
	} `envconfig:"METRICS"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		Graph struct {
			BaseURL       string `envconfig:"BASE_URL"`
			AccessToken   string `envconfig:"ACCESS_TOKEN"`
			SharedMailbox string `envconfig:"SHARED_MAILBOX"`
			Mock          bool   `envconfig:"MOCK"`
		} `envconfig:"GRAPH"`
		Zoom struct {
			BaseURL     string `envconfig:"BASE_URL"`
			AccessToken string `envconfig:"ACCESS_TOKEN"`
			Mock        bool   `envconfig:"MOCK"`
		} `envconfig:"ZOOM"`
		S3 struct {
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
			Region          string `envconfig:"REGION"`
		} `envconfig:"S3"`
	} `envconfig:"EXTERNAL"`
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

func Init() error {
	var err error

	once.Do(func() {
		err = godotenv.Load(".env")
		if err != nil {
			log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
		} else {
			log.Info().Msg("Successfully loaded variables from .env file into environment")
		}

		err = envconfig.Process("", &conf)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to process environment variables")
		}

		initialized = true

		log.Info().Msg("Service configuration initialized successfully")
	})

	if err != nil {
		return fmt.Errorf("loading .env file: %w", err)
	}

	return nil
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize configuration")
		}
	}

	return &conf
}
