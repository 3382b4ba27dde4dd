package config

import (
	"github.com/spf13/viper"
)

// All settings come from the pod environment; defaults target the
// docker-compose stack with LocalStack.

type Config struct {
	DBHost            string `mapstructure:"DB_HOST"`
	DBPort            string `mapstructure:"DB_PORT"`
	DBUser            string `mapstructure:"DB_USER"`
	DBPassword        string `mapstructure:"DB_PASSWORD"`
	DBName            string `mapstructure:"DB_NAME"`
	DBMaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	ServerPort        string `mapstructure:"SERVER_PORT"`
	AWSRegion         string `mapstructure:"AWS_REGION"`
	AWSEndpoint       string `mapstructure:"AWS_ENDPOINT"`
	SyncSQSQueueURL   string `mapstructure:"SYNC_SQS_QUEUE_URL"`
	EmailSQSQueueURL  string `mapstructure:"EMAIL_SQS_QUEUE_URL"`
	LegacyAPIURL      string `mapstructure:"LEGACY_API_URL"`
	EmailSender       string `mapstructure:"EMAIL_SENDER"`
	EmailDomain       string `mapstructure:"EMAIL_RECIPIENT_DOMAIN"`
	OTelEndpoint      string `mapstructure:"OTEL_ENDPOINT"`
	WorkerConcurrency int    `mapstructure:"WORKER_CONCURRENCY"`
	IsLocalDev        bool   `mapstructure:"IS_LOCAL_DEV"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_HOST", "db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "timeclock_db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	v.SetDefault("SYNC_SQS_QUEUE_URL", "http://localstack:4566/000000000000/time-clock-sync-queue")
	v.SetDefault("EMAIL_SQS_QUEUE_URL", "http://localstack:4566/000000000000/time-clock-email-queue")
	v.SetDefault("LEGACY_API_URL", "http://localhost:8081/")
	v.SetDefault("EMAIL_SENDER", "no-reply@timeclock.local")
	v.SetDefault("EMAIL_RECIPIENT_DOMAIN", "timeclock.local")
	v.SetDefault("OTEL_ENDPOINT", "jaeger:4317")
	v.SetDefault("WORKER_CONCURRENCY", 5)
	v.SetDefault("IS_LOCAL_DEV", false)
}
