package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string

	// Allocation engine tuning. Zero values fall back to engine defaults.
	ScoreThreshold       float64
	ExecutionEpsilon     float64
	FeeRate              float64
	BatchSize            int
	BatchWorkers         int
	AutoAllocateInterval time.Duration
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = viper.GetString("DATABASE_URL")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	interval := viper.GetDuration("AUTO_ALLOCATE_INTERVAL")
	if interval == 0 && viper.GetString("AUTO_ALLOCATE_INTERVAL") == "" {
		interval = 10 * time.Minute
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),

		ScoreThreshold:       viper.GetFloat64("ALLOCATION_SCORE_THRESHOLD"),
		ExecutionEpsilon:     viper.GetFloat64("ALLOCATION_EXECUTION_EPSILON"),
		FeeRate:              viper.GetFloat64("ALLOCATION_FEE_RATE"),
		BatchSize:            viper.GetInt("ALLOCATION_BATCH_SIZE"),
		BatchWorkers:         viper.GetInt("ALLOCATION_BATCH_WORKERS"),
		AutoAllocateInterval: interval,
	}, nil
}
