package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"logLevel"`
	Server      struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	NATS struct {
		URL      string             `mapstructure:"url"`
		Realtime ConsumerNatsConfig `mapstructure:"realtime"`
	} `mapstructure:"nats"`
	Database struct {
		PostgresDSN         string `mapstructure:"postgresDSN"`
		PostgresAutoMigrate bool   `mapstructure:"postgresAutoMigrate"`
	} `mapstructure:"database"`
	Prefs struct {
		BadgerPath string `mapstructure:"badgerPath"`
	} `mapstructure:"prefs"`
	Company struct {
		Default string `mapstructure:"default"`
		ID      string `mapstructure:"id"`
	} `mapstructure:"company"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Zapi struct {
		BaseURL     string        `mapstructure:"baseURL"`
		InstanceID  string        `mapstructure:"instanceID"`
		Token       string        `mapstructure:"token"`
		ClientToken string        `mapstructure:"clientToken"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"zapi"`
	Broadcast BroadcastWorkerPoolConfig `mapstructure:"broadcast"`
	Calendar  struct {
		CredentialsFile string `mapstructure:"credentialsFile"`
		CalendarID      string `mapstructure:"calendarID"`
	} `mapstructure:"calendar"`
	AI struct {
		BaseURL string        `mapstructure:"baseURL"`
		APIKey  string        `mapstructure:"apiKey"`
		Model   string        `mapstructure:"model"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"ai"`
}

// BroadcastWorkerPoolConfig holds configuration for the broadcast worker pool.
// The pool stays at size 1 so campaign messages go out one at a time.
type BroadcastWorkerPoolConfig struct {
	PoolSize     int           `mapstructure:"poolSize"`
	QueueSize    int           `mapstructure:"queueSize"`
	MessageDelay time.Duration `mapstructure:"messageDelay"` // pause between consecutive sends
	MaxBlock     time.Duration `mapstructure:"maxBlock"`     // Max time to block when submitting if queue full
	ExpiryTime   time.Duration `mapstructure:"expiryTime"`   // Idle worker expiry time
}

// ConsumerNatsConfig holds configuration specific to a NATS consumer
type ConsumerNatsConfig struct {
	MaxAge       int64         `mapstructure:"maxAge"` // max age of messages in day
	Stream       string        `mapstructure:"stream"`
	Consumer     string        `mapstructure:"consumer"` // durable name
	QueueGroup   string        `mapstructure:"group"`
	SubjectList  []string      `mapstructure:"subjectList"`
	MaxDeliver   int           `mapstructure:"maxDeliver"`
	NakBaseDelay time.Duration `mapstructure:"nakBaseDelay"` // Base delay for exponential backoff NAK
	NakMaxDelay  time.Duration `mapstructure:"nakMaxDelay"`  // Maximum delay for exponential backoff NAK
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (*Config, error) {
	// Create new viper instance
	v := viper.New()

	// Set defaults
	v.SetDefault("environment", "development")
	v.SetDefault("logLevel", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 2112)
	v.SetDefault("database.postgresAutoMigrate", true)
	v.SetDefault("prefs.badgerPath", "./data/prefs")

	// Realtime webhook consumer defaults
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.realtime.stream", "webhook_events_stream")
	v.SetDefault("nats.realtime.consumer", "webhook_events_consumer")
	v.SetDefault("nats.realtime.group", "webhook_events_group")
	v.SetDefault("nats.realtime.subjectList", []string{"v1.webhook.messages", "v1.webhook.leads"})
	v.SetDefault("nats.realtime.maxAge", 30)
	v.SetDefault("nats.realtime.maxDeliver", 5)
	v.SetDefault("nats.realtime.nakBaseDelay", time.Second)
	v.SetDefault("nats.realtime.nakMaxDelay", 30*time.Second)

	// Broadcast defaults
	v.SetDefault("broadcast.poolSize", 1)
	v.SetDefault("broadcast.queueSize", 1000)
	v.SetDefault("broadcast.messageDelay", 5*time.Second)
	v.SetDefault("broadcast.maxBlock", time.Second)
	v.SetDefault("broadcast.expiryTime", time.Minute)

	// Z-API defaults
	v.SetDefault("zapi.baseURL", "https://api.z-api.io")
	v.SetDefault("zapi.timeout", 15*time.Second)

	// AI defaults
	v.SetDefault("ai.baseURL", "https://generativelanguage.googleapis.com")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 30*time.Second)

	// Config file settings
	v.SetConfigName("default") // name of config file (without extension)
	v.SetConfigType("yaml")    // REQUIRED if the config file does not have the extension in the name

	// Add lookup paths
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("$HOME/.nocagestor")
	v.AddConfigPath("/etc/nocagestor")

	// Try to read from config file
	if err := v.ReadInConfig(); err != nil {
		// It's ok if config file is not found, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map environment variables to config fields
	bindEnvs(v, Config{})

	// Read directly from ENV for critical values
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		v.Set("database.postgresDSN", dsn)
	}
	if lgLevel := os.Getenv("LOG_LEVEL"); lgLevel != "" {
		v.Set("logLevel", lgLevel)
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		v.Set("nats.url", url)
	}
	if company := os.Getenv("COMPANY_ID"); company != "" {
		v.Set("company.id", company)
	}
	if token := os.Getenv("ZAPI_TOKEN"); token != "" {
		v.Set("zapi.token", token)
	}
	if key := os.Getenv("AI_API_KEY"); key != "" {
		v.Set("ai.apiKey", key)
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &config, nil
}

// bindEnvs recursively binds environment variables to config struct fields
func bindEnvs(v *viper.Viper, cfg interface{}, parts ...string) {
	ifv := reflect.ValueOf(cfg)
	ift := reflect.TypeOf(cfg)
	for i := 0; i < ift.NumField(); i++ {
		fieldVal := ifv.Field(i)
		fieldType := ift.Field(i)

		// Get the field tag value (mapstructure)
		tag := fieldType.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		// Build the env var path
		path := append(parts, tag)
		key := strings.Join(path, ".")

		// If it's a struct, recursively bind its fields
		if fieldType.Type.Kind() == reflect.Struct {
			bindEnvs(v, fieldVal.Interface(), path...)
			continue
		}

		// Bind the env var
		_ = v.BindEnv(key)
	}
}
