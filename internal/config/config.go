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
		Port int `mapstructure:"port"` // REST API port
	} `mapstructure:"server"`
	Health struct {
		Port int `mapstructure:"port"` // health/readiness (and /metrics) port
	} `mapstructure:"health"`
	NATS NATSConfig `mapstructure:"nats"`
	Database struct {
		SQLitePath    string `mapstructure:"sqlitePath"`
		SchemaVersion int    `mapstructure:"schemaVersion"`
	} `mapstructure:"database"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
	WorkerPools struct {
		Send SendWorkerPoolConfig `mapstructure:"send"`
	} `mapstructure:"workerPools"`
}

// NATSConfig holds the bus connection settings and the subjects the service
// consumes and publishes.
type NATSConfig struct {
	URL              string `mapstructure:"url"`
	InboundSubject   string `mapstructure:"inboundSubject"`   // radio delivery events
	SendSubject      string `mapstructure:"sendSubject"`      // outbound send commands
	QueueGroup       string `mapstructure:"queueGroup"`       // queue group for the consumers
	NotifyReceived   string `mapstructure:"notifyReceived"`   // new-message notification subject
	NotifyNewContact string `mapstructure:"notifyNewContact"` // unknown-contact notification subject
}

// SendWorkerPoolConfig holds configuration for the outbound send worker pool
type SendWorkerPoolConfig struct {
	PoolSize   int           `mapstructure:"poolSize"`   // Number of workers
	QueueSize  int           `mapstructure:"queueSize"`  // Task queue buffer size
	ExpiryTime time.Duration `mapstructure:"expiryTime"` // Idle worker expiry time
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("environment", "development")
	v.SetDefault("logLevel", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("health.port", 8081)
	v.SetDefault("metrics.enabled", true)

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.inboundSubject", "v1.sms.inbound")
	v.SetDefault("nats.sendSubject", "v1.sms.send")
	v.SetDefault("nats.queueGroup", "sms-contact-service")
	v.SetDefault("nats.notifyReceived", "v1.notify.sms.received")
	v.SetDefault("nats.notifyNewContact", "v1.notify.contact.new")

	v.SetDefault("database.sqlitePath", "contacts.db")
	v.SetDefault("database.schemaVersion", 2)

	// WorkerPools defaults
	v.SetDefault("workerPools.send.poolSize", 4)
	v.SetDefault("workerPools.send.queueSize", 256)
	v.SetDefault("workerPools.send.expiryTime", time.Minute)

	// Config file settings
	v.SetConfigName("default")
	v.SetConfigType("yaml")

	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("/etc/sms-contact-service")

	if err := v.ReadInConfig(); err != nil {
		// It's ok if config file is not found, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvs(v, Config{})

	// Read directly from ENV for critical values
	if dbPath := os.Getenv("SQLITE_PATH"); dbPath != "" {
		v.Set("database.sqlitePath", dbPath)
	}
	if lgLevel := os.Getenv("LOG_LEVEL"); lgLevel != "" {
		v.Set("logLevel", lgLevel)
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		v.Set("nats.url", url)
	}

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

		tag := fieldType.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		path := append(parts, tag)
		key := strings.Join(path, ".")

		if fieldType.Type.Kind() == reflect.Struct {
			bindEnvs(v, fieldVal.Interface(), path...)
			continue
		}

		_ = v.BindEnv(key)
	}
}
