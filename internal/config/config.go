// Package config loads the ground station's configuration from file and
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig names the deployment.
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig configures the operator HTTP endpoint.
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// LinkConfig configures the radio link.
type LinkConfig struct {
	// Addr is the TCP endpoint of the modem bridge.
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	// SendSpacing is the minimum delay between command transmissions on
	// the half-duplex link.
	SendSpacing time.Duration `mapstructure:"sendSpacing"`
	// BufferSize is the resynchronizer working buffer capacity in bytes.
	BufferSize int `mapstructure:"bufferSize"`
	// EventBacklog is the consumer event queue capacity.
	EventBacklog int `mapstructure:"eventBacklog"`
	// TeamID keys command strings and salvage scanning.
	TeamID uint16 `mapstructure:"teamId"`
	// DestAddr is the 16-bit link address commands are sent to.
	DestAddr uint16 `mapstructure:"destAddr"`
}

// TelemetryConfig configures the append-only telemetry log.
type TelemetryConfig struct {
	File string `mapstructure:"file"`
}

// LumberjackConfig configures log rotation.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig sets log level and output.
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig configures Prometheus exposure.
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// Config is the top-level configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Link      LinkConfig      `mapstructure:"link"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// Load reads configuration from a YAML/TOML/JSON file plus environment
// variables. An empty path falls back to the GS_CONFIG variable, then to
// configs/example.yaml; a missing file is fine, defaults and environment
// cover first runs.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("GS_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// Environment overrides: prefix GS_, dots become underscores.
	v.SetEnvPrefix("GS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if fmt.Sprintf("%T", err) != fmt.Sprintf("%T", notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "groundstation")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")

	v.SetDefault("link.addr", "127.0.0.1:7777")
	v.SetDefault("link.readTimeout", "100ms")
	v.SetDefault("link.writeTimeout", "1s")
	v.SetDefault("link.sendSpacing", "250ms")
	v.SetDefault("link.bufferSize", 4096)
	v.SetDefault("link.eventBacklog", 4096)
	v.SetDefault("link.teamId", 1047)
	v.SetDefault("link.destAddr", 0x0001)

	v.SetDefault("telemetry.file", "logs/telemetry.log")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/groundstation.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}
