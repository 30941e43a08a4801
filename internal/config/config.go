package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory, without
// its extension.
const FileName = "openscore"

// DecoderConfig locates the external demo decoder and its scratch space.
type DecoderConfig struct {
	// Executable is demoinfogo_path joined with the binary name.
	Executable string
	TmpDir     string
	Timeout    time.Duration
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the result backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string
}

// InfluxConfig holds the InfluxDB v2 connection settings.
type InfluxConfig struct {
	Protocol string
	Host     string
	Port     string
	Token    string
	Org      string
	Bucket   string

	// BackupPath receives gzipped line protocol when the server is
	// unreachable.
	BackupPath string
}

// URL is the server address the client connects to.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// GraylogConfig configures the optional GELF log sink.
type GraylogConfig struct {
	Enabled bool
	Address string
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("tmp_dir", "./tmp")
	viper.SetDefault("demoinfogo_path", ".")
	viper.SetDefault("decoder.timeout", "0s")

	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./results")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "./openscore.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "openscore")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "openscore")
	viper.SetDefault("influx.bucket", "matches")
	viper.SetDefault("influx.backupPath", "./results/influx_backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "openscore")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads openscore.yaml from configDir and sets default values.
// Every key can be overridden with an OPENSCORE_ environment variable,
// dots replaced by underscores.
func Load(configDir string) error {
	SetDefaults()

	viper.SetEnvPrefix("OPENSCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetDecoderConfig returns the decoder invocation settings.
func GetDecoderConfig() DecoderConfig {
	return DecoderConfig{
		Executable: filepath.Join(viper.GetString("demoinfogo_path"), "demoinfogo"),
		TmpDir:     viper.GetString("tmp_dir"),
		Timeout:    viper.GetDuration("decoder.timeout"),
	}
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
		SSLMode:  viper.GetString("db.sslmode"),
	}
}

// GetInfluxConfig returns the InfluxDB connection settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),

		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetGraylogConfig returns the GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
