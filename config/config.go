package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ridoystarlord/custompost/introspect"
	"github.com/ridoystarlord/custompost/utils"
)

// FileName is the config file looked up in the working directory.
const FileName = "custompost"

// Config is the resolved application configuration.
type Config struct {
	Database     DatabaseConfig     `mapstructure:"database"`
	Server       ServerConfig       `mapstructure:"server"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Provisioning ProvisioningConfig `mapstructure:"provisioning"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Log          LogConfig          `mapstructure:"log"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Root        string `mapstructure:"root"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

type ProvisioningConfig struct {
	Prefix string `mapstructure:"prefix"`
	Strict bool   `mapstructure:"strict"`
}

type AuthConfig struct {
	// Tokens are "token:username" entries accepted as bearer tokens.
	Tokens []string `mapstructure:"tokens"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("storage.root", "public")
	v.SetDefault("storage.max_upload_mb", 32)
	v.SetDefault("provisioning.prefix", introspect.DefaultPrefix)
	v.SetDefault("provisioning.strict", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Init prepares v: .env, defaults, the optional config file and CUSTOMPOST_*
// environment variables. Flags are bound by the caller.
func Init(v *viper.Viper, file string) error {
	utils.LoadEnv()
	SetDefaults(v)

	v.SetEnvPrefix("CUSTOMPOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || file != "" {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = utils.GetDatabaseURL()
	}
	if cfg.Provisioning.Prefix == "" {
		cfg.Provisioning.Prefix = introspect.DefaultPrefix
	}
	if cfg.Storage.MaxUploadMB <= 0 {
		cfg.Storage.MaxUploadMB = 32
	}
	return &cfg, nil
}

// MaxUploadBytes is the multipart memory/size limit for record requests.
func (c *Config) MaxUploadBytes() int64 {
	return c.Storage.MaxUploadMB << 20
}
