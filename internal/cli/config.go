package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/bakery/internal/paths"
	"github.com/mesh-intelligence/bakery/pkg/types"
)

// Config keys.
const (
	cfgKeyBackend         = "backend"
	cfgKeyDataDir         = "data_dir"
	cfgKeyDSN             = "dsn"
	cfgKeyMaxConns        = "pool.max_conns"
	cfgKeyAddr            = "addr"
	cfgKeyLogLevel        = "log_level"
	cfgKeyLogFormat       = "log_format"
	cfgKeyGinMode         = "gin_mode"
	cfgKeyAllowedOrigins  = "cors.allowed_origins"
	cfgKeyShutdownTimeout = "shutdown_timeout"
)

const (
	envPrefix  = "BAKERY"
	dotEnvFile = ".env"

	defaultAddr            = ":5555"
	defaultShutdownTimeout = 10 * time.Second
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend   string `yaml:"backend"`
	DataDir   string `yaml:"data_dir,omitempty"`
	DSN       string `yaml:"dsn,omitempty"`
	Addr      string `yaml:"addr"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func defaultConfigFile() configFile {
	return configFile{
		Backend:   types.BackendSQLite,
		Addr:      defaultAddr,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// newViper returns a viper instance with defaults and BAKERY_* environment
// overrides. Nested keys map to underscores: cors.allowed_origins is read
// from BAKERY_CORS_ALLOWED_ORIGINS.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyAddr, defaultAddr)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, "text")
	v.SetDefault(cfgKeyGinMode, "release")
	v.SetDefault(cfgKeyAllowedOrigins, []string{})
	v.SetDefault(cfgKeyShutdownTimeout, defaultShutdownTimeout)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig runs before every subcommand. It loads .env, resolves the
// config directory, writes a default config.yaml on first run, and reads it.
// Global flags override anything read.
func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	if err := loadDotEnv(dotEnvFile); err != nil {
		return err
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}
	// init writes its own config.yaml from the global flags.
	if cmd.Name() != "init" {
		if _, err := writeConfigIfMissing(paths.ConfigFile(configDir), defaultConfigFile()); err != nil {
			return sysError(fmt.Errorf("write default config: %w", err))
		}
	}

	v := newViper()
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if a.flags.backend != "" {
		v.Set(cfgKeyBackend, a.flags.backend)
	}
	if a.flags.dsn != "" {
		v.Set(cfgKeyDSN, a.flags.dsn)
	}

	a.configDir = configDir
	a.viper = v
	return nil
}

// loadDotEnv exports the variables in path that are not already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. It reports whether it wrote the file.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// storeConfig assembles and validates the store settings.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.viper.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg := types.Config{
		Backend:  a.viper.GetString(cfgKeyBackend),
		DataDir:  dataDir,
		DSN:      a.viper.GetString(cfgKeyDSN),
		MaxConns: a.viper.GetInt(cfgKeyMaxConns),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid store config: %w", err)
	}
	return cfg, nil
}
