package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/spf13/viper"
)

const (
	xdgAppName = "baronboard"
	configName = "config"
	configType = "yaml"
	envPrefix  = "BARONBOARD"
)

type Config struct {
	Input       string `mapstructure:"input" yaml:"input" json:"input"`
	Sheet       string `mapstructure:"sheet" yaml:"sheet" json:"sheet"`
	HeaderRow   int    `mapstructure:"header_row" yaml:"header_row" json:"header_row"`
	Locale      string `mapstructure:"locale" yaml:"locale" json:"locale"`
	Listen      string `mapstructure:"listen" yaml:"listen" json:"listen"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	CacheSize   int    `mapstructure:"cache_size" yaml:"cache_size" json:"cache_size"`
	Calendar    string `mapstructure:"calendar" yaml:"calendar" json:"calendar"`
	DriveFile   string `mapstructure:"drive_file" yaml:"drive_file" json:"drive_file"`
	Spreadsheet string `mapstructure:"spreadsheet" yaml:"spreadsheet" json:"spreadsheet"`
	SheetRange  string `mapstructure:"sheet_range" yaml:"sheet_range" json:"sheet_range"`
}

var defaults = map[string]any{
	"input":         "",
	"sheet":         "",
	"header_row":    extract.DefaultHeaderRow,
	"locale":        "en",
	"listen":        ":8501",
	"max_upload_mb": 32,
	"cache_size":    16,
	"calendar":      "Tasks",
	"drive_file":    "",
	"spreadsheet":   "",
	"sheet_range":   "",
}

var intKeys = map[string]bool{"header_row": true, "max_upload_mb": true, "cache_size": true}

// Keys lists the settable configuration keys.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetConfigDir is ~/.config/baronboard; token, credentials and the event
// index live next to the config file.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+"."+configType), nil
}

// New returns a viper instance with defaults, BARONBOARD_* environment
// variables and, when present, the config file. An empty path means the
// default location; a missing default file is not an error.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		// A named file that does not exist yet is created by Set.
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return v, nil
	}

	dir, err := GetConfigDir()
	if err != nil {
		return v, nil
	}
	v.AddConfigPath(dir)
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes the effective configuration.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.HeaderRow <= 0 {
		cfg.HeaderRow = extract.DefaultHeaderRow
	}
	if cfg.Calendar == "" {
		cfg.Calendar = "Tasks"
	}
	return &cfg, nil
}

// Set writes one key to the config file at path (default location when
// empty), keeping the other keys already in it.
func Set(path, key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown config key %q (known: %v)", key, Keys())
	}
	var typed any = value
	if intKeys[key] {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config key %q needs a number: %w", key, err)
		}
		typed = n
	}

	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	v.Set(key, typed)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// ExtractOptions is the sheet layout part of the configuration.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{Sheet: c.Sheet, HeaderRow: c.HeaderRow}
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 32 << 20
	}
	return int64(c.MaxUploadMB) << 20
}
