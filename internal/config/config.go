// Package config loads planner settings from an optional YAML file and
// PLANNER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kimhsiao/creatorplanner/internal/logging"
)

// AppDirName is the directory created under the user config dir.
const AppDirName = "creator-planner"

// Config is the resolved configuration.
type Config struct {
	Database struct {
		DataDir string
		File    string
	}
	Log struct {
		Level logging.LogLevel
		JSON  bool
	}
	Dashboard struct {
		// MonthlyIncludeCreated adds created-status videos to the monthly chart.
		MonthlyIncludeCreated bool
	}
	Settings struct {
		// CatalogFile optionally replaces the built-in seed catalog.
		CatalogFile string
	}
}

// Load reads path when given, or planner.yaml from the working directory
// and the user config dir. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("planner")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppDirName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	cfg.Database.DataDir = v.GetString("database.data_dir")
	cfg.Database.File = v.GetString("database.file")
	cfg.Log.Level = logging.ParseLevel(v.GetString("log.level"))
	cfg.Log.JSON = v.GetBool("log.json")
	cfg.Dashboard.MonthlyIncludeCreated = v.GetBool("dashboard.monthly_include_created")
	cfg.Settings.CatalogFile = v.GetString("settings.catalog_file")

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	dataDir := "data"
	if dir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(dir, AppDirName)
	}
	v.SetDefault("database.data_dir", dataDir)
	v.SetDefault("database.file", "content-manager.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("dashboard.monthly_include_created", false)
	v.SetDefault("settings.catalog_file", "")
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Database.DataDir) == "" {
		return fmt.Errorf("database.data_dir is required")
	}
	if strings.TrimSpace(cfg.Database.File) == "" {
		return fmt.Errorf("database.file is required")
	}
	if strings.ContainsAny(cfg.Database.File, `/\`) {
		return fmt.Errorf("database.file must be a file name, got %q", cfg.Database.File)
	}
	return nil
}
