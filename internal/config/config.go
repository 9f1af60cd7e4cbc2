package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/julianstephens/easydiary/internal/constants"
)

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Workers  WorkersConfig  `yaml:"workers"`
	Settings SettingsConfig `yaml:"settings"`
	Backup   BackupConfig   `yaml:"backup"`
}

// DatabaseConfig locates the diary database.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"EASYDIARY_DB_PATH" env-default:"~/.config/easydiary/easydiary.db"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Debug bool `yaml:"debug" env:"EASYDIARY_DEBUG" env-default:"false"`
	// Dir defaults to <database dir>/logs
	Dir string `yaml:"dir" env:"EASYDIARY_LOG_DIR"`
}

// WorkersConfig sizes the storage worker pool.
type WorkersConfig struct {
	Size int `yaml:"size" env:"EASYDIARY_WORKERS" env-default:"4"`
}

// SettingsConfig locates the display preferences file.
type SettingsConfig struct {
	// Path defaults to settings.yaml next to the database
	Path string `yaml:"path" env:"EASYDIARY_SETTINGS_PATH"`
}

// BackupConfig controls automatic and manual backups.
type BackupConfig struct {
	BeforeMigration bool `yaml:"before_migration" env:"EASYDIARY_BACKUP_BEFORE_MIGRATION" env-default:"true"`
	MaxBackups      int  `yaml:"max_backups"      env:"EASYDIARY_MAX_BACKUPS"             env-default:"14"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// An empty path falls back to EASYDIARY_CONFIG, then to the default location.
// A missing file is only an error when the path was given explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = os.Getenv("EASYDIARY_CONFIG")
		explicitPath = path != ""
	}
	if !explicitPath {
		path = constants.DefaultConfigFile
	}
	path = ExpandPath(path)

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	cfg.resolvePaths()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// SetDatabasePath overrides the database location and re-derives the paths
// that default relative to it
func (c *Config) SetDatabasePath(path string) {
	oldDir := c.ConfigDir()
	c.Database.Path = ExpandPath(path)
	if c.Settings.Path == filepath.Join(oldDir, constants.SettingsFileName) {
		c.Settings.Path = ""
	}
	if c.Log.Dir == filepath.Join(oldDir, "logs") {
		c.Log.Dir = ""
	}
	c.resolvePaths()
}

// ConfigDir is the directory holding the database
func (c *Config) ConfigDir() string {
	return filepath.Dir(c.Database.Path)
}

func (c *Config) resolvePaths() {
	c.Database.Path = ExpandPath(c.Database.Path)
	dir := c.ConfigDir()

	if c.Settings.Path == "" {
		c.Settings.Path = filepath.Join(dir, constants.SettingsFileName)
	}
	c.Settings.Path = ExpandPath(c.Settings.Path)

	if c.Log.Dir == "" {
		c.Log.Dir = filepath.Join(dir, "logs")
	}
	c.Log.Dir = ExpandPath(c.Log.Dir)
}

// Validate performs business-rule validation on the loaded configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Workers.Size <= 0 {
		return fmt.Errorf("workers.size must be > 0 (got %d)", c.Workers.Size)
	}
	if c.Backup.MaxBackups < 1 {
		return fmt.Errorf("backup.max_backups must be >= 1 (got %d)", c.Backup.MaxBackups)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
