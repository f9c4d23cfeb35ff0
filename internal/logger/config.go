package logger

import (
	"os"
	"strconv"
	"strings"
)

// Config holds logging configuration. It is embedded in the game
// configuration under the `logging:` key.
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// DefaultConfig returns console-only text logging at INFO.
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FileEnabled:    false,
		FilePath:       "logs/dragogauntlet.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// ApplyEnv overrides config fields from LOG_* environment variables.
func ApplyEnv(config *Config) {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Level = strings.ToUpper(logLevel)
	}

	if consoleFormat := os.Getenv("LOG_CONSOLE_FORMAT"); consoleFormat != "" {
		config.ConsoleFormat = consoleFormat
	}

	if fileEnabled := os.Getenv("LOG_FILE_ENABLED"); fileEnabled != "" {
		if enabled, err := strconv.ParseBool(fileEnabled); err == nil {
			config.FileEnabled = enabled
		}
	}

	if filePath := os.Getenv("LOG_FILE_PATH"); filePath != "" {
		config.FilePath = filePath
	}
}

// fillDefaults replaces zero rotation settings so a partially written
// YAML section still produces a usable file logger.
func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Level == "" {
		c.Level = d.Level
	}
	if c.FilePath == "" {
		c.FilePath = d.FilePath
	}
	if c.FileMaxSizeMB <= 0 {
		c.FileMaxSizeMB = d.FileMaxSizeMB
	}
	if c.FileMaxBackups <= 0 {
		c.FileMaxBackups = d.FileMaxBackups
	}
	if c.FileMaxAgeDays <= 0 {
		c.FileMaxAgeDays = d.FileMaxAgeDays
	}
}
