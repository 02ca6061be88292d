package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/drake/digitpad/export"
	"github.com/drake/digitpad/grid"
	"github.com/drake/digitpad/transport"
)

// Environment variable names.
const (
	EnvPort          = "DIGITPAD_PORT"
	EnvBaud          = "DIGITPAD_BAUD"
	EnvExport        = "DIGITPAD_EXPORT"
	EnvProgressEvery = "DIGITPAD_PROGRESS_EVERY"
	EnvChecksum      = "DIGITPAD_CHECKSUM"
	EnvLogLevel      = "DIGITPAD_LOG_LEVEL"
	EnvLogFile       = "DIGITPAD_LOG_FILE"
)

// Config is the runtime configuration.
type Config struct {
	Port          string // Serial device path or tcp://host:port; empty = don't connect at start
	Baud          int
	ExportPath    string
	ProgressEvery int // Cells between send progress updates
	Checksum      bool
	LogLevel      logrus.Level
	LogFile       string
	ConfigDir     string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Baud:          transport.DefaultBaud,
		ExportPath:    export.DefaultFileName,
		ProgressEvery: grid.Size,
		LogLevel:      logrus.InfoLevel,
		LogFile:       filepath.Join(Dir(), "digitpad.log"),
		ConfigDir:     Dir(),
	}
}

// Dir returns the digitpad configuration directory.
// Respects XDG_CONFIG_HOME on Unix, APPDATA on Windows.
func Dir() string {
	var base string

	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, "digitpad")
}

// InitFile returns the path to init.lua
func InitFile() string {
	return filepath.Join(Dir(), "init.lua")
}

// EnvFile returns the path to the user's persistent settings file.
func EnvFile() string {
	return filepath.Join(Dir(), "digitpad.env")
}

// Load reads settings from the user env file and a local .env (either may
// be missing), then from the process environment. Variables already set in
// the environment win over file values.
func Load() (Config, error) {
	for _, path := range []string{".env", EnvFile()} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from defaults overridden by getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv(EnvPort); v != "" {
		cfg.Port = v
	}
	if v := getenv(EnvExport); v != "" {
		cfg.ExportPath = v
	}
	if v := getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}

	if v := getenv(EnvBaud); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s=%q: want a positive integer", EnvBaud, v)
		}
		cfg.Baud = n
	}

	if v := getenv(EnvProgressEvery); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("%s=%q: want a non-negative integer", EnvProgressEvery, v)
		}
		cfg.ProgressEvery = n
	}

	if v := getenv(EnvChecksum); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s=%q: %w", EnvChecksum, v, err)
		}
		cfg.Checksum = b
	}

	if v := getenv(EnvLogLevel); v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}
