// Package config loads and validates the scanner settings file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// ErrCodeInvalid marks a settings file that cannot be read or parsed.
	ErrCodeInvalid = "config_invalid"
	// ErrCodeBadType marks a field whose value has the wrong type and
	// cannot be coerced.
	ErrCodeBadType = "config_bad_type"
)

// LevelCritical is the slog level the CRITICAL setting maps to; slog has
// no named level above Error.
const LevelCritical = slog.LevelError + 4

// Settings is the configuration consumed by the scanner run.
type Settings struct {
	// TargetFolder is the directory to scan, relative to the project root.
	TargetFolder string `json:"target_folder"`
	// LargeFileThresholdMB is the large-file threshold in megabytes.
	LargeFileThresholdMB int `json:"large_file_threshold_mb"`
	// LogLevel is one of CRITICAL, ERROR, WARNING, INFO, DEBUG.
	LogLevel string `json:"log_level"`
}

// Default returns a fresh copy of the default settings. Every call site
// receives an independent value; there is no shared mutable default.
func Default() Settings {
	return Settings{
		TargetFolder:         "data",
		LargeFileThresholdMB: 10,
		LogLevel:             "DEBUG",
	}
}

var logLevels = map[string]slog.Level{
	"CRITICAL": LevelCritical,
	"ERROR":    slog.LevelError,
	"WARNING":  slog.LevelWarn,
	"INFO":     slog.LevelInfo,
	"DEBUG":    slog.LevelDebug,
}

// Level maps the configured log level to its slog level. Unknown values
// map to Info; Load has already normalized them.
func (s Settings) Level() slog.Level {
	if level, ok := logLevels[s.LogLevel]; ok {
		return level
	}

	return slog.LevelInfo
}

// Error is a structured configuration error carrying a machine code.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: settings file %q: %v", e.Code, e.Path, e.Err)
	}

	return fmt.Sprintf("%s: settings file %q", e.Code, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code from err, or "" if err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ""
}

// Load reads the settings file at path.
//
// A missing file is created with the default settings. Field values are
// validated and coerced to their expected types; an unsupported log level
// falls back to INFO with a warning. Malformed JSON or an uncoercible
// field aborts the load with a typed error so a scan never starts on an
// invalid configuration.
func Load(path string) (Settings, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Settings{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		settings := Default()

		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return Settings{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return Settings{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}

		slog.Info("settings file not found, created default", "path", path)

		return settings, nil
	} else if err != nil {
		return Settings{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}

	// Decode into a raw map first so numeric strings and JSON floats can
	// be coerced instead of rejected.
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Settings{}, &Error{Code: ErrCodeInvalid, Path: path, Err: fmt.Errorf("not valid JSON: %w", err)}
	}

	settings := Default()

	if value, ok := raw["target_folder"]; ok {
		folder, ok := value.(string)
		if !ok {
			return Settings{}, &Error{Code: ErrCodeBadType, Path: path, Err: errors.New("target_folder must be a string")}
		}

		settings.TargetFolder = folder
	}

	if value, ok := raw["large_file_threshold_mb"]; ok {
		threshold, err := coerceInt(value)
		if err != nil {
			return Settings{}, &Error{Code: ErrCodeBadType, Path: path, Err: fmt.Errorf("large_file_threshold_mb: %w", err)}
		}

		settings.LargeFileThresholdMB = threshold
	}

	if value, ok := raw["log_level"]; ok {
		level, ok := value.(string)
		if !ok {
			return Settings{}, &Error{Code: ErrCodeBadType, Path: path, Err: errors.New("log_level must be a string")}
		}

		settings.LogLevel = strings.ToUpper(strings.TrimSpace(level))
	}

	if _, ok := logLevels[settings.LogLevel]; !ok {
		slog.Warn("unsupported log level, falling back to INFO", "log_level", settings.LogLevel)

		settings.LogLevel = "INFO"
	}

	return settings, nil
}

// coerceInt accepts JSON numbers and numeric strings.
func coerceInt(value any) (int, error) {
	switch v := value.(type) {
	case float64:
		return int(v), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("must be an integer: %w", err)
		}

		return parsed, nil
	default:
		return 0, errors.New("must be an integer")
	}
}
