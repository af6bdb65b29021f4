package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kbukum/offlinestt/errors"
)

// AppName names the per-user configuration directory.
const AppName = "offlinestt"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getwd() (string, error)
	ConfigDir() (string, error)
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads path into the process environment without overriding variables that are already set.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

func (rfs *RealFileSystem) ConfigDir() (string, error) {
	return os.UserConfigDir()
}

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths if provided, otherwise searches for them.
func (cr *Resolver) ResolveFiles(opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.first(cr.searchPaths("offlinestt.yml", "config.yml"))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.first(cr.searchPaths(".env"))
	}
	return resolved
}

// searchPaths lists candidates in the working directory, then the user config directory.
func (cr *Resolver) searchPaths(names ...string) []string {
	var paths []string
	if wd, err := cr.FileSystem.Getwd(); err == nil {
		for _, name := range names {
			paths = append(paths, filepath.Join(wd, name))
		}
	}
	if dir, err := cr.FileSystem.ConfigDir(); err == nil && dir != "" {
		for _, name := range names {
			if name == "offlinestt.yml" {
				continue
			}
			paths = append(paths, filepath.Join(dir, AppName, name))
		}
	}
	return paths
}

func (cr *Resolver) first(paths []string) string {
	for _, path := range paths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	Flags      *pflag.FlagSet
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithFlags binds the command-line flags listed in FlagKeys. Only flags the
// user actually set take precedence over the environment.
func WithFlags(flags *pflag.FlagSet) LoaderOption {
	return func(lc *LoaderConfig) { lc.Flags = flags }
}

// Loaded is a validated Config together with the files it was read from.
type Loaded struct {
	*Config
	Files ResolvedFiles
}

// Load builds, defaults and validates the configuration.
func Load(opts ...LoaderOption) (*Loaded, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(lc)

	cfg, err := loadFromResolvedFiles(files, lc)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Files: files}, nil
}

func loadFromResolvedFiles(files ResolvedFiles, lc LoaderConfig) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 1. YAML config is the base layer
	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			return nil, errors.InvalidConfig(fmt.Sprintf("config file %s does not exist", files.ConfigFile))
		}
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.InvalidConfig(fmt.Sprintf("failed to read config file %s", files.ConfigFile)).WithCause(err)
		}
	}

	// 2. .env fills variables missing from the process environment
	if files.EnvFile != "" {
		if !lc.FileSystem.Exists(files.EnvFile) {
			return nil, errors.InvalidConfig(fmt.Sprintf("env file %s does not exist", files.EnvFile))
		}
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return nil, errors.InvalidConfig(fmt.Sprintf("failed to load env file %s", files.EnvFile)).WithCause(err)
		}
	}

	// 3. environment, then 4. flags
	if err := bindEnv(v); err != nil {
		return nil, errors.Internal(err)
	}
	if lc.Flags != nil {
		if err := bindFlags(v, lc.Flags); err != nil {
			return nil, errors.Internal(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.InvalidConfig("failed to decode configuration").WithCause(err)
	}
	return &cfg, nil
}

var defaults = map[string]any{
	"recordings_dir":                 "~/recordings",
	"transcripts_dir":                "~/transcripts",
	"auto_create_dirs":               false,
	"stamp_precision":                PrecisionMinute,
	"recorder.policy":                "silence",
	"recorder.engine":                "stream",
	"recorder.max_seconds":           3000,
	"recorder.silence_threshold":     -40.0,
	"recorder.silence_duration":      3.0,
	"recorder.probe_duration":        0.1,
	"recorder.grace_seconds":         5.0,
	"recorder.sample_rate":           16000,
	"recorder.channels":              1,
	"recorder.bit_depth":             16,
	"transcription.backend":          "cli",
	"transcription.model_size":       "medium",
	"transcription.language":         "ru",
	"transcription.device":           "cpu",
	"transcription.compute_type":     "int8",
	"transcription.project_dir":      "",
	"transcription.script":           "transcribe.py",
	"transcription.python":           "python3",
	"transcription.sidecar_url":      "",
	"transcription.timeout_seconds":  0,
	"transcription.sidecar_attempts": 1,
	"tools.rec":                      "rec",
	"tools.ffmpeg":                   "ffmpeg",
	"logging.level":                  "info",
	"logging.format":                 "console",
	"logging.output":                 "stderr",
	"logging.no_color":               false,
	"logging.caller":                 false,
	"tracing.endpoint":               "",
	"tracing.insecure":               false,
	"tracing.sample_rate":            1.0,
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// EnvNames maps configuration keys to their short environment variable
// names. Every key is additionally readable as OFFLINESTT_<KEY>, with dots
// replaced by underscores.
var EnvNames = map[string]string{
	"recordings_dir":                 "RECORDINGS_DIR",
	"transcripts_dir":                "TRANSCRIPTS_DIR",
	"auto_create_dirs":               "AUTO_CREATE_DIRS",
	"stamp_precision":                "STAMP_PRECISION",
	"recorder.policy":                "RECORD_POLICY",
	"recorder.engine":                "RECORD_ENGINE",
	"recorder.max_seconds":           "MAX_SECONDS",
	"recorder.silence_threshold":     "SILENCE_THRESHOLD",
	"recorder.silence_duration":      "SILENCE_DURATION",
	"transcription.backend":          "TRANSCRIBER",
	"transcription.model_size":       "MODEL_SIZE",
	"transcription.language":         "LANGUAGE",
	"transcription.device":           "DEVICE",
	"transcription.compute_type":     "COMPUTE_TYPE",
	"transcription.project_dir":      "PROJECT_DIR",
	"transcription.script":           "TRANSCRIBE_SCRIPT",
	"transcription.python":           "PYTHON_BIN",
	"transcription.sidecar_url":      "SIDECAR_URL",
	"transcription.sidecar_attempts": "SIDECAR_ATTEMPTS",
	"tools.rec":                      "REC_BIN",
	"tools.ffmpeg":                   "FFMPEG_BIN",
	"logging.level":                  "LOG_LEVEL",
	"logging.format":                 "LOG_FORMAT",
	"tracing.endpoint":               "OTEL_ENDPOINT",
}

func bindEnv(v *viper.Viper) error {
	for key := range defaults {
		names := []string{key}
		if short, ok := EnvNames[key]; ok {
			names = append(names, short)
		}
		names = append(names, prefixedEnv(key))
		if err := v.BindEnv(names...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func prefixedEnv(key string) string {
	return strings.ToUpper(AppName + "_" + strings.ReplaceAll(key, ".", "_"))
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"recordings-dir":  "recordings_dir",
	"transcripts-dir": "transcripts_dir",
	"model":           "transcription.model_size",
	"language":        "transcription.language",
	"backend":         "transcription.backend",
	"policy":          "recorder.policy",
	"engine":          "recorder.engine",
	"max-seconds":     "recorder.max_seconds",
	"log-level":       "logging.level",
	"log-format":      "logging.format",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range FlagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}
