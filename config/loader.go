package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/etlkit/errors"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "ETL"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	EnvFile    string // Direct env file path (optional)
	EnvPrefix  string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix replaces the ETL environment prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// Load reads the document at path into cfg. The .env file is taken from
// WithEnvFile, or else looked up next to path and then in the working
// directory; a missing .env is not an error. Environment variables with
// the prefix override file values.
func Load(path string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{EnvPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	if !lc.FileSystem.Exists(path) {
		return errors.InvalidConfig("path", "config file "+path+" not found")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.InvalidConfig("path", "cannot read "+path).WithCause(err)
	}

	if envFile := resolveEnvFile(path, lc); envFile != "" {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			return errors.InvalidConfig("env_file", "cannot load "+envFile).WithCause(err)
		}
	}
	bindPrefixedEnv(v, lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return errors.InvalidConfig("", "cannot decode "+path).WithCause(err)
	}
	return nil
}

// resolveEnvFile returns the explicit env file or the first .env found.
func resolveEnvFile(path string, lc LoaderConfig) string {
	if lc.EnvFile != "" {
		return lc.EnvFile
	}
	for _, candidate := range []string{filepath.Join(filepath.Dir(path), ".env"), ".env"} {
		if lc.FileSystem.Exists(candidate) {
			return candidate
		}
	}
	return ""
}

// bindPrefixedEnv sets every PREFIX_* environment variable on v under all
// the nested key variants its name could stand for.
func bindPrefixedEnv(v *viper.Viper, prefix string) {
	p := strings.ToUpper(prefix) + "_"
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, p) || len(key) == len(p) {
			continue
		}
		for _, variant := range generateEnvKeyVariants(strings.TrimPrefix(key, p)) {
			v.Set(variant, value)
		}
	}
}

// generateEnvKeyVariants creates all possible key variants for an
// environment variable name.
// Examples:
//
//	SETTINGS_CHUNK_SIZE -> [settings_chunk_size, settings.chunk.size, settings.chunk_size, settings_chunk.size]
//	OUTPUT_PATH -> [output_path, output.path]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// Split once at every position: prefix nested, suffix kept whole.
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], "_")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}

	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
