package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every env tag when feeding settings from the
// environment, e.g. APPCORE_ADMIN_ADDR.
const EnvPrefix = "APPCORE"

// Load reads settings starting from defaults, applying the file at path
// (when non-empty, format chosen by extension) and then environment
// variable overrides.
func Load(path string) (Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		if err := loadFile(path, &settings); err != nil {
			return settings, err
		}
	}

	if err := feedEnv(&settings); err != nil {
		return settings, err
	}

	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("config validation failed: %w", err)
	}

	return settings, nil
}

func loadFile(path string, settings *Settings) error {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, settings); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, settings); err != nil {
			return fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	return nil
}

// feedEnv overlays environment variables onto settings using the env
// struct tags, converting string values to the field types.
func feedEnv(settings *Settings) error {
	rv := reflect.ValueOf(settings).Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		envTag, exists := rt.Field(i).Tag.Lookup("env")
		if !exists {
			continue
		}

		envValue := os.Getenv(EnvPrefix + "_" + strings.ToUpper(envTag))
		if envValue == "" {
			continue
		}

		converted, err := cast.FromType(envValue, field.Type())
		if err != nil {
			return fmt.Errorf("cannot convert %s to type %v: %w", envTag, field.Type(), err)
		}
		field.Set(reflect.ValueOf(converted))
	}

	return nil
}
