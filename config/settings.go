// Package config loads host settings for the appcore lifecycle runtime
// from YAML or TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors
var (
	ErrObserverQueueSizeInvalid = errors.New("observer queue size must be positive")
	ErrLoadWaitInvalid          = errors.New("load wait timeout must be positive")
	ErrSnapshotSpecMissing      = errors.New("snapshot cron spec required when snapshots enabled")
	ErrAdminAddrMissing         = errors.New("admin listen address required when admin enabled")
	ErrUnsupportedFormat        = errors.New("unsupported config file format")
)

// Settings configures an appcore host.
type Settings struct {
	// TransitionAudit enables transition and confinement validation.
	// Disable only in trusted production deployments.
	TransitionAudit bool `json:"transitionAudit" yaml:"transitionAudit" toml:"transition_audit" env:"TRANSITION_AUDIT"`

	// ObserverQueueSize is the initial per-observer notification queue
	// capacity.
	ObserverQueueSize int `json:"observerQueueSize" yaml:"observerQueueSize" toml:"observer_queue_size" env:"OBSERVER_QUEUE_SIZE"`

	// LoadWaitSeconds bounds WaitForLoad calls issued by the host.
	LoadWaitSeconds int `json:"loadWaitSeconds" yaml:"loadWaitSeconds" toml:"load_wait_seconds" env:"LOAD_WAIT_SECONDS"`

	// AdminEnabled starts the HTTP introspection server.
	AdminEnabled bool `json:"adminEnabled" yaml:"adminEnabled" toml:"admin_enabled" env:"ADMIN_ENABLED"`

	// AdminAddr is the introspection listen address.
	AdminAddr string `json:"adminAddr" yaml:"adminAddr" toml:"admin_addr" env:"ADMIN_ADDR"`

	// SnapshotEnabled starts the periodic state snapshot reporter.
	SnapshotEnabled bool `json:"snapshotEnabled" yaml:"snapshotEnabled" toml:"snapshot_enabled" env:"SNAPSHOT_ENABLED"`

	// SnapshotSpec is the reporter cron spec (standard five-field syntax).
	SnapshotSpec string `json:"snapshotSpec" yaml:"snapshotSpec" toml:"snapshot_spec" env:"SNAPSHOT_SPEC"`

	// LogLevel selects the minimum host log level (debug, info, warn, error).
	LogLevel string `json:"logLevel" yaml:"logLevel" toml:"log_level" env:"LOG_LEVEL"`
}

// DefaultSettings returns the settings used when no source overrides them.
func DefaultSettings() Settings {
	return Settings{
		TransitionAudit:   true,
		ObserverQueueSize: 64,
		LoadWaitSeconds:   5,
		AdminEnabled:      false,
		AdminAddr:         ":8372",
		SnapshotEnabled:   false,
		SnapshotSpec:      "* * * * *",
		LogLevel:          "info",
	}
}

// LoadWaitTimeout returns LoadWaitSeconds as a duration.
func (s Settings) LoadWaitTimeout() time.Duration {
	return time.Duration(s.LoadWaitSeconds) * time.Second
}

// Validate checks the settings for internal consistency.
func (s Settings) Validate() error {
	if s.ObserverQueueSize <= 0 {
		return fmt.Errorf("%w: %d", ErrObserverQueueSizeInvalid, s.ObserverQueueSize)
	}
	if s.LoadWaitSeconds <= 0 {
		return fmt.Errorf("%w: %d", ErrLoadWaitInvalid, s.LoadWaitSeconds)
	}
	if s.SnapshotEnabled && s.SnapshotSpec == "" {
		return ErrSnapshotSpecMissing
	}
	if s.AdminEnabled && s.AdminAddr == "" {
		return ErrAdminAddrMissing
	}
	return nil
}
