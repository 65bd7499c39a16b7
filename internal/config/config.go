// Package config loads process-wide settings for the adrian audio core via
// viper, mirroring the layered file/env/default approach used throughout the
// rest of the stack.
package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// RotationType selects how a log file is rotated.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// LogConfig holds the log file settings. internal/logging's NewFileLogger
// reads Rotation and MaxSize; logging.Init writes logs/app.log at info level
// and reads neither Path nor Level.
type LogConfig struct {
	Path        string       // path to the JSON log file
	Rotation    RotationType // rotation policy
	MaxSize     int64        // max size in bytes for RotationSize
	RotationDay time.Weekday // day of week for RotationWeekly
	Level       string       // minimum level: trace, debug, info, warn, error
}

// CoreConfig holds the tunables for the audio core service itself. None of
// these change the wire semantics fixed by the data model (BUFFER_SIZE is a
// compile-time constant, not configurable) - they size the ambient plumbing
// around it.
type CoreConfig struct {
	// DSPQuantum is Q, the frame count per audio callback.
	DSPQuantum int

	// SampleRate converts PeakGateGlideSeconds into the sample count the
	// peak gate's linear glide actually runs over.
	SampleRate int

	// MessageQueueCapacity bounds each direction of the UI<->audio SPSC
	// channel pair before a warn_queue_full event is raised.
	MessageQueueCapacity int

	// AllocatorPollInterval is loaded from configuration but not read by
	// internal/audiocore: the allocator thread blocks on its wake channel
	// until notified or cancelled, with no periodic poll.
	AllocatorPollInterval time.Duration

	// PeakGateGlideSeconds sets the smoothing time constant for the peak
	// gate used by catch buffer recording.
	PeakGateGlideSeconds float64

	MetricsEnabled bool
}

// Settings is the root configuration object.
type Settings struct {
	Debug bool
	Log   LogConfig
	Core  CoreConfig
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads configuration from file/env/defaults into a fresh Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("adrian")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/adrian")
	v.SetEnvPrefix("ADRIAN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file on disk: defaults + env only, which is fine.
	}

	settings := &Settings{
		Debug: v.GetBool("debug"),
		Log: LogConfig{
			Path:     v.GetString("log.path"),
			Rotation: RotationType(v.GetString("log.rotation")),
			MaxSize:  v.GetInt64("log.max_size_bytes"),
			Level:    v.GetString("log.level"),
		},
		Core: CoreConfig{
			DSPQuantum:            v.GetInt("core.dsp_quantum"),
			SampleRate:            v.GetInt("core.sample_rate"),
			MessageQueueCapacity:  v.GetInt("core.message_queue_capacity"),
			AllocatorPollInterval: v.GetDuration("core.allocator_poll_interval"),
			PeakGateGlideSeconds:  v.GetFloat64("core.peak_gate_glide_seconds"),
			MetricsEnabled:        v.GetBool("core.metrics_enabled"),
		},
	}

	settingsInstance = settings
	return settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("log.path", "logs/adrian.log")
	v.SetDefault("log.rotation", string(RotationSize))
	v.SetDefault("log.max_size_bytes", int64(100*1024*1024))
	v.SetDefault("log.level", "info")

	v.SetDefault("core.dsp_quantum", 64)
	v.SetDefault("core.sample_rate", 48000)
	v.SetDefault("core.message_queue_capacity", 1024)
	v.SetDefault("core.allocator_poll_interval", 5*time.Second)
	v.SetDefault("core.peak_gate_glide_seconds", 128.0*64.0/48000.0)
	v.SetDefault("core.metrics_enabled", true)
}

// Setting returns the process-wide Settings, loading them on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("adrian: loading settings: %v", err)
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SetForTesting installs an explicit Settings value, bypassing file/env
// discovery. Intended for package tests that need deterministic tunables.
func SetForTesting(s *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = s
}
