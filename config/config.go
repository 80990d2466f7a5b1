// Package config loads rmxchords settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/quiz"
	"github.com/rapidmidiex/rmxchords/store"
	"github.com/rapidmidiex/rmxchords/vpiano"
	"gopkg.in/yaml.v3"
)

// Config holds all rmxchords configuration.
type Config struct {
	Quiz    QuizConfig    `yaml:"quiz"`
	Audio   AudioConfig   `yaml:"audio"`
	Server  ServerConfig  `yaml:"server"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// QuizConfig is the default selection offered when a quiz starts.
type QuizConfig struct {
	Roots      []string `yaml:"roots" json:"roots"`           // spellings, ie. "Eb"
	Qualities  []string `yaml:"qualities" json:"qualities"`   // ids, ie. "dominant-seventh"
	Inversions []int    `yaml:"inversions" json:"inversions"` // 0 = root position
	BaseOctave int      `yaml:"base_octave" json:"baseOctave"`
	WindowLow  string   `yaml:"window_low" json:"windowLow"`
	WindowHigh string   `yaml:"window_high" json:"windowHigh"`
	Choices    int      `yaml:"choices" json:"choices"`
	Mode       string   `yaml:"mode" json:"mode"` // notes, diagram, name
}

// AudioConfig configures chord playback.
type AudioConfig struct {
	SoundFont string `yaml:"soundfont"` // empty disables audio
	Velocity  int    `yaml:"velocity"`
	Duration  string `yaml:"duration"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Quiz: QuizConfig{
			Roots:      chord.ListRoots(),
			Qualities:  []string{chord.Major.ID(), chord.Minor.ID(), chord.Diminished.ID()},
			Inversions: []int{0, 1, 2, 3},
			BaseOctave: 4,
			WindowLow:  "C3",
			WindowHigh: "C5",
			Choices:    quiz.DefaultChoices,
			Mode:       quiz.ModeNotes.String(),
		},
		Audio: AudioConfig{
			Velocity: 100,
			Duration: "2s",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    store.DefaultPath(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath is config.yaml under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "rmxchords", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("RMXCHORDS_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv("RMXCHORDS_DB"); path != "" {
		c.History.Path = path
	}
	if sf := os.Getenv("RMXCHORDS_SOUNDFONT"); sf != "" {
		c.Audio.SoundFont = sf
	}
	if level := os.Getenv("RMXCHORDS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Selection resolves the configured names into a quiz selection.
func (q QuizConfig) Selection() (quiz.Selection, error) {
	sel := quiz.Selection{
		Inversions: append([]int(nil), q.Inversions...),
		BaseOctave: q.BaseOctave,
	}
	for _, r := range q.Roots {
		root, err := pitch.ParseNote(r)
		if err != nil {
			return quiz.Selection{}, fmt.Errorf("quiz root %q: %w", r, err)
		}
		sel.Roots = append(sel.Roots, root)
	}
	for _, id := range q.Qualities {
		quality, err := chord.ParseQuality(id)
		if err != nil {
			return quiz.Selection{}, fmt.Errorf("quiz quality: %w", err)
		}
		sel.Qualities = append(sel.Qualities, quality)
	}
	window, err := vpiano.ParseWindow(q.WindowLow, q.WindowHigh)
	if err != nil {
		return quiz.Selection{}, fmt.Errorf("quiz window: %w", err)
	}
	sel.Window = window
	return sel, nil
}

// Options turns the mode and choice count into session options.
func (q QuizConfig) Options() ([]quiz.Option, error) {
	mode, err := quiz.ParseMode(q.Mode)
	if err != nil {
		return nil, err
	}
	return []quiz.Option{quiz.WithMode(mode), quiz.WithChoices(q.Choices)}, nil
}

// ClipDuration returns the playback length, 2s when unset or invalid.
func (a AudioConfig) ClipDuration() time.Duration {
	d, err := time.ParseDuration(a.Duration)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}
