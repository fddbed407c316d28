// Package config loads the optional top-level YAML config file and merges
// it over the per-package defaults. Every field is optional; a missing
// file is simply the defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tutorkit/tutorkit/internal/llm"
	"github.com/tutorkit/tutorkit/internal/mastery"
	"github.com/tutorkit/tutorkit/internal/remediation"
	"github.com/tutorkit/tutorkit/internal/sequencer"
)

// Config is the assembled runtime configuration handed to constructors.
type Config struct {
	LearnerID   string
	Mastery     mastery.Config
	Sequencer   sequencer.Config
	Remediation remediation.Config
	LLM         llm.Config
}

// Default returns the standard configuration for a single local learner.
func Default() Config {
	return Config{
		LearnerID:   "local",
		Mastery:     mastery.DefaultConfig(),
		Sequencer:   sequencer.DefaultConfig(),
		Remediation: remediation.DefaultConfig(),
		LLM:         llm.DefaultConfig(),
	}
}

// fileConfig mirrors the YAML layout. Pointer fields distinguish "absent"
// from zero so partial files override only what they name. Mastery level
// breakpoints are fixed and deliberately not configurable.
type fileConfig struct {
	Learner string `yaml:"learner"`

	Mastery struct {
		ReviewWeight    *float64 `yaml:"review_weight"`
		QuizWeight      *float64 `yaml:"quiz_weight"`
		LapsePenalty    *float64 `yaml:"lapse_penalty"`
		MaxLapsePenalty *float64 `yaml:"max_lapse_penalty"`
	} `yaml:"mastery"`

	Sequencer struct {
		RequireConsecutive *int     `yaml:"require_consecutive"`
		RollingWindow      *int     `yaml:"rolling_window"`
		RollingAccuracy    *float64 `yaml:"rolling_accuracy"`
		TargetMastery      *float64 `yaml:"target_mastery"`
		MasteryPerAtom     *float64 `yaml:"mastery_per_atom"`
	} `yaml:"sequencer"`

	Remediation struct {
		ConfidentThreshold *float64 `yaml:"confident_threshold"`
		ProficiencyFloor   *float64 `yaml:"proficiency_floor"`
		HighGapFloor       *float64 `yaml:"high_gap_floor"`
		MediumGapFloor     *float64 `yaml:"medium_gap_floor"`
		MaxBundleAtoms     *int     `yaml:"max_bundle_atoms"`
	} `yaml:"remediation"`

	LLM struct {
		Provider       string `yaml:"provider"`
		TimeoutSeconds *int   `yaml:"timeout_seconds"`
		Anthropic      struct {
			APIKey string `yaml:"api_key"`
			Model  string `yaml:"model"`
		} `yaml:"anthropic"`
		OpenAI struct {
			APIKey  string `yaml:"api_key"`
			Model   string `yaml:"model"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"openai"`
		Gemini struct {
			APIKey string `yaml:"api_key"`
			Model  string `yaml:"model"`
		} `yaml:"gemini"`
	} `yaml:"llm"`
}

// Load reads the config file at path and merges it over the defaults.
// A missing file returns the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	f.apply(&cfg)
	cfg.LLM = cfg.LLM.FromEnv()
	return cfg, nil
}

// DefaultPath resolves the config file location:
// 1. TUTORKIT_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/tutorkit/config.yaml
// 3. ~/.config/tutorkit/config.yaml
func DefaultPath() string {
	if p := os.Getenv("TUTORKIT_CONFIG"); p != "" {
		return p
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tutorkit", "config.yaml")
}

func (f *fileConfig) apply(cfg *Config) {
	if f.Learner != "" {
		cfg.LearnerID = f.Learner
	}

	setF(&cfg.Mastery.ReviewWeight, f.Mastery.ReviewWeight)
	setF(&cfg.Mastery.QuizWeight, f.Mastery.QuizWeight)
	setF(&cfg.Mastery.LapsePenalty, f.Mastery.LapsePenalty)
	setF(&cfg.Mastery.MaxLapsePenalty, f.Mastery.MaxLapsePenalty)

	setI(&cfg.Sequencer.RequireConsecutive, f.Sequencer.RequireConsecutive)
	setI(&cfg.Sequencer.RollingWindow, f.Sequencer.RollingWindow)
	setF(&cfg.Sequencer.RollingAccuracy, f.Sequencer.RollingAccuracy)
	setF(&cfg.Sequencer.TargetMastery, f.Sequencer.TargetMastery)
	setF(&cfg.Sequencer.MasteryPerAtom, f.Sequencer.MasteryPerAtom)

	setF(&cfg.Remediation.ConfidentThreshold, f.Remediation.ConfidentThreshold)
	setF(&cfg.Remediation.ProficiencyFloor, f.Remediation.ProficiencyFloor)
	setF(&cfg.Remediation.HighGapFloor, f.Remediation.HighGapFloor)
	setF(&cfg.Remediation.MediumGapFloor, f.Remediation.MediumGapFloor)
	setI(&cfg.Remediation.MaxBundleAtoms, f.Remediation.MaxBundleAtoms)

	if f.LLM.Provider != "" {
		cfg.LLM.Provider = f.LLM.Provider
	}
	if f.LLM.TimeoutSeconds != nil {
		cfg.LLM.Timeout = time.Duration(*f.LLM.TimeoutSeconds) * time.Second
	}
	if f.LLM.Anthropic.APIKey != "" {
		cfg.LLM.Anthropic.APIKey = f.LLM.Anthropic.APIKey
	}
	if f.LLM.Anthropic.Model != "" {
		cfg.LLM.Anthropic.Model = f.LLM.Anthropic.Model
	}
	if f.LLM.OpenAI.APIKey != "" {
		cfg.LLM.OpenAI.APIKey = f.LLM.OpenAI.APIKey
	}
	if f.LLM.OpenAI.Model != "" {
		cfg.LLM.OpenAI.Model = f.LLM.OpenAI.Model
	}
	if f.LLM.OpenAI.BaseURL != "" {
		cfg.LLM.OpenAI.BaseURL = f.LLM.OpenAI.BaseURL
	}
	if f.LLM.Gemini.APIKey != "" {
		cfg.LLM.Gemini.APIKey = f.LLM.Gemini.APIKey
	}
	if f.LLM.Gemini.Model != "" {
		cfg.LLM.Gemini.Model = f.LLM.Gemini.Model
	}
}

func setF(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setI(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
