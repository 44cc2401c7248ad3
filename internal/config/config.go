// Package config loads the two configuration surfaces named in spec.md §6:
// the optional per-project probe.yml and the optional per-user
// ~/.probe/config.yaml. Loading follows the teacher's own internal/config
// package shape (a Config struct plus a Validator that fills in defaults),
// adapted to a YAML wire format.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Stemming controls the tokenizer's stemming behavior (spec.md §4.5, §6).
type Stemming struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
}

// SupportedStemmingLanguages is the closed set probe.yml accepts; only
// "en"/"english" has a real stemmer wired (surgebase/porter2) — every other
// value is accepted but stems as a no-op (see DESIGN.md Open Question ii).
var SupportedStemmingLanguages = map[string]bool{
	"en": true, "english": true,
	"fr": true, "de": true, "it": true, "pt": true, "es": true, "nl": true,
	"da": true, "fi": true, "hu": true, "no": true, "ro": true, "ru": true,
	"sv": true, "ta": true, "tr": true,
}

// ScorePolicy is the post-query penalty/boost policy from spec.md §4.5.
type ScorePolicy struct {
	ClassMultiplier float64  `yaml:"class_multiplier"`
	TestGlobs       []string `yaml:"test_globs"`
	TestMultiplier  float64  `yaml:"test_multiplier"`
	MainGlobs       []string `yaml:"main_globs"`
	MainMultiplier  float64  `yaml:"main_multiplier"`
}

// FieldBoosts is the weighted-disjunction query construction policy from
// spec.md §4.5.
type FieldBoosts struct {
	ChunkName   float64 `yaml:"chunk_name"`
	Declaration float64 `yaml:"declaration"`
	PathTokens  float64 `yaml:"path_tokens"`
	Body        float64 `yaml:"body"`
}

// Scan controls FileScanner behavior (spec.md §4.1).
type Scan struct {
	MaxFileSize int64    `yaml:"max_file_size"`
	Exclude     []string `yaml:"exclude"`
}

// Rerank controls SearchEngine/Reranker defaults (spec.md §4.6, §4.7).
// Alpha is a pointer so an explicit "alpha: 0" (pure rerank order, §4.6) can
// be told apart from an unset field that should fall back to the default.
type Rerank struct {
	Enabled        bool     `yaml:"enabled"`
	Alpha          *float64 `yaml:"alpha"`
	CandidateCount int      `yaml:"candidate_count"`
}

// AlphaOrDefault returns the configured alpha, or 0.3 if unset.
func (r Rerank) AlphaOrDefault() float64 {
	if r.Alpha == nil {
		return 0.3
	}
	return *r.Alpha
}

// Config is the project configuration loaded from <root>/probe.yml.
type Config struct {
	Stemming    Stemming    `yaml:"stemming"`
	ScorePolicy ScorePolicy `yaml:"score_policy"`
	FieldBoosts FieldBoosts `yaml:"field_boosts"`
	Scan        Scan        `yaml:"scan"`
	Rerank      Rerank      `yaml:"rerank"`
}

// Default returns the configuration spec.md's defaults describe when
// probe.yml is absent (stemming enabled/english, §6; boosts and score
// policy multipliers from §4.5; α=0.3 from §4.6).
func Default() *Config {
	return &Config{
		Stemming: Stemming{Enabled: true, Language: "english"},
		ScorePolicy: ScorePolicy{
			ClassMultiplier: 0.8,
			TestGlobs:       []string{"**/*_test.*", "**/test_*.*", "**/tests/**", "**/*Test.java"},
			TestMultiplier:  0.7,
			MainGlobs:       []string{"**/main.*", "**/cmd/**"},
			MainMultiplier:  1.2,
		},
		FieldBoosts: FieldBoosts{ChunkName: 3.0, Declaration: 2.0, PathTokens: 2.0, Body: 1.0},
		Scan:        Scan{MaxFileSize: 1 << 20},
		Rerank:      Rerank{Enabled: true, Alpha: floatPtr(0.3), CandidateCount: 0}, // 0 => max(50, 5N)
	}
}

func floatPtr(f float64) *float64 { return &f }

// Load reads <root>/probe.yml, returning Default() unmodified if the file
// does not exist (spec.md §6: "optional").
func Load(root string) (*Config, error) {
	return LoadFromPath(filepath.Join(root, "probe.yml"))
}

// LoadFromPath reads the probe.yml at an explicit path (the CLI's
// --config override), returning Default() unmodified if it does not
// exist.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CustomReranker is one entry of ~/.probe/config.yaml's custom_rerankers map
// (spec.md §6).
type CustomReranker struct {
	Description     string   `yaml:"description"`
	ModelCode       string   `yaml:"model_code"`
	ModelFile       string   `yaml:"model_file"`
	AdditionalFiles []string `yaml:"additional_files"`
}

// UserConfig is the optional ~/.probe/config.yaml (spec.md §6).
type UserConfig struct {
	DefaultReranker string                    `yaml:"default_reranker"`
	CustomRerankers map[string]CustomReranker `yaml:"custom_rerankers"`
}

// LoadUserConfig reads ~/.probe/config.yaml, returning an empty UserConfig
// if it is absent.
func LoadUserConfig() (*UserConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return &UserConfig{}, nil
	}
	path := filepath.Join(home, ".probe", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &UserConfig{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	uc := &UserConfig{}
	if err := yaml.Unmarshal(data, uc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return uc, nil
}
