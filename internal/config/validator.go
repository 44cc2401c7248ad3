package config

import (
	"fmt"

	probeerrors "github.com/nikita2206/probe/internal/errors"
)

// Validator validates configuration and fills in defaults for any field a
// partially-specified probe.yml left zero-valued.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and applies smart defaults for
// anything the user's probe.yml left unset.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateStemming(&cfg.Stemming); err != nil {
		return probeerrors.NewIoError("probe.yml", fmt.Errorf("stemming: %w", err))
	}
	v.setScorePolicyDefaults(&cfg.ScorePolicy)
	v.setFieldBoostDefaults(&cfg.FieldBoosts)
	v.setScanDefaults(&cfg.Scan)
	v.setRerankDefaults(&cfg.Rerank)
	return nil
}

func (v *Validator) validateStemming(s *Stemming) error {
	if s.Language == "" {
		s.Language = "english"
		return nil
	}
	if !SupportedStemmingLanguages[s.Language] {
		return fmt.Errorf("unsupported stemming language %q", s.Language)
	}
	return nil
}

func (v *Validator) setScorePolicyDefaults(p *ScorePolicy) {
	d := Default().ScorePolicy
	if p.ClassMultiplier == 0 {
		p.ClassMultiplier = d.ClassMultiplier
	}
	if p.TestMultiplier == 0 {
		p.TestMultiplier = d.TestMultiplier
	}
	if p.MainMultiplier == 0 {
		p.MainMultiplier = d.MainMultiplier
	}
	if len(p.TestGlobs) == 0 {
		p.TestGlobs = d.TestGlobs
	}
	if len(p.MainGlobs) == 0 {
		p.MainGlobs = d.MainGlobs
	}
}

func (v *Validator) setFieldBoostDefaults(b *FieldBoosts) {
	d := Default().FieldBoosts
	if b.ChunkName == 0 {
		b.ChunkName = d.ChunkName
	}
	if b.Declaration == 0 {
		b.Declaration = d.Declaration
	}
	if b.PathTokens == 0 {
		b.PathTokens = d.PathTokens
	}
	if b.Body == 0 {
		b.Body = d.Body
	}
}

func (v *Validator) setScanDefaults(s *Scan) {
	if s.MaxFileSize == 0 {
		s.MaxFileSize = Default().Scan.MaxFileSize
	}
}

func (v *Validator) setRerankDefaults(r *Rerank) {
	if r.Alpha == nil {
		r.Alpha = Default().Rerank.Alpha
	}
}
