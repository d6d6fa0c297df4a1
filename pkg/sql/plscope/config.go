// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package plscope

import (
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/plscope/pkg/sql/pgwire/pgerror"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config configures name comparison and logging for the scopes of a
// routine.
type Config struct {
	Collation CollationConfig `yaml:"collation"`
	Labels    LabelConfig     `yaml:"labels"`
	// Verbosity is the log verbosity installed by tools driving a
	// Builder. Push, pop and declarations are logged at level 2.
	Verbosity int32 `yaml:"verbosity"`
}

// CollationConfig configures the comparison of variable, condition and
// cursor names.
type CollationConfig struct {
	// Locale is a BCP 47 language tag.
	Locale          string `yaml:"locale"`
	CaseSensitive   bool   `yaml:"case_sensitive"`
	AccentSensitive bool   `yaml:"accent_sensitive"`
}

// LabelConfig configures the comparison of label names.
type LabelConfig struct {
	CaseSensitive bool `yaml:"case_sensitive"`
}

// DefaultConfig returns the configuration used when none is provided:
// case and accent insensitive names in the root locale.
func DefaultConfig() Config {
	return Config{Collation: CollationConfig{Locale: "und"}}
}

// ParseConfig parses a yaml configuration. Fields that are not set keep
// their default value; unknown fields are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, pgerror.Wrap(err, pgcode.InvalidParameterValue, "parsing scope configuration")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, err := c.locale(); err != nil {
		return err
	}
	if c.Verbosity < 0 {
		return pgerror.Newf(pgcode.InvalidParameterValue, "verbosity must be non-negative, got %d", c.Verbosity)
	}
	return nil
}

func (c Config) locale() (language.Tag, error) {
	if c.Collation.Locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(c.Collation.Locale)
	if err != nil {
		return language.Und, pgerror.Wrapf(err, pgcode.InvalidParameterValue,
			"invalid collation locale %q", c.Collation.Locale)
	}
	return tag, nil
}

// NameComparer returns the comparer for variable, condition and cursor
// names.
func (c Config) NameComparer() (NameComparer, error) {
	tag, err := c.locale()
	if err != nil {
		return nil, err
	}
	return NewCollationComparer(tag, c.Collation.CaseSensitive, c.Collation.AccentSensitive), nil
}

// LabelComparer returns the comparer for label names.
func (c Config) LabelComparer() LabelComparer {
	if c.Labels.CaseSensitive {
		return func(a, b string) bool { return a == b }
	}
	return strings.EqualFold
}

// NewTree creates an empty tree using the configured comparers.
func (c Config) NewTree() (*Tree, error) {
	names, err := c.NameComparer()
	if err != nil {
		return nil, err
	}
	return NewTree(TreeOptions{Names: names, Labels: c.LabelComparer()}), nil
}
