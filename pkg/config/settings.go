// Package config implements typed, validated settings resolved from raw
// string sources.
//
// A Setting pairs a name with a parser, an optional default, and
// constraints. Sources of raw values (flags, environment, files) all
// reduce to the Values lookup function and compose with Chain, so
// precedence is just source order:
//
//	maxDepth := config.NewSetting("walk.max.depth", config.Integer, "8",
//		config.Min(1))
//
//	vals := config.Chain(
//		config.EnvValues("SLEIPNIR_"),
//		fileVals,
//	)
//	depth, err := maxDepth.Apply(vals)
//
// Settings can inherit: a derived setting built with WithParent resolves
// an explicit value anywhere along its parent chain before falling back
// to the nearest default. Defaults run through the same parse and
// constraint path as explicit values, so a broken default surfaces the
// first time the setting is applied.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ErrNotConfigured reports a setting with neither an explicit value nor a
// default anywhere along its inheritance chain.
var ErrNotConfigured = errors.New("not configured")

// Constraint validates or transforms a parsed value. Constraints run in
// declaration order and receive the active Values so cross-setting
// constraints like BasePath can resolve the settings they depend on.
type Constraint[T any] func(value T, vals Values) (T, error)

// Setting is one typed, validated configuration entry. Settings are
// immutable once built; WithParent returns a derived setting.
type Setting[T any] struct {
	name        string
	parse       ParseFunc[T]
	def         string
	hasDefault  bool
	mandatory   bool
	parent      *Setting[T]
	constraints []Constraint[T]
}

// NewSetting builds a setting with a default, given in the same string
// form explicit values use.
func NewSetting[T any](name string, parse ParseFunc[T], defaultValue string, constraints ...Constraint[T]) *Setting[T] {
	return &Setting[T]{
		name:        name,
		parse:       parse,
		def:         defaultValue,
		hasDefault:  true,
		constraints: constraints,
	}
}

// NewOptionalSetting builds a setting with no default. Apply returns
// ErrNotConfigured when no source supplies a value.
func NewOptionalSetting[T any](name string, parse ParseFunc[T], constraints ...Constraint[T]) *Setting[T] {
	return &Setting[T]{
		name:        name,
		parse:       parse,
		constraints: constraints,
	}
}

// NewMandatorySetting builds a setting that must be configured
// explicitly. Defaults along the inheritance chain never satisfy it.
func NewMandatorySetting[T any](name string, parse ParseFunc[T], constraints ...Constraint[T]) *Setting[T] {
	return &Setting[T]{
		name:        name,
		parse:       parse,
		mandatory:   true,
		constraints: constraints,
	}
}

// WithParent derives a setting that falls back to parent. An explicit
// value for the parent (or any ancestor) beats this setting's own
// default, and the nearest default along the chain serves when nothing
// is explicit.
func (s *Setting[T]) WithParent(parent *Setting[T]) *Setting[T] {
	derived := *s
	derived.parent = parent
	return &derived
}

// Name returns the setting's lookup key.
func (s *Setting[T]) Name() string {
	return s.name
}

// Apply resolves the setting against the given sources: the explicit
// value nearest along the inheritance chain, else the first default
// along the chain, then parse, then constraints in order.
func (s *Setting[T]) Apply(vals Values) (T, error) {
	var zero T
	if vals == nil {
		vals = NoValues()
	}

	raw, found := s.explicitValue(vals)
	if !found {
		if s.mandatory {
			return zero, fmt.Errorf("setting %q is mandatory: %w", s.name, ErrNotConfigured)
		}
		raw, found = s.defaultValue()
	}
	if !found {
		return zero, fmt.Errorf("setting %q: %w", s.name, ErrNotConfigured)
	}

	value, err := s.parse(raw)
	if err != nil {
		return zero, fmt.Errorf("setting %q: %w", s.name, err)
	}
	for _, constrain := range s.constraints {
		value, err = constrain(value, vals)
		if err != nil {
			return zero, fmt.Errorf("setting %q: %w", s.name, err)
		}
	}
	return value, nil
}

func (s *Setting[T]) explicitValue(vals Values) (string, bool) {
	for p := s; p != nil; p = p.parent {
		if v, ok := vals(p.name); ok {
			return v, true
		}
	}
	return "", false
}

func (s *Setting[T]) defaultValue() (string, bool) {
	for p := s; p != nil; p = p.parent {
		if p.hasDefault {
			return p.def, true
		}
	}
	return "", false
}

// Min rejects values below limit.
func Min[T cmp.Ordered](limit T) Constraint[T] {
	return func(v T, _ Values) (T, error) {
		if v < limit {
			return v, fmt.Errorf("value %v is below the minimum %v", v, limit)
		}
		return v, nil
	}
}

// Max rejects values above limit.
func Max[T cmp.Ordered](limit T) Constraint[T] {
	return func(v T, _ Values) (T, error) {
		if v > limit {
			return v, fmt.Errorf("value %v is above the maximum %v", v, limit)
		}
		return v, nil
	}
}

// Range rejects values outside [lo, hi].
func Range[T cmp.Ordered](lo, hi T) Constraint[T] {
	return func(v T, _ Values) (T, error) {
		if v < lo || v > hi {
			return v, fmt.Errorf("value %v is outside the range [%v, %v]", v, lo, hi)
		}
		return v, nil
	}
}

// Matches rejects strings the pattern does not fully match. The pattern
// must compile; building the constraint panics otherwise.
func Matches(pattern string) Constraint[string] {
	re := regexp.MustCompile("^(?:" + pattern + ")$")
	return func(v string, _ Values) (string, error) {
		if !re.MatchString(v) {
			return v, fmt.Errorf("value %q does not match %q", v, pattern)
		}
		return v, nil
	}
}

// BasePath joins relative paths onto another setting's resolved value.
// Absolute paths pass through untouched.
func BasePath(base *Setting[string]) Constraint[string] {
	return func(v string, vals Values) (string, error) {
		if filepath.IsAbs(v) {
			return v, nil
		}
		dir, err := base.Apply(vals)
		if err != nil {
			return v, fmt.Errorf("resolving base path: %w", err)
		}
		return filepath.Join(dir, v), nil
	}
}

// IsFile rejects paths that exist and are not regular files. A path that
// does not exist yet passes.
func IsFile() Constraint[string] {
	return func(v string, _ Values) (string, error) {
		info, err := os.Stat(v)
		if err != nil {
			if os.IsNotExist(err) {
				return v, nil
			}
			return v, err
		}
		if !info.Mode().IsRegular() {
			return v, fmt.Errorf("path %q is not a regular file", v)
		}
		return v, nil
	}
}
