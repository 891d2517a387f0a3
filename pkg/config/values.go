package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Values looks up the raw string for a setting name. The boolean reports
// whether the source knows the name at all; an empty string is a real
// value, not an absence.
type Values func(name string) (string, bool)

// MapValues serves lookups from a plain map.
func MapValues(m map[string]string) Values {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// EnvValues serves lookups from environment variables. Setting names map
// to the conventional form: dots become underscores, the result is
// upper-cased, and the prefix is prepended. With prefix "SLEIPNIR_",
// "walk.max.depth" reads SLEIPNIR_WALK_MAX_DEPTH.
func EnvValues(prefix string) Values {
	return func(name string) (string, bool) {
		key := prefix + strings.ToUpper(strings.ReplaceAll(name, ".", "_"))
		return os.LookupEnv(key)
	}
}

// FileValues loads a flat YAML mapping of setting names to values.
// Scalars of any YAML type are accepted; everything resolves through its
// string form, the same as any other source.
func FileValues(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}

	m := make(map[string]string, len(raw))
	for k, v := range raw {
		m[k] = fmt.Sprintf("%v", v)
	}
	return MapValues(m), nil
}

// Chain combines sources; the first one that knows a name wins.
func Chain(sources ...Values) Values {
	return func(name string) (string, bool) {
		for _, src := range sources {
			if v, ok := src(name); ok {
				return v, true
			}
		}
		return "", false
	}
}

// NoValues is the empty source: every setting resolves to its default.
func NoValues() Values {
	return func(string) (string, bool) { return "", false }
}
