package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ParseFunc converts the raw string form of a setting into its typed value.
type ParseFunc[T any] func(raw string) (T, error)

// String accepts any value as-is.
func String(raw string) (string, error) {
	return raw, nil
}

// Integer parses a base-10 integer.
func Integer(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return v, nil
}

// Float parses a decimal number.
func Float(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}

// Boolean accepts true/1/yes/on and false/0/no/off, case-insensitively.
func Boolean(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", raw)
}

// Duration parses a Go duration string ("30s", "1h15m"). A bare number is
// taken as seconds.
func Duration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("not a duration: %q", raw)
}

// Bytes parses a human-readable size: a bare number of bytes or a number
// with a K/M/G/T suffix (1024-based, optional trailing B). "unlimited"
// and "0" both mean no limit.
func Bytes(raw string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return 0, fmt.Errorf("not a size: %q", raw)
	}
	if s == "0" || s == "UNLIMITED" {
		return 0, nil
	}

	if len(s) > 1 {
		s = strings.TrimSuffix(s, "B")
	}

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "T"):
		multiplier = 1024 * 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "T")
	}

	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil || val < 0 {
		return 0, fmt.Errorf("not a size: %q", raw)
	}
	return val * multiplier, nil
}

// Path parses a filesystem path, cleaned.
func Path(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty path")
	}
	return filepath.Clean(raw), nil
}

// List parses a separated list, one element at a time. Empty elements are
// skipped, so trailing separators are harmless.
func List[T any](sep string, elem ParseFunc[T]) ParseFunc[[]T] {
	return func(raw string) ([]T, error) {
		parts := strings.Split(raw, sep)
		out := make([]T, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := elem(part)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
}
