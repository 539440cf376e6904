package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// Duration is a time.Duration that also accepts days ("2d") and weeks ("1w")
// in YAML, alone or mixed with the usual units ("1d12h").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes whole days as "Nd" so saved files stay readable.
func (d Duration) MarshalYAML() (any, error) {
	v := time.Duration(d)
	if v > 0 && v%Day == 0 {
		return strconv.FormatInt(int64(v/Day), 10) + "d", nil
	}
	return v.String(), nil
}

// ParseDuration is time.ParseDuration plus the d and w units.
// An empty string is zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !strings.ContainsAny(s, "dw") {
		return time.ParseDuration(s)
	}

	var total time.Duration
	for rest := s; rest != ""; {
		numEnd := strings.IndexFunc(rest, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
		if numEnd <= 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		unitEnd := strings.IndexAny(rest[numEnd:], "0123456789.")
		if unitEnd < 0 {
			unitEnd = len(rest) - numEnd
		}
		num, unit := rest[:numEnd], rest[numEnd:numEnd+unitEnd]
		rest = rest[numEnd+unitEnd:]

		var scale time.Duration
		switch unit {
		case "d":
			scale = Day
		case "w":
			scale = Week
		default:
			part, err := time.ParseDuration(num + unit)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", s, err)
			}
			total += part
			continue
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		total += time.Duration(f * float64(scale))
	}
	return total, nil
}
