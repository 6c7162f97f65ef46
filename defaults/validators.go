package defaults

import (
	"fmt"
	"net"
	"time"

	humanize "github.com/dustin/go-humanize"
)

func toInt64(val interface{}) (int64, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// intRangeValidator checks if the supplied integer value lies in the
// inclusive boundaries of `min` and `max`.
func intRangeValidator(min, max int64) func(val interface{}) error {
	return func(val interface{}) error {
		i, ok := toInt64(val)
		if !ok {
			return fmt.Errorf("value is not an int64: %v", val)
		}

		if i < min {
			return fmt.Errorf("value may not be less than %d", min)
		}

		if i > max {
			return fmt.Errorf("value may not be more than %d", max)
		}

		return nil
	}
}

// enumValidator checks if the supplied string value is in the `options` list.
func enumValidator(options ...string) func(val interface{}) error {
	return func(val interface{}) error {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("enum value is not a string: %v", val)
		}

		for _, option := range options {
			if option == s {
				return nil
			}
		}

		return fmt.Errorf("not a valid enum value: %v (allowed: %v)", s, options)
	}
}

func durationValidator(allowZero bool) func(val interface{}) error {
	return func(val interface{}) error {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("duration is not a string: %v", val)
		}

		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}

		if d < 0 || (d == 0 && !allowZero) {
			return fmt.Errorf("duration must be positive: %v", s)
		}

		return nil
	}
}

func parseSize(val interface{}) (uint64, error) {
	s, ok := val.(string)
	if !ok {
		return 0, fmt.Errorf("size is not a string: %v", val)
	}

	return humanize.ParseBytes(s)
}

func sizeValidator(val interface{}) error {
	size, err := parseSize(val)
	if err != nil {
		return err
	}

	if size == 0 {
		return fmt.Errorf("size may not be zero")
	}

	return nil
}

func sizeOrZeroValidator(val interface{}) error {
	_, err := parseSize(val)
	return err
}

func hostValidator(val interface{}) error {
	s, ok := val.(string)
	if !ok {
		return fmt.Errorf("host is not a string: %v", val)
	}

	if len(s) == 0 || len(s) > 255 {
		return fmt.Errorf("host has invalid length: %q", s)
	}

	if net.ParseIP(s) != nil {
		return nil
	}

	for _, c := range s {
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum && c != '-' && c != '.' {
			return fmt.Errorf("not a valid ip or hostname: %q", s)
		}
	}

	return nil
}
