package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// applyConfigFile loads a flat JSON object whose snake_case keys name the
// subcommand's flags. Flags given on the command line keep their values.
func applyConfigFile(fs *flag.FlagSet, path string) error {
	if path == "" {
		return nil
	}
	raw, err := loadConfig(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	return overrideFromConfig(fs, setFlags, raw)
}

func loadConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func overrideFromConfig(fs *flag.FlagSet, set map[string]bool, raw map[string]any) error {
	for key, v := range raw {
		name := strings.ReplaceAll(key, "_", "-")
		if name == "config" || fs.Lookup(name) == nil {
			return fmt.Errorf("unknown config key %q for %s", key, fs.Name())
		}
		if set[name] {
			continue
		}
		value, ok := configValue(v)
		if !ok {
			return fmt.Errorf("config key %q: unsupported value %v", key, v)
		}
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func configValue(v any) (string, bool) {
	if s, ok := asString(v); ok {
		return s, true
	}
	if b, ok := asBool(v); ok {
		return strconv.FormatBool(b), true
	}
	if n, ok := asInt64(v); ok {
		return strconv.FormatInt(n, 10), true
	}
	if f, ok := asFloat64(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}
	return "", false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asInt64 accepts only integral numbers so "0.3" stays a float.
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > 1<<53 {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
