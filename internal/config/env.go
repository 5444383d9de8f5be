// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
)

// lookup reads key and parses it. Unset and empty variables yield the
// default; parse failures are logged and yield the default. Every outcome is
// logged with its source at debug level.
func lookup[T any](key string, def T, kind string, parse func(string) (T, error)) T {
	logger := xglog.WithComponent("config")
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		logger.Debug().
			Str("key", key).
			Interface("default", def).
			Str("source", "default").
			Msg("using default value")
		return def
	}

	v, err := parse(raw)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", raw).
			Interface("default", def).
			Msgf("invalid %s in environment variable, using default", kind)
		return def
	}

	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if sensitive(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", raw)
	}
	ev.Msg("using environment variable")
	return v
}

func sensitive(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password")
}

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	return lookup(key, defaultValue, "string", func(s string) (string, error) { return s, nil })
}

// ParseInt reads an integer from environment variable or returns default value.
func ParseInt(key string, defaultValue int) int {
	return lookup(key, defaultValue, "integer", strconv.Atoi)
}

// ParseDuration reads a duration in Go duration format (e.g. "5s").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return lookup(key, defaultValue, "duration", time.ParseDuration)
}

// ParseBool reads a boolean. It accepts "true", "false", "1", "0", "yes",
// "no", "on" and "off" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return lookup(key, defaultValue, "boolean", parseBool)
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return lookup(key, defaultValue, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseList reads a comma-separated list, dropping blank entries.
func ParseList(key string, defaultValue []string) []string {
	return lookup(key, defaultValue, "list", func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	})
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}
