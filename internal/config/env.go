package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func requriedString(key string) (string, error) {
	variable, isOk := os.LookupEnv(key)
	if !isOk || strings.TrimSpace(variable) == "" {
		return "", fmt.Errorf("missing requried env var: %s", key)
	}
	return strings.TrimSpace(variable), nil
}

// firstRequiredString returns the first non-empty variable among keys.
func firstRequiredString(keys ...string) (string, error) {
	for _, key := range keys {
		if value, err := requriedString(key); err == nil {
			return value, nil
		}
	}
	return "", fmt.Errorf("missing requried env var: %s", strings.Join(keys, " or "))
}

func stringWithDefault(key, def string) string {
	variable, isOk := os.LookupEnv(key)
	if !isOk || strings.TrimSpace(variable) == "" {
		return def
	}
	return strings.TrimSpace(variable)
}

func intWithDefault(key string, def int) (int, error) {
	variable, isOk := os.LookupEnv(key)
	if !isOk || strings.TrimSpace(variable) == "" {
		return def, nil
	}
	number, err := strconv.Atoi(strings.TrimSpace(variable))
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %w", key, err)
	}
	return number, nil
}

func floatWithDefault(key string, def float64) (float64, error) {
	variable, isOk := os.LookupEnv(key)
	if !isOk || strings.TrimSpace(variable) == "" {
		return def, nil
	}
	number, err := strconv.ParseFloat(strings.TrimSpace(variable), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float for %s: %w", key, err)
	}
	return number, nil
}

func boolWithDefault(key string, def bool) (bool, error) {
	variable, isOk := os.LookupEnv(key)
	if !isOk || strings.TrimSpace(variable) == "" {
		return def, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(variable))
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %w", key, err)
	}
	return value, nil
}

func durationWithDefault(key string, def time.Duration) (time.Duration, error) {
	variable, isOk := os.LookupEnv(key)
	if !isOk || strings.TrimSpace(variable) == "" {
		return def, nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(variable))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return value, nil
}
