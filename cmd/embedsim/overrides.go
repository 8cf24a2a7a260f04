package main

import (
	"fmt"
	"strings"

	"github.com/botirk38/embedsim/providers"
)

// parseOverrides parses key=value pairs, typing each value by its key.
func parseOverrides(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q: want key=value", pair)
		}
		value, err := providers.ParseOverride(key, raw)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}
