package main

import (
	"strings"

	"github.com/vango-dev/webcast/internal/errors"
)

// parseKV parses repeated key=value flags into m, creating it if needed.
// Later pairs win.
func parseKV(flag string, pairs []string, m map[string]string) (map[string]string, error) {
	if len(pairs) == 0 {
		return m, nil
	}
	if m == nil {
		m = make(map[string]string, len(pairs))
	}
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, errors.New("W105").
				WithDetail("--" + flag + " " + pair + " is not in key=value form")
		}
		m[k] = v
	}
	return m, nil
}
