package params

import (
	"fmt"
	"strings"
)

// ParseKeyValuePairs converts a slice of "key=value" strings into a map.
//
// Example:
//
//	extra, err := ParseKeyValuePairs([]string{"sslmode=require", "options=-csearch_path=app"})
func ParseKeyValuePairs(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q is not in key=value format (example: --conn-param sslmode=require)", pair)
		}
		if key == "" {
			return nil, fmt.Errorf("parameter has empty key: %q", pair)
		}
		result[key] = value
	}

	return result, nil
}
