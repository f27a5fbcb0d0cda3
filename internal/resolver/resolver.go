// Package resolver maps a residence's public URL slug to the internal
// numeric residence ID used by the customer booking API. The mapping is a
// static newline-delimited slug:id file maintained by hand.
package resolver

import (
	"fmt"
	"os"
	"strings"

	"github.com/arpejfinder/residence-notifier/internal/models"
)

// LoadMapping parses a slug:id mapping file, trimming whitespace per line.
// A malformed line without a colon produces an entry with an empty value
// rather than a parse error. An unreadable file is the one fatal condition:
// there is no sane default for an unresolvable mapping table.
func LoadMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	mapping := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, ":")
		value := ""
		if len(parts) > 1 {
			value = parts[1]
		}
		mapping[parts[0]] = value
	}

	return mapping, nil
}

// SlugFromLink returns the last non-empty path segment of a residence link,
// which is the key used in the mapping file.
func SlugFromLink(link string) string {
	trimmed := strings.TrimSuffix(link, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return ""
	}
	return trimmed[idx+1:]
}

// Resolve returns the internal residence ID for a residence, or the empty
// string when the mapping has no entry. Callers must treat the empty string
// as "unresolvable", never as a valid ID.
func Resolve(residence models.Residence, mapping map[string]string) string {
	return mapping[SlugFromLink(residence.Link)]
}
