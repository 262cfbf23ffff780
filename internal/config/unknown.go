package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys lists the valid keys of each config section.
var knownKeys = map[string]map[string]bool{
	"cell":      {"url": true, "box": true, "username": true, "password": true},
	"auth":      {"mode": true, "intermediary_url": true},
	"logging":   {"log_level": true, "log_format": true},
	"network":   {"timeout": true, "user_agent": true},
	"locations": {"timezone": true},
}

// knownSectionsList is the sorted list of section names, for deterministic
// suggestions.
var knownSectionsList = slices.Sorted(maps.Keys(knownKeys))

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns
// an error with "did you mean?" suggestions for each unknown key.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	// An unknown section shows up once for the table and once per field;
	// report it once.
	seenSections := make(map[string]bool)

	for _, key := range md.Undecoded() {
		if knownKeys[key[0]] == nil {
			if seenSections[key[0]] {
				continue
			}

			seenSections[key[0]] = true
		}

		errs = append(errs, unknownKeyError(key))
	}

	return errors.Join(errs...)
}

// unknownKeyError describes one undecoded key. A top-level key is either an
// unknown section or a stray value outside any section; a nested key is an
// unknown field inside a known section.
func unknownKeyError(key toml.Key) error {
	if len(key) == 1 || knownKeys[key[0]] == nil {
		name := key[0]
		if suggestion := closestMatch(name, knownSectionsList); suggestion != "" {
			return fmt.Errorf("unknown config key %q — did you mean [%s]?", name, suggestion)
		}

		return fmt.Errorf("unknown config key %q", name)
	}

	section, field := key[0], strings.Join(key[1:], ".")
	candidates := slices.Sorted(maps.Keys(knownKeys[section]))

	if suggestion := closestMatch(field, candidates); suggestion != "" {
		return fmt.Errorf("unknown config key %q in [%s] — did you mean %q?", field, section, suggestion)
	}

	return fmt.Errorf("unknown config key %q in [%s]", field, section)
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		d := levenshtein(unknown, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	// Use single-row optimization to avoid allocating a full matrix.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
