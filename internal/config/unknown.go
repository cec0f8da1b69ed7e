package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys maps each section to its valid keys.
var knownKeys = map[string][]string{
	"auth":       {"client_id", "tenant_id", "client_secret", "authority_host"},
	"graph":      {"base_url"},
	"logging":    {"log_level", "log_format"},
	"network":    {"timeout", "user_agent"},
	"mail":       {"default_sender", "default_importance"},
	"sharepoint": {"default_library", "max_upload_size"},
}

// knownSectionsList and knownKeysList are sorted for deterministic
// suggestions when two candidates have the same edit distance.
var (
	knownSectionsList = func() []string {
		sections := make([]string, 0, len(knownKeys))
		for s := range knownKeys {
			sections = append(sections, s)
		}

		sort.Strings(sections)

		return sections
	}()

	knownKeysList = func() []string {
		var keys []string

		for section, leaves := range knownKeys {
			for _, leaf := range leaves {
				keys = append(keys, section+"."+leaf)
			}
		}

		sort.Strings(keys)

		return keys
	}()
)

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns
// an error with "did you mean?" suggestions for each unknown key.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	for _, key := range md.Undecoded() {
		if err := unknownKeyError(key); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// unknownKeyError describes one undecoded key. Keys below an unknown section
// return nil: the section itself is already reported.
func unknownKeyError(key toml.Key) error {
	if len(key) == 0 {
		return nil
	}

	section := key[0]
	_, sectionKnown := knownKeys[section]

	if len(key) == 1 {
		if sectionKnown {
			return nil
		}

		// A bare key that belongs in a section, e.g. client_id at the top.
		if full := sectionForLeaf(section); full != "" {
			return fmt.Errorf("unknown config key %q; did you mean %q?", section, full)
		}

		if s := closestMatch(section, knownSectionsList); s != "" {
			return fmt.Errorf("unknown config section [%s]; did you mean [%s]?", section, s)
		}

		return fmt.Errorf("unknown config key %q", section)
	}

	if !sectionKnown {
		return nil
	}

	keyStr := key.String()
	if s := closestMatch(keyStr, knownKeysList); s != "" {
		return fmt.Errorf("unknown config key %q; did you mean %q?", keyStr, s)
	}

	return fmt.Errorf("unknown config key %q", keyStr)
}

// sectionForLeaf returns "section.leaf" for a leaf name that exists in
// exactly one section.
func sectionForLeaf(leaf string) string {
	for _, k := range knownKeysList {
		if strings.HasSuffix(k, "."+leaf) {
			return k
		}
	}

	return ""
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

	// Single-row optimization avoids allocating a full matrix.
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
