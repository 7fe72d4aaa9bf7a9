package driver

import (
	"os"
	"path/filepath"
	"strings"
)

// PreludeEnv lists extra prelude files, separated by the OS list separator.
const PreludeEnv = "KWARG_PRELUDE"

// ResolvePrelude merges configured prelude paths with $KWARG_PRELUDE,
// dropping blanks and duplicates while keeping the first occurrence.
func ResolvePrelude(configured []string) []string {
	var all []string
	all = append(all, configured...)
	if env := os.Getenv(PreludeEnv); env != "" {
		all = append(all, filepath.SplitList(env)...)
	}
	seen := make(map[string]struct{}, len(all))
	out := make([]string, 0, len(all))
	for _, p := range all {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
