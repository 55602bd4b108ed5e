// The list server answers KEYS by matching registered list names against a glob pattern.

package scan

import (
	"iter"
	"log/slog"

	"v.io/v23/glob"
)

// MatchGlob filters `names` down to the ones matching the glob `pattern`. An invalid pattern matches nothing.
func MatchGlob(pattern string, names iter.Seq[string]) iter.Seq[string] {
	parsedPattern, err := glob.Parse(pattern)
	if err != nil {
		slog.Debug("Ignoring an invalid glob pattern.", "pattern", pattern, "error", err)
		return func(yield func(string) bool) {}
	}
	return func(yield func(string) bool) {
		for name := range names {
			if parsedPattern.Head().Match(name) {
				if !yield(name) {
					return
				}
			}
		}
	}
}
