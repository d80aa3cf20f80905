package slug

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxLength matches the slug column width.
	MaxLength = 50
	// Fallback is used when a name contains nothing sluggable.
	Fallback = "item"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)
)

// Make converts a display name into a lowercase ASCII slug.
func Make(value string) string {
	ascii := toASCII(value)
	ascii = nonWord.ReplaceAllString(strings.ToLower(ascii), "")
	out := separators.ReplaceAllString(ascii, "-")
	return strings.Trim(out, "-_")
}

func toASCII(value string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, value)
	if err != nil {
		decomposed = value
	}
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExistsFunc reports whether a candidate is already taken.
type ExistsFunc func(candidate string) (bool, error)

// Unique returns the slug of name, suffixed with -1, -2, ... until exists reports it free.
func Unique(name string, exists ExistsFunc) (string, error) {
	base := Make(name)
	if base == "" {
		base = Fallback
	}
	return UniqueWith(truncate(base, MaxLength), "-", MaxLength, exists)
}

// UniqueWith probes base, then base+sep+1, base+sep+2, ... and returns the first free candidate.
// Suffixed candidates are cut to fit maxLen; maxLen <= 0 disables the cut.
func UniqueWith(base, sep string, maxLen int, exists ExistsFunc) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		suffix := sep + strconv.Itoa(n)
		if maxLen > 0 {
			candidate = truncate(base, maxLen-len(suffix)) + suffix
		} else {
			candidate = base + suffix
		}
	}
}

func truncate(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return strings.TrimRight(value[:max], "-_")
}
