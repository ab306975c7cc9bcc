package slug

import (
	"crypto/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures slug generation behavior.
type Option func(*config)

type config struct {
	maxLength    int
	separator    string
	suffixLength int
}

func defaultConfig() *config {
	return &config{
		maxLength:    0, // no limit
		separator:    "-",
		suffixLength: 0, // no suffix
	}
}

// MaxLength truncates the generated slug to at most n characters,
// random suffix included.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// Separator sets the character placed between words. Default is "-".
func Separator(s string) Option {
	return func(c *config) {
		c.separator = s
	}
}

// WithSuffix appends a random alphanumeric suffix of the given length so
// repeated calls on the same input produce distinct slugs.
func WithSuffix(length int) Option {
	return func(c *config) {
		c.suffixLength = length
	}
}

// deaccent decomposes runes and drops combining marks, so "café" becomes
// "cafe" instead of losing the rune entirely.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts an arbitrary string into a lowercase identifier of ASCII
// letters, digits, and the configured separator. Runs of other characters
// collapse into a single separator; leading and trailing separators are
// never produced.
func Make(s string, opts ...Option) string {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if normalized, _, err := transform.String(deaccent, s); err == nil {
		s = normalized
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if r > unicode.MaxASCII || (!unicode.IsLetter(r) && !unicode.IsDigit(r)) {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteString(cfg.separator)
			pendingSep = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	out := b.String()

	if cfg.suffixLength > 0 {
		suffix := randomSuffix(cfg.suffixLength)
		if cfg.maxLength > 0 {
			room := cfg.maxLength - cfg.suffixLength - len(cfg.separator)
			if room <= 0 {
				return truncate(suffix, cfg.maxLength, cfg.separator)
			}
			out = truncate(out, room, cfg.separator)
		}
		if out == "" {
			return suffix
		}
		return out + cfg.separator + suffix
	}

	if cfg.maxLength > 0 {
		out = truncate(out, cfg.maxLength, cfg.separator)
	}
	return out
}

// truncate cuts s to max bytes. Safe because Make only emits ASCII.
func truncate(s string, max int, sep string) string {
	if max <= 0 {
		return ""
	}
	if len(s) > max {
		s = s[:max]
	}
	return strings.TrimSuffix(s, sep)
}

const suffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// Deterministic fallback keeps slug generation infallible.
		for i := range b {
			b[i] = suffixCharset[i%len(suffixCharset)]
		}
		return string(b)
	}
	for i := range b {
		b[i] = suffixCharset[int(b[i])%len(suffixCharset)]
	}
	return string(b)
}
