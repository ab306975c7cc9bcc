// Package slug converts arbitrary strings into URL- and identifier-safe
// lowercase slugs.
//
// Unicode input is NFD-decomposed and stripped of combining marks before
// filtering, so diacritics normalize to their ASCII base letters ("café" →
// "cafe") rather than disappearing. Everything outside ASCII letters and
// digits collapses into a single separator.
//
// Usage:
//
//	slug.Make("Hello World!")
//	// "hello-world"
//
//	slug.Make("Café Steward", slug.Separator("_"), slug.WithSuffix(6))
//	// "cafe_steward_x7g3k2"
//
// MaxLength bounds the total output, shrinking the base to make room for a
// requested suffix. Suffix generation uses crypto/rand; all functions are
// safe for concurrent use.
package slug
