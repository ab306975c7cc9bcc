package provision

import "github.com/stewardhq/steward/pkg/slug"

const (
	// maxBaseNameLength bounds the slug-derived portion so the full name
	// stays well under PostgreSQL's 63-byte identifier limit.
	maxBaseNameLength = 24
	nameSuffixLength  = 6
)

// DatabaseName derives a unique physical database name from a tenant slug.
// Slugs can be reused after a tenant is offboarded, so the name carries a
// random suffix to stay unique across provisioning rounds.
func DatabaseName(tenantSlug string) string {
	name := slug.Make(tenantSlug,
		slug.Separator("_"),
		slug.MaxLength(maxBaseNameLength+1+nameSuffixLength),
		slug.WithSuffix(nameSuffixLength),
	)
	// Identifiers must not start with a digit.
	if name[0] >= '0' && name[0] <= '9' {
		name = "t" + name
	}
	return name
}
