package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MaxIdentifierLength keeps identifiers DNS-compatible and bounds the
	// work done on hostile input.
	MaxIdentifierLength = 63

	// DefaultTenantHeader is the header consulted when none is configured.
	DefaultTenantHeader = "X-Tenant-ID"

	// DefaultTenantClaim is the JWT claim consulted when none is configured.
	DefaultTenantClaim = "https://steward.app/tenant"
)

// identifierPattern accepts slugs and UUIDs alike: alphanumeric start,
// hyphens allowed after.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// ValidIdentifier reports whether id is usable as a tenant identifier.
func ValidIdentifier(id string) bool {
	if id == "" || len(id) > MaxIdentifierLength {
		return false
	}
	return identifierPattern.MatchString(id)
}

// Resolver extracts a tenant identifier from an HTTP request.
// Returns empty string if the request carries no identifier, an error if
// extraction found one but it is unusable.
type Resolver func(r *http.Request) (string, error)

// NewHeaderResolver extracts the tenant identifier from an HTTP header.
// Defaults to X-Tenant-ID if headerName is empty.
func NewHeaderResolver(headerName string) Resolver {
	if headerName == "" {
		headerName = DefaultTenantHeader
	}

	return func(req *http.Request) (string, error) {
		value := strings.TrimSpace(req.Header.Get(headerName))
		if value == "" {
			return "", nil
		}
		if !ValidIdentifier(value) {
			return "", fmt.Errorf("%w: header value %q", ErrInvalidIdentifier, value)
		}
		return value, nil
	}
}

// NewSubdomainResolver extracts the tenant identifier from the request
// subdomain, optionally stripping suffix (e.g. ".steward.app"). Returns
// empty string for the base domain and for www.
func NewSubdomainResolver(suffix string) Resolver {
	return func(req *http.Request) (string, error) {
		host := req.Host

		// Remove port if present
		if idx := strings.LastIndex(host, ":"); idx != -1 {
			host = host[:idx]
		}

		originalParts := strings.Split(host, ".")

		if suffix != "" && strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			host = host[:len(host)-len(suffix)]
		}

		parts := strings.Split(host, ".")
		if len(parts) == 0 || parts[0] == "" {
			return "", nil
		}

		subdomain := parts[0]
		// Skip www prefix, use next subdomain if available
		if subdomain == "www" {
			if len(parts) > 1 {
				subdomain = parts[1]
			} else {
				return "", nil
			}
		}

		// Require at least subdomain.domain.tld before treating the first
		// label as a tenant.
		if len(originalParts) < 3 {
			return "", nil
		}

		subdomain = strings.TrimSpace(subdomain)
		if subdomain == "" {
			return "", nil
		}
		if !ValidIdentifier(subdomain) {
			return "", fmt.Errorf("%w: subdomain %q", ErrInvalidIdentifier, subdomain)
		}
		return subdomain, nil
	}
}

// NewClaimResolver extracts the tenant identifier from a bearer token claim.
// The token signature is NOT verified here; signature validation is the
// upstream auth layer's job, this resolver only reads the already-admitted
// token. Defaults to the steward tenant claim if claim is empty.
func NewClaimResolver(claim string) Resolver {
	if claim == "" {
		claim = DefaultTenantClaim
	}
	parser := jwt.NewParser()

	return func(req *http.Request) (string, error) {
		auth := req.Header.Get("Authorization")
		if auth == "" {
			return "", nil
		}

		scheme, token, found := strings.Cut(auth, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", nil
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return "", nil
		}

		claims := jwt.MapClaims{}
		if _, _, err := parser.ParseUnverified(token, claims); err != nil {
			return "", fmt.Errorf("%w: malformed bearer token", ErrInvalidIdentifier)
		}

		raw, ok := claims[claim]
		if !ok {
			return "", nil
		}
		value, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("%w: claim %q is not a string", ErrInvalidIdentifier, claim)
		}

		value = strings.TrimSpace(value)
		if value == "" {
			return "", nil
		}
		if !ValidIdentifier(value) {
			return "", fmt.Errorf("%w: claim value %q", ErrInvalidIdentifier, value)
		}
		return value, nil
	}
}

// NewCompositeResolver tries resolvers in the given order and returns the
// first non-empty identifier. Errors are collected and joined only when no
// resolver produces a result.
func NewCompositeResolver(resolvers ...Resolver) Resolver {
	return func(r *http.Request) (string, error) {
		var errs []error

		for _, resolve := range resolvers {
			id, err := resolve(r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if id != "" {
				return id, nil
			}
		}

		if len(errs) > 0 {
			return "", fmt.Errorf("composite resolver: %w", errors.Join(errs...))
		}
		return "", nil
	}
}
