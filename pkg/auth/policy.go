package auth

import (
	"net/http"
	"strings"
)

// RoutePolicy is a declarative allow-list of request shapes that skip the
// credential check. Everything it does not list is protected.
type RoutePolicy struct {
	// ExactPaths are exempt for every method.
	ExactPaths []string

	// PublicCollections are exempt for reads (GET, HEAD) on the collection
	// root and on a single item directly below it ("/products/{id}").
	PublicCollections []string
}

// DefaultPolicy returns the catalog API allow-list.
func DefaultPolicy() RoutePolicy {
	return RoutePolicy{
		ExactPaths: []string{
			"/api/admin/login",
			"/api/admin/signup",
			"/api/admin/verify",
			"/api/mail/send-enquiry",
			"/api/mail/send-product-enquiry",
		},
		PublicCollections: []string{
			"/api/products",
		},
	}
}

// IsExempt reports whether a request with the given method and path may
// proceed without credentials. Paths are compared verbatim; no cleaning or
// trailing-slash folding is applied.
func (p RoutePolicy) IsExempt(method, path string) bool {
	for _, exact := range p.ExactPaths {
		if path == exact {
			return true
		}
	}

	if method != http.MethodGet && method != http.MethodHead {
		return false
	}

	for _, coll := range p.PublicCollections {
		if path == coll {
			return true
		}
		rest, ok := strings.CutPrefix(path, coll+"/")
		if ok && rest != "" && !strings.Contains(rest, "/") {
			return true
		}
	}

	return false
}
