// Package auth implements the access gate in front of the catalog API.
//
// Every request under /api/ passes through [Middleware] before any handler
// runs. The gate asks the [Policy] whether the method and path are exempt;
// if not, it requires an "Authorization: Bearer <token>" header whose token
// the [TokenValidator] accepts. Accepted requests carry the verified
// [Identity] in their context; everything else ends with 401.
//
// Each evaluation is independent: the route policy is a pure function and
// the validator holds only the read-only signing secret, so no state is
// shared between concurrent requests.
package auth
