// Package health monitors the resolution domain.
//
// Resolver scopes are expected to be short. The monitor samples the
// number of registered fallback listeners on an interval and reports the
// domain unhealthy once the count reaches a configured ceiling, which
// usually means some caller opens scopes without releasing them.
package health
