// Package resolve provides scoped module resolution.
//
// A Domain is the host's resolution layer: it knows the modules that were
// loaded through the normal path and keeps an ordered list of fallback
// listeners that are asked when a lookup misses.
//
// A Handle plugs exactly one designated module into that fallback chain
// for a bounded window:
//
//	h := resolve.Begin(domain, module)
//	defer h.End()
//
//	value, err := decoder.Decode(data) // may resolve module by full name
//
// or, equivalently:
//
//	err := resolve.Within(domain, module, func() error {
//	    _, err := decoder.Decode(data)
//	    return err
//	})
//
// End is idempotent and runs on every exit path when deferred, so a failed
// decode never leaves a stale listener behind.
package resolve
