// Package fetchcache persists remote tag lookups keyed by content hash in a
// SQLite database so repeated fetches for the same file do not hit the
// network.
//
// Cached entries are never trusted on their own: callers turn them into a
// reconcile.FetchResult, which is verified against a freshly computed local
// hash before any tags are applied. A stale or substituted entry therefore
// surfaces as a hash mismatch rather than bad tags.
package fetchcache
