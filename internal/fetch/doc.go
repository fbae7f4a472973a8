// Package fetch looks up tags for a media file on a remote booru-style
// service keyed by the file's MD5 content hash.
//
// Client performs one HTTP query per call and never retries; retry policy
// belongs to the caller. Service strings the steps together: hash the local
// file, consult the fetch cache, query the remote, store the answer. Both
// long-running steps report fractional progress and stop on context
// cancellation without producing a result or writing the cache.
//
// The result is a reconcile.FetchResult together with the locally computed
// hash; nothing in this package decides whether fetched tags are trusted.
package fetch
