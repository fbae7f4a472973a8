// Package reconcile compares a locally held tag set with tags fetched from a
// remote source keyed by content hash.
//
// A fetch is only trusted when its content hash matches a hash computed from
// the local file immediately before use; anything else is reported as a
// HashMismatchError and nothing is reconciled. Otherwise the package produces
// an added/removed diff and exposes the merge policies as pure transforms.
package reconcile
