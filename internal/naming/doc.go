// Package naming renders a tag set into a candidate filename and parses
// filenames back into tag sets.
//
// Tags are joined with a single space; the original extension is appended
// unchanged. Length limits are reported as warnings on the returned Plan so
// the caller can show the exact overrun instead of receiving a truncated
// name. Tags that would not survive the inverse parse are rejected with
// ErrUnencodableTag rather than being altered.
package naming
