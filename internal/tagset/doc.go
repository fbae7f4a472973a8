// Package tagset implements the ordered, de-duplicated tag collection that a
// media file carries in its filename.
//
// A TagSet is a value: every operation returns a new set and never mutates
// the receiver, so callers can hold on to a resolution or reconciliation
// input while the user keeps editing. Comparison is exact and case-sensitive.
// Tags are NFC normalised on the way in so names read back from decomposing
// filesystems compare equal to the tags that produced them.
package tagset
