// Package pathlimits describes the filename and path ceilings of the host
// platform along with the characters it refuses in a single path component.
//
// Lengths are counted in characters (runes) because that is what users see
// when a name is reported as too long. Unix filesystems enforce their
// ceilings in bytes, so byte-counted limits check both measures.
package pathlimits
