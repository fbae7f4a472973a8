// Package tagfile discovers the tag files that govern autocomplete and
// validation for a media file.
//
// A Locator walks from the media file's directory toward the filesystem root,
// looking for two conventionally named files: an appending file, whose tags
// add to those found farther up, and an overriding file, which supersedes
// everything above it and stops the walk. Role comes from the filename alone.
//
// The lexical directory chain and the chain obtained after evaluating
// symlinks are searched in lockstep. When two distinct overriding files
// compete at the same depth (through those parallel chains, or through names
// that differ only in case) the result is a Conflict rather than an arbitrary
// pick. Results are never cached; every call reads the filesystem again.
package tagfile
