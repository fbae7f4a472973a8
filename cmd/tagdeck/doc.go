// Package main hosts the tagdeck CLI entrypoint and command graph.
//
// tagdeck keeps a media file's tags in its filename. The Cobra command tree
// resolves governing tag files for autocomplete vocabularies, lists and edits
// the tags encoded in a filename, fetches remote tags by content hash and
// reconciles them, and commits the synthesized name through the rename
// engine. Every domain outcome (conflicts, collisions, vanished sources,
// permission problems) is printed as a status line; the process exits
// non-zero only for unexpected failures.
//
// Keep this package thin: behaviour lives in internal packages and commands
// only wire configuration, locking, and presentation around them.
package main
