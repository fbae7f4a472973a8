// Package rename commits a naming.Plan to the filesystem.
//
// Every attempt moves from Planned through Validating to exactly one
// terminal Outcome. Validation re-reads live filesystem state immediately
// before the rename: the plan's length warnings are hard stops, the source
// must still be the same file, its directory must be writable, and the
// candidate path must be free unless it is the source itself (a case-only
// rename). The rename is a single atomic call; on Linux it refuses to
// replace an existing file so a name claimed between check and commit is
// still reported as a collision. There is no copy-and-delete fallback.
//
// Expected rejections are Outcome values, not errors. Only unexpected I/O
// faults surface as Failed with the underlying error attached.
package rename
