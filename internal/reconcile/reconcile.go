package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"tagdeck/internal/contenthash"
	"tagdeck/internal/tagset"
)

// ErrHashMismatch marks fetches whose content hash does not match the local file.
var ErrHashMismatch = errors.New("content hash mismatch")

// HashMismatchError carries both hashes for the corruption warning.
type HashMismatchError struct {
	Fetched string
	Local   string
	Source  string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("content hash mismatch: fetched %s from %s, local file is %s", e.Fetched, e.Source, e.Local)
}

// Is lets errors.Is match ErrHashMismatch.
func (e *HashMismatchError) Is(target error) bool {
	return target == ErrHashMismatch
}

// FetchResult is produced by a remote lookup and consumed once.
type FetchResult struct {
	ContentHash string
	RemoteTags  tagset.TagSet
	Source      string
}

// Diff lists tags the remote adds and tags it lacks.
type Diff struct {
	Added   tagset.TagSet
	Removed tagset.TagSet
}

// Empty reports whether the remote and local sets have the same members.
func (d Diff) Empty() bool {
	return d.Added.IsEmpty() && d.Removed.IsEmpty()
}

// Policy selects how a reconciliation is applied.
type Policy int

const (
	Merge Policy = iota
	ReplaceWithRemote
	Discard
)

func (p Policy) String() string {
	switch p {
	case Merge:
		return "merge"
	case ReplaceWithRemote:
		return "replace"
	case Discard:
		return "discard"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a user-supplied name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "merge", "union":
		return Merge, nil
	case "replace", "remote", "replace-with-remote":
		return ReplaceWithRemote, nil
	case "discard", "keep", "local":
		return Discard, nil
	default:
		return 0, fmt.Errorf("unknown reconcile policy %q (want merge, replace, or discard)", name)
	}
}

// Policies lists every policy in presentation order.
func Policies() []Policy {
	return []Policy{Merge, ReplaceWithRemote, Discard}
}

// Reconciliation holds the diff and the inputs the policies transform.
type Reconciliation struct {
	Local  tagset.TagSet
	Remote tagset.TagSet
	Source string
	Diff   Diff
}

// NoOp reports that there is nothing to choose: the caller should skip
// presenting policies.
func (r Reconciliation) NoOp() bool {
	return r.Diff.Empty()
}

// AvailablePolicies returns the policies to offer, none for a no-op.
func (r Reconciliation) AvailablePolicies() []Policy {
	if r.NoOp() {
		return nil
	}
	return Policies()
}

// Apply runs policy over the reconciliation inputs.
func (r Reconciliation) Apply(policy Policy) (tagset.TagSet, error) {
	return Apply(policy, r.Local, r.Remote)
}

// Reconcile verifies fetch against localHash and computes the diff. Hashes
// are compared case-insensitively as hex strings.
func Reconcile(local tagset.TagSet, fetch FetchResult, localHash string) (Reconciliation, error) {
	fetched := strings.TrimSpace(fetch.ContentHash)
	actual := strings.TrimSpace(localHash)
	if !contenthash.Equal(fetched, actual) {
		return Reconciliation{}, &HashMismatchError{Fetched: fetched, Local: actual, Source: fetch.Source}
	}
	return Reconciliation{
		Local:  local,
		Remote: fetch.RemoteTags,
		Source: fetch.Source,
		Diff: Diff{
			Added:   fetch.RemoteTags.Difference(local),
			Removed: local.Difference(fetch.RemoteTags),
		},
	}, nil
}

// Apply is the pure transform behind each policy.
func Apply(policy Policy, local, remote tagset.TagSet) (tagset.TagSet, error) {
	switch policy {
	case Merge:
		return local.Union(remote), nil
	case ReplaceWithRemote:
		return remote, nil
	case Discard:
		return local, nil
	default:
		return tagset.TagSet{}, fmt.Errorf("unknown reconcile policy %d", int(policy))
	}
}
