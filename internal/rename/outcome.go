package rename

import "fmt"

// State is the terminal state of a rename attempt.
type State int

const (
	Applied State = iota
	Rejected
	Skipped
	SourceVanished
	Failed
)

func (s State) String() string {
	switch s {
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	case Skipped:
		return "skipped"
	case SourceVanished:
		return "source_vanished"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Reason qualifies Rejected, Skipped and Failed outcomes.
type Reason int

const (
	NoReason Reason = iota
	NameTooLong
	PathTooLong
	NameCollision
	PermissionDenied
	CrossDevice
	Unchanged
	IOFailure
)

func (r Reason) String() string {
	switch r {
	case NoReason:
		return ""
	case NameTooLong:
		return "name_too_long"
	case PathTooLong:
		return "path_too_long"
	case NameCollision:
		return "name_collision"
	case PermissionDenied:
		return "permission_denied"
	case CrossDevice:
		return "cross_device"
	case Unchanged:
		return "unchanged"
	case IOFailure:
		return "io_failure"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Outcome is the terminal result of Apply.
//
// DisableDirectory is set with PermissionDenied: the caller should stop
// offering renames in that directory until it is revisited.
type Outcome struct {
	State            State
	Reason           Reason
	NewPath          string
	Detail           string
	Err              error
	DisableDirectory bool
}

// OK reports whether the file now has the planned name.
func (o Outcome) OK() bool {
	return o.State == Applied
}

func (o Outcome) String() string {
	switch {
	case o.State == Applied:
		return fmt.Sprintf("applied: %s", o.NewPath)
	case o.Reason != NoReason && o.Detail != "":
		return fmt.Sprintf("%s (%s): %s", o.State, o.Reason, o.Detail)
	case o.Reason != NoReason:
		return fmt.Sprintf("%s (%s)", o.State, o.Reason)
	case o.Detail != "":
		return fmt.Sprintf("%s: %s", o.State, o.Detail)
	default:
		return o.State.String()
	}
}

func applied(path string) Outcome {
	return Outcome{State: Applied, NewPath: path}
}

func rejected(reason Reason, detail string) Outcome {
	return Outcome{State: Rejected, Reason: reason, Detail: detail}
}

func failed(detail string, err error) Outcome {
	return Outcome{State: Failed, Reason: IOFailure, Detail: detail, Err: err}
}
